package services

import (
	"errors"

	"github.com/dmitrijs2005/lifetrack/internal/common"
	"github.com/google/uuid"
)

// validID reports whether id can name a row at all. Row ids are uuid
// columns and the driver rejects anything else instead of matching nothing.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// remote tags store failures as RemoteError while letting domain sentinels
// through unchanged.
func remote(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{
		common.ErrorNotFound,
		common.ErrValidation,
		common.ErrInvalidIndex,
		common.ErrAuthenticationRequired,
		common.ErrUploadFailure,
		common.ErrRemoteFailure,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return common.NewRemoteError(op, err)
}
