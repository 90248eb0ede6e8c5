package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/lifetrack/internal/common"
)

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func validateDate(field, value string) error {
	if _, err := time.Parse(common.DateLayout, value); err != nil {
		return fmt.Errorf("%w: %s must be YYYY-MM-DD", common.ErrValidation, field)
	}
	return nil
}

// Ptr returns a pointer to v. Handy for building partial requests.
func Ptr[T any](v T) *T {
	return &v
}
