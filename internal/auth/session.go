// Package auth carries the authenticated session through every store call,
// talks to the hosted auth provider and signs/validates access tokens.
package auth

import (
	"time"

	"github.com/dmitrijs2005/lifetrack/internal/common"
)

// Session is the result of a successful sign-in. It is passed explicitly to
// every primary and backup operation; the owner of written rows is taken
// from UserID.
type Session struct {
	UserID       string
	Email        string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Require fails with common.ErrAuthenticationRequired unless sess identifies
// a user.
func Require(sess *Session) error {
	if sess == nil || sess.UserID == "" {
		return common.ErrAuthenticationRequired
	}
	return nil
}

// Expired reports whether the access token is past its expiry at now.
// A zero ExpiresAt never expires.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
