package cli

import (
	"context"
	"fmt"
)

// getSimpleText and getPassword are indirections swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
)

func (a *App) credentials() (string, string, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", "", err
	}
	pw, err := getPassword(a.out)
	if err != nil {
		return "", "", err
	}
	defer wipe(pw)
	return email, string(pw), nil
}

// Register creates an account. Providers that require email confirmation
// return no session; the user signs in after confirming.
func (a *App) Register(ctx context.Context, _ []string) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}

	sess, err := a.authn.SignUp(ctx, email, password)
	if err != nil {
		a.notify.Error(fmt.Sprintf("sign up: %v", err))
		return err
	}
	if sess == nil {
		a.notify.Success("account created, confirm your email and login")
		return nil
	}

	a.session = sess
	a.loadAll(ctx)
	a.notify.Success("signed in as " + sess.Email)
	return nil
}

func (a *App) Login(ctx context.Context, _ []string) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}

	sess, err := a.authn.SignIn(ctx, email, password)
	if err != nil {
		a.log.Warn(ctx, "sign in failed", "error", err)
		a.notify.Error(fmt.Sprintf("sign in: %v", err))
		return err
	}

	a.session = sess
	a.loadAll(ctx)
	a.notify.Success("signed in as " + sess.Email)
	return nil
}

// Logout drops the session locally even when the provider call fails.
func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.authn.SignOut(ctx, a.session); err != nil {
		a.log.Warn(ctx, "sign out failed", "error", err)
	}
	a.session = nil
	a.loadAll(ctx)
	a.notify.Success("signed out")
	return nil
}

func (a *App) Reset(ctx context.Context, args []string) error {
	var email string
	if len(args) > 0 {
		email = args[0]
	} else {
		var err error
		if email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
			return err
		}
	}

	if err := a.authn.ResetPassword(ctx, email); err != nil {
		a.notify.Error(fmt.Sprintf("reset password: %v", err))
		return err
	}
	a.notify.Success("password reset email sent to " + email)
	return nil
}
