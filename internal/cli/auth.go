package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/nanofi/nanofi/internal/common"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// Login prompts for an email (unless one is given) and a password and checks
// them against the demo accounts. The password is wiped before returning.
func (a *App) Login(ctx context.Context, email string) error {
	if email == "" {
		var err error
		email, err = getSimpleText(a.reader, "Enter email", a.out)
		if err != nil {
			return err
		}
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	fmt.Fprintln(a.out, "Signing in...")
	ok, err := a.sessions.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCredentials
	}

	u := a.sessions.CurrentUser()
	fmt.Fprintf(a.out, "Logged in as %s\n", u)
	return nil
}

// Logout ends the session. Logging out twice is not an error.
func (a *App) Logout(ctx context.Context) error {
	if err := a.sessions.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) WhoAmI(_ context.Context) error {
	u := a.sessions.CurrentUser()
	if u == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	fmt.Fprintln(a.out, u)
	return nil
}
