package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/recipebox/internal/common"
)

// getSimpleText, getPassword and getList are indirections used to facilitate
// testing. They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getList       = GetList
)

var errPasswordMismatch = errors.New("passwords do not match")

// Register prompts for email, username and a password typed twice, then
// creates the account. A mismatched confirmation is rejected before anything
// is sent. The password buffers are wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Choose a username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword(a.out, "Repeat password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(password, confirm) {
		fmt.Fprintln(a.out, "Passwords do not match.")
		return errPasswordMismatch
	}

	return a.session.Register(ctx, email, string(password), username)
}

// Login prompts for credentials and signs in. The outcome is reported by
// the toast the session store raises.
func (a *App) Login(ctx context.Context) error {
	if u := a.session.User(); u != nil {
		fmt.Fprintf(a.out, "Already signed in as %s.\n", u.DisplayName())
		return nil
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	return a.session.Login(ctx, email, string(password))
}

func (a *App) Logout(ctx context.Context) error {
	return a.session.Logout(ctx)
}

func (a *App) WhoAmI(ctx context.Context) error {
	u := a.session.User()
	if u == nil {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}
	if u.Username != "" {
		fmt.Fprintf(a.out, "%s <%s>\n", u.Username, u.Email)
	} else {
		fmt.Fprintln(a.out, u.Email)
	}
	return nil
}
