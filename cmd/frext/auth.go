package main

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

type credentials struct {
	email    string
	password string
	name     string
}

// fill prompts on stdin for anything not given as a flag.
func (c *credentials) fill(a *app, in io.Reader, withName bool) error {
	r := bufio.NewReader(in)
	ask := func(label string, dst *string) error {
		if *dst != "" {
			return nil
		}
		a.printf("%s: ", label)
		line, err := r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		*dst = strings.TrimSpace(line)
		return nil
	}

	if err := ask("Email", &c.email); err != nil {
		return err
	}
	if err := ask("Password", &c.password); err != nil {
		return err
	}
	if withName {
		if err := ask("Name (optional)", &c.name); err != nil {
			return err
		}
	}
	if c.email == "" || c.password == "" {
		return errors.New("email and password are required")
	}
	return nil
}

func (c *credentials) bind(cmd *cobra.Command, withName bool) {
	cmd.Flags().StringVarP(&c.email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&c.password, "password", "p", "", "account password (prompted when omitted)")
	if withName {
		cmd.Flags().StringVarP(&c.name, "name", "n", "", "display name")
	}
}

func newLoginCmd(a *app) *cobra.Command {
	var c credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.fill(a, cmd.InOrStdin(), false); err != nil {
				return err
			}
			resp := a.auth.Login(cmd.Context(), c.email, c.password)
			if !resp.Success || resp.Data == nil {
				return failed("login", resp.Error, resp)
			}
			a.printf("Logged in as %s <%s>\n", resp.Data.User.Name, resp.Data.User.Email)
			return nil
		},
	}
	c.bind(cmd, false)
	return cmd
}

func newSignupCmd(a *app) *cobra.Command {
	var c credentials
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.fill(a, cmd.InOrStdin(), true); err != nil {
				return err
			}
			resp := a.auth.Signup(cmd.Context(), c.email, c.password, c.name)
			if !resp.Success || resp.Data == nil {
				return failed("signup", resp.Error, resp)
			}
			a.printf("Account created for %s <%s>\n", resp.Data.User.Name, resp.Data.User.Email)
			return nil
		},
	}
	c.bind(cmd, true)
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if !a.auth.AutoLogin(ctx) {
				a.printf("Not logged in.\n")
				return nil
			}
			// the local session is cleared even when the server call fails
			a.auth.Logout(ctx)
			a.printf("Logged out.\n")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.auth.AutoLogin(cmd.Context()) {
				a.printf("Not logged in.\n")
				return nil
			}
			u := a.auth.CurrentUser()
			if u == nil {
				return errNotLoggedIn
			}
			a.printf("%s <%s> (id %s)\n", u.Name, u.Email, u.ID)
			return nil
		},
	}
}
