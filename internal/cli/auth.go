package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"taskdeck/internal/api"
	"taskdeck/internal/form"
	"taskdeck/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var d form.AuthDraft

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if errs := form.ValidateAuth(form.ModeLogin, d); len(errs) > 0 {
				return writeFormErrors(cmd, errs)
			}
			if err := app.setup(); err != nil {
				return writeErr(cmd, err)
			}
			ctx := commandContext(cmd)

			res, err := app.client.Login(ctx, api.Credentials{Username: d.Username, Password: d.Password})
			if err != nil {
				return writeErr(cmd, apiFailure("login failed", err))
			}
			if err := app.session.SetSession(ctx, res.Token, res.User); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"message": "Login successful!",
				"user":    res.User,
			})
		},
	}

	cmd.Flags().StringVar(&d.Username, "username", "", "Username")
	cmd.Flags().StringVar(&d.Password, "password", envOr("TASKDECK_PASSWORD", ""), "Password (or TASKDECK_PASSWORD)")
	return cmd
}

func newSignupCmd(app *App) *cobra.Command {
	var d form.AuthDraft

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account (does not sign in)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if errs := form.ValidateAuth(form.ModeSignup, d); len(errs) > 0 {
				return writeFormErrors(cmd, errs)
			}
			if err := app.setup(); err != nil {
				return writeErr(cmd, err)
			}

			raw, err := app.client.Register(commandContext(cmd), api.Registration{
				Username: d.Username,
				Email:    d.Email,
				Password: d.Password,
			})
			if err != nil {
				return writeErr(cmd, apiFailure("sign up failed", err))
			}
			out := map[string]any{"message": "Sign Up successful!"}
			if raw != nil {
				out["response"] = json.RawMessage(raw)
			}
			return writeOut(cmd, app, out)
		},
	}

	cmd.Flags().StringVar(&d.Username, "username", "", "Username")
	cmd.Flags().StringVar(&d.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&d.Password, "password", envOr("TASKDECK_PASSWORD", ""), "Password (or TASKDECK_PASSWORD)")
	cmd.Flags().StringVar(&d.ConfirmPassword, "confirm-password", "", "Password again")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.setup(); err != nil {
				return writeErr(cmd, err)
			}
			if err := app.session.ClearSession(commandContext(cmd)); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"signedOut": true})
		},
	}
}

type whoami struct {
	Authenticated bool         `json:"authenticated"`
	User          *model.User  `json:"user"`
	Claims        *tokenClaims `json:"claims,omitempty"`
}

// tokenClaims are read from the token without verifying it; they are informational.
type tokenClaims struct {
	Subject   string     `json:"sub,omitempty"`
	ExpiresAt *time.Time `json:"exp,omitempty"`
	Expired   bool       `json:"expired"`
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session (user, token presence, token claims)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.setup(); err != nil {
				return writeErr(cmd, err)
			}
			sess, err := app.session.Current(commandContext(cmd))
			if err != nil {
				return writeErr(cmd, err)
			}

			out := whoami{Authenticated: sess.Authenticated()}
			if sess.User != (model.User{}) {
				u := sess.User
				out.User = &u
			}
			if sess.Authenticated() {
				out.Claims = readClaims(sess.Token, time.Now())
			}
			return writeOut(cmd, app, out)
		},
	}
}

// readClaims returns nil when token is not a JWT.
func readClaims(token string, now time.Time) *tokenClaims {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil
	}
	out := &tokenClaims{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time.UTC()
		out.ExpiresAt = &exp
		out.Expired = now.After(exp)
	}
	return out
}

func writeFormErrors(cmd *cobra.Command, errs form.Errors) error {
	for _, f := range sortedFields(errs) {
		fmt.Fprintln(cmd.ErrOrStderr(), errs[f])
	}
	return reportedError{err: errs}
}

func sortedFields(errs form.Errors) []form.Field {
	order := []form.Field{
		form.FieldUsername,
		form.FieldEmail,
		form.FieldPassword,
		form.FieldConfirmPassword,
		form.FieldTitle,
		form.FieldDescription,
	}
	out := make([]form.Field, 0, len(errs))
	for _, f := range order {
		if _, ok := errs[f]; ok {
			out = append(out, f)
		}
	}
	return out
}
