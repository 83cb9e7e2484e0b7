package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"eventspot/auth"
	"eventspot/cognito"
	"eventspot/config"
)

func (a *App) cognito(ctx context.Context) (*cognito.Client, error) {
	return cognito.New(ctx, viper.GetString(config.CognitoRegion), viper.GetString(config.CognitoClientID))
}

func (a *App) loginCommand() *cobra.Command {
	var email, password, googleToken string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password, or with a Google ID token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.api(ctx)
			if err != nil {
				return err
			}
			store, err := a.sessionStore(ctx)
			if err != nil {
				return err
			}

			if googleToken != "" {
				user, err := auth.NewService(client, nil, store).LoginWithGoogle(ctx, googleToken)
				if err != nil {
					return err
				}
				a.printer.Success(fmt.Sprintf("Signed in as %s (%s)", user.Email, user.Role))
				return nil
			}

			if email == "" {
				if email, err = a.prompt("Email", ""); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = a.prompt("Password", ""); err != nil {
					return err
				}
			}
			if email == "" || password == "" {
				return errors.New("email and password are required")
			}

			idp, err := a.cognito(ctx)
			if err != nil {
				return err
			}
			user, err := auth.NewService(client, idp, store).LoginWithPassword(ctx, email, password)
			if err != nil {
				return err
			}
			a.printer.Success(fmt.Sprintf("Signed in as %s (%s)", user.Email, user.Role))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when empty)")
	cmd.Flags().StringVar(&googleToken, "google-id-token", "", "Google ID token from the web sign-in")
	return cmd
}

func (a *App) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.sessionGuard(cmd.Context())
			if err != nil {
				return err
			}
			g.Logout()
			a.printer.Success("Signed out")
			return nil
		},
	}
}

func (a *App) signupCommand() *cobra.Command {
	var email, password, name, phone string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			idp, err := a.cognito(ctx)
			if err != nil {
				return err
			}
			if err := idp.SignUp(ctx, email, password, name, phone); err != nil {
				return err
			}
			a.printer.Success("Account created. Check your email for the confirmation code, then run: eventspot confirm")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number in E.164 format")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *App) confirmCommand() *cobra.Command {
	var email, code string

	cmd := &cobra.Command{
		Use:   "confirm",
		Short: "Confirm a new account with the emailed code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			idp, err := a.cognito(ctx)
			if err != nil {
				return err
			}
			if err := idp.Confirm(ctx, email, code); err != nil {
				return err
			}
			a.printer.Success("Account confirmed. You can now sign in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&code, "code", "", "confirmation code")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}

func (a *App) resendCodeCommand() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "resend-code",
		Short: "Send the confirmation code again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			idp, err := a.cognito(ctx)
			if err != nil {
				return err
			}
			if err := idp.ResendCode(ctx, email); err != nil {
				return err
			}
			a.printer.Success("Confirmation code sent to " + email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
