package main

import (
	"github.com/manifoldco/promptui"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"

	"github.com/rwx-research/lms-cli/internal/cli"
	"github.com/rwx-research/lms-cli/internal/errors"
)

var (
	LoginEmail    string
	LoginPassword string
	LoginWeb      bool

	loginCmd = &cobra.Command{
		RunE: func(cmd *cobra.Command, args []string) error {
			if LoginWeb {
				return service.LoginWithBrowser(cmd.Context(), cli.LoginWithBrowserConfig{
					OpenURL: open.Run,
					PromptSession: func() (string, error) {
						prompt := promptui.Prompt{
							Label:    "Session",
							Mask:     '*',
							Validate: required("Session"),
						}
						return prompt.Run()
					},
				})
			}

			// try to collect the credentials if they are not provided
			if LoginEmail == "" {
				prompt := promptui.Prompt{
					Label:    "Email",
					Validate: required("Email"),
				}
				email, err := prompt.Run()
				if err != nil {
					return err
				}

				LoginEmail = email
			}

			if LoginPassword == "" {
				prompt := promptui.Prompt{
					Label:    "Password",
					Mask:     '*',
					Validate: required("Password"),
				}
				password, err := prompt.Run()
				if err != nil {
					return err
				}

				LoginPassword = password
			}

			return service.Login(cmd.Context(), cli.LoginConfig{
				Email:    LoginEmail,
				Password: LoginPassword,
			})
		},
		Short: "Sign in to the LMS and store the session on this device",
		Use:   "login [flags]",
	}
)

func init() {
	loginCmd.Flags().StringVar(&LoginEmail, "email", "", "the email to sign in with (if unset, you will be prompted to enter it interactively)")
	loginCmd.Flags().StringVar(&LoginPassword, "password", "", "the password to sign in with (if unset, you will be prompted to enter it interactively)")
	loginCmd.Flags().BoolVar(&LoginWeb, "web", false, "sign in with a browser and paste the resulting session")
}

func required(label string) promptui.ValidateFunc {
	return func(s string) error {
		if s == "" {
			return errors.Errorf("%s must be provided", label)
		}

		return nil
	}
}
