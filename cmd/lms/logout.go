package main

import (
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.Logout(cmd.Context())
	},
	Short: "Sign out and remove the stored session",
	Use:   "logout",
}
