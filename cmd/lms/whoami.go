package main

import (
	"github.com/spf13/cobra"

	"github.com/rwx-research/lms-cli/internal/cli"
)

var (
	WhoamiJson bool
	WhoamiYaml bool

	whoamiCmd = &cobra.Command{
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return requireSession()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := outputFormat(WhoamiJson, WhoamiYaml)
			if err != nil {
				return err
			}

			return service.Whoami(cmd.Context(), cli.WhoamiConfig{Output: output})
		},
		Short: "Outputs details about the signed in user",
		Use:   "whoami [flags]",
	}
)

func init() {
	addOutputFlags(whoamiCmd, &WhoamiJson, &WhoamiYaml)
}
