package main

import (
	"github.com/spf13/cobra"

	"github.com/rwx-research/lms-cli/internal/cli"
)

var gradesCmd = &cobra.Command{
	Short: "Show grades",
	Use:   "grades",
}

var (
	GradesJson bool
	GradesYaml bool

	gradesListCmd = &cobra.Command{
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return requireSession()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := outputFormat(GradesJson, GradesYaml)
			if err != nil {
				return err
			}

			return service.ListGrades(cmd.Context(), cli.ListGradesConfig{CourseID: args[0], Output: output})
		},
		Short: "List the grades of a course",
		Use:   "list <course-id> [flags]",
	}
)

func init() {
	addOutputFlags(gradesListCmd, &GradesJson, &GradesYaml)
	gradesCmd.AddCommand(gradesListCmd)
}
