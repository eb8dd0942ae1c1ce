package main

import (
	"github.com/spf13/cobra"

	"github.com/rwx-research/lms-cli/internal/cli"
)

var assignmentsCmd = &cobra.Command{
	Short: "List and submit assignments",
	Use:   "assignments",
}

var (
	AssignmentsLimit   int
	AssignmentsComment string
	AssignmentsFiles   []string
	AssignmentsJson    bool
	AssignmentsYaml    bool

	assignmentsListCmd = &cobra.Command{
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return requireSession()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := outputFormat(AssignmentsJson, AssignmentsYaml)
			if err != nil {
				return err
			}

			return service.ListAssignments(cmd.Context(), cli.ListAssignmentsConfig{
				ModuleID: args[0],
				Limit:    AssignmentsLimit,
				Output:   output,
			})
		},
		Short: "List the assignments of a module",
		Use:   "list <module-id> [flags]",
	}

	assignmentsSubmitCmd = &cobra.Command{
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return requireSession()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := outputFormat(AssignmentsJson, AssignmentsYaml)
			if err != nil {
				return err
			}

			return service.SubmitAssignment(cmd.Context(), cli.SubmitAssignmentConfig{
				AssignmentID: args[0],
				Comment:      AssignmentsComment,
				Files:        AssignmentsFiles,
				Output:       output,
			})
		},
		Short: "Submit work for an assignment",
		Use:   "submit <assignment-id> [flags]",
	}
)

func init() {
	assignmentsListCmd.Flags().IntVar(&AssignmentsLimit, "limit", 0, "maximum number of assignments to list")
	assignmentsSubmitCmd.Flags().StringVar(&AssignmentsComment, "comment", "", "a comment to submit with the work")
	assignmentsSubmitCmd.Flags().StringArrayVar(&AssignmentsFiles, "file", []string{}, "a file to attach. Can be specified multiple times")

	for _, cmd := range []*cobra.Command{assignmentsListCmd, assignmentsSubmitCmd} {
		addOutputFlags(cmd, &AssignmentsJson, &AssignmentsYaml)
		assignmentsCmd.AddCommand(cmd)
	}
}
