package main

import (
	"github.com/spf13/cobra"

	"github.com/rwx-research/lms-cli/internal/cli"
)

var certificatesCmd = &cobra.Command{
	Short: "List and issue course certificates",
	Use:   "certificates",
}

var (
	CertificatesJson bool
	CertificatesYaml bool

	certificatesListCmd = &cobra.Command{
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return requireSession()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := outputFormat(CertificatesJson, CertificatesYaml)
			if err != nil {
				return err
			}

			return service.ListCertificates(cmd.Context(), cli.ListCertificatesConfig{CourseID: args[0], Output: output})
		},
		Short: "List the certificates issued for a course",
		Use:   "list <course-id> [flags]",
	}

	certificatesIssueCmd = &cobra.Command{
		Args: cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return requireSession()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := outputFormat(CertificatesJson, CertificatesYaml)
			if err != nil {
				return err
			}

			return service.IssueCertificate(cmd.Context(), cli.IssueCertificateConfig{
				CourseID: args[0],
				UserID:   args[1],
				Output:   output,
			})
		},
		Short: "Issue a course certificate to a user",
		Use:   "issue <course-id> <user-id> [flags]",
	}
)

func init() {
	for _, cmd := range []*cobra.Command{certificatesListCmd, certificatesIssueCmd} {
		addOutputFlags(cmd, &CertificatesJson, &CertificatesYaml)
		certificatesCmd.AddCommand(cmd)
	}
}
