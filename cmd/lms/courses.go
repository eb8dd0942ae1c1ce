package main

import (
	"github.com/spf13/cobra"

	"github.com/rwx-research/lms-cli/internal/cli"
)

var coursesCmd = &cobra.Command{
	Short: "Browse courses",
	Use:   "courses",
}

var (
	CoursesLimit  int
	CoursesSearch string
	CoursesJson   bool
	CoursesYaml   bool

	coursesListCmd = &cobra.Command{
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return requireSession()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := outputFormat(CoursesJson, CoursesYaml)
			if err != nil {
				return err
			}

			return service.ListCourses(cmd.Context(), cli.ListCoursesConfig{
				Limit:  CoursesLimit,
				Search: CoursesSearch,
				Output: output,
			})
		},
		Short: "List courses",
		Use:   "list [flags]",
	}

	coursesGetCmd = &cobra.Command{
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return requireSession()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := outputFormat(CoursesJson, CoursesYaml)
			if err != nil {
				return err
			}

			return service.GetCourse(cmd.Context(), cli.GetCourseConfig{CourseID: args[0], Output: output})
		},
		Short: "Show a course",
		Use:   "get <course-id> [flags]",
	}

	coursesOutlineCmd = &cobra.Command{
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return requireSession()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := outputFormat(CoursesJson, CoursesYaml)
			if err != nil {
				return err
			}

			return service.CourseOutline(cmd.Context(), cli.CourseOutlineConfig{CourseID: args[0], Output: output})
		},
		Short: "Show a course with its modules and lessons",
		Use:   "outline <course-id> [flags]",
	}
)

func init() {
	coursesListCmd.Flags().IntVar(&CoursesLimit, "limit", 0, "maximum number of courses to list")
	coursesListCmd.Flags().StringVar(&CoursesSearch, "search", "", "only list courses matching this text")

	for _, cmd := range []*cobra.Command{coursesListCmd, coursesGetCmd, coursesOutlineCmd} {
		addOutputFlags(cmd, &CoursesJson, &CoursesYaml)
		coursesCmd.AddCommand(cmd)
	}
}
