package main

import (
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rwx-research/lms-cli/internal/cli"
	"github.com/rwx-research/lms-cli/internal/errors"
)

var apiCmd = &cobra.Command{
	Short: "Send authenticated requests to the LMS backend",
	Long: "Send authenticated requests to the LMS backend.\n" +
		"Paths are resolved against the backend URL, except for /api/ paths which go to the app.\n" +
		"An expired session is refreshed and the request retried once.",
	Use: "api",
}

func init() {
	for _, method := range []string{"get", "post", "put", "patch", "delete"} {
		apiCmd.AddCommand(newAPIMethodCmd(method))
	}
}

func newAPIMethodCmd(method string) *cobra.Command {
	var (
		data   string
		query  []string
		asYaml bool
	)

	cmd := &cobra.Command{
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return requireSession()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := ParseQueryParams(query)
			if err != nil {
				return err
			}

			output := cli.OutputJSON
			if asYaml {
				output = cli.OutputYAML
			}

			return service.Request(cmd.Context(), cli.RequestConfig{
				Method: strings.ToUpper(method),
				Path:   args[0],
				Data:   data,
				Query:  values,
				Output: output,
			})
		},
		Short: "Send a " + strings.ToUpper(method) + " request",
		Use:   method + " <path> [flags]",
	}

	if method != "get" && method != "delete" {
		cmd.Flags().StringVar(&data, "data", "", "JSON request body")
	}
	cmd.Flags().StringArrayVar(&query, "query", []string{}, "query parameter in form `key=value`. Can be specified multiple times")
	cmd.Flags().BoolVar(&asYaml, "yaml", false, "output YAML instead of JSON")

	return cmd
}

// ParseQueryParams converts a list of `key=value` pairs to query values. Keys may repeat.
func ParseQueryParams(params []string) (url.Values, error) {
	values := url.Values{}

	parse := func(p string) error {
		fields := strings.Split(p, "=")
		if len(fields) < 2 || fields[0] == "" {
			return errors.Errorf("unable to parse %q", p)
		}

		values.Add(fields[0], strings.Join(fields[1:], "="))
		return nil
	}

	for _, param := range params {
		if err := parse(param); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	return values, nil
}
