package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/briandowns/spinner"
	"github.com/goccy/go-yaml"

	"github.com/rwx-research/lms-cli/internal/errors"
)

const (
	columnPadding = 2
	minCellWidth  = 8
)

// writeStructured renders v as JSON or YAML. It reports false for text output so the caller can
// render its own representation.
func (s Service) writeStructured(format OutputFormat, v any) (bool, error) {
	switch format {
	case OutputJSON:
		encoded, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, errors.Wrap(err, "unable to JSON encode the result")
		}
		fmt.Fprintln(s.Stdout, string(encoded))
		return true, nil
	case OutputYAML:
		encoded, err := yaml.MarshalWithOptions(v, yaml.UseJSONMarshaler())
		if err != nil {
			return true, errors.Wrap(err, "unable to YAML encode the result")
		}
		fmt.Fprint(s.Stdout, string(encoded))
		return true, nil
	default:
		return false, nil
	}
}

// writeTable prints an aligned table. Cells are truncated so a row fits the terminal.
func (s Service) writeTable(header []string, rows [][]string) error {
	limit := s.cellLimit(len(header))

	tw := tabwriter.NewWriter(s.Stdout, 0, 0, columnPadding, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = truncate(cell, limit)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	return errors.Wrap(tw.Flush(), "unable to write table")
}

func (s Service) cellLimit(columns int) int {
	if s.TerminalWidth == nil || columns == 0 {
		return 0
	}

	width, err := s.TerminalWidth()
	if err != nil || width <= 0 {
		return 0
	}

	return max(minCellWidth, width/columns-columnPadding)
}

func truncate(value string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(value) <= limit {
		return value
	}

	runes := []rune(value)
	return string(runes[:limit-1]) + "…"
}

// spin shows a spinner on interactive terminals until the returned func is called.
func (s Service) spin(message string) func() {
	if !s.Interactive {
		return func() {}
	}

	indicator := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(s.Stderr))
	indicator.Suffix = " " + message
	indicator.Start()

	return indicator.Stop
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
