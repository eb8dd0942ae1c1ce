package messages

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rwx-research/lms-cli/internal/errors"
)

// FormatUserMessage builds the text shown for a failed command: the message, one line per
// field detail in key order, then advice.
func FormatUserMessage(message string, details map[string]any, advice string) string {
	var builder strings.Builder

	if message != "" {
		builder.WriteString(message)
	}

	if len(details) > 0 {
		fields := make([]string, 0, len(details))
		for field := range details {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		for _, field := range fields {
			builder.WriteString("\n")
			builder.WriteString(fmt.Sprintf("  %s: %v", field, details[field]))
		}
	}

	if advice != "" {
		builder.WriteString("\n")
		builder.WriteString(advice)
	}

	return builder.String()
}

// ForError renders err for the terminal. Debug output carries the stack trace.
func ForError(err error, debug bool) string {
	message := err.Error()
	if debug {
		message = fmt.Sprintf("%+v", err)
	}

	var details map[string]any
	var httpErr *errors.HTTPError
	if errors.As(err, &httpErr) {
		details = httpErr.Details
	}

	advice := ""
	switch {
	case errors.Is(err, errors.ErrSessionExpired):
		advice = "Run `lms login` to sign in again."
	case errors.Is(err, errors.ErrUnauthorized):
		advice = "You may need to run `lms login` first."
	case errors.Is(err, errors.ErrForbidden):
		advice = "Your account is not allowed to do this."
	}

	return FormatUserMessage(message, details, advice)
}
