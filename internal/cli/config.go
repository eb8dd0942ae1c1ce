package cli

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rwx-research/lms-cli/internal/errors"
	"github.com/rwx-research/lms-cli/internal/sessionstore"
)

type Config struct {
	APIClient      APIClient
	FileSystem     FileSystem
	SessionBackend sessionstore.Backend
	// Cookies is the jar the API client sends to the app, used to pick up and install sessions.
	Cookies    http.CookieJar
	AppOrigin  string
	CookieName string

	Stdout io.Writer
	Stderr io.Writer
	// Interactive enables progress spinners.
	Interactive bool
	// TerminalWidth limits text tables. Nil or a failing func means no limit.
	TerminalWidth func() (int, error)
}

func (c Config) Validate() error {
	if c.APIClient == nil {
		return errors.New("missing API client")
	}

	if c.FileSystem == nil {
		return errors.New("missing file-system interface")
	}

	if c.SessionBackend == nil {
		return errors.New("missing session backend")
	}

	if c.Cookies == nil {
		return errors.New("missing cookie jar")
	}

	if _, err := url.Parse(c.AppOrigin); err != nil || c.AppOrigin == "" {
		return errors.Errorf("invalid app origin %q", c.AppOrigin)
	}

	if c.Stdout == nil || c.Stderr == nil {
		return errors.New("missing output writers")
	}

	return nil
}

type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

func ParseOutputFormat(json, yaml bool) (OutputFormat, error) {
	switch {
	case json && yaml:
		return "", errors.New("--json and --yaml cannot be combined")
	case json:
		return OutputJSON, nil
	case yaml:
		return OutputYAML, nil
	default:
		return OutputText, nil
	}
}

type LoginConfig struct {
	Email    string
	Password string
}

func (c LoginConfig) Validate() error {
	if c.Email == "" {
		return errors.New("missing email")
	}

	if c.Password == "" {
		return errors.New("missing password")
	}

	return nil
}

type LoginWithBrowserConfig struct {
	OpenURL func(string) error
	// PromptSession asks the user for the session cookie copied from the browser.
	PromptSession func() (string, error)
}

func (c LoginWithBrowserConfig) Validate() error {
	if c.OpenURL == nil {
		return errors.New("missing URL opener")
	}

	if c.PromptSession == nil {
		return errors.New("missing session prompt")
	}

	return nil
}

type WhoamiConfig struct {
	Output OutputFormat
}

var requestMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}

type RequestConfig struct {
	Method string
	Path   string
	Data   string
	Query  url.Values
	Output OutputFormat
}

func (c RequestConfig) Validate() error {
	method := strings.ToUpper(c.Method)

	valid := false
	for _, m := range requestMethods {
		if m == method {
			valid = true
		}
	}
	if !valid {
		return errors.Errorf("unsupported method %q", c.Method)
	}

	if !strings.HasPrefix(c.Path, "/") {
		return errors.Errorf("path %q must start with /", c.Path)
	}

	if c.Data != "" && (method == "GET" || method == "DELETE") {
		return errors.Errorf("--data cannot be sent with %s", method)
	}

	return nil
}

type ListCoursesConfig struct {
	Limit  int
	Search string
	Output OutputFormat
}

type GetCourseConfig struct {
	CourseID string
	Output   OutputFormat
}

type CourseOutlineConfig struct {
	CourseID string
	Output   OutputFormat
}

type ListAssignmentsConfig struct {
	ModuleID string
	Limit    int
	Output   OutputFormat
}

type SubmitAssignmentConfig struct {
	AssignmentID string
	Comment      string
	Files        []string
	Output       OutputFormat
}

func (c SubmitAssignmentConfig) Validate() error {
	if c.AssignmentID == "" {
		return errors.New("missing assignment ID")
	}

	if c.Comment == "" && len(c.Files) == 0 {
		return errors.New("provide a --comment or at least one --file")
	}

	return nil
}

type ListGradesConfig struct {
	CourseID string
	Output   OutputFormat
}

type ListCertificatesConfig struct {
	CourseID string
	Output   OutputFormat
}

type IssueCertificateConfig struct {
	CourseID string
	UserID   string
	Output   OutputFormat
}
