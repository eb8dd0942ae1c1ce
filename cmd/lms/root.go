package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	tsize "github.com/kopoli/go-terminal-size"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rwx-research/lms-cli/cmd/lms/config"
	"github.com/rwx-research/lms-cli/internal/api"
	"github.com/rwx-research/lms-cli/internal/cli"
	lmsconfig "github.com/rwx-research/lms-cli/internal/config"
	"github.com/rwx-research/lms-cli/internal/errors"
	"github.com/rwx-research/lms-cli/internal/fs"
	"github.com/rwx-research/lms-cli/internal/logger"
	"github.com/rwx-research/lms-cli/internal/navigation"
	"github.com/rwx-research/lms-cli/internal/sessionstore"
)

var (
	Debug      bool
	ConfigFile string
	Session    string
	OpenSignIn bool

	settings  lmsconfig.Config
	log       *slog.Logger
	logCloser io.Closer
	service   cli.Service

	rootCmd = &cobra.Command{
		Use:               "lms",
		Short:             "A CLI client for the LMS",
		SilenceErrors:     true,
		SilenceUsage:      true,
		Version:           config.Version,
		PersistentPreRunE: setup,
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&Debug, "debug", false, "enable debug output")
	_ = flags.MarkHidden("debug")

	flags.StringVar(&ConfigFile, "config", "", "path to the config file (default ~/.config/lms/config.yaml)")
	flags.StringVar(&Session, "session", os.Getenv("LMS_SESSION"), "the app session to use instead of the stored one")
	flags.BoolVar(&OpenSignIn, "open-sign-in", false, "open the sign-in page in a browser when the session has expired")
	flags.String("base-url", "", "the LMS backend URL")
	flags.String("app-origin", "", "the LMS app origin serving /api/auth")
	flags.Duration("timeout", 0, "request timeout, e.g. 30s (0 means none)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-format", "", "log format: text or json")
	flags.String("log-file", "", "also write logs to this file")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, apiCmd, coursesCmd, assignmentsCmd, gradesCmd, certificatesCmd, authServerCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	var err error

	settings, err = lmsconfig.Load(ConfigFile, cmd.Flags())
	if err != nil {
		return err
	}

	log, logCloser, err = logger.Setup(logger.Config{
		Level:  logger.ParseLevel(settings.Log.Level),
		Format: settings.Log.Format,
		File:   settings.Log.File,
		Output: os.Stderr,
	})
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	backend, err := sessionstore.NewFileBackend(settings.SessionDir, fs.Local{})
	if err != nil {
		return errors.Wrap(err, "unable to initialize session storage")
	}

	session, err := sessionstore.Get(backend, Session)
	if err != nil {
		return err
	}

	jar, err := sessionstore.CookieJar(settings.AppOrigin, settings.CookieName, session)
	if err != nil {
		return err
	}

	route := CommandRoute(cmd)
	var navigator navigation.Navigator = navigation.Headless{Path: route}
	if OpenSignIn {
		navigator = navigation.NewBrowser(settings.AppOrigin, route)
	}

	client, err := api.NewClient(api.Config{
		BaseURL:      settings.BaseURL,
		AppOrigin:    settings.AppOrigin,
		PublicRoutes: settings.PublicRoutes,
		Navigator:    navigator,
		Logger:       logger.WithCommand(log, cmd.CommandPath()),
		CookieJar:    jar,
		Timeout:      settings.Timeout,
	})
	if err != nil {
		return errors.Wrap(err, "unable to initialize API client")
	}

	service, err = cli.NewService(cli.Config{
		APIClient:      client,
		FileSystem:     fs.Local{},
		SessionBackend: backend,
		Cookies:        jar,
		AppOrigin:      settings.AppOrigin,
		CookieName:     settings.CookieName,
		Stdout:         os.Stdout,
		Stderr:         os.Stderr,
		Interactive:    isTerminal(os.Stdout) && isTerminal(os.Stderr),
		TerminalWidth:  terminalWidth,
	})
	return err
}

// persistSession keeps a session the app rotated during this run for the next invocation.
func persistSession() {
	if service.APIClient == nil {
		return
	}

	if err := service.PersistSession(); err != nil {
		log.Warn("unable to store the refreshed session", slog.String("error", err.Error()))
	}
}

// CommandRoute names the command like an app route, e.g. "/courses/list", so session handling
// can tell public pages from the rest.
func CommandRoute(cmd *cobra.Command) string {
	path := strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name())
	return "/" + strings.Join(strings.Fields(path), "/")
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func terminalWidth() (int, error) {
	if !isTerminal(os.Stdout) {
		return 0, nil
	}

	size, err := tsize.GetSize()
	if err != nil {
		return 0, err
	}

	return size.Width, nil
}

func outputFormat(json, yaml bool) (cli.OutputFormat, error) {
	return cli.ParseOutputFormat(json, yaml)
}

func addOutputFlags(cmd *cobra.Command, json, yaml *bool) {
	cmd.Flags().BoolVar(json, "json", false, "output JSON instead of a textual representation")
	cmd.Flags().BoolVar(yaml, "yaml", false, "output YAML instead of a textual representation")
}
