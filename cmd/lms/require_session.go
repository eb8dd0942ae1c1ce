package main

import (
	"github.com/rwx-research/lms-cli/internal/errors"
	"github.com/rwx-research/lms-cli/internal/fs"
	"github.com/rwx-research/lms-cli/internal/sessionstore"
)

func requireSession() error {
	backend, err := sessionstore.NewFileBackend(settings.SessionDir, fs.Local{})
	if err == nil {
		if session, err := sessionstore.Get(backend, Session); err == nil && session != "" {
			return nil
		}
	}

	return errors.New(
		"You're trying to use a command which requires you to be signed in, " +
			"but there is no session on this device.\n\n" +
			"To use this command, sign in via the `lms login` command, or " +
			"supply the `--session` option or `LMS_SESSION` environment variable.\n\n" +
			"Once you do so, go ahead and run the command again.",
	)
}
