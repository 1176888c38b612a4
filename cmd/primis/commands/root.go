package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"primis/internal/api"
	"primis/internal/app"
	"primis/internal/services/session"
)

var errNotLoggedIn = fmt.Errorf("%w; run `primis login` first", session.ErrNotAuthenticated)

// A rejected login answers 401, and so does logging out with a dead token.
// Neither is worth an expiry hint.
var quietPaths = map[string]bool{
	api.Prefix + "/auth/login":  true,
	api.Prefix + "/auth/logout": true,
}

// cli carries what the root command built for its subcommands.
type cli struct {
	v       *viper.Viper
	envFile string
	wire    *app.Wire
}

// Execute runs the CLI. The wire is closed even when a command fails, since
// cobra skips post-run hooks on error.
func Execute() error {
	root, c := newRootCmd()
	defer func() { _ = c.close() }()
	return root.Execute()
}

// NewRootCmd builds the command tree. Dependencies are wired in
// PersistentPreRunE, after flags are parsed.
func NewRootCmd() *cobra.Command {
	root, _ := newRootCmd()
	return root
}

func newRootCmd() (*cobra.Command, *cli) {
	c := &cli{v: app.NewViper()}

	root := &cobra.Command{
		Use:           "primis",
		Short:         "Command-line client for the Primis school platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.LoadDotEnv(c.envFile); err != nil {
				return err
			}
			cfg, err := app.LoadConfig(c.v)
			if err != nil {
				return err
			}
			log := app.NewLogger(cfg.Log, cmd.ErrOrStderr())
			w, err := app.NewWire(cfg, log)
			if err != nil {
				return err
			}
			w.API.OnSessionInvalidated(func(ev api.Invalidation) {
				if quietPaths[ev.Path] {
					return
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Session expired (%s %s answered %d). Run `primis login` to sign in again.\n",
					ev.Method, ev.Path, ev.Status)
			})
			c.wire = w
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.envFile, "env-file", ".env", "dotenv file to load before reading PRIMIS_* variables")
	pf.String("api-url", "", "backend base URL (default http://localhost:8000)")
	pf.String("home", "", "config dir (default ~/.primis)")
	pf.String("storage", "", "session storage: file, redis or memory")
	pf.StringP("passphrase", "p", "", "passphrase to seal the stored session")
	pf.Duration("timeout", 0, "HTTP timeout per request")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-format", "", "log format: text or json")
	for key, flag := range map[string]string{
		"api_url":    "api-url",
		"home":       "home",
		"storage":    "storage",
		"passphrase": "passphrase",
		"timeout":    "timeout",
		"log.level":  "log-level",
		"log.format": "log-format",
	} {
		_ = c.v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(
		loginCmd(c),
		logoutCmd(c),
		registerCmd(c),
		whoamiCmd(c),
		passwordCmd(c),
		coursesCmd(c),
		attendanceCmd(c),
		paymentsCmd(c),
		notificationsCmd(c),
		adminCmd(c),
		requestCmd(c),
	)
	return root, c
}

func (c *cli) close() error {
	if c.wire == nil {
		return nil
	}
	w := c.wire
	c.wire = nil
	return w.Close()
}

// requireLogin fails fast when there is no usable session. A token whose
// exp claim has passed is dropped here rather than sent to the backend.
func (c *cli) requireLogin() error {
	err := c.session().EnsureActive(time.Now())
	switch {
	case errors.Is(err, session.ErrSessionExpired):
		return fmt.Errorf("%w (session expired)", errNotLoggedIn)
	case errors.Is(err, session.ErrNotAuthenticated):
		return errNotLoggedIn
	}
	return err
}

func (c *cli) session() *session.Store { return c.wire.Session }
