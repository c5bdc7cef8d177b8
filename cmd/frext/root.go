package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aki307/frext/auth"
	"github.com/aki307/frext/client"
	"github.com/aki307/frext/config"
	"github.com/aki307/frext/pkg/logger"
	"github.com/aki307/frext/storage"
	"github.com/spf13/cobra"
)

var errNotLoggedIn = errors.New("not logged in; run `frext login` first")

// app holds what every subcommand needs once the root command has run.
type app struct {
	configPath string
	apiURL     string
	logLevel   string

	cfg     *config.Config
	logger  *slog.Logger
	local   storage.Store
	session storage.Store
	client  *client.Client
	auth    *auth.Service
	out     io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "frext",
		Short:         "OCR and AI summarization for documents",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "frext.yaml", "path to the YAML config file")
	flags.StringVar(&a.apiURL, "api-url", "", "backend base URL (overrides config and "+config.EnvAPIURL+")")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newUploadCmd(a),
		newResultCmd(a),
		newTemplatesCmd(a),
		newHistoryCmd(a),
		newLoginCmd(a),
		newSignupCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newHealthCmd(a),
		newStatsCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := config.LoadEnv(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.LoadOrDefault(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.apiURL != "" {
		cfg.API.BaseURL = strings.TrimRight(a.apiURL, "/")
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg

	a.logger = logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	a.out = cmd.OutOrStdout()

	a.local, a.session, err = storage.Open(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	a.client = client.NewFromConfig(cfg, a.logger)
	a.client.SetHeader("User-Agent", "frext-cli/"+version)
	a.auth = auth.New(a.client, a.local, a.logger)

	a.logger.Debug("cli.ready", "api", cfg.API.BaseURL+cfg.API.Prefix, "storage", cfg.Storage.Driver)
	return nil
}

// requireAuth restores the persisted session or fails.
func (a *app) requireAuth(cmd *cobra.Command) error {
	if a.auth.AutoLogin(cmd.Context()) {
		return nil
	}
	return errNotLoggedIn
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// envelope is the part of model.APIResponse a failed command reports.
type envelope interface {
	Cause() error
}

// apiError shows the server's (or client's localized) message and keeps
// the typed cause for errors.Is.
type apiError struct {
	op    string
	msg   string
	cause error
}

func (e *apiError) Error() string { return e.op + ": " + e.msg }
func (e *apiError) Unwrap() error { return e.cause }

func failed(op, msg string, resp envelope) error {
	cause := resp.Cause()
	if cause == nil {
		cause = errors.New(client.MsgInvalidResponse)
	}
	if msg == "" {
		msg = cause.Error()
	}
	return &apiError{op: op, msg: msg, cause: cause}
}
