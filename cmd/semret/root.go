package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"semret/internal/api"
	"semret/internal/config"
	"semret/internal/logging"
	"semret/internal/tui"
)

// app holds state shared by every subcommand once flags are parsed.
type app struct {
	cfgPath string
	baseURL string
	timeout time.Duration
	verbose bool

	cfg            *config.AppConfig
	cfgSource      string
	requestTimeout time.Duration
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "semret",
		Short: "Terminal client for a hybrid vector + knowledge-graph retrieval service",
		Long: `semret searches and feeds a hybrid retrieval backend.

Without a subcommand it opens the interactive client with a Search and an
Ingest view. The subcommands run one request and exit.

Example usage:
  semret                                  # interactive client
  semret search how do agents plan        # one-shot search
  semret ingest --title "Agents" --file notes.txt`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd)
		},
		RunE: a.runTUI,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "config file (default ./semret.yaml, then ~/.config/semret/config.yaml)")
	pf.StringVar(&a.baseURL, "base-url", "", "backend base URL (overrides config)")
	pf.DurationVar(&a.timeout, "timeout", 0, "per-request timeout (overrides config)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newSearchCmd(a), newIngestCmd(a), newConfigCmd(a), newVersionCmd())
	return root
}

func (a *app) loadConfig(cmd *cobra.Command) error {
	var err error
	if a.cfgPath == "" {
		a.cfg, a.cfgSource, err = config.LoadDefault()
	} else {
		a.cfg, err = config.Load(a.cfgPath)
		a.cfgSource = a.cfgPath
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("base-url") {
		a.cfg.Backend.BaseURL = a.baseURL
	}
	a.requestTimeout = a.cfg.Timeout()
	if cmd.Flags().Changed("timeout") {
		a.requestTimeout = a.timeout
		a.cfg.Backend.TimeoutSecs = int(a.timeout / time.Second)
	}
	if a.requestTimeout < 0 {
		return errors.New("--timeout must not be negative")
	}
	if a.verbose {
		a.cfg.Log.Level = "debug"
	}
	return a.cfg.Validate()
}

// logger builds the slog logger; fallback receives output when no log file is configured.
func (a *app) logger(fallback io.Writer) (*slog.Logger, func() error, error) {
	return logging.New(a.cfg.Log, fallback)
}

func (a *app) client(logger *slog.Logger) *api.Client {
	return api.New(api.Config{
		BaseURL:   a.cfg.Backend.BaseURL,
		Timeout:   a.requestTimeout,
		UserAgent: "semret/" + version,
	}, logger)
}

func (a *app) runTUI(cmd *cobra.Command, args []string) error {
	// the terminal belongs to the TUI, so logs go to the configured file or nowhere
	logger, closeLog, err := a.logger(nil)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	logger.Info("starting interactive client", "base_url", a.cfg.Backend.BaseURL, "config", a.cfgSource)
	m := tui.New(ctx, a.client(logger), tui.Options{
		BaseURL:        a.cfg.Backend.BaseURL,
		SuccessDismiss: a.cfg.SuccessDismiss(),
		ResultsDismiss: a.cfg.ResultsDismiss(),
		Logger:         logger,
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
