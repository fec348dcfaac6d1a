package main

import (
	"context"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/awx-monitor/tui/internal/app"
	"github.com/awx-monitor/tui/internal/awx"
	"github.com/awx-monitor/tui/internal/config"
	"github.com/awx-monitor/tui/internal/logging"
	"github.com/awx-monitor/tui/internal/mock"
	"github.com/awx-monitor/tui/internal/session"
	"github.com/awx-monitor/tui/internal/store"
)

const mockAdvanceEvery = 3 * time.Second

func runMonitor(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	closer, err := logging.Setup(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closer.Close()
	log.Info().
		Str("state", cfg.StateFile).
		Dur("interval", cfg.Poll.Interval).
		Str("dotenv", config.LoadedEnvPath()).
		Msg("awx-monitor: starting")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	defaults := session.Profile{URL: cfg.AWX.URL, Username: cfg.AWX.Username}

	var st store.Store
	var srv *mock.Server
	if flagMock {
		// mock runs never touch the real state file
		st = store.NewMemory()
		srv = mock.NewServer(defaults.Username, flagMockPassword)
		srv.Start(ctx, mockAdvanceEvery)
		url, err := srv.Listen(ctx, "")
		if err != nil {
			return err
		}
		defaults.URL = url
	} else {
		fs, err := store.Open(cfg.StateFile)
		if err != nil {
			return err
		}
		st = fs
	}

	sess := session.New(st, defaults,
		awx.WithHTTPClient(&http.Client{Timeout: cfg.HTTP.Timeout}))

	m := app.New(sess, app.Options{
		Interval:    cfg.Poll.Interval,
		AutoRefresh: cfg.Poll.AutoRefresh,
		Mock:        srv,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "run program")
	}
	log.Info().Msg("awx-monitor: exited")
	return nil
}

// loadConfig reads the config file and applies command-line overrides. An
// explicit --config must exist; the default location may be missing.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flagConfig != "" {
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return nil, errors.Wrapf(err, "load config %s", flagConfig)
		}
	} else {
		cfg, err = config.LoadOrDefault(config.DefaultPath())
		if err != nil {
			return nil, errors.Wrap(err, "load default config")
		}
	}

	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.AWX.URL = flagURL
	}
	if flags.Changed("username") {
		cfg.AWX.Username = flagUsername
	}
	if flags.Changed("state") {
		cfg.StateFile = flagState
	}
	if flags.Changed("log-file") {
		cfg.Log.File = flagLogFile
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = flagLogLevel
	}
	if flagNoAutoRefresh {
		cfg.Poll.AutoRefresh = false
	}
	return cfg, nil
}
