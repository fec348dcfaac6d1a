package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/awx-monitor/tui/internal/config"
	"github.com/awx-monitor/tui/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "awx-monitor",
	Short: "Terminal dashboard for AWX jobs",
	Long: `awx-monitor connects to an AWX controller with HTTP Basic credentials and
shows the most recent jobs, refreshing every few seconds while connected.
The controller URL and username are remembered between runs; the password
is only held in memory.`,
	SilenceUsage: true,
	RunE:         runMonitor,
}

var (
	flagConfig        string
	flagURL           string
	flagUsername      string
	flagState         string
	flagLogFile       string
	flagLogLevel      string
	flagMock          bool
	flagMockPassword  string
	flagNoAutoRefresh bool
)

func init() {
	logging.Console()

	f := rootCmd.PersistentFlags()
	f.StringVar(&flagConfig, "config", "", "Config file (default "+config.DefaultPath()+")")
	f.StringVar(&flagLogLevel, "log-level", "", "Log level overriding AWX_MONITOR_LOG_LEVEL")

	rf := rootCmd.Flags()
	rf.StringVar(&flagURL, "url", "", "Controller URL prefilled when nothing is stored (overrides AWX_URL)")
	rf.StringVar(&flagUsername, "username", "", "Username prefilled when nothing is stored (overrides AWX_USERNAME)")
	rf.StringVar(&flagState, "state", "", "State file holding the remembered URL and username")
	rf.StringVar(&flagLogFile, "log-file", "", "Log file; the terminal belongs to the UI")
	rf.BoolVar(&flagMock, "mock", false, "Run against an in-process fake AWX")
	rf.StringVar(&flagMockPassword, "mock-password", "password", "Password the fake AWX accepts")
	rf.BoolVar(&flagNoAutoRefresh, "no-auto-refresh", false, "Start with auto-refresh off")

	rootCmd.AddCommand(newMockCmd())
	_ = config.EnsureEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("awx-monitor failed")
	}
}
