package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/awx-monitor/tui/internal/mock"
)

func newMockCmd() *cobra.Command {
	var (
		addr     string
		username string
		password string
		advance  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Serve a fake AWX API for demos",
		Long: `mock serves /api/v2/ping/ and /api/v2/jobs/ behind Basic auth, with jobs
moving through pending, running and finished states. POST /_mock/expire makes
the next jobs request answer 401; POST /_mock/advance steps the jobs once.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := mock.NewServer(username, password)
			srv.Start(ctx, advance)
			url, err := srv.Listen(ctx, addr)
			if err != nil {
				return err
			}
			log.Info().Str("url", url).Str("username", username).Msg("mock AWX ready")

			<-ctx.Done()
			log.Info().Msg("mock AWX stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Listen address")
	cmd.Flags().StringVar(&username, "username", "admin", "Accepted username")
	cmd.Flags().StringVar(&password, "password", "password", "Accepted password")
	cmd.Flags().DurationVar(&advance, "advance", mockAdvanceEvery, "Job state advance interval")
	return cmd
}
