package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dkoval/pricewatch/internal/api"
	"github.com/dkoval/pricewatch/internal/config"
	"github.com/dkoval/pricewatch/internal/scheduler"
)

// newServeCmd creates the 'serve' subcommand: the background scheduler plus
// the HTTP trigger/metrics server.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Runs the periodic scan scheduler and the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Hot-reloadable scheduling config: the scheduler reads the
			// parsing block from viper on every cycle, and WatchConfig
			// keeps viper in sync with file edits.
			v := resolveViper(ctx)
			var source config.Source = config.StaticSource{Config: appInstance.Config.Parsing}
			if v != nil {
				v.WatchConfig()
				source = config.NewViperSource(v)
			}

			sched := scheduler.New(source, appInstance.Scanner, appInstance.Logger)
			go sched.Run(ctx)

			addr := fmt.Sprintf(":%d", appInstance.Config.Server.Port)
			appInstance.Logger.Info("http server listening", zap.String("addr", addr))

			server := api.NewServer(appInstance.Scanner, appInstance.Logger)
			if err := server.ListenAndServe(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		},
	}
}
