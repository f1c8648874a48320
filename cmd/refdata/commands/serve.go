package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/openfroyo/refdata/pkg/config"
	"github.com/openfroyo/refdata/pkg/telemetry"
)

func newServeCommand() *cobra.Command {
	var (
		listen string
		watch  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Publish snapshots and reload them when seeds change",
		Long: `Serve publishes the initial snapshot, watches the seed files and republishes
whenever they change. A reload that fails or is rejected by policy keeps the
previous snapshot. Prometheus metrics are exposed while serving.

Blocks until interrupted.`,
		Example: `  refdata serve -c refdata.yaml
  refdata serve --seed ./seed --listen :9100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			a, err := newApp(ctx, func(cfg *config.Config) {
				if cmd.Flags().Changed("watch") {
					cfg.Watch.Enabled = watch
				}
				if listen != "" {
					cfg.Telemetry.Metrics.ListenAddress = listen
				}
			})
			if err != nil {
				return err
			}
			defer a.Close()

			logger := a.tel.Logger.NewComponentLogger("serve")
			a.tel.Events.Subscribe(func(e telemetry.Event) {
				logger.WithFields(map[string]interface{}{
					"event":    e.Type,
					"revision": e.Revision,
					"level":    e.Level,
				}).Info(e.Message)
			}, telemetry.FilterByType(
				telemetry.EventTypeSnapshotPublished,
				telemetry.EventTypeReloadRejected,
				telemetry.EventTypeReloadFailed,
			))

			errc := make(chan error, 1)
			addr, err := a.tel.StartMetricsServer(ctx, errc)
			if err != nil {
				return err
			}
			if addr != nil {
				logger.WithField("address", addr.String()).Info("Serving metrics")
			}

			go func() {
				select {
				case err := <-errc:
					if err != nil {
						logger.WithError(err).Error("Metrics server stopped")
						cancel()
					}
				case <-ctx.Done():
				}
			}()

			logger.WithFields(map[string]interface{}{
				"seeds": a.cfg.Seeds,
				"watch": a.cfg.Watch.Enabled,
			}).Info("Starting refdata")

			if err := a.loader.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			logger.Info("Shutting down")
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "metrics listen address (overrides config)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload when seed files change (overrides config)")

	return cmd
}
