package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/algotrace/pkg/observability/prom"
	"github.com/matzehuels/algotrace/pkg/server"
)

// serveCommand creates the serve command, which starts the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve traces over HTTP",
		Long: `Start the HTTP API. Documents are kept in the configured archive
(memory, file or mongo) and runs are cached in the configured cache
(none, file or redis). Prometheus metrics are served at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			runner, err := c.newRunner(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			store, err := newArchive(ctx, cfg.Archive)
			if err != nil {
				return err
			}
			defer store.Close()

			prom.Register(prometheus.DefaultRegisterer).Install()

			logger.Info("starting server",
				"addr", cfg.Server.Addr,
				"cache", cfg.Cache.Backend,
				"archive", cfg.Archive.Backend)

			srv := server.New(server.Config{Addr: cfg.Server.Addr}, runner, store, logger)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}
