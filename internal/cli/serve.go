package cli

import (
	"github.com/spf13/cobra"

	"github.com/SheepTester-forks/curricular-analytics-graph/internal/server"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/cache"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes analyze, schedule and render over HTTP. Plans are posted as
the request body; query parameters override the config file. Rendered
artifacts are cached in memory by input and options.

Endpoints:
  POST /api/v1/analyze
  POST /api/v1/schedule
  POST /api/v1/render
  GET  /healthz
  GET  /metrics`,
		Example: `  curricula serve --addr :9000
  curl --data-binary @plan.csv 'localhost:9000/api/v1/render?select=12' > plan.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.config.Server.Addr
			}

			runner := c.newRunner(cache.NewMemoryCache(c.config.Server.CacheItems))
			defer runner.Close()

			server.RegisterHooks()
			srv := server.New(runner, c.Logger, c.config.Options())
			c.Logger.Info("listening", "addr", addr, "cache_items", c.config.Server.CacheItems)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
