package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treemap/internal/server"
	"github.com/matzehuels/treemap/pkg/cache"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		redisURL string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout and render API over HTTP",
		Long: `Serve the layout and render API over HTTP.

Endpoints:
  POST /v1/layout           tree document in, layout document out
  POST /v1/render/{format}  tree document in, svg/png/dot/json out

Layouts and artifacts are cached in the local cache directory, or in
Redis when --redis (or cache.redis_url in the config file) is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.cfg.Server.Addr
			}
			if redisURL != "" {
				c.cfg.Cache.RedisURL = redisURL
			}

			runner, err := c.newRunner(noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			if rc, ok := runner.Cache.(*cache.RedisCache); ok {
				if err := rc.Ping(cmd.Context()); err != nil {
					return err
				}
			}

			srv := server.New(runner,
				server.WithLogger(c.Logger),
				server.WithMaxBodyBytes(c.cfg.Server.MaxBodyBytes),
			)
			if noCache {
				printWarning("Caching disabled")
			}
			printInfo("Serving on %s", StyleHighlight.Render(addr))
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisURL, "redis", "", "redis URL for the shared cache (e.g. redis://localhost:6379/0)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
