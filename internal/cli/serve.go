package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/numberline/internal/server"
	"github.com/matzehuels/numberline/pkg/observability/promhooks"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	layoutFlags
	addr      string
	noCache   bool
	noMetrics bool
}

// serveCommand creates the serve command for running the HTTP surface.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [dataset]",
		Short: "Serve layouts and renders over HTTP",
		Long: `Serve layouts and renders over HTTP.

Items are read from --store, or from a dataset file loaded into memory. The
server exposes item editing under /items, the scale under /scale, layouts at
/layout, renders at /render.svg (png, pdf, json) and Prometheus metrics at
/metrics.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), cmd.OutOrStdout(), args, &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, "+server.DefaultAddr+")")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "do not expose /metrics")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, w io.Writer, args []string, so *serveOpts) error {
	repo, err := c.openRepo(ctx, args, so.store)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, repo, so.noCache)
	if err != nil {
		repo.Close()
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	defaults := c.baseOptions()
	so.apply(&defaults)

	srvOpts := []server.Option{
		server.WithLogger(c.Logger),
		server.WithDefaults(defaults),
	}
	if !so.noMetrics {
		m := promhooks.New(prometheus.NewRegistry())
		m.Register()
		srvOpts = append(srvOpts, server.WithMetrics(m.Handler()))
	}

	srv, err := server.New(runner, srvOpts...)
	if err != nil {
		return err
	}

	addr := so.addr
	if addr == "" {
		addr = c.Config.Server.Addr
	}
	printSuccess(w, "Serving on %s", StyleHighlight.Render(addr))
	source := so.store
	if len(args) > 0 {
		source = args[0]
	} else if source == "" {
		source = c.Config.Store.DSN
	}
	printKeyValue(w, "items", redactDSN(source))
	printKeyValue(w, "scale", fmt.Sprintf("×%d", srv.Multiplier()))
	if !so.noMetrics {
		printKeyValue(w, "metrics", "/metrics")
	}
	c.Logger.Debug("serving", "addr", addr, "strategy", defaults.Strategy)
	return srv.ListenAndServe(ctx, addr)
}
