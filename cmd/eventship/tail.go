package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bft-labs/eventship/pkg/eventship"
	"github.com/bft-labs/eventship/plugins/promstats"
	"github.com/bft-labs/eventship/plugins/spooltail"
)

// defaultTailFlushInterval applies when no flush interval is configured.
const defaultTailFlushInterval = 10 * time.Second

func newTailCommand(c *cli) *cobra.Command {
	tc := spooltail.DefaultConfig()
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Deliver envelopes appended to an NDJSON spool file until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(cmd); err != nil {
				return err
			}
			if c.cfg.FlushInterval <= 0 {
				c.cfg.FlushInterval = defaultTailFlushInterval
			}
			if tc.ChunkLines > c.cfg.QueueSize {
				tc.ChunkLines = c.cfg.QueueSize
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			client, err := c.newClient(
				spooltail.WithSpoolTail(tc),
				promstats.WithMetrics(reg),
			)
			if err != nil {
				return err
			}
			return c.runTail(ctx, client, reg, metricsAddr)
		},
	}

	cmd.Flags().StringVar(&tc.Path, "spool", "", "NDJSON spool file to tail")
	cmd.Flags().DurationVar(&tc.PollInterval, "poll", tc.PollInterval, "re-read interval without file notifications")
	cmd.Flags().IntVar(&tc.ChunkLines, "chunk-lines", tc.ChunkLines, "lines queued between flushes")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (empty disables)")
	_ = cmd.MarkFlagRequired("spool")
	return cmd
}

func (c *cli) runTail(ctx context.Context, client *eventship.Client, reg *prometheus.Registry, metricsAddr string) error {
	if err := client.Start(ctx); err != nil {
		_ = client.Close()
		return fmt.Errorf("start: %w", err)
	}
	c.log.Info().Str("strategy", client.Strategy()).Dur("flush_interval", c.cfg.FlushInterval).Msg("tailing spool")

	g, gctx := errgroup.WithContext(ctx)

	if metricsAddr != "" {
		srv := &http.Server{
			Addr:              metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			c.log.Info().Str("addr", metricsAddr).Msg("serving metrics")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		c.log.Info().Msg("stopping...")
		return client.Close()
	})

	return g.Wait()
}
