package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/Pilves/dot/pkg/devserver"
	"github.com/Pilves/dot/pkg/dom"
	"github.com/Pilves/dot/pkg/metrics"
	"github.com/Pilves/dot/pkg/reactive"
	"github.com/Pilves/dot/pkg/reconcile"
	"github.com/Pilves/dot/pkg/window"
)

func demoCmd() *cobra.Command {
	var (
		addr  string
		items int
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Serve a live windowed list with a patch stream and metrics",
		Long: `Runs a virtual window over a synthetic list and serves it:

  /tree    - JSON snapshot of the display tree
  /ws      - websocket patch stream mirroring the tree
  /metrics - Prometheus metrics for the reactive runtime

The window auto-scrolls so connected clients see a steady patch stream.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
			rt := reactive.NewRuntime(reactive.WithLogger(logger))
			doc := dom.NewDocument()

			rows := reactive.NewCell(rt, sequence(items))
			w, err := window.New(rt, doc.Root(), window.Options[int]{
				Items:        reconcile.Func(func() []int { return rows.Get() }),
				ItemSize:     24,
				ViewportSize: 480,
				Buffer:       4,
				RenderItem: func(v int, i int) *dom.Node {
					node := dom.NewElement("row")
					node.AppendChild(dom.NewText(fmt.Sprintf("item %d", v)))
					return node
				},
			})
			if err != nil {
				return err
			}
			defer w.Destroy()

			registry := prometheus.NewRegistry()
			if _, err := metrics.Register(rt,
				[]metrics.RegionStats{{Name: "demo", Stats: w.Stats}},
				metrics.WithRegistry(registry)); err != nil {
				return err
			}

			srv := devserver.New(doc,
				devserver.WithLogger(logger),
				devserver.WithMetricsHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
			)
			defer srv.Close()

			httpSrv := &http.Server{Addr: addr, Handler: srv.Handler()}
			go func() {
				if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("demo: serve failed", "error", err)
				}
			}()
			logger.Info("demo listening", "addr", addr, "items", items)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			// Drive scrolling from this goroutine; it owns the runtime.
			tick := time.NewTicker(250 * time.Millisecond)
			defer tick.Stop()
			index := 0
			for {
				select {
				case <-ctx.Done():
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					return httpSrv.Shutdown(shutdownCtx)
				case <-tick.C:
					index = (index + 1) % items
					w.ScrollToIndex(index)
				}
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8420", "listen address")
	cmd.Flags().IntVar(&items, "items", 10000, "number of list items")
	return cmd
}
