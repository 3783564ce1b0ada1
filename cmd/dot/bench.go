package main

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Pilves/dot/pkg/dom"
	"github.com/Pilves/dot/pkg/reactive"
	"github.com/Pilves/dot/pkg/reconcile"
)

func benchCmd() *cobra.Command {
	var (
		items   int
		updates int
		seed    int64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Exercise the keyed reconciler under random reorders",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			rt := reactive.NewRuntime(reactive.WithLogger(logger))
			doc := dom.NewDocument()

			rows := reactive.NewCell(rt, sequence(items))
			list := reconcile.New(rt, doc.Root(),
				reconcile.Func(func() []int { return rows.Get() }),
				func(v int) string { return strconv.Itoa(v) },
				func(v int, _ int) *dom.Node { return dom.NewText(strconv.Itoa(v)) },
			)
			defer list.Destroy()

			rng := rand.New(rand.NewSource(seed))
			start := time.Now()
			for i := 0; i < updates; i++ {
				perm := rng.Perm(items)
				next := make([]int, items)
				for j, p := range perm {
					next[j] = p
				}
				rows.Set(next)
			}
			elapsed := time.Since(start)

			stats := list.Stats()
			fmt.Printf("items=%d updates=%d elapsed=%s (%s/update)\n",
				items, updates, elapsed, elapsed/time.Duration(updates))
			fmt.Printf("creates=%d removes=%d moves=%d effect_runs=%d\n",
				stats.Creates, stats.Removes, stats.Moves, rt.Stats().EffectRuns)
			return nil
		},
	}

	cmd.Flags().IntVar(&items, "items", 1000, "number of list items")
	cmd.Flags().IntVar(&updates, "updates", 100, "number of shuffled updates")
	cmd.Flags().Int64Var(&seed, "seed", 1, "shuffle seed")
	return cmd
}

func sequence(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
