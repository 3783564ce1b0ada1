// Package metrics exposes runtime and reconciler counters as Prometheus
// metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Pilves/dot/pkg/reactive"
	"github.com/Pilves/dot/pkg/reconcile"
)

// Config configures the collector.
type Config struct {
	// Namespace is the metrics namespace (default: "dot").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to register with.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// Option configures the collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "dot",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// RegionStats is a named source of reconciler churn counters. Both
// KeyedList.Stats and VirtualWindow.Stats satisfy the Stats field.
type RegionStats struct {
	Name  string
	Stats func() reconcile.ListStats
}

// Collector reads runtime and region counters on every scrape. The backing
// counters are atomic, so scraping from the promhttp handler goroutine is
// safe while the runtime's goroutine is mid-cascade.
type Collector struct {
	rt      *reactive.Runtime
	regions []RegionStats

	cells   *prometheus.Desc
	effects *prometheus.Desc
	writes  *prometheus.Desc
	runs    *prometheus.Desc
	skipped *prometheus.Desc

	regionCreates *prometheus.Desc
	regionRemoves *prometheus.Desc
	regionMoves   *prometheus.Desc
}

// Register builds a collector for the runtime and registers it.
func Register(rt *reactive.Runtime, regions []RegionStats, opts ...Option) (*Collector, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(cfg.Namespace, "", name),
			help, labels, cfg.ConstLabels,
		)
	}

	c := &Collector{
		rt:      rt,
		regions: regions,

		cells:   desc("cells_created_total", "Reactive cells created."),
		effects: desc("effects_created_total", "Effects created."),
		writes:  desc("cell_writes_total", "Cell writes that changed a value."),
		runs:    desc("effect_runs_total", "Effect executions, initial runs included."),
		skipped: desc("notifications_skipped_total", "Notifications dropped by the re-entrancy guard."),

		regionCreates: desc("region_nodes_created_total", "Nodes rendered by a reconciled region.", "region"),
		regionRemoves: desc("region_nodes_removed_total", "Nodes detached by a reconciled region.", "region"),
		regionMoves:   desc("region_nodes_moved_total", "Node relocations by a reconciled region.", "region"),
	}

	if err := cfg.Registry.Register(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.cells
	ch <- c.effects
	ch <- c.writes
	ch <- c.runs
	ch <- c.skipped
	ch <- c.regionCreates
	ch <- c.regionRemoves
	ch <- c.regionMoves
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.rt.Stats()
	counter := func(d *prometheus.Desc, v uint64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), labels...)
	}

	counter(c.cells, stats.CellsCreated)
	counter(c.effects, stats.EffectsCreated)
	counter(c.writes, stats.Writes)
	counter(c.runs, stats.EffectRuns)
	counter(c.skipped, stats.SkippedNotifications)

	for _, region := range c.regions {
		s := region.Stats()
		counter(c.regionCreates, s.Creates, region.Name)
		counter(c.regionRemoves, s.Removes, region.Name)
		counter(c.regionMoves, s.Moves, region.Name)
	}
}
