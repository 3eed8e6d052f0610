package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshuapare/flalloc/cmd/flctl/logger"
	"github.com/joshuapare/flalloc/internal/region"
	"github.com/joshuapare/flalloc/metrics"
	"github.com/joshuapare/flalloc/pool"
)

// session bundles the backing region, the pool over it and the metrics
// registry observing the pool.
type session struct {
	region   *region.Region
	pool     *pool.Synced
	registry *prometheus.Registry
}

func newSession(c Config) (*session, error) {
	r, err := region.New(region.Kind(c.Backing), c.ArenaSize)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate address space: %w", err)
	}
	p := pool.New(r.Bytes(), &pool.Options{
		Logger:   logger.L.With("component", "pool"),
		Scribble: c.Scribble,
	})
	s := &session{
		region:   r,
		pool:     pool.NewSynced(p),
		registry: prometheus.NewRegistry(),
	}
	if err := s.registry.Register(metrics.NewCollector("flalloc", s.pool, nil)); err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	logger.Info("address space ready", "backing", r.Kind(), "size", r.Len())
	return s, nil
}

// registerAll hands the whole address space to the pool as one arena.
func (s *session) registerAll() error {
	return s.pool.RegisterArena(0, uint64(s.region.Len()))
}

// report prints statistics and, when requested, metrics.
func (s *session) report() error {
	if !jsonOut {
		printStats(s.pool.Stats())
	}
	if showMetrics {
		return printMetrics(s.registry)
	}
	return nil
}

func (s *session) Close() error {
	return s.region.Close()
}
