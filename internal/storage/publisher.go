package storage

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"salesetl/internal/config"
	"salesetl/internal/logging"
	"salesetl/internal/metrics"
	"salesetl/internal/table"
)

// DefaultBatchSize is used when the configured batch size is not positive.
const DefaultBatchSize = 5000

// Publisher copies finished tables into the configured warehouse. Each call
// opens its own repository so tables can be published independently.
type Publisher struct {
	job  string
	cfg  config.Publish
	open Factory
}

// NewPublisher returns a Publisher for cfg. Backends must be registered
// (see package storage/all) before Publish is called.
func NewPublisher(job string, cfg config.Publish) *Publisher {
	return &Publisher{job: job, cfg: cfg, open: New}
}

// TableName returns the destination table for name, applying the prefix.
func (p *Publisher) TableName(name string) string {
	return strings.TrimSpace(p.cfg.TablePrefix) + name
}

// Publish creates the destination table when configured to, and bulk-loads
// the rows of t in batches.
func (p *Publisher) Publish(ctx context.Context, name string, t *table.Table) error {
	dest := p.TableName(name)
	repo, err := p.open(ctx, Config{Kind: p.cfg.Kind, DSN: p.cfg.DSN, Table: dest, Columns: t.Names()})
	if err != nil {
		return fmt.Errorf("open %s repository: %w", p.cfg.Kind, err)
	}
	defer repo.Close()

	if p.cfg.AutoCreateTable || p.cfg.Truncate {
		spec := TableSpec{Name: dest, Fields: t.Fields(), Truncate: p.cfg.Truncate}
		if err := EnsureTable(ctx, p.cfg.Kind, repo, spec); err != nil {
			return fmt.Errorf("prepare %s: %w", dest, err)
		}
	}

	size := p.cfg.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	var batches atomic.Int64
	copyFn := func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
		batches.Add(1)
		return repo.CopyFrom(ctx, columns, rows)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	n, err := LoadBatches(ctx, t.Names(), Rows(ctx, t), size, copyFn)
	metrics.RecordBatches(p.job, batches.Load())
	if err != nil {
		return fmt.Errorf("load %s: %w", dest, err)
	}
	logging.Info().
		Str("table", dest).
		Int64("rows", n).
		Int64("batches", batches.Load()).
		Msg("published")
	return nil
}
