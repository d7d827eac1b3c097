// Package pipeline turns the raw retail extracts into the cleaned,
// partitioned and aggregated tables, and scores B2C customers by RFM.
//
// Stages run in dependency order:
//
//	dimensions ∥ sales → classify → (b2b ∥ b2c: reidentify → aggregate) → rfm → segment
//
// Every table is written through tableio.Store, which verifies the written
// file reads back identical. The first error cancels the run.
package pipeline

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"salesetl/internal/config"
	"salesetl/internal/datasource/file"
	"salesetl/internal/logging"
	"salesetl/internal/metrics"
	pcsv "salesetl/internal/parser/csv"
	"salesetl/internal/report"
	"salesetl/internal/table"
	"salesetl/internal/tableio"
)

// Partition output directories.
const (
	B2B = "b2b"
	B2C = "b2c"
)

// Publisher receives every stored table after the run succeeds. name is
// derived from the output path, e.g. "b2c_total_by_order".
type Publisher interface {
	Publish(ctx context.Context, name string, t *table.Table) error
}

// SegmentCache receives the segmented B2C customers.
type SegmentCache interface {
	StoreSegments(ctx context.Context, segments *table.Table) error
}

// Result is what a run produced.
type Result struct {
	RunID     string
	StartedAt time.Time
	Elapsed   time.Duration
	// Tables holds every stored table keyed by its path relative to the
	// output directory.
	Tables   map[string]*table.Table
	Findings *Findings
	Summary  *report.Summary
}

// Runner executes the pipeline. Publisher and Cache are optional.
type Runner struct {
	Config    *config.Pipeline
	Publisher Publisher
	Cache     SegmentCache
}

// Run executes the pipeline with cfg and no publishing.
func Run(ctx context.Context, cfg *config.Pipeline) (*Result, error) {
	return (&Runner{Config: cfg}).Run(ctx)
}

type run struct {
	cfg *config.Pipeline
	id  string
	log zerolog.Logger

	mu  sync.Mutex
	res *Result
}

// Run executes every stage and returns the produced tables.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	cfg := r.Config
	asOf, err := cfg.AnalysisTime()
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	x := &run{
		cfg: cfg,
		id:  id,
		log: logging.Stage(id, "run"),
		res: &Result{
			RunID:     id,
			StartedAt: time.Now(),
			Tables:    make(map[string]*table.Table),
			Findings:  NewFindings(cfg.Job),
		},
	}
	x.log.Info().Str("job", cfg.Job).Str("output_dir", cfg.OutputDir).Msg("pipeline started")

	err = x.execute(ctx, asOf)
	if err == nil && r.Publisher != nil {
		err = x.stage("publish", func(zerolog.Logger) error { return x.publish(ctx, r.Publisher) })
	}
	if err == nil && r.Cache != nil {
		if seg, ok := x.res.Tables[path.Join(B2C, "segment.csv")]; ok {
			err = x.stage("cache", func(zerolog.Logger) error { return r.Cache.StoreSegments(ctx, seg) })
		}
	}
	if err == nil {
		err = x.writeSummary(ctx)
	}
	x.res.Elapsed = time.Since(x.res.StartedAt)
	metrics.RecordStage(cfg.Job, "run", err, x.res.Elapsed)
	if err != nil {
		x.log.Error().Err(err).Dur("elapsed", x.res.Elapsed).Msg("pipeline failed")
		return nil, err
	}
	x.log.Info().Int("tables", len(x.res.Tables)).Dur("elapsed", x.res.Elapsed).Msg("pipeline finished")
	return x.res, nil
}

func (x *run) group(ctx context.Context) (*errgroup.Group, context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	if !x.cfg.Runtime.Parallel {
		g.SetLimit(1)
	}
	return g, gctx
}

func (x *run) execute(ctx context.Context, asOf time.Time) error {
	var (
		dims  Dimensions
		sales *table.Table
	)
	g, gctx := x.group(ctx)
	for _, d := range []struct {
		entity Entity
		input  string
		dst    **table.Table
	}{
		{CustomerEntity(x.cfg.ReferenceYear), x.cfg.Inputs.Customer, &dims.Customer},
		{EmployeeEntity, x.cfg.Inputs.Employee, &dims.Employee},
		{StoreEntity, x.cfg.Inputs.Store, &dims.Store},
		{ProductEntity, x.cfg.Inputs.Product, &dims.Product},
	} {
		d := d
		g.Go(func() error {
			t, err := x.dimension(gctx, d.entity, x.cfg.InputPath(d.input))
			*d.dst = t
			return err
		})
	}
	g.Go(func() error {
		var err error
		sales, err = x.sales(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	var parts *Partitions
	err := x.stage("classify", func(log zerolog.Logger) error {
		var err error
		if parts, err = Classify(sales, x.cfg.NonRetailThreshold); err != nil {
			return err
		}
		log.Info().Int("non_retail", parts.NonRetail.NumRows()).
			Int("b2b_lines", parts.B2B.NumRows()).Int("b2c_lines", parts.B2C.NumRows()).Msg("sales classified")
		return x.store(ctx, NonRetailPath, parts.NonRetail)
	})
	if err != nil {
		return err
	}

	g, gctx = x.group(ctx)
	g.Go(func() error {
		_, err := x.partition(gctx, B2B, parts.B2B, dims)
		return err
	})
	g.Go(func() error {
		agg, err := x.partition(gctx, B2C, parts.B2C, dims)
		if err != nil {
			return err
		}
		return x.score(gctx, agg.ByOrder, asOf)
	})
	return g.Wait()
}

func (x *run) dimension(ctx context.Context, e Entity, input string) (*table.Table, error) {
	var out *table.Table
	err := x.stage(e.Raw.Name, func(log zerolog.Logger) error {
		raw, err := tableio.LoadText(ctx, input, x.textOptions())
		if err != nil {
			return err
		}
		if out, err = e.Normalize(raw, x.res.Findings); err != nil {
			return err
		}
		log.Info().Str("path", input).Int("raw_rows", raw.NumRows()).Int("rows", out.NumRows()).Msg("dimension cleaned")
		return x.store(ctx, e.Path, out)
	})
	return out, err
}

func (x *run) sales(ctx context.Context) (*table.Table, error) {
	var out *table.Table
	err := x.stage("sales", func(log zerolog.Logger) error {
		inputs, err := x.salesInputs()
		if err != nil {
			return err
		}
		raws := make([]*table.Table, len(inputs))
		for i, in := range inputs {
			if raws[i], err = tableio.LoadText(ctx, in, x.textOptions()); err != nil {
				return err
			}
		}
		if out, err = NormalizeSales(raws, x.res.Findings); err != nil {
			return err
		}
		log.Info().Strs("inputs", inputs).Int("rows", out.NumRows()).Msg("sales cleaned")
		return x.store(ctx, SalesPath, out)
	})
	return out, err
}

// salesInputs returns the configured extracts, or every CSV under the
// sales directory when none are configured.
func (x *run) salesInputs() ([]string, error) {
	if len(x.cfg.Inputs.Sales) == 0 {
		return file.ListCSV(x.cfg.InputPath("sales"))
	}
	out := make([]string, len(x.cfg.Inputs.Sales))
	for i, s := range x.cfg.Inputs.Sales {
		out[i] = x.cfg.InputPath(s)
	}
	return out, nil
}

func (x *run) textOptions() pcsv.Options {
	return pcsv.Options{HeaderMap: x.cfg.Inputs.HeaderMap}
}

func (x *run) partition(ctx context.Context, dir string, lines *table.Table, dims Dimensions) (*Aggregates, error) {
	var agg *Aggregates
	err := x.stage(dir, func(log zerolog.Logger) error {
		orders, err := Reidentify(lines)
		if err != nil {
			return err
		}
		if err := x.store(ctx, path.Join(dir, "sales.csv"), orders); err != nil {
			return err
		}
		if agg, err = Aggregate(orders, dims); err != nil {
			return err
		}
		log.Info().Int("lines", orders.NumRows()).Int("orders", agg.ByOrder.NumRows()).Msg("partition aggregated")
		for _, o := range []struct {
			name string
			t    *table.Table
		}{
			{"total_by_order", agg.ByOrder},
			{"total_by_customer", agg.ByCustomer},
			{"total_by_product", agg.ByProduct},
			{"total_by_store", agg.ByStore},
			{"order_by_date", agg.ByDate},
			{"order_by_month", agg.ByMonth},
		} {
			if err := x.store(ctx, path.Join(dir, o.name+".csv"), o.t); err != nil {
				return err
			}
		}
		return nil
	})
	return agg, err
}

func (x *run) score(ctx context.Context, byOrder *table.Table, asOf time.Time) error {
	return x.stage("segment", func(log zerolog.Logger) error {
		rfm, err := RFM(byOrder, asOf)
		if err != nil {
			return err
		}
		if err := x.store(ctx, path.Join(B2C, "rfm.csv"), rfm); err != nil {
			return err
		}
		seg, err := Segment(rfm)
		if err != nil {
			return err
		}
		if err := x.store(ctx, path.Join(B2C, "segment.csv"), seg); err != nil {
			return err
		}
		counts, err := SegmentCount(seg)
		if err != nil {
			return err
		}
		log.Info().Int("customers", seg.NumRows()).Int("segments", counts.NumRows()).Msg("customers segmented")
		return x.store(ctx, path.Join(B2C, "segment_count.csv"), counts)
	})
}

// stage runs fn, then logs and records its outcome.
func (x *run) stage(name string, fn func(zerolog.Logger) error) error {
	log := logging.Stage(x.id, name)
	start := time.Now()
	err := fn(log)
	d := time.Since(start)
	metrics.RecordStage(x.cfg.Job, name, err, d)
	if err != nil {
		log.Error().Err(err).Dur("elapsed", d).Msg("stage failed")
		return fmt.Errorf("%s: %w", name, err)
	}
	log.Debug().Dur("elapsed", d).Msg("stage done")
	return nil
}

func (x *run) store(ctx context.Context, rel string, t *table.Table) error {
	if err := tableio.Store(ctx, t, x.cfg.OutputPath(rel)); err != nil {
		return err
	}
	metrics.RecordRows(x.cfg.Job, rel, t.NumRows())

	x.mu.Lock()
	x.res.Tables[rel] = t
	x.mu.Unlock()
	return nil
}

func (x *run) publish(ctx context.Context, p Publisher) error {
	rels := make([]string, 0, len(x.res.Tables))
	for rel := range x.res.Tables {
		rels = append(rels, rel)
	}
	sort.Strings(rels)
	for _, rel := range rels {
		if err := p.Publish(ctx, TableName(rel), x.res.Tables[rel]); err != nil {
			return fmt.Errorf("publish %s: %w", rel, err)
		}
	}
	return nil
}

func (x *run) writeSummary(ctx context.Context) error {
	s := &report.Summary{
		RunID:        x.id,
		Job:          x.cfg.Job,
		StartedAt:    x.res.StartedAt.UTC(),
		Elapsed:      time.Since(x.res.StartedAt).Round(time.Millisecond).String(),
		AnalysisDate: x.cfg.AnalysisDate,
		Duplicates:   x.res.Findings.Duplicates(),
		NullRows:     x.res.Findings.NullRows(),
	}
	for rel, t := range x.res.Tables {
		s.Tables = append(s.Tables, report.TableCount{Path: rel, Rows: t.NumRows()})
	}
	s.SortTables()
	if nr, ok := x.res.Tables[NonRetailPath]; ok {
		s.NonRetail = nr.NumRows()
	}
	if counts, ok := x.res.Tables[path.Join(B2C, "segment_count.csv")]; ok {
		s.Segments = make(map[string]int, counts.NumRows())
		for i := 0; i < counts.NumRows(); i++ {
			name, _ := counts.Value(i, "segment")
			n, _ := counts.Value(i, "count")
			s.Segments[name.(string)] = int(n.(int64))
		}
	}
	x.res.Summary = s
	return report.Write(ctx, x.cfg.OutputPath(report.Path), s)
}

// TableName turns an output path such as "b2c/total_by_order.csv" into a
// database table name ("b2c_total_by_order").
func TableName(rel string) string {
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	return strings.ReplaceAll(rel, "/", "_")
}
