package pipeline

import (
	"sync"

	"salesetl/internal/logging"
	"salesetl/internal/metrics"
	"salesetl/internal/schema"
)

// Findings collects the non-fatal data quality observations of a run: rows
// removed as duplicates and rows removed for holding nulls, per table. It is
// safe for concurrent use; a nil *Findings discards everything.
type Findings struct {
	job string

	mu         sync.Mutex
	duplicates map[string]int
	nullRows   map[string]int
}

// NewFindings returns an empty collector labelled with job.
func NewFindings(job string) *Findings {
	return &Findings{
		job:        job,
		duplicates: make(map[string]int),
		nullRows:   make(map[string]int),
	}
}

func (f *Findings) duplicate(e *schema.DuplicateKeyError) {
	if f == nil {
		return
	}
	logging.Warn().Str("table", e.Table).Int("dropped", e.Dropped).Msg(e.Error())
	metrics.RecordFindings(f.job, "duplicate_rows", e.Dropped)

	f.mu.Lock()
	f.duplicates[e.Table] += e.Dropped
	f.mu.Unlock()
}

// nulls returns the DropNulls callback for table name.
func (f *Findings) nulls(name string) func(int) {
	if f == nil {
		return nil
	}
	return func(n int) {
		logging.Warn().Str("table", name).Int("dropped", n).Msg("dropped rows with nulls")
		metrics.RecordFindings(f.job, "null_rows", n)

		f.mu.Lock()
		f.nullRows[name] += n
		f.mu.Unlock()
	}
}

// Duplicates returns a copy of the duplicate counts per table.
func (f *Findings) Duplicates() map[string]int { return f.snapshot(func() map[string]int { return f.duplicates }) }

// NullRows returns a copy of the null-row counts per table.
func (f *Findings) NullRows() map[string]int { return f.snapshot(func() map[string]int { return f.nullRows }) }

func (f *Findings) snapshot(m func() map[string]int) map[string]int {
	out := make(map[string]int)
	if f == nil {
		return out
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, v := range m() {
		out[k] = v
	}
	return out
}
