// Package report exports the JSON summary of a pipeline run.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"salesetl/internal/datasource/file"
)

// Path is the summary location relative to the output directory.
const Path = "findings/summary.json"

// TableCount is the row count of one written table.
type TableCount struct {
	Path string `json:"path"`
	Rows int    `json:"rows"`
}

// Summary describes a finished run.
type Summary struct {
	RunID        string         `json:"run_id"`
	Job          string         `json:"job"`
	StartedAt    time.Time      `json:"started_at"`
	Elapsed      string         `json:"elapsed"`
	AnalysisDate string         `json:"analysis_date"`
	Tables       []TableCount   `json:"tables"`
	NonRetail    int            `json:"non_retail_customers"`
	Duplicates   map[string]int `json:"duplicate_rows,omitempty"`
	NullRows     map[string]int `json:"null_rows,omitempty"`
	Segments     map[string]int `json:"segments,omitempty"`
}

// SortTables orders Tables by path.
func (s *Summary) SortTables() {
	sort.Slice(s.Tables, func(i, j int) bool { return s.Tables[i].Path < s.Tables[j].Path })
}

// Write stores s as indented JSON at path, creating parent directories.
// The file appears atomically.
func Write(ctx context.Context, path string, s *Summary) (err error) {
	w, err := file.NewLocal(path).Create(ctx)
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	defer func() {
		if cerr := w.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("write summary: %w", cerr)
		}
	}()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// Read loads a summary written by Write.
func Read(ctx context.Context, path string) (*Summary, error) {
	rc, err := file.NewLocal(path).Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var s Summary
	if err := json.NewDecoder(rc).Decode(&s); err != nil {
		return nil, fmt.Errorf("read summary %s: %w", path, err)
	}
	return &s, nil
}
