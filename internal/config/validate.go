// Package config provides configuration models and helpers for the pipeline.
//
// This file adds a lightweight linter for Pipeline values. It performs static
// checks and returns a list of issues (errors and warnings) that callers can
// surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
	"time"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that should be surfaced to users but
	// does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding.
//
// Path is a dotted path into the config (e.g. "publish.kind",
// "inputs.sales[1]"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation of a Pipeline. It does not
// mutate the pipeline or touch the filesystem.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateInputs(p.Inputs)...)
	issues = append(issues, validateParameters(p)...)
	issues = append(issues, validatePublish(p.Publish)...)
	issues = append(issues, validateCache(p.Cache)...)
	issues = append(issues, validateMetrics(p.Metrics)...)
	return issues
}

func validateInputs(in Inputs) []Issue {
	var issues []Issue
	for _, f := range []struct{ path, val string }{
		{"inputs.customer", in.Customer},
		{"inputs.employee", in.Employee},
		{"inputs.store", in.Store},
		{"inputs.product", in.Product},
	} {
		if strings.TrimSpace(f.val) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: f.path, Message: "input path must not be empty"})
		}
	}
	if len(in.Sales) == 0 && strings.TrimSpace(in.RawDir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "inputs.sales",
			Message:  "no sales extracts listed and no raw_dir to discover them in",
		})
	}
	seen := make(map[string]int, len(in.Sales))
	for i, s := range in.Sales {
		path := fmt.Sprintf("inputs.sales[%d]", i)
		if strings.TrimSpace(s) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: path, Message: "sales path must not be empty"})
			continue
		}
		if j, dup := seen[s]; dup {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path,
				Message:  fmt.Sprintf("duplicates inputs.sales[%d]; its rows will be removed by deduplication", j),
			})
		}
		seen[s] = i
	}
	return issues
}

func validateParameters(p Pipeline) []Issue {
	var issues []Issue
	if _, err := time.Parse(DateLayout, p.AnalysisDate); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "analysis_date",
			Message:  fmt.Sprintf("analysis_date %q is not YYYY-MM-DD", p.AnalysisDate),
		})
	}
	if p.ReferenceYear <= 0 {
		issues = append(issues, Issue{Severity: SeverityError, Path: "reference_year", Message: "reference_year must be positive"})
	}
	if p.NonRetailThreshold < 0 {
		issues = append(issues, Issue{Severity: SeverityError, Path: "non_retail_threshold", Message: "non_retail_threshold must not be negative"})
	} else if p.NonRetailThreshold == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "non_retail_threshold",
			Message:  "non_retail_threshold=0 classifies every customer with a sale as non-retail",
		})
	}
	if strings.TrimSpace(p.OutputDir) == "" {
		issues = append(issues, Issue{Severity: SeverityError, Path: "output_dir", Message: "output_dir must not be empty"})
	}
	return issues
}

func validatePublish(s Publish) []Issue {
	var issues []Issue
	if !s.Enabled() {
		return nil
	}
	known := map[string]struct{}{
		"postgres": {},
		"mysql":    {},
		"mssql":    {},
		"sqlite":   {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "publish.kind",
			Message:  fmt.Sprintf("unknown publish kind %q; want postgres, mysql, mssql or sqlite", s.Kind),
		})
	}
	if strings.TrimSpace(s.DSN) == "" {
		issues = append(issues, Issue{Severity: SeverityError, Path: "publish.dsn", Message: "publish.dsn must not be empty"})
	}
	if s.BatchSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "publish.batch_size",
			Message:  fmt.Sprintf("batch_size=%d; non-positive batch sizes fall back to the default", s.BatchSize),
		})
	}
	if strings.ContainsAny(s.TablePrefix, " .;\"'`") {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "publish.table_prefix",
			Message:  "table_prefix must be a plain identifier prefix",
		})
	}
	return issues
}

func validateCache(c Cache) []Issue {
	var issues []Issue
	r := c.Redis
	if !r.Enabled() {
		return nil
	}
	if r.DB < 0 {
		issues = append(issues, Issue{Severity: SeverityError, Path: "cache.redis.db", Message: "db must not be negative"})
	}
	if r.TTL < 0 {
		issues = append(issues, Issue{Severity: SeverityError, Path: "cache.redis.ttl", Message: "ttl must not be negative"})
	}
	if r.KeyPrefix == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "cache.redis.key_prefix",
			Message:  "empty key_prefix writes segment keys at the top level of the database",
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch strings.ToLower(m.Backend) {
	case "", "none":
	case "prometheus":
		if m.PushgatewayURL == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: "metrics.pushgateway_url", Message: "prometheus backend requires pushgateway_url"})
		}
	case "datadog":
		if m.DatadogAddr == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "metrics.datadog_addr",
				Message:  "datadog_addr is empty; the client default (DD_AGENT_HOST or 127.0.0.1:8125) is used",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q", m.Backend),
		})
	}
	return issues
}
