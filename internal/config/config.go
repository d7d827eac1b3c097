// Package config defines the pipeline configuration model and loads it from
// a YAML/JSON file, an optional .env file and SALESETL_* environment
// variables, on top of DefaultConfig.
//
// Example (trimmed):
//
//	job: salesetl
//	inputs:
//	  raw_dir: raw
//	  sales: [sales/2020.csv, sales/2021.csv, sales/2022.csv]
//	output_dir: out
//	analysis_date: "2022-05-01"
//	publish:
//	  kind: postgres
//	  dsn: postgres://etl@localhost/sales
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DateLayout is the layout of AnalysisDate.
const DateLayout = "2006-01-02"

// Pipeline is the full configuration of one run.
type Pipeline struct {
	// Job labels logs and metrics.
	Job      string `mapstructure:"job" json:"job"`
	LogLevel string `mapstructure:"log_level" json:"log_level"`

	Inputs Inputs `mapstructure:"inputs" json:"inputs"`

	// OutputDir is the root under which data/, b2b/, b2c/ and findings/ are
	// written.
	OutputDir string `mapstructure:"output_dir" json:"output_dir"`

	// ReferenceYear is subtracted from the birth year to derive age.
	ReferenceYear int `mapstructure:"reference_year" json:"reference_year"`

	// AnalysisDate is the RFM reference date (YYYY-MM-DD).
	AnalysisDate string `mapstructure:"analysis_date" json:"analysis_date"`

	// NonRetailThreshold is the line count above which a customer is B2B.
	NonRetailThreshold int `mapstructure:"non_retail_threshold" json:"non_retail_threshold"`

	Runtime RuntimeConfig `mapstructure:"runtime" json:"runtime"`
	Publish Publish       `mapstructure:"publish" json:"publish"`
	Cache   Cache         `mapstructure:"cache" json:"cache"`
	Metrics Metrics       `mapstructure:"metrics" json:"metrics"`
}

// Inputs locates the raw files. Relative paths are resolved against RawDir.
type Inputs struct {
	RawDir   string `mapstructure:"raw_dir" json:"raw_dir"`
	Customer string `mapstructure:"customer" json:"customer"`
	Employee string `mapstructure:"employee" json:"employee"`
	Store    string `mapstructure:"store" json:"store"`
	Product  string `mapstructure:"product" json:"product"`

	// Sales lists the yearly extracts in concatenation order. When empty,
	// every *.csv under RawDir/sales is used, sorted by name.
	Sales []string `mapstructure:"sales" json:"sales"`

	// HeaderMap renames normalized raw headers (e.g. sales_outlet_id: store_id).
	HeaderMap map[string]string `mapstructure:"header_map" json:"header_map"`
}

// RuntimeConfig controls concurrency.
type RuntimeConfig struct {
	// Parallel runs independent branches concurrently.
	Parallel bool `mapstructure:"parallel" json:"parallel"`
}

// Publish optionally copies the finished tables into a SQL database.
type Publish struct {
	// Kind selects the storage backend: "", postgres, mysql, mssql, sqlite.
	Kind            string `mapstructure:"kind" json:"kind"`
	DSN             string `mapstructure:"dsn" json:"dsn"`
	TablePrefix     string `mapstructure:"table_prefix" json:"table_prefix"`
	AutoCreateTable bool   `mapstructure:"auto_create_table" json:"auto_create_table"`
	// Truncate deletes existing rows before loading so reruns replace data.
	Truncate        bool   `mapstructure:"truncate" json:"truncate"`
	BatchSize       int    `mapstructure:"batch_size" json:"batch_size"`
}

// Enabled reports whether publishing is configured.
func (p Publish) Enabled() bool { return strings.TrimSpace(p.Kind) != "" }

// Cache optionally publishes customer segments to Redis.
type Cache struct {
	Redis RedisConfig `mapstructure:"redis" json:"redis"`
}

// RedisConfig is the Redis connection and key layout.
type RedisConfig struct {
	Addr      string        `mapstructure:"addr" json:"addr"`
	Password  string        `mapstructure:"password" json:"password"`
	DB        int           `mapstructure:"db" json:"db"`
	KeyPrefix string        `mapstructure:"key_prefix" json:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl" json:"ttl"`
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool { return strings.TrimSpace(r.Addr) != "" }

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is "", "none", "prometheus" or "datadog".
	Backend        string `mapstructure:"backend" json:"backend"`
	PushgatewayURL string `mapstructure:"pushgateway_url" json:"pushgateway_url"`
	DatadogAddr    string `mapstructure:"datadog_addr" json:"datadog_addr"`
}

// DefaultConfig returns the configuration that reproduces the reference
// dataset layout.
func DefaultConfig() *Pipeline {
	return &Pipeline{
		Job:      "salesetl",
		LogLevel: "info",
		Inputs: Inputs{
			RawDir:   "raw",
			Customer: "customer.csv",
			Employee: "employee.csv",
			Store:    "store.csv",
			Product:  "product.csv",
			Sales:    []string{"sales/2020.csv", "sales/2021.csv", "sales/2022.csv"},
			HeaderMap: map[string]string{
				"sales_outlet_id": "store_id",
			},
		},
		OutputDir:          ".",
		ReferenceYear:      2022,
		AnalysisDate:       "2022-05-01",
		NonRetailThreshold: 1000,
		Runtime:            RuntimeConfig{Parallel: true},
		Publish:            Publish{BatchSize: 5000},
		Cache:              Cache{Redis: RedisConfig{KeyPrefix: "salesetl:"}},
	}
}

// InputPath resolves a configured input path against RawDir.
func (p *Pipeline) InputPath(rel string) string {
	if filepath.IsAbs(rel) || p.Inputs.RawDir == "" {
		return rel
	}
	return filepath.Join(p.Inputs.RawDir, rel)
}

// OutputPath resolves an output path against OutputDir.
func (p *Pipeline) OutputPath(rel string) string {
	return filepath.Join(p.OutputDir, rel)
}

// AnalysisTime parses AnalysisDate as midnight UTC.
func (p *Pipeline) AnalysisTime() (time.Time, error) {
	t, err := time.Parse(DateLayout, p.AnalysisDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("analysis_date %q: %w", p.AnalysisDate, err)
	}
	return t, nil
}

// envKeys are the scalar keys that SALESETL_* variables may override.
var envKeys = []string{
	"job", "log_level", "output_dir", "reference_year", "analysis_date", "non_retail_threshold",
	"inputs.raw_dir", "runtime.parallel",
	"publish.kind", "publish.dsn", "publish.table_prefix", "publish.auto_create_table", "publish.truncate", "publish.batch_size",
	"cache.redis.addr", "cache.redis.password", "cache.redis.db", "cache.redis.key_prefix", "cache.redis.ttl",
	"metrics.backend", "metrics.pushgateway_url", "metrics.datadog_addr",
}

// Load builds the configuration. Precedence, highest first: SALESETL_*
// environment variables (including those from a .env file in the working
// directory), the config file, DefaultConfig. The config file is configFile
// when given, otherwise ./salesetl.yaml if present.
func Load(configFile string) (*Pipeline, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("salesetl")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	v.SetEnvPrefix("SALESETL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range envKeys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", k, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if v.IsSet("inputs.sales") {
		// mapstructure decodes into the existing slice element by element.
		cfg.Inputs.Sales = nil
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	return cfg, nil
}
