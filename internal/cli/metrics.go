package cli

import (
	"fmt"
	"strings"

	"salesetl/internal/config"
	"salesetl/internal/logging"
	"salesetl/internal/metrics"
	"salesetl/internal/metrics/datadog"
	"salesetl/internal/metrics/prompush"
)

// setupMetrics installs the configured metrics backend and returns a function
// that flushes it. An unusable backend is logged and metrics stay disabled.
func setupMetrics(p *config.Pipeline) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch name := strings.ToLower(strings.TrimSpace(p.Metrics.Backend)); name {
	case "", "none":
		logging.Debug().Msg("metrics: disabled")
		return func() {}
	case "prometheus":
		b, err = prompush.NewBackend(p.Job, p.Metrics.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       p.Metrics.DatadogAddr,
			Namespace:  "salesetl.",
			GlobalTags: []string{"job:" + p.Job},
		})
	default:
		err = fmt.Errorf("unknown backend %q", name)
	}
	if err != nil {
		logging.Warn().Err(err).Msg("metrics: backend unavailable; metrics disabled")
		return func() {}
	}

	logging.Info().Str("backend", p.Metrics.Backend).Str("job", p.Job).Msg("metrics: enabled")
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			logging.Warn().Err(err).Msg("metrics: flush error")
		}
	}
}
