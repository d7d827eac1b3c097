package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"salesetl/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func readCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("Counter.Write() error = %v", err)
	}
	if m.GetCounter() == nil {
		t.Fatalf("metric did not contain Counter value")
	}
	return m.GetCounter().GetValue()
}

func readSummaryCountSum(t *testing.T, v *prometheus.SummaryVec, labels ...string) (uint64, float64) {
	t.Helper()

	m := &dto.Metric{}
	metric, ok := v.WithLabelValues(labels...).(prometheus.Metric)
	if !ok {
		t.Fatalf("SummaryVec.WithLabelValues(...) does not implement prometheus.Metric")
	}
	if err := metric.Write(m); err != nil {
		t.Fatalf("Summary.Write() error = %v", err)
	}
	if m.GetSummary() == nil {
		t.Fatalf("metric did not contain Summary value")
	}
	sum := m.GetSummary()
	return sum.GetSampleCount(), sum.GetSampleSum()
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		jobName     string
		gatewayURL  string
		wantErr     bool
		wantJobName string
	}{
		{name: "missing gateway URL returns error", jobName: "nightly", wantErr: true},
		{name: "empty job name uses default", gatewayURL: "http://pushgateway:9091", wantJobName: "salesetl"},
		{name: "explicit job name is preserved", jobName: "nightly", gatewayURL: "http://pushgateway:9091", wantJobName: "nightly"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := NewBackend(tt.jobName, tt.gatewayURL)
			if tt.wantErr {
				if err == nil || b != nil {
					t.Fatalf("NewBackend(%q, %q) = %v, %v; want nil, error", tt.jobName, tt.gatewayURL, b, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewBackend(%q, %q) error = %v", tt.jobName, tt.gatewayURL, err)
			}
			if b.jobName != tt.wantJobName {
				t.Fatalf("backend.jobName = %q, want %q", b.jobName, tt.wantJobName)
			}
			if b.gatewayURL != tt.gatewayURL {
				t.Fatalf("backend.gatewayURL = %q, want %q", b.gatewayURL, tt.gatewayURL)
			}
		})
	}
}

func TestIncCounter(t *testing.T) {
	t.Parallel()

	type call struct {
		name   string
		delta  float64
		labels metrics.Labels
	}
	tests := []struct {
		name  string
		calls []call
		check func(t *testing.T, b *Backend)
	}{
		{
			name:  "stage counter",
			calls: []call{{metrics.StageTotal, 3, metrics.Labels{"stage": "sales", "status": "success"}}},
			check: func(t *testing.T, b *Backend) {
				if got := readCounterValue(t, b.stageCounter.WithLabelValues("sales", "success")); got != 3 {
					t.Fatalf("stageCounter = %v, want 3", got)
				}
			},
		},
		{
			name:  "row counter by table",
			calls: []call{{metrics.RowsTotal, 5, metrics.Labels{"table": "rfm"}}},
			check: func(t *testing.T, b *Backend) {
				if got := readCounterValue(t, b.rowCounter.WithLabelValues("rfm")); got != 5 {
					t.Fatalf("rowCounter = %v, want 5", got)
				}
			},
		},
		{
			name:  "findings counter by kind",
			calls: []call{{metrics.FindingsTotal, 2, metrics.Labels{"kind": "null_rows"}}},
			check: func(t *testing.T, b *Backend) {
				if got := readCounterValue(t, b.findCounter.WithLabelValues("null_rows")); got != 2 {
					t.Fatalf("findCounter = %v, want 2", got)
				}
			},
		},
		{
			name: "batch counter accumulates",
			calls: []call{
				{metrics.PublishedBatches, 2, metrics.Labels{}},
				{metrics.PublishedBatches, 0.5, metrics.Labels{}},
			},
			check: func(t *testing.T, b *Backend) {
				if got := readCounterValue(t, b.batchCounter); got != 2.5 {
					t.Fatalf("batchCounter = %v, want 2.5", got)
				}
			},
		},
		{
			name:  "unknown metric name is ignored",
			calls: []call{{"unknown_metric", 10, metrics.Labels{"foo": "bar"}}},
			check: func(t *testing.T, b *Backend) {
				if got := readCounterValue(t, b.batchCounter); got != 0 {
					t.Fatalf("batchCounter = %v, want 0", got)
				}
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := NewBackend("salesetl", "http://example.com")
			if err != nil {
				t.Fatalf("NewBackend() error = %v", err)
			}
			for _, c := range tt.calls {
				b.IncCounter(c.name, c.delta, c.labels)
			}
			tt.check(t, b)
		})
	}
}

func TestIncCounterNilMetrics(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	b.IncCounter(metrics.StageTotal, 1, metrics.Labels{"stage": "s", "status": "success"})
	b.IncCounter(metrics.RowsTotal, 1, metrics.Labels{"table": "t"})
	b.IncCounter(metrics.FindingsTotal, 1, metrics.Labels{"kind": "k"})
	b.IncCounter(metrics.PublishedBatches, 1, metrics.Labels{})
	b.ObserveHistogram(metrics.StageDuration, 1, metrics.Labels{})
}

func TestObserveHistogram(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("salesetl", "http://example.com")
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	lbls := metrics.Labels{"stage": "aggregate", "status": "success"}
	b.ObserveHistogram(metrics.StageDuration, 1.5, lbls)
	b.ObserveHistogram("other_metric", 2.0, lbls)

	count, sum := readSummaryCountSum(t, b.stageDuration, "aggregate", "success")
	if count != 1 || sum != 1.5 {
		t.Fatalf("summary = (%d, %v), want (1, 1.5)", count, sum)
	}
}

func TestFlush(t *testing.T) {
	t.Parallel()

	type pushRequest struct {
		method  string
		path    string
		bodyLen int
	}
	reqCh := make(chan pushRequest, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		body, _ := io.ReadAll(r.Body)
		reqCh <- pushRequest{method: r.Method, path: r.URL.Path, bodyLen: len(body)}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	b, err := NewBackend("nightly", server.URL)
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	b.IncCounter(metrics.StageTotal, 1, metrics.Labels{"stage": "sales", "status": "success"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	var got pushRequest
	select {
	case got = <-reqCh:
	default:
		t.Fatalf("Flush() did not send a request to the Pushgateway")
	}
	if got.method != http.MethodPut {
		t.Fatalf("method = %q, want PUT", got.method)
	}
	if got.path != "/metrics/job/nightly" {
		t.Fatalf("path = %q, want /metrics/job/nightly", got.path)
	}
	if got.bodyLen == 0 {
		t.Fatalf("push body is empty")
	}
}
