package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestStageTagsRunAndStage(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Out: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	l := Stage("run-1", "classify")
	l.Info().Int("rows", 3).Msg("done")

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if got["run_id"] != "run-1" || got["stage"] != "classify" || got["rows"] != float64(3) {
		t.Fatalf("unexpected fields: %v", got)
	}
}

func TestInitFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "nonsense", Out: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line written at info level: %q", buf.String())
	}
	Info().Msg("shown")
	if buf.Len() == 0 {
		t.Fatalf("info line missing")
	}
}
