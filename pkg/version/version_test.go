package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	info := Info()
	for _, part := range []string{"salesetl", Version, "commit: " + Commit} {
		if !strings.Contains(info, part) {
			t.Errorf("Info() = %q, missing %q", info, part)
		}
	}
	if Short() != Version {
		t.Errorf("Short() = %q, want %q", Short(), Version)
	}
}
