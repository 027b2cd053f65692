package collectors

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smazurov/lightkit/internal/logging"
	"github.com/smazurov/lightkit/internal/metrics"
)

func TestParseBrightness(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"plain", "255", 255, false},
		{"trailing newline", "128\n", 128, false},
		{"padded", "  76 \n", 76, false},
		{"zero", "0\n", 0, false},
		{"empty", "", 0, true},
		{"only whitespace", "\n\n", 0, true},
		{"garbage", "bright\n", 0, true},
		{"trailing junk", "128 extra", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBrightness(strings.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseBrightness(%q) = %d, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseBrightness(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseBrightness(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestCollectReadsNode(t *testing.T) {
	node := filepath.Join(t.TempDir(), "brightness")
	if err := os.WriteFile(node, []byte("142\n"), 0o644); err != nil {
		t.Fatalf("writing fake node: %v", err)
	}

	c := NewNodeCollector(node)
	c.collect()

	if got := metrics.Snapshot().NodeBrightness; got != 142 {
		t.Errorf("NodeBrightness = %d, want 142", got)
	}
}

func TestCollectSurvivesMissingNode(t *testing.T) {
	c := NewNodeCollector(filepath.Join(t.TempDir(), "absent"))
	c.logger = logging.GetLogger("metrics")

	// Must not panic and must leave the gauge alone.
	before := metrics.Snapshot().NodeBrightness
	c.collect()
	if got := metrics.Snapshot().NodeBrightness; got != before {
		t.Errorf("NodeBrightness changed on failed read: %d -> %d", before, got)
	}
}
