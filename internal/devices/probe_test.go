package devices

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetectBoardMissingFile(t *testing.T) {
	got := detectBoard(filepath.Join(t.TempDir(), "model"))
	if got != "unknown" {
		t.Errorf("detectBoard() = %q, want %q", got, "unknown")
	}
}

func TestDetectBoardTrimsNulls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model")
	if err := os.WriteFile(path, []byte("Qualcomm MSM 8226\x00\x00"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := detectBoard(path)
	if got != "Qualcomm MSM 8226" {
		t.Errorf("detectBoard() = %q, want %q", got, "Qualcomm MSM 8226")
	}
}

func TestProbeAllNodesPresent(t *testing.T) {
	dir := t.TempDir()
	lcd := filepath.Join(dir, "brightness")
	rgb := filepath.Join(dir, "control")
	for _, p := range []string{lcd, rgb} {
		if err := os.WriteFile(p, []byte("0\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	model := filepath.Join(dir, "model")
	if err := os.WriteFile(model, []byte("Qualcomm MSM 8226\x00"), 0o644); err != nil {
		t.Fatal(err)
	}

	nodes := []endpointNode{
		{"backlight", lcd},
		{"notifications", rgb},
		{"attention", rgb},
	}

	r := probe(model, nodes)
	if !r.Supported {
		t.Error("Supported = false, want true with all nodes present")
	}
	if r.BoardModel != "Qualcomm MSM 8226" {
		t.Errorf("BoardModel = %q", r.BoardModel)
	}
	if len(r.Nodes) != 3 {
		t.Fatalf("len(Nodes) = %d, want 3", len(r.Nodes))
	}
	for _, n := range r.Nodes {
		if !n.Present {
			t.Errorf("node %s: Present = false, want true", n.Endpoint)
		}
		if !n.Writable {
			t.Errorf("node %s: Writable = false, want true", n.Endpoint)
		}
	}
}

func TestProbeMissingNode(t *testing.T) {
	dir := t.TempDir()
	lcd := filepath.Join(dir, "brightness")
	if err := os.WriteFile(lcd, []byte("0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	nodes := []endpointNode{
		{"backlight", lcd},
		{"notifications", filepath.Join(dir, "control")},
	}

	r := probe(filepath.Join(dir, "model"), nodes)
	if r.Supported {
		t.Error("Supported = true with a node missing")
	}
	if r.BoardModel != "unknown" {
		t.Errorf("BoardModel = %q, want %q", r.BoardModel, "unknown")
	}
	if !r.Nodes[0].Present {
		t.Error("backlight node should be present")
	}
	if r.Nodes[1].Present {
		t.Error("notifications node should be missing")
	}
}

func TestProbeDirectoryIsNotANode(t *testing.T) {
	dir := t.TempDir()

	nodes := []endpointNode{{"backlight", dir}}
	r := probe(filepath.Join(dir, "model"), nodes)
	if r.Nodes[0].Present {
		t.Error("a directory should not count as a control node")
	}
}

func TestEndpointNodesCoverEveryEndpoint(t *testing.T) {
	nodes := endpointNodes()
	if len(nodes) != 3 {
		t.Fatalf("len(endpointNodes()) = %d, want 3", len(nodes))
	}

	seen := make(map[string]bool)
	for _, n := range nodes {
		seen[n.endpoint] = true
		if n.path == "" {
			t.Errorf("endpoint %s has no node path", n.endpoint)
		}
	}
	for _, want := range []string{"backlight", "notifications", "attention"} {
		if !seen[want] {
			t.Errorf("endpoint %s missing from probe set", want)
		}
	}
}
