// Package devices probes the board for the light control nodes the shim
// drives. The probe never writes to the nodes; it only reports what a write
// would find.
package devices

import (
	"os"
	"strings"

	"github.com/smazurov/lightkit/pkg/lights"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// NodeStatus describes one endpoint's control node on this board.
type NodeStatus struct {
	Endpoint string `json:"endpoint"`
	Path     string `json:"path"`
	Present  bool   `json:"present"`
	Writable bool   `json:"writable"`
}

// Report is the result of probing the board for light support.
type Report struct {
	BoardModel string       `json:"board_model"`
	Supported  bool         `json:"supported"`
	Nodes      []NodeStatus `json:"nodes"`
}

type endpointNode struct {
	endpoint string
	path     string
}

// endpointNodes maps every endpoint to its control node. The notification
// and attention endpoints share the rgb node.
func endpointNodes() []endpointNode {
	return []endpointNode{
		{lights.EndpointBacklight.String(), lights.BacklightControlPath},
		{lights.EndpointNotifications.String(), lights.RGBControlPath},
		{lights.EndpointAttention.String(), lights.RGBControlPath},
	}
}

// DetectBoard reads the device tree model to identify the board.
func DetectBoard() string {
	return detectBoard(deviceTreeModelPath)
}

func detectBoard(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "unknown"
	}

	// Device tree model strings are null terminated.
	return strings.TrimRight(string(data), "\x00")
}

// Probe inspects the board model and every endpoint's control node.
func Probe() Report {
	return probe(deviceTreeModelPath, endpointNodes())
}

func probe(modelPath string, nodes []endpointNode) Report {
	r := Report{
		BoardModel: detectBoard(modelPath),
		Supported:  true,
	}

	for _, n := range nodes {
		status := NodeStatus{Endpoint: n.endpoint, Path: n.path}

		if info, err := os.Stat(n.path); err == nil && !info.IsDir() {
			status.Present = true
			status.Writable = checkWritable(n.path)
		}
		if !status.Present {
			r.Supported = false
		}

		r.Nodes = append(r.Nodes, status)
	}

	return r
}

// checkWritable opens the node the same way a light write would.
func checkWritable(path string) bool {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}
