// Package collectors provides pollers that feed hardware state into metrics.
package collectors

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/smazurov/lightkit/internal/logging"
	"github.com/smazurov/lightkit/internal/metrics"
)

// NodeCollector polls the backlight control node and exports the brightness
// the kernel reports. Drivers clamp and quantize written values, so the
// read-back level can differ from the one last written.
type NodeCollector struct {
	logger   logging.Logger
	nodePath string
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewNodeCollector creates a collector polling the given brightness node.
func NewNodeCollector(nodePath string) *NodeCollector {
	return &NodeCollector{
		logger:   logging.GetLogger("metrics"),
		nodePath: nodePath,
		interval: 5 * time.Second,
	}
}

// Start begins polling the node.
func (c *NodeCollector) Start(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(ctx)
	go c.run()
	return nil
}

// Stop stops the collector.
func (c *NodeCollector) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	return nil
}

func (c *NodeCollector) run() {
	c.logger.Info("starting backlight node polling", "path", c.nodePath, "interval", c.interval)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.collect()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.collect()
		}
	}
}

func (c *NodeCollector) collect() {
	file, err := os.Open(c.nodePath)
	if err != nil {
		c.logger.Warn("backlight node unreadable", "error", err)
		return
	}
	defer file.Close()

	level, err := parseBrightness(file)
	if err != nil {
		c.logger.Warn("backlight node parse failed", "error", err)
		return
	}
	metrics.SetNodeBrightness(level)
}

// parseBrightness reads the single decimal integer a brightness node holds.
func parseBrightness(r io.Reader) (int, error) {
	data, err := io.ReadAll(io.LimitReader(r, 64))
	if err != nil {
		return 0, err
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return 0, fmt.Errorf("empty brightness node")
	}
	level, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("malformed brightness %q: %w", text, err)
	}
	return level, nil
}
