package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/smazurov/lightkit/internal/devices"
	"github.com/spf13/cobra"
)

// CreateDetectCmd creates the detect command.
func CreateDetectCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Probe the board for light control nodes",
		Long: `Reads the device tree board model and checks whether each endpoint's ` +
			`control node exists and is writable. Exits nonzero when any node is missing.`,
		Run: func(_ *cobra.Command, _ []string) {
			report := devices.Probe()

			if asJSON {
				data, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(1)
				}
				fmt.Println(string(data))
			} else {
				fmt.Printf("board: %s\n", report.BoardModel)
				for _, n := range report.Nodes {
					status := "missing"
					switch {
					case n.Present && n.Writable:
						status = "ok"
					case n.Present:
						status = "not writable"
					}
					fmt.Printf("  %-14s %-46s %s\n", n.Endpoint, n.Path, status)
				}
			}

			if !report.Supported {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}
