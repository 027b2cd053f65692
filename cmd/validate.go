package cmd

import (
	"fmt"
	"os"

	"github.com/smazurov/lightkit/internal/scene"
	"github.com/spf13/cobra"
)

// CreateValidateCmd creates the validate command.
func CreateValidateCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "validate <scene-file>",
		Short: "Validate a scene file",
		Long:  `Parses a scene TOML file and checks every step for unknown endpoints, malformed colors, unknown flash modes and negative durations.`,
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			sc, err := scene.LoadFile(args[0])
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}

			if !quiet {
				fmt.Printf("%s: scene %q is valid (%d steps)\n", args[0], sc.Name, len(sc.Steps))
			}
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress output, report via exit code only")
	return cmd
}
