package cmd

import (
	"os"

	"github.com/smazurov/lightkit/internal/logging"
	"github.com/smazurov/lightkit/pkg/lights"
	"github.com/spf13/cobra"
)

// CreateBlinkCmd creates the blink command, shorthand for set --flash timed.
func CreateBlinkCmd() *cobra.Command {
	var flashOnMS int
	var flashOffMS int
	var logJSON bool

	cmd := &cobra.Command{
		Use:   "blink <endpoint> <color>",
		Short: "Blink one endpoint with a timed flash",
		Long: `Alternates an endpoint between the given color and off. ` +
			`Equivalent to "set --flash timed" with the same durations.`,
		Args: cobra.ExactArgs(2),
		Run: func(_ *cobra.Command, args []string) {
			loggingConfig := logging.Config{
				Level:  "info",
				Format: "text",
			}
			if logJSON {
				loggingConfig.Format = "json"
			}
			logging.Initialize(loggingConfig)
			logger := logging.GetLogger("cli")

			if flashOnMS <= 0 || flashOffMS <= 0 {
				logger.Error("Blink durations must be positive",
					"on_ms", flashOnMS,
					"off_ms", flashOffMS)
				os.Exit(1)
			}

			state, err := parseState(args[1], "timed", flashOnMS, flashOffMS)
			if err != nil {
				logger.Error("Invalid light state", "error", err)
				os.Exit(1)
			}

			module := lights.New(lights.WithLogger(logging.GetLogger("lights")))

			dev, err := module.Open(args[0])
			if err != nil {
				logger.Error("Failed to open endpoint", "endpoint", args[0], "error", err)
				os.Exit(-lights.Errno(err))
			}
			defer dev.Close()

			if err := dev.SetLight(state); err != nil {
				logger.Error("Failed to set light",
					"endpoint", args[0],
					"errno", lights.Errno(err),
					"error", err)
				os.Exit(-lights.Errno(err))
			}
		},
	}

	cmd.Flags().IntVar(&flashOnMS, "on-ms", 500, "Flash on duration in milliseconds")
	cmd.Flags().IntVar(&flashOffMS, "off-ms", 500, "Flash off duration in milliseconds")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Use JSON log format")
	return cmd
}
