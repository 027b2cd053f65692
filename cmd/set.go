package cmd

import (
	"fmt"
	"os"

	"github.com/smazurov/lightkit/internal/logging"
	"github.com/smazurov/lightkit/pkg/lights"
	"github.com/spf13/cobra"
)

// CreateSetCmd creates the set command.
func CreateSetCmd() *cobra.Command {
	var flashMode string
	var flashOnMS int
	var flashOffMS int
	var logJSON bool

	cmd := &cobra.Command{
		Use:   "set <endpoint> <color>",
		Short: "Apply a light state to one endpoint",
		Long: `Writes a single light state to the backlight, notifications or attention endpoint. ` +
			`Colors are hex RRGGBB or AARRGGBB; the alpha byte overrides the LED brightness level.`,
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

			state, err := parseState(args[1], flashMode, flashOnMS, flashOffMS)
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
				// Exit with the positive errno so scripts can tell ENOENT
				// from EACCES.
				os.Exit(-lights.Errno(err))
			}
		},
	}

	cmd.Flags().StringVar(&flashMode, "flash", "none", "Flash mode (none, timed, hardware)")
	cmd.Flags().IntVar(&flashOnMS, "on-ms", 0, "Flash on duration in milliseconds")
	cmd.Flags().IntVar(&flashOffMS, "off-ms", 0, "Flash off duration in milliseconds")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Use JSON log format")
	return cmd
}

func parseState(color, flash string, onMS, offMS int) (lights.State, error) {
	c, err := lights.ParseColor(color)
	if err != nil {
		return lights.State{}, err
	}

	f, err := lights.ParseFlashMode(flash)
	if err != nil {
		return lights.State{}, err
	}

	if onMS < 0 || offMS < 0 {
		return lights.State{}, fmt.Errorf("negative flash duration")
	}

	return lights.State{
		Color:      c,
		Flash:      f,
		FlashOnMS:  onMS,
		FlashOffMS: offMS,
	}, nil
}
