package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/smazurov/lightkit/internal/logging"
	"github.com/smazurov/lightkit/internal/panel"
	"github.com/smazurov/lightkit/internal/scene"
	"github.com/smazurov/lightkit/pkg/lights"
	"github.com/spf13/cobra"
)

// CreatePlayCmd creates the play command.
func CreatePlayCmd() *cobra.Command {
	var loop bool
	var logJSON bool

	cmd := &cobra.Command{
		Use:   "play <scene-file>",
		Short: "Play a light scene from a TOML file",
		Long: `Loads a scene file, validates it and plays it against the light endpoints. ` +
			`Interrupt with Ctrl-C to stop; the lights keep whatever state the last step wrote.`,
		Args: cobra.ExactArgs(1),
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

			sc, err := scene.LoadFile(args[0])
			if err != nil {
				logger.Error("Failed to load scene", "path", args[0], "error", err)
				os.Exit(1)
			}
			if loop {
				sc.Loop = true
			}

			module := lights.New(lights.WithLogger(logging.GetLogger("lights")))
			pnl, err := panel.New(module, nil, logging.GetLogger("panel"))
			if err != nil {
				logger.Error("Failed to open light panel", "error", err)
				os.Exit(1)
			}
			defer pnl.Close()

			player := scene.NewPlayer(pnl, nil, logging.GetLogger("scene"))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := player.Play(ctx, sc); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Playback failed", "scene", sc.Name, "error", err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().BoolVar(&loop, "loop", false, "Loop the scene until interrupted")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Use JSON log format")
	return cmd
}
