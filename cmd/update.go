package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/smazurov/lightkit/internal/logging"
	"github.com/smazurov/lightkit/internal/updater"
	"github.com/spf13/cobra"
)

// CreateUpdateCmd creates the update command.
func CreateUpdateCmd() *cobra.Command {
	var check bool
	var rollback bool
	var dev bool
	var prerelease bool
	var repository string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update lightkit to the latest release",
		Long: `Checks GitHub for a newer release and replaces the running binary with it. ` +
			`The previous binary is backed up and can be restored with --rollback.`,
		Run: func(_ *cobra.Command, _ []string) {
			logging.Initialize(logging.Config{
				Level:  "info",
				Format: "text",
			})
			logger := logging.GetLogger("cli")

			svc, err := updater.NewService(&updater.Options{
				Repository: repository,
				Prerelease: prerelease,
			})
			if err != nil {
				logger.Error("Failed to create update service", "error", err)
				os.Exit(1)
			}
			if !svc.IsEnabled() {
				logger.Error("Update service disabled", "reason", svc.DisabledReason())
				os.Exit(1)
			}

			ctx := context.Background()

			switch {
			case rollback:
				if err := svc.Rollback(ctx); err != nil {
					logger.Error("Rollback failed", "error", err)
					os.Exit(1)
				}
				fmt.Println("rolled back to previous version, restarting")

			case check:
				info, err := svc.CheckForUpdate(ctx)
				if err != nil {
					logger.Error("Update check failed", "error", err)
					os.Exit(1)
				}
				if info.UpdateAvailable {
					fmt.Printf("update available: %s -> %s\n", info.CurrentVersion, info.LatestVersion)
					fmt.Println(info.ReleaseURL)
				} else {
					fmt.Printf("up to date: %s\n", info.CurrentVersion)
				}
				if status := svc.GetStatus(ctx); status.BackupAvailable {
					fmt.Printf("rollback available: %s\n", status.BackupVersion)
				}

			case dev:
				if err := svc.ApplyDevBuild(ctx); err != nil {
					logger.Error("Dev build update failed", "error", err)
					os.Exit(1)
				}
				fmt.Println("dev build applied, restarting")

			default:
				if err := svc.ApplyUpdate(ctx); err != nil {
					logger.Error("Update failed", "error", err)
					os.Exit(1)
				}
				fmt.Println("update applied, restarting")
			}
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Check for updates without applying")
	cmd.Flags().BoolVar(&rollback, "rollback", false, "Restore the previously backed up version")
	cmd.Flags().BoolVar(&dev, "dev", false, "Apply the latest rolling dev build")
	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "Include prereleases when checking")
	cmd.Flags().StringVar(&repository, "repository", "smazurov/lightkit", "GitHub repository slug")
	return cmd
}
