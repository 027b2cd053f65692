package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/smazurov/lightkit/internal/version"
	"github.com/spf13/cobra"
)

// CreateVersionCmd creates the version command.
func CreateVersionCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			info := version.Get()

			if asJSON {
				data, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(1)
				}
				fmt.Println(string(data))
				return
			}

			fmt.Printf("lightkit %s (commit %s, built %s, %s)\n",
				info.Version, info.GitCommit, info.BuildDate, info.Platform)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
