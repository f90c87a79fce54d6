package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgmt/pgmt/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the pgmt version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pgmt %s %s (%s, built %s)\n",
			version.App(), version.Platform(), version.GitCommit, version.BuildDate)
	},
}
