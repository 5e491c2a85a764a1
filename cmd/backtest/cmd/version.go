package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the backtest CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("backtest version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
