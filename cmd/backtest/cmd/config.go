package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backtest/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write a default config file",
	Long: `Config writes a starter configuration to the given path (YAML or JSON,
chosen by extension) so it can be edited and passed to 'backtest run'.`,
	RunE: writeConfig,
}

var configOutPath string

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().StringVarP(&configOutPath, "out", "o", "backtest.yaml", "output path for the config file")
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configOutPath); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", configOutPath)
	return nil
}
