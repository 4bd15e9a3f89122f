// Package commands implements the pdftoolkit CLI.
package commands

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	envFile    string
)

// Execute runs the CLI and returns the command error, already printed by
// cobra.
func Execute() error {
	root := &cobra.Command{
		Use:           "pdftoolkit",
		Short:         "PDF compression, conversion & OCR toolkit",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// An explicitly named env file must exist; the default .env is
			// optional.
			if envFile != "" {
				return godotenv.Load(envFile)
			}
			if _, err := os.Stat(".env"); err == nil {
				return godotenv.Load()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to load before reading the environment (default .env if present)")

	root.AddCommand(serveCmd(), ocrCmd(), versionCmd())
	return root.Execute()
}
