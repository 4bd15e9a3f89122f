package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is overridable at build time via -ldflags.
var version = "0.1.0"

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the pdftoolkit version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
