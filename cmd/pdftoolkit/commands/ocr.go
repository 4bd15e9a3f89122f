package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wudi/pdftoolkit/config"
	"github.com/wudi/pdftoolkit/tools"
)

func ocrCmd() *cobra.Command {
	var langs []string
	cmd := &cobra.Command{
		Use:   "ocr <input.pdf> <output.pdf>",
		Short: "Add a searchable text layer to a PDF",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			runner := tools.NewRunner(cfg.Tools, nil)
			if err := runner.MakeSearchable(cmd.Context(), args[0], args[1], langs, false); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OCR complete: %s\n", args[1])
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&langs, "lang", []string{"eng"}, "OCR language hints")
	return cmd
}
