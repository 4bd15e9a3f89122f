package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wudi/pdftoolkit/api"
	"github.com/wudi/pdftoolkit/config"
	"github.com/wudi/pdftoolkit/observability"

	// Registers Tesseract as the default OCR engine.
	_ "github.com/wudi/pdftoolkit/ocr/tesseract"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			log := observability.NewLogger(os.Stderr, observability.ParseLevel(cfg.LogLevel))

			tracer := observability.NopTracer()
			if cfg.Tracing {
				if err := observability.InitTracing("pdftoolkit", version, os.Stdout); err != nil {
					return err
				}
				tracer = observability.NewOTelTracer("pdftoolkit")
			}

			srv, err := api.New(cfg, log, tracer, nil)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
}
