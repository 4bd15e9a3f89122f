// Package api exposes the document toolkit over HTTP: PDF compression,
// linearization, rasterization, OCR and format conversion, all driven by
// multipart uploads.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/netutil"

	"github.com/wudi/pdftoolkit/compress"
	"github.com/wudi/pdftoolkit/config"
	"github.com/wudi/pdftoolkit/convert"
	"github.com/wudi/pdftoolkit/observability"
	"github.com/wudi/pdftoolkit/ocr"
	"github.com/wudi/pdftoolkit/rasterize"
	"github.com/wudi/pdftoolkit/scratch"
	"github.com/wudi/pdftoolkit/tools"
)

// Server wires the service components behind an http.Handler.
type Server struct {
	cfg    config.Config
	log    observability.Logger
	tracer observability.Tracer

	runner     *tools.Runner
	store      *scratch.Store
	compressor *compress.Service
	rasterizer *rasterize.Service
	converter  *convert.Service
	engine     ocr.Engine
	async      *ocr.MemoryAsyncEngine

	mux *http.ServeMux
}

// New assembles a Server from configuration. engine may be nil, in which case
// the package default OCR engine is used.
func New(cfg config.Config, log observability.Logger, tracer observability.Tracer, engine ocr.Engine) (*Server, error) {
	if log == nil {
		log = observability.NopLogger{}
	}
	if tracer == nil {
		tracer = observability.NopTracer()
	}
	if engine == nil {
		engine = ocr.DefaultEngine()
	}
	store, err := scratch.NewStore(cfg.TempDir, log)
	if err != nil {
		return nil, err
	}
	runner := tools.NewRunner(cfg.Tools, log)

	s := &Server{
		cfg:        cfg,
		log:        log,
		tracer:     tracer,
		runner:     runner,
		store:      store,
		compressor: compress.New(runner),
		rasterizer: rasterize.New(runner, cfg.Workers, log),
		converter:  convert.New(runner),
		engine:     engine,
		async:      ocr.NewAsyncEngine(engine),
		mux:        http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)

	s.mux.HandleFunc("POST /compress/basic", s.traced(observability.SpanCompressBasic, s.handleCompressBasic))
	s.mux.HandleFunc("POST /compress/gs", s.traced(observability.SpanCompressPreset, s.handleCompressPreset))
	s.mux.HandleFunc("POST /optimize/qpdf", s.traced(observability.SpanLinearize, s.handleLinearize))
	s.mux.HandleFunc("POST /pdf-to-images", s.traced(observability.SpanRasterize, s.handlePDFToImages))

	s.mux.HandleFunc("POST /ocr", s.traced(observability.SpanOCR, s.handleOCR))
	s.mux.HandleFunc("POST /ocr/image", s.traced(observability.SpanOCRImage, s.handleOCRImage))
	s.mux.HandleFunc("POST /ocr/jobs", s.handleOCRJobCreate)
	s.mux.HandleFunc("GET /ocr/jobs/{id}", s.handleOCRJobGet)
	s.mux.HandleFunc("DELETE /ocr/jobs/{id}", s.handleOCRJobCancel)

	s.mux.HandleFunc("POST /convert/image", s.traced(observability.SpanConvertImage, s.handleConvertImage))
	s.mux.HandleFunc("POST /convert/office", s.traced(observability.SpanConvertOffice, s.handleConvertOffice))
	s.mux.HandleFunc("POST /convert/markdown", s.traced(observability.SpanConvertMD, s.handleConvertMarkdown))
}

// Handler returns the complete middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = s.withAuth(h)
	h = s.withTimeout(h)
	h = s.withLogging(h)
	h = s.withRecovery(h)
	return h
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Listen, err)
	}
	if s.cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConnections)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	s.log.Info("listening", observability.String("addr", s.cfg.Listen))
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
