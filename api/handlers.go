package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/wudi/pdftoolkit/compress"
	"github.com/wudi/pdftoolkit/convert"
	"github.com/wudi/pdftoolkit/ocr"
	"github.com/wudi/pdftoolkit/rasterize"
	"github.com/wudi/pdftoolkit/tools"
)

const fallbackIndex = "<h1>PDF Toolkit API</h1>"

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if data, err := os.ReadFile("index.html"); err == nil {
		w.Write(data)
		return
	}
	fmt.Fprint(w, fallbackIndex)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"tools":  s.runner.Report(),
	})
}

func (s *Server) handleCompressBasic(w http.ResponseWriter, r *http.Request) {
	level, err := intQuery(r, "level", int(compress.DefaultLevel))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !compress.Level(level).Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("level %d out of range 0..3", level))
		return
	}
	in, ws := s.upload(w, r)
	if ws == nil {
		return
	}
	defer ws.Cleanup()

	out := ws.Path("compressed.pdf")
	if err := s.compressor.Basic(r.Context(), in, out, compress.Level(level)); err != nil {
		s.failTool(w, err)
		return
	}
	s.sendFile(w, out, "compressed_basic.pdf", "application/pdf")
}

func (s *Server) handleCompressPreset(w http.ResponseWriter, r *http.Request) {
	preset := compress.Preset(queryDefault(r, "preset", string(compress.DefaultPreset)))
	if !preset.Valid() {
		writeError(w, http.StatusBadRequest, "bad preset")
		return
	}
	in, ws := s.upload(w, r)
	if ws == nil {
		return
	}
	defer ws.Cleanup()

	out := ws.Path("compressed.pdf")
	if err := s.compressor.Preset(r.Context(), in, out, preset); err != nil {
		s.failTool(w, err)
		return
	}
	s.sendFile(w, out, fmt.Sprintf("compressed_gs_%s.pdf", preset), "application/pdf")
}

func (s *Server) handleLinearize(w http.ResponseWriter, r *http.Request) {
	in, ws := s.upload(w, r)
	if ws == nil {
		return
	}
	defer ws.Cleanup()

	out := ws.Path("optimized.pdf")
	if err := s.runner.Linearize(r.Context(), in, out); err != nil {
		s.failTool(w, err)
		return
	}
	s.sendFile(w, out, "optimized_qpdf.pdf", "application/pdf")
}

func (s *Server) handlePDFToImages(w http.ResponseWriter, r *http.Request) {
	dpi, err := intQuery(r, "dpi", rasterize.DefaultDPI)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts := rasterize.Options{DPI: dpi, Format: queryDefault(r, "fmt", "png")}
	if err := opts.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in, ws := s.upload(w, r)
	if ws == nil {
		return
	}
	defer ws.Cleanup()

	pagesDir, err := ws.Subdir("pages")
	if err != nil {
		s.failTool(w, err)
		return
	}
	pages, err := s.rasterizer.Pages(r.Context(), in, pagesDir, opts)
	if err != nil {
		s.failTool(w, err)
		return
	}
	zipPath := ws.Path("pages.zip")
	if err := rasterize.ZipFiles(pages, zipPath); err != nil {
		s.failTool(w, err)
		return
	}
	s.sendFile(w, zipPath, "pages.zip", "application/zip")
}

func (s *Server) handleOCR(w http.ResponseWriter, r *http.Request) {
	in, ws := s.upload(w, r)
	if ws == nil {
		return
	}
	defer ws.Cleanup()

	if detail, ok := probeUploadedPDF(in); !ok {
		writeError(w, http.StatusBadRequest, detail)
		return
	}
	out := ws.Path("searchable.pdf")
	if err := s.runner.MakeSearchable(r.Context(), in, out, s.cfg.OCRLanguages, true); err != nil {
		if errors.Is(err, tools.ErrNotFound) {
			writeError(w, http.StatusInternalServerError,
				"ocrmypdf not installed on server. Install tesseract-ocr and ocrmypdf.")
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("ocrmypdf failed: %v", err))
		return
	}
	s.sendFile(w, out, "ocr_searchable.pdf", "application/pdf")
}

func (s *Server) handleOCRImage(w http.ResponseWriter, r *http.Request) {
	data, header, ok := s.readPart(w, r)
	if !ok {
		return
	}
	format := ocr.FormatForExtension(extOf(header.Filename))
	if format == "" {
		writeError(w, http.StatusBadRequest, "unsupported image type; use png, jpeg or tiff")
		return
	}
	opts := []ocr.InputOption{ocr.WithLanguages(s.languages(r)...)}
	if dpi, err := intQuery(r, "dpi", 0); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if dpi > 0 {
		opts = append(opts, ocr.WithDPI(dpi))
	}
	if psm, err := intQuery(r, "psm", -1); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if psm >= 0 {
		opts = append(opts, ocr.WithTesseractPSM(psm))
	}

	in := ocr.InputFromBytes(header.Filename, data, format, opts...)
	res, err := s.engine.Recognize(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("recognition failed: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleOCRJobCreate(w http.ResponseWriter, r *http.Request) {
	dpi, err := intQuery(r, "dpi", rasterize.DefaultDPI)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts := rasterize.Options{DPI: dpi, Format: "png"}
	if err := opts.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in, ws := s.upload(w, r)
	if ws == nil {
		return
	}
	defer ws.Cleanup()

	if detail, ok := probeUploadedPDF(in); !ok {
		writeError(w, http.StatusBadRequest, detail)
		return
	}
	pagesDir, err := ws.Subdir("pages")
	if err != nil {
		s.failTool(w, err)
		return
	}
	pages, err := s.rasterizer.Pages(r.Context(), in, pagesDir, opts)
	if err != nil {
		s.failTool(w, err)
		return
	}
	// Inputs hold the page bytes, so the workspace can go away with the request.
	inputs := make([]ocr.Input, 0, len(pages))
	langs := s.languages(r)
	for i, page := range pages {
		input, err := ocr.InputFromFile(page, i, ocr.WithLanguages(langs...), ocr.WithDPI(opts.DPI))
		if err != nil {
			s.failTool(w, err)
			return
		}
		inputs = append(inputs, input)
	}
	job, err := s.async.Start(r.Context(), inputs)
	if err != nil {
		s.failTool(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"id":    job.ID(),
		"pages": len(inputs),
	})
}

func (s *Server) handleOCRJobGet(w http.ResponseWriter, r *http.Request) {
	job, ok := s.async.Job(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	status, err := job.Status(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	body := map[string]interface{}{
		"id":     job.ID(),
		"status": status,
	}
	if status.State == ocr.JobStateSucceeded {
		results, err := job.Results(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		body["results"] = results
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleOCRJobCancel(w http.ResponseWriter, r *http.Request) {
	job, ok := s.async.Job(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err := job.Cancel(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	status, err := job.Status(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":     job.ID(),
		"status": status,
	})
}

func (s *Server) handleConvertImage(w http.ResponseWriter, r *http.Request) {
	maxEdge, err := intQuery(r, "max_edge", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	quality, err := intQuery(r, "quality", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts := convert.ImageOptions{
		To:          r.URL.Query().Get("to"),
		MaxEdge:     maxEdge,
		JPEGQuality: quality,
	}
	if err := opts.Normalize(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	data, _, ok := s.readPart(w, r)
	if !ok {
		return
	}
	var out bytes.Buffer
	if err := convert.Image(bytes.NewReader(data), &out, opts); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", opts.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "converted."+opts.Ext()))
	w.Write(out.Bytes())
}

func (s *Server) handleConvertOffice(w http.ResponseWriter, r *http.Request) {
	in, ws := s.upload(w, r)
	if ws == nil {
		return
	}
	defer ws.Cleanup()

	out, err := s.converter.OfficeToPDF(r.Context(), in, ws.Dir())
	if err != nil {
		s.failTool(w, err)
		return
	}
	s.sendFile(w, out, "converted.pdf", "application/pdf")
}

func (s *Server) handleConvertMarkdown(w http.ResponseWriter, r *http.Request) {
	data, header, ok := s.readPart(w, r)
	if !ok {
		return
	}
	ws, err := s.store.NewWorkspace()
	if err != nil {
		s.failTool(w, err)
		return
	}
	defer ws.Cleanup()

	out, err := s.converter.MarkdownToPDF(r.Context(), data, header.Filename, ws.Dir())
	if err != nil {
		s.failTool(w, err)
		return
	}
	s.sendFile(w, out, "converted.pdf", "application/pdf")
}

// languages returns the request's comma-separated lang hints, defaulting to
// the configured list.
func (s *Server) languages(r *http.Request) []string {
	raw := r.URL.Query().Get("lang")
	if raw == "" {
		return s.cfg.OCRLanguages
	}
	var langs []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			langs = append(langs, part)
		}
	}
	if len(langs) == 0 {
		return s.cfg.OCRLanguages
	}
	return langs
}

// probeUploadedPDF rejects empty and non-PDF uploads before any external
// tool sees them.
func probeUploadedPDF(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return "Uploaded file is empty.", false
	}
	f, err := os.Open(path)
	if err != nil {
		return "Uploaded file is not a valid PDF.", false
	}
	defer f.Close()
	header := make([]byte, 5)
	if _, err := f.Read(header); err != nil || string(header) != "%PDF-" {
		return "Uploaded file is not a valid PDF.", false
	}
	return "", true
}

func intQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("query parameter %s must be an integer", name)
	}
	return n, nil
}

func queryDefault(r *http.Request, name, def string) string {
	if v := r.URL.Query().Get(name); v != "" {
		return v
	}
	return def
}

func extOf(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i:]
	}
	return ""
}
