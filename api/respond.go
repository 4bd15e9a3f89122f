package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/wudi/pdftoolkit/observability"
	"github.com/wudi/pdftoolkit/scratch"
)

// errorBody is the error envelope every endpoint emits.
type errorBody struct {
	Detail string `json:"detail"`
}

func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// failTool reports a processing failure. Errors wrapping tools.ErrNotFound
// keep their explicit "not installed" text so operators can fix the image.
func (s *Server) failTool(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, err.Error())
}

// upload stores the request's "file" multipart part in a fresh workspace and
// returns its path. On failure the client response is already written and the
// returned workspace is nil.
func (s *Server) upload(w http.ResponseWriter, r *http.Request) (string, *scratch.Workspace) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", s.cfg.MaxUploadBytes))
			return "", nil
		}
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return "", nil
	}
	defer file.Close()

	ws, err := s.store.NewWorkspace()
	if err != nil {
		s.log.Error("workspace create failed", observability.Error("err", err))
		writeError(w, http.StatusInternalServerError, "could not allocate scratch space")
		return "", nil
	}
	path, err := ws.Put(header.Filename, file)
	if err != nil {
		ws.Cleanup()
		s.log.Error("upload store failed", observability.Error("err", err))
		writeError(w, http.StatusInternalServerError, "could not store upload")
		return "", nil
	}
	return path, ws
}

// readPart returns the raw bytes of the "file" part for handlers that work
// in-memory (small images, markdown sources).
func (s *Server) readPart(w http.ResponseWriter, r *http.Request) ([]byte, *multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", s.cfg.MaxUploadBytes))
			return nil, nil, false
		}
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return nil, nil, false
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read upload")
		return nil, nil, false
	}
	return data, header, true
}

// sendFile streams path to the client as an attachment download.
func (s *Server) sendFile(w http.ResponseWriter, path, downloadName, contentType string) {
	f, err := os.Open(path)
	if err != nil {
		s.log.Error("output missing", observability.String("path", path), observability.Error("err", err))
		writeError(w, http.StatusInternalServerError, "output file missing")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err == nil {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", info.Size()))
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName))
	io.Copy(w, f)
}
