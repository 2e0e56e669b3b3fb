package api

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/akozlov/scormgen/internal/course"
)

// handleBuild packages an authored course document synchronously. The body
// is the document itself, JSON by default or YAML when the content type says
// so.
func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "read request body: "+err.Error())
		return
	}

	ext := ".json"
	if ct := r.Header.Get("Content-Type"); strings.Contains(ct, "yaml") {
		ext = ".yaml"
	}

	doc, err := course.Decode(data, ext)
	if err != nil {
		var verr *course.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":   "course document failed validation",
				"defects": verr.Defects,
			})
			return
		}
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	path, err := s.builder.Build(doc, s.cfg.OutputDir, "")
	if err != nil {
		s.log.Error("package build failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "package build failed")
		return
	}

	name := filepath.Base(path)
	writeJSON(w, http.StatusOK, map[string]string{
		"package":      name,
		"download_url": "/api/download/" + name,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if !validPackageName(name) {
		jsonError(w, http.StatusBadRequest, "invalid package name")
		return
	}
	path := filepath.Join(s.cfg.OutputDir, name)
	if _, err := os.Stat(path); err != nil {
		jsonError(w, http.StatusNotFound, "package not found")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeFile(w, r, path)
}

// validPackageName rejects anything that could escape the output directory.
func validPackageName(name string) bool {
	if name == "" || !strings.HasSuffix(name, ".zip") {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	return true
}
