package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/akozlov/scormgen/internal/course"
	"github.com/akozlov/scormgen/internal/generate"
	"github.com/akozlov/scormgen/internal/refdoc"
)

// refTokenBudget caps how much extracted reference text is passed to the
// model alongside the prompts.
const refTokenBudget = 6000

// generateRequest wraps the generation params. final_test_questions is a
// pointer so an omitted field falls back to the configured default while an
// explicit 0 skips the assessment stage.
type generateRequest struct {
	generate.Params
	FinalTestQuestions *int `json:"final_test_questions"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest

	ct := r.Header.Get("Content-Type")
	if isMultipart(ct) {
		if err := s.parseMultipartGenerate(w, r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	if req.Topic == "" {
		jsonError(w, http.StatusBadRequest, "topic is required")
		return
	}

	p := req.Params
	if req.FinalTestQuestions != nil {
		p.FinalTestQuestions = *req.FinalTestQuestions
	} else {
		p.FinalTestQuestions = s.cfg.FinalTestQuestions
	}
	s.defaultParams(&p)

	task := NewTask(p.Topic)
	if err := s.tasks.Begin(task); err != nil {
		jsonError(w, http.StatusConflict, err.Error())
		return
	}
	go s.runGeneration(task, p)

	s.log.Info("generation task accepted", "task_id", task.ID, "topic", p.Topic)
	writeJSON(w, http.StatusAccepted, map[string]string{"task_id": task.ID})
}

func isMultipart(contentType string) bool {
	return len(contentType) >= 19 && contentType[:19] == "multipart/form-data"
}

// parseMultipartGenerate reads the params JSON field and the optional
// reference document upload.
func (s *Server) parseMultipartGenerate(w http.ResponseWriter, r *http.Request, req *generateRequest) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		return fmt.Errorf("parse multipart form: %w", err)
	}

	if params := r.FormValue("params"); params != "" {
		if err := json.Unmarshal([]byte(params), req); err != nil {
			return fmt.Errorf("invalid params field: %w", err)
		}
	}
	if req.Topic == "" {
		req.Topic = r.FormValue("topic")
	}

	file, header, err := r.FormFile("reference")
	if err == http.ErrMissingFile {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read reference upload: %w", err)
	}
	defer file.Close()

	extractor, err := refdoc.ForFile(header.Filename)
	if err != nil {
		return err
	}
	doc, err := extractor.Extract(file, header.Filename)
	if err != nil {
		return fmt.Errorf("extract reference text: %w", err)
	}
	req.ReferenceText = refdoc.Truncate(doc.Text, refTokenBudget)
	s.log.Info("reference document attached",
		"filename", header.Filename,
		"tokens", refdoc.EstimateTokens(req.ReferenceText))
	return nil
}

// runGeneration drives one task to completion in the background.
func (s *Server) runGeneration(task *Task, p generate.Params) {
	defer s.tasks.Finish()

	orch := generate.NewOrchestrator(s.llm, s.log, task.SetProgress)
	doc, err := orch.RunCached(context.Background(), p, s.cfg.CacheDir)
	if err != nil {
		s.log.Error("generation failed", "task_id", task.ID, "error", err)
		task.Fail(err)
		return
	}
	if defects := course.Validate(doc); len(defects) > 0 {
		task.AddWarnings(defects)
	}

	path, err := s.builder.Build(doc, s.cfg.OutputDir, "")
	if err != nil {
		s.log.Error("package build failed", "task_id", task.ID, "error", err)
		task.Fail(err)
		return
	}
	task.Complete(filepath.Base(path))
	s.log.Info("generation task completed", "task_id", task.ID, "package", filepath.Base(path))
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	task := s.tasks.Get(chi.URLParam(r, "taskID"))
	if task == nil {
		jsonError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task.Snapshot())
}
