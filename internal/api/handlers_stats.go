package api

import "net/http"

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.llm == nil || s.llm.Stats == nil {
		jsonError(w, http.StatusServiceUnavailable, "llm stats unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"model": s.cfg.OpenAIModel,
		"stats": s.llm.Stats.Get(),
	})
}
