package api

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/vytor/worddee/internal/dashboard"
	"github.com/vytor/worddee/internal/jobs"
	"github.com/vytor/worddee/internal/logger"
	"github.com/vytor/worddee/internal/metrics"
	"github.com/vytor/worddee/internal/practice"
)

type Server struct {
	Practice  *practice.Service
	Dashboard *dashboard.Aggregator
	Backend   jobs.Pinger
	Probe     *jobs.BackendProbe
	Templates *template.Template
	Metrics   *metrics.Metrics
	Clock     practice.Clock
	TimerTick time.Duration
}

type pageData map[string]any

func (s *Server) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

// render buffers the page; a template error still produces a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	if data == nil {
		data = pageData{}
	}
	data["path"] = r.URL.Path

	log := logger.FromContext(r.Context())
	var buf bytes.Buffer
	if err := s.Templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Error("failed to render template %s: %v", name, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response: %v", err)
	}
}
