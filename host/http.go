package host

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/wayacreates/waya"
)

// maxCommandBytes caps the body of POST /command.
const maxCommandBytes = 64 << 10

type commandRequest struct {
	Line string `json:"line"`
}

type commandResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type sessionInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	State  string `json:"state"`
	Active bool   `json:"active"`
}

// NewHandler exposes the loop over HTTP:
//
//	GET  /health    liveness
//	GET  /metrics   Prometheus exposition of gatherer (omitted when nil)
//	GET  /sessions  open sessions as JSON
//	POST /command   one command line, as text/plain or {"line": "..."}
func NewHandler(loop *Loop, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/sessions", loop.handleSessions)
	r.Post("/command", loop.handleCommand)
	return r
}

func (l *Loop) handleSessions(w http.ResponseWriter, r *http.Request) {
	var out []sessionInfo
	err := l.Do(r.Context(), func(l *Loop) error {
		active := l.dispatcher.Active()
		out = []sessionInfo{}
		l.sessions.Each(func(s *waya.Session) bool {
			out = append(out, sessionInfo{
				ID:     s.ID.String(),
				Name:   s.Name,
				State:  s.State().String(),
				Active: s.ID == active,
			})
			return true
		})
		return nil
	})
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, commandResponse{Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (l *Loop) handleCommand(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxCommandBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, commandResponse{Message: err.Error()})
		return
	}
	line := string(body)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req commandRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, commandResponse{Message: "invalid JSON: " + err.Error()})
			return
		}
		line = req.Line
	}

	res, err := l.Execute(r.Context(), strings.TrimSpace(line))
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, commandResponse{Message: err.Error()})
		return
	}
	l.log.Debug("http command",
		zap.String("request_id", chimiddleware.GetReqID(r.Context())),
		zap.Int("code", res.Code))

	status := http.StatusOK
	if !res.OK() {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, commandResponse{Code: res.Code, Message: res.Message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
