package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/xtding233/galton-board/internal/galton"
	"github.com/xtding233/galton-board/internal/history"
	"github.com/xtding233/galton-board/internal/profile"
	"github.com/xtding233/galton-board/internal/render"
)

type simulateResp struct {
	RunID     string            `json:"run_id,omitempty"`
	Slots     int               `json:"slots,omitempty"`
	Requested int               `json:"requested,omitempty"`
	Balls     int               `json:"balls,omitempty"`
	Workers   int               `json:"workers,omitempty"`
	ElapsedMs float64           `json:"elapsed_ms,omitempty"`
	Counts    galton.SlotCounts `json:"counts,omitempty"`
	Stats     *galton.Stats     `json:"stats,omitempty"`
	Err       string            `json:"err,omitempty"`
}

// Handler returns the HTTP API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /simulate", s.handleSimulate)
	mux.HandleFunc("GET /histogram", s.handleHistogram)
	mux.HandleFunc("GET /runs/{id}", s.handleRun)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

func parseFloat(r *http.Request, key string) (*float64, string) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, ""
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, "invalid " + key
	}
	return &f, ""
}

func parseInt(r *http.Request, key string) (*int, string) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, ""
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, "invalid " + key
	}
	return &n, ""
}

func parseString(r *http.Request, key string) *string {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	return &v
}

// parseOverrides reads board parameters from the query string.
func parseOverrides(r *http.Request) (profile.Overrides, string) {
	var o profile.Overrides
	var msg string
	if o.Slots, msg = parseInt(r, "slots"); msg != "" {
		return o, msg
	}
	if o.Balls, msg = parseInt(r, "balls"); msg != "" {
		return o, msg
	}
	if o.Bias, msg = parseFloat(r, "bias"); msg != "" {
		return o, msg
	}
	if o.Threads, msg = parseInt(r, "threads"); msg != "" {
		return o, msg
	}
	if o.ParallelThreshold, msg = parseInt(r, "threshold"); msg != "" {
		return o, msg
	}
	o.Strategy = parseString(r, "strategy")
	o.Remainder = parseString(r, "remainder")
	o.Style = parseString(r, "style")
	return o, ""
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	if isBadRequest(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	o, msg := parseOverrides(r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, simulateResp{Err: msg})
		return
	}
	out, err := s.simulate(r.Context(), r.URL.Query().Get("profile"), o)
	if err != nil {
		writeJSON(w, statusFor(err), simulateResp{Err: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, simulateResp{
		RunID:     out.record.ID,
		Slots:     out.settings.Board.Slots,
		Requested: out.settings.Board.Balls,
		Balls:     out.record.Balls,
		Workers:   out.result.Plan.Workers,
		ElapsedMs: float64(out.result.Elapsed.Microseconds()) / 1000,
		Counts:    out.result.Counts,
		Stats:     &out.stats,
	})
}

func (s *Server) handleHistogram(w http.ResponseWriter, r *http.Request) {
	o, msg := parseOverrides(r)
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	out, err := s.simulate(r.Context(), r.URL.Query().Get("profile"), o)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	rs := out.settings.Render
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Run-Id", out.record.ID)
	if err := render.Chart(w, out.result.Counts, rs.Style, rs.Height, rs.Width); err != nil {
		log.Printf("[Server] Failed to render run %s: %v", out.record.ID, err)
		return
	}
	_, _ = w.Write([]byte("\n" + render.NewReport(out.result, out.settings.Board.Balls).String() + "\n"))
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.Error(w, "run history is not configured", http.StatusServiceUnavailable)
		return
	}
	rec, err := s.history.Get(r.Context(), r.PathValue("id"))
	if history.IsNotFound(err) {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.history != nil {
		if err := s.history.Ping(r.Context()); err != nil {
			http.Error(w, "redis: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	_, _ = w.Write([]byte("ok\n"))
}
