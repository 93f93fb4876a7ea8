// Package api serves completed analysis results over HTTP.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/skyline-analytics/adgap/internal/pipeline"
)

type Server struct {
	router *chi.Mux
	port   int

	mu      sync.RWMutex
	results map[string]*pipeline.Result
	order   []string
}

func NewServer(port int) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:  router,
		port:    port,
		results: make(map[string]*pipeline.Result),
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/providers", s.providers)
	router.Get("/api/v1/providers/{provider}/verdicts", s.verdicts)
	router.Get("/api/v1/providers/{provider}/frequencies", s.frequencies)

	return s
}

// Record registers a completed run, replacing any earlier run for the
// same provider. Safe to call while the server is live.
func (s *Server) Record(res *pipeline.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.results[res.Provider]; !seen {
		s.order = append(s.order, res.Provider)
	}
	s.results[res.Provider] = res
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type providerSummary struct {
	Provider      string         `json:"provider"`
	Sessions      int            `json:"sessions"`
	Devices       int            `json:"devices"`
	VerdictCounts map[string]int `json:"verdict_counts"`
}

func (s *Server) providers(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]providerSummary, 0, len(s.order))
	for _, name := range s.order {
		res := s.results[name]
		summaries = append(summaries, providerSummary{
			Provider:      name,
			Sessions:      len(res.Sessions),
			Devices:       len(res.Verdicts),
			VerdictCounts: res.VerdictCounts(),
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

type verdictPayload struct {
	DeviceID         string   `json:"tv_id"`
	SubscriptionType string   `json:"subscription_type"`
	TotalGaps        int      `json:"total_gaps"`
	AdLikeGaps       int      `json:"ad_like_gaps"`
	LongGaps         int      `json:"long_gaps"`
	AdGapProportion  float64  `json:"ad_gap_proportion"`
	MostCommonRanges []string `json:"most_common_ranges"`
}

func (s *Server) verdicts(w http.ResponseWriter, r *http.Request) {
	res, ok := s.lookup(chi.URLParam(r, "provider"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown provider"})
		return
	}

	payload := make([]verdictPayload, 0, len(res.Verdicts))
	for _, v := range res.Verdicts {
		payload = append(payload, verdictPayload{
			DeviceID:         v.DeviceID,
			SubscriptionType: v.SubscriptionType,
			TotalGaps:        v.TotalGaps,
			AdLikeGaps:       v.AdLikeGaps,
			LongGaps:         v.LongGaps,
			AdGapProportion:  v.AdGapProportion,
			MostCommonRanges: v.MostCommonRanges,
		})
	}
	writeJSON(w, http.StatusOK, payload)
}

type frequencyPayload struct {
	DeviceID  string `json:"tv_id"`
	GapRange  string `json:"gap_range"`
	Frequency int    `json:"frequency"`
}

func (s *Server) frequencies(w http.ResponseWriter, r *http.Request) {
	res, ok := s.lookup(chi.URLParam(r, "provider"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown provider"})
		return
	}

	payload := make([]frequencyPayload, 0, len(res.Frequencies))
	for _, f := range res.Frequencies {
		payload = append(payload, frequencyPayload{
			DeviceID:  f.DeviceID,
			GapRange:  f.Range.Label(),
			Frequency: f.Frequency,
		})
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) lookup(provider string) (*pipeline.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.results[provider]
	return res, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
