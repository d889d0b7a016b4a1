package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/jobscout/jobscout/internal/match"
	"github.com/jobscout/jobscout/internal/models"
	"github.com/jobscout/jobscout/internal/portfolio"
)

type JobsHandler struct {
	matcher    *match.Matcher
	portfolios *portfolio.Service
}

func NewJobsHandler(m *match.Matcher, p *portfolio.Service) *JobsHandler {
	return &JobsHandler{matcher: m, portfolios: p}
}

// Recommend ranks the corpus against a stored portfolio. Explicit query
// filters (experience, locations) override hints found in the document.
func (h *JobsHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	portfolioID := q.Get("portfolio_id")
	if portfolioID == "" {
		http.Error(w, "portfolio_id is required", http.StatusBadRequest)
		return
	}

	p, err := h.portfolios.Get(r.Context(), portfolioID)
	if err != nil {
		http.Error(w, "failed to load portfolio", http.StatusInternalServerError)
		return
	}
	if p == nil {
		http.Error(w, "portfolio not found", http.StatusNotFound)
		return
	}

	doc, err := portfolio.ParseDocument(p.DocumentJSON)
	if err != nil {
		http.Error(w, "portfolio document is malformed", http.StatusUnprocessableEntity)
		return
	}

	opts := match.RecommendOptions{
		Limit:      parseLimit(q.Get("limit"), 10, 50),
		Experience: q.Get("experience"),
		Locations:  splitCSV(q.Get("locations")),
	}

	jobs, err := h.matcher.Recommend(r.Context(), doc, opts)
	if err != nil {
		http.Error(w, "recommendation failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"portfolio_id": portfolioID,
		"total":        len(jobs),
		"items":        jobs,
	}, http.StatusOK)
}

func (h *JobsHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	keyword := strings.TrimSpace(q.Get("q"))
	limit := parseLimit(q.Get("limit"), 10, 50)

	jobs, err := h.matcher.Search(r.Context(), keyword, limit)
	if err != nil {
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}
	if jobs == nil {
		jobs = []models.JobPosting{}
	}

	writeJSON(w, map[string]any{
		"query": keyword,
		"total": len(jobs),
		"items": jobs,
	}, http.StatusOK)
}

func (h *JobsHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	job, err := h.matcher.GetByID(r.Context(), id)
	if err != nil {
		if match.IsNotFound(err) {
			http.Error(w, "job not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load job", http.StatusInternalServerError)
		return
	}

	writeJSON(w, job, http.StatusOK)
}

func (h *JobsHandler) Count(w http.ResponseWriter, r *http.Request) {
	keyword := strings.TrimSpace(r.URL.Query().Get("q"))

	total, err := h.matcher.Count(r.Context(), keyword)
	if err != nil {
		http.Error(w, "failed to count jobs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"count": total}, http.StatusOK)
}

func parseLimit(raw string, def, max int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
