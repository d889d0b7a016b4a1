package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/jobscout/jobscout/internal/match"
	"github.com/jobscout/jobscout/internal/portfolio"
	"github.com/jobscout/jobscout/pkg/repository"
)

const maxCandidatePool = 200

type CandidatesHandler struct {
	matcher    *match.Matcher
	portfolios *portfolio.Service
	jobRepo    repository.CompanyJobRepo
}

func NewCandidatesHandler(m *match.Matcher, p *portfolio.Service, jr repository.CompanyJobRepo) *CandidatesHandler {
	return &CandidatesHandler{matcher: m, portfolios: p, jobRepo: jr}
}

// MatchCandidates ranks public portfolios against one company posting.
func (h *CandidatesHandler) MatchCandidates(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid job id", http.StatusBadRequest)
		return
	}

	job, err := h.jobRepo.GetCompanyJob(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to load job", http.StatusInternalServerError)
		return
	}
	if job == nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	pool, err := h.portfolios.ListPublic(r.Context(), maxCandidatePool)
	if err != nil {
		http.Error(w, "failed to list portfolios", http.StatusInternalServerError)
		return
	}

	limit := parseLimit(r.URL.Query().Get("limit"), 20, 100)
	matches, err := h.matcher.MatchCandidates(r.Context(), *job, pool, limit)
	if err != nil {
		http.Error(w, "candidate matching failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"job_id":     job.ID,
		"total":      len(matches),
		"candidates": matches,
	}, http.StatusOK)
}
