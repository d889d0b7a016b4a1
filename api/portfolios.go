package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/jobscout/jobscout/internal/portfolio"
)

type PortfoliosHandler struct {
	portfolios *portfolio.Service
}

func NewPortfoliosHandler(p *portfolio.Service) *PortfoliosHandler {
	return &PortfoliosHandler{portfolios: p}
}

type savePortfolioRequest struct {
	ID       string          `json:"id,omitempty"`
	UserName string          `json:"user_name,omitempty"`
	Document json.RawMessage `json:"document"`
	Public   bool            `json:"is_public"`
}

type savePortfolioResponse struct {
	ID string `json:"id"`
}

// Save validates and upserts a portfolio document. Schema violations come
// back as a 400 listing each violation.
func (h *PortfoliosHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req savePortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if len(req.Document) == 0 {
		http.Error(w, "document is required", http.StatusBadRequest)
		return
	}

	p, err := h.portfolios.Save(r.Context(), strings.TrimSpace(req.ID), strings.TrimSpace(req.UserName), req.Document, req.Public)
	if err != nil {
		var invalid *portfolio.ErrInvalidDocument
		if errors.As(err, &invalid) {
			writeJSON(w, map[string]any{
				"error":      "invalid document",
				"violations": invalid.Violations,
			}, http.StatusBadRequest)
			return
		}
		http.Error(w, "failed to save portfolio", http.StatusInternalServerError)
		return
	}

	writeJSON(w, savePortfolioResponse{ID: p.ID}, http.StatusCreated)
}

func (h *PortfoliosHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	p, err := h.portfolios.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to load portfolio", http.StatusInternalServerError)
		return
	}
	if p == nil {
		http.Error(w, "portfolio not found", http.StatusNotFound)
		return
	}

	writeJSON(w, p, http.StatusOK)
}
