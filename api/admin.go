package api

import (
	"context"
	"net/http"

	"github.com/jobscout/jobscout/internal/crawler"
)

type AdminHandler struct {
	crawler *crawler.Service
}

func NewAdminHandler(c *crawler.Service) *AdminHandler {
	return &AdminHandler{crawler: c}
}

// TriggerCrawl kicks off a crawl cycle in the background and returns
// immediately. Overlap with a scheduled cycle is safe: upserts are
// idempotent on the source-native id.
func (h *AdminHandler) TriggerCrawl(w http.ResponseWriter, r *http.Request) {
	if h.crawler == nil {
		http.Error(w, "crawler is disabled", http.StatusServiceUnavailable)
		return
	}

	go h.crawler.RunCycle(context.Background())

	writeJSON(w, map[string]any{"status": "crawl started"}, http.StatusAccepted)
}

// ResetCorpus wipes the crawled corpus and starts a fresh crawl. The wipe is
// synchronous so a failure is reported; the re-crawl runs detached.
func (h *AdminHandler) ResetCorpus(w http.ResponseWriter, r *http.Request) {
	if h.crawler == nil {
		http.Error(w, "crawler is disabled", http.StatusServiceUnavailable)
		return
	}

	if err := h.crawler.Reset(r.Context()); err != nil {
		http.Error(w, "failed to reset corpus", http.StatusInternalServerError)
		return
	}

	go h.crawler.RunCycle(context.Background())

	writeJSON(w, map[string]any{"status": "corpus reset, crawl started"}, http.StatusAccepted)
}
