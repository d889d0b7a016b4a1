// Package match ranks job postings against candidate portfolios (and the
// reverse) using embedding cosine similarity. Every degradation path —
// missing credential, failed batch embedding, empty pool — produces a usable
// response instead of an error; only malformed input and missing entities
// propagate to callers.
package match

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jobscout/jobscout/internal/corpus"
	"github.com/jobscout/jobscout/internal/models"
	"github.com/jobscout/jobscout/pkg/embedding"
)

// Matcher orchestrates fetch -> embed -> rank.
type Matcher struct {
	fetcher  *corpus.Fetcher
	embedder embedding.Client
	logger   *slog.Logger
}

func NewMatcher(fetcher *corpus.Fetcher, embedder embedding.Client, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{fetcher: fetcher, embedder: embedder, logger: logger}
}

// RecommendOptions are the caller-supplied knobs for Recommend. Explicit
// filters override the portfolio-derived hints.
type RecommendOptions struct {
	Limit      int
	Experience string
	Locations  []string
}

// Recommend returns postings ranked by cosine similarity to the portfolio.
// The pool is fetched through the filter-relaxation chain; when the
// embedding backend is unavailable or the batch call fails, the pool is
// returned in fetch order with no scores attached.
func (m *Matcher) Recommend(ctx context.Context, doc models.PortfolioDocument, opts RecommendOptions) ([]models.JobPosting, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	// explicit filters win over portfolio hints
	exp := opts.Experience
	if exp == "" {
		exp = doc.ExperienceLevel
	}
	locs := opts.Locations
	if len(locs) == 0 {
		locs = doc.PreferredLocations
	}

	filter := models.JobFilter{Experience: exp, Locations: locs, Limit: limit * 5}
	pool := m.fetcher.FetchRelaxed(ctx, filter)
	if len(pool) == 0 {
		m.logger.Warn("no postings available for recommendation")
		return []models.JobPosting{}, nil
	}

	if !m.embedder.Available() {
		m.logger.Warn("embedding backend unavailable, returning unranked postings")
		return truncate(pool, limit), nil
	}

	texts := make([]string, 0, len(pool)+1)
	texts = append(texts, PortfolioText(doc))
	for _, job := range pool {
		texts = append(texts, JobText(job))
	}

	vectors, err := m.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		m.logger.Error("batch embedding failed, returning unranked postings", "err", err)
		return truncate(pool, limit), nil
	}

	ranked := RankBySimilarity(vectors[0], pool, vectors[1:], limit)

	out := make([]models.JobPosting, 0, len(ranked))
	for _, r := range ranked {
		job := r.Item
		score := RoundScore(r.Score)
		job.SimilarityScore = &score
		out = append(out, job)
	}
	return out, nil
}

// Search fetches postings by keyword. When the keyword matches nothing
// inside the fetched pool, the whole pool is returned: showing something
// beats showing nothing on a cold corpus.
func (m *Matcher) Search(ctx context.Context, keyword string, limit int) ([]models.JobPosting, error) {
	if limit <= 0 {
		limit = 10
	}

	pool := m.fetcher.Fetch(ctx, models.JobFilter{Keyword: keyword, Limit: limit * 2})
	if len(pool) == 0 {
		return []models.JobPosting{}, nil
	}

	matched := filterByKeyword(pool, keyword)
	if len(matched) == 0 {
		matched = pool
	}

	return truncate(matched, limit), nil
}

// GetByID resolves a prefixed posting id. Missing postings are the one
// condition this package surfaces as a caller-visible failure.
func (m *Matcher) GetByID(ctx context.Context, id string) (*models.JobPosting, error) {
	return m.fetcher.GetByID(ctx, id)
}

// Count returns the active-posting total for a keyword.
func (m *Matcher) Count(ctx context.Context, keyword string) (int64, error) {
	return m.fetcher.Count(ctx, keyword)
}

// IsNotFound reports whether err is the missing-posting condition.
func IsNotFound(err error) bool {
	return errors.Is(err, corpus.ErrNotFound)
}

func filterByKeyword(pool []models.JobPosting, keyword string) []models.JobPosting {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return pool
	}

	var out []models.JobPosting
	for _, j := range pool {
		if containsFold(j.Title, kw) || containsFold(j.Description, kw) ||
			anyContainsFold(j.Requirements, kw) || anyContainsFold(j.Preferred, kw) {
			out = append(out, j)
		}
	}
	return out
}

func containsFold(s, lowerKw string) bool {
	return strings.Contains(strings.ToLower(s), lowerKw)
}

func anyContainsFold(items []string, lowerKw string) bool {
	for _, s := range items {
		if containsFold(s, lowerKw) {
			return true
		}
	}
	return false
}

func truncate(pool []models.JobPosting, limit int) []models.JobPosting {
	if len(pool) > limit {
		return pool[:limit]
	}
	return pool
}
