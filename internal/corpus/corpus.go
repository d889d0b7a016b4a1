// Package corpus merges job postings from heterogeneous sources into one
// normalized pool. Sources form a priority chain: the persisted crawl store
// first, company-registered postings second, then any optional external API.
package corpus

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jobscout/jobscout/internal/models"
)

// minSufficientResults is the pool size below which the relaxation chain
// advances to the next, looser filter.
const minSufficientResults = 5

// minPrimaryResults is the pool size at which the primary source alone is
// considered sufficient and lower-priority sources are not consulted.
const minPrimaryResults = 10

// Source supplies postings for a filter. Implementations push predicates
// into their own storage where they can.
type Source interface {
	Name() string
	Fetch(ctx context.Context, f models.JobFilter) ([]models.JobPosting, error)
}

// Fetcher iterates a prioritized source chain and merges the results.
type Fetcher struct {
	sources []Source
	counter CountSource
	logger  *slog.Logger
}

// CountSource is implemented by the primary source to mirror the keyword
// filter for pagination totals.
type CountSource interface {
	Count(ctx context.Context, keyword string) (int64, error)
}

func NewFetcher(logger *slog.Logger, counter CountSource, sources ...Source) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{sources: sources, counter: counter, logger: logger}
}

// Fetch walks the source chain in priority order. If the primary source
// alone is sufficient it is returned as-is; otherwise lower-priority sources
// are appended with exact (title, company) duplicates dropped. A failing
// source is logged and skipped, never aborting the merge.
func (f *Fetcher) Fetch(ctx context.Context, filter models.JobFilter) []models.JobPosting {
	var merged []models.JobPosting
	seen := make(map[string]struct{})

	for i, src := range f.sources {
		jobs, err := src.Fetch(ctx, filter)
		if err != nil {
			f.logger.Warn("corpus source failed", "source", src.Name(), "err", err)
			continue
		}

		for _, j := range jobs {
			key := dedupeKey(j)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, j)
		}

		if i == 0 && len(merged) >= minPrimaryResults {
			f.logger.Debug("primary source sufficient", "source", src.Name(), "count", len(merged))
			return merged
		}
	}

	return merged
}

// FetchRelaxed runs the monotonic filter-relaxation chain:
// full -> location-only -> unfiltered. Each step runs only while the pool is
// still below the sufficiency threshold and only if it is strictly looser
// than the previous one; with no locations set, location-only would be the
// same empty filter as the final step and is skipped.
func (f *Fetcher) FetchRelaxed(ctx context.Context, filter models.JobFilter) []models.JobPosting {
	pool := f.Fetch(ctx, filter)
	if len(pool) >= minSufficientResults {
		return pool
	}

	if len(filter.Locations) > 0 && (filter.Experience != "" || filter.Keyword != "") {
		relaxed := filter
		relaxed.Experience = ""
		relaxed.Keyword = ""
		pool = f.Fetch(ctx, relaxed)
		f.logger.Info("filter relaxed to location-only", "count", len(pool))
		if len(pool) >= minSufficientResults {
			return pool
		}
	}

	if filter.Experience != "" || filter.Keyword != "" || len(filter.Locations) > 0 {
		relaxed := models.JobFilter{Limit: filter.Limit, Offset: filter.Offset}
		pool = f.Fetch(ctx, relaxed)
		f.logger.Info("filter relaxed to unfiltered pool", "count", len(pool))
	}

	return pool
}

// Count returns the pagination total for a keyword against the primary
// source.
func (f *Fetcher) Count(ctx context.Context, keyword string) (int64, error) {
	if f.counter == nil {
		return 0, nil
	}
	return f.counter.Count(ctx, keyword)
}

// dedupeKey conflates postings with the same case-insensitive title and
// company. Applied across sources only; within the crawl store the
// source-native id remains the identity.
func dedupeKey(j models.JobPosting) string {
	return strings.ToLower(j.Title) + "\x00" + strings.ToLower(j.Company)
}
