// Package crawler collects job postings from the job site and maintains the
// persisted corpus: paginated keyword searches, optional detail enrichment,
// upserts keyed by the site-native posting id, and stale-row deactivation.
package crawler

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jobscout/jobscout/internal/config"
	"github.com/jobscout/jobscout/internal/models"
	"github.com/jobscout/jobscout/pkg/repository"
)

const (
	defaultMaxPages    = 3
	defaultMaxPostings = 30
	defaultStaleDays   = 30
)

// Service runs crawl cycles against the configured keyword set.
type Service struct {
	site   *SiteClient
	repo   repository.CrawledJobRepo
	cfg    config.CrawlerConfig
	logger *slog.Logger
}

func NewService(site *SiteClient, repo repository.CrawledJobRepo, cfg config.CrawlerConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaultMaxPages
	}
	if cfg.MaxPostings <= 0 {
		cfg.MaxPostings = defaultMaxPostings
	}
	if cfg.StaleDays <= 0 {
		cfg.StaleDays = defaultStaleDays
	}
	return &Service{site: site, repo: repo, cfg: cfg, logger: logger}
}

// CrawlKeyword collects postings for one keyword. Pagination stops at the
// configured page cap, at the posting cap, or at the first empty page. A page
// fetch failure ends pagination but keeps what earlier pages produced, so a
// mid-crawl network blip still yields a partial batch.
func (s *Service) CrawlKeyword(ctx context.Context, keyword string) ([]models.CrawledJob, error) {
	var raw []RawJob
	for page := 1; page <= s.cfg.MaxPages; page++ {
		if len(raw) >= s.cfg.MaxPostings {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		items, err := s.site.SearchPage(ctx, keyword, page)
		if err != nil {
			s.logger.Warn("search page failed, keeping partial results",
				"keyword", keyword, "page", page, "err", err)
			break
		}
		if len(items) == 0 {
			break
		}
		raw = append(raw, items...)
	}

	if len(raw) > s.cfg.MaxPostings {
		raw = raw[:s.cfg.MaxPostings]
	}
	if len(raw) == 0 {
		return nil, nil
	}

	if s.cfg.FetchDetails {
		s.enrichDetails(ctx, raw)
	}

	jobs := make([]models.CrawledJob, 0, len(raw))
	now := time.Now()
	for _, r := range raw {
		jobs = append(jobs, rawToCrawled(r, now))
	}
	return jobs, nil
}

// enrichDetails fetches each posting's detail page in place. A failed or
// empty detail fetch leaves the card summary untouched for that posting.
func (s *Service) enrichDetails(ctx context.Context, raw []RawJob) {
	for i := range raw {
		if raw[i].URL == "" {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		detail, err := s.site.DetailPage(ctx, raw[i].URL)
		if err != nil {
			s.logger.Debug("detail fetch failed, keeping summary",
				"source_id", raw[i].SourceID, "err", err)
			continue
		}

		if detail.Description != "" {
			raw[i].Description = detail.Description
		}
		if len(detail.Requirements) > 0 {
			raw[i].Requirements = detail.Requirements
		}
		if len(detail.Preferred) > 0 {
			raw[i].Preferred = detail.Preferred
		}
		if detail.Salary != "" {
			raw[i].Salary = detail.Salary
		}
		if len(detail.TechStack) > 0 {
			raw[i].TechStack = mergeUnique(raw[i].TechStack, detail.TechStack)
		}
	}
}

// CrawlAll crawls every configured keyword sequentially and upserts each
// keyword's batch as soon as it lands. One keyword failing never aborts the
// cycle. Returns the total number of rows written.
func (s *Service) CrawlAll(ctx context.Context) (int64, error) {
	keywords := s.cfg.Keywords
	if len(keywords) == 0 {
		keywords = config.DefaultKeywords
	}

	var total int64
	for _, kw := range keywords {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		jobs, err := s.CrawlKeyword(ctx, kw)
		if err != nil {
			s.logger.Error("keyword crawl failed", "keyword", kw, "err", err)
			continue
		}
		if len(jobs) == 0 {
			s.logger.Info("keyword produced no postings", "keyword", kw)
			continue
		}

		n, err := s.repo.UpsertCrawledJobs(ctx, jobs)
		if err != nil {
			s.logger.Error("upsert failed", "keyword", kw, "err", err)
			continue
		}
		total += n
		s.logger.Info("keyword crawled", "keyword", kw, "postings", n)
	}

	return total, nil
}

// RunCycle is one full scheduled pass: crawl everything, then deactivate
// stale rows. Errors are logged, never propagated, so the schedule survives
// any single bad cycle.
func (s *Service) RunCycle(ctx context.Context) {
	start := time.Now()
	s.logger.Info("crawl cycle starting")

	total, err := s.CrawlAll(ctx)
	if err != nil {
		s.logger.Error("crawl cycle aborted", "err", err)
		return
	}

	deactivated, err := s.repo.DeactivateExpired(ctx, s.cfg.StaleDays)
	if err != nil {
		s.logger.Error("stale deactivation failed", "err", err)
	}

	s.logger.Info("crawl cycle finished",
		"postings", total,
		"deactivated", deactivated,
		"took", time.Since(start).Round(time.Millisecond).String())
}

// Reset wipes the corpus table. Used by the administrative reset endpoint,
// which follows it with a fresh detached crawl.
func (s *Service) Reset(ctx context.Context) error {
	return s.repo.ResetCrawledJobs(ctx)
}

func rawToCrawled(r RawJob, crawledAt time.Time) models.CrawledJob {
	description := r.Description
	if description == "" {
		description = r.Snippet
	}
	return models.CrawledJob{
		Source:         "saramin",
		SourceID:       r.SourceID,
		Title:          r.Title,
		Company:        r.Company,
		Location:       r.Location,
		Description:    description,
		Requirements:   r.Requirements,
		Preferred:      r.Preferred,
		Salary:         r.Salary,
		URL:            r.URL,
		Experience:     r.Experience,
		Education:      r.Education,
		EmploymentType: r.EmploymentType,
		Deadline:       r.Deadline,
		TechStack:      r.TechStack,
		CrawledAt:      crawledAt,
		Active:         true,
	}
}

func mergeUnique(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base))
	for _, s := range base {
		seen[strings.ToLower(s)] = struct{}{}
	}
	out := base
	for _, s := range extra {
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
