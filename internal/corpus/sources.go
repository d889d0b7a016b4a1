package corpus

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jobscout/jobscout/internal/models"
	"github.com/jobscout/jobscout/pkg/repository"
)

// ErrNotFound is returned when no source can resolve a posting id.
var ErrNotFound = errors.New("corpus: posting not found")

// Resolver is implemented by sources that can look a posting up by its
// prefixed id. claimed reports whether the id belongs to the source at all,
// so the chain can distinguish "wrong source" from "known prefix, no row".
type Resolver interface {
	Resolve(ctx context.Context, id string) (post *models.JobPosting, claimed bool, err error)
}

// GetByID resolves a prefixed posting id against the source chain. There is
// deliberately no in-process id cache: every lookup hits the owning store so
// detail views never serve stale cross-request state.
func (f *Fetcher) GetByID(ctx context.Context, id string) (*models.JobPosting, error) {
	for _, src := range f.sources {
		r, ok := src.(Resolver)
		if !ok {
			continue
		}
		post, claimed, err := r.Resolve(ctx, id)
		if err != nil {
			return nil, err
		}
		if claimed {
			if post == nil {
				return nil, ErrNotFound
			}
			return post, nil
		}
	}
	return nil, ErrNotFound
}

// ── Crawl store source ────────────────────────────────────────

// StoreSource serves postings from the persisted crawl corpus. It is the
// primary source; its rows carry the "crawled-" id prefix.
type StoreSource struct {
	repo repository.CrawledJobRepo
}

func NewStoreSource(repo repository.CrawledJobRepo) *StoreSource {
	return &StoreSource{repo: repo}
}

func (s *StoreSource) Name() string { return "crawled-store" }

func (s *StoreSource) Fetch(ctx context.Context, f models.JobFilter) ([]models.JobPosting, error) {
	rows, err := s.repo.ListCrawledJobs(ctx, f)
	if err != nil {
		return nil, err
	}

	out := make([]models.JobPosting, 0, len(rows))
	for _, r := range rows {
		out = append(out, CrawledToPosting(r))
	}
	return out, nil
}

func (s *StoreSource) Count(ctx context.Context, keyword string) (int64, error) {
	return s.repo.CountActiveCrawledJobs(ctx, keyword)
}

func (s *StoreSource) Resolve(ctx context.Context, id string) (*models.JobPosting, bool, error) {
	sourceID, ok := strings.CutPrefix(id, "crawled-")
	if !ok {
		return nil, false, nil
	}

	row, err := s.repo.GetCrawledJobBySourceID(ctx, sourceID)
	if err != nil {
		return nil, true, err
	}
	if row == nil {
		return nil, true, nil
	}
	p := CrawledToPosting(*row)
	return &p, true, nil
}

// CrawledToPosting converts a corpus row into the source-agnostic shape.
func CrawledToPosting(r models.CrawledJob) models.JobPosting {
	return models.JobPosting{
		ID:           "crawled-" + r.SourceID,
		Title:        r.Title,
		Company:      r.Company,
		Location:     r.Location,
		Description:  r.Description,
		Requirements: r.Requirements,
		Preferred:    r.Preferred,
		Salary:       r.Salary,
		URL:          r.URL,
	}
}

// ── Company registry source ───────────────────────────────────

// CompanySource serves published company-registered postings with the
// "cjp-" id prefix.
type CompanySource struct {
	repo repository.CompanyJobRepo
}

func NewCompanySource(repo repository.CompanyJobRepo) *CompanySource {
	return &CompanySource{repo: repo}
}

func (s *CompanySource) Name() string { return "company-registry" }

func (s *CompanySource) Fetch(ctx context.Context, f models.JobFilter) ([]models.JobPosting, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.repo.ListPublishedCompanyJobs(ctx, f.Keyword, limit)
	if err != nil {
		return nil, err
	}

	out := make([]models.JobPosting, 0, len(rows))
	for _, r := range rows {
		out = append(out, CompanyToPosting(r))
	}
	return out, nil
}

func (s *CompanySource) Resolve(ctx context.Context, id string) (*models.JobPosting, bool, error) {
	raw, ok := strings.CutPrefix(id, "cjp-")
	if !ok {
		return nil, false, nil
	}
	numeric, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, true, nil
	}

	row, err := s.repo.GetCompanyJob(ctx, numeric)
	if err != nil {
		return nil, true, err
	}
	if row == nil {
		return nil, true, nil
	}
	p := CompanyToPosting(*row)
	return &p, true, nil
}

// CompanyToPosting converts a registry row into the source-agnostic shape.
func CompanyToPosting(r models.CompanyJobPosting) models.JobPosting {
	return models.JobPosting{
		ID:           "cjp-" + strconv.FormatInt(r.ID, 10),
		Title:        r.Title,
		Company:      r.CompanyName,
		Location:     r.Location,
		Description:  r.Description,
		Requirements: r.Requirements,
		Preferred:    r.Preferred,
		Salary:       r.Salary,
	}
}
