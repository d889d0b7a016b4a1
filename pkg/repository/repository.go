package repository

import (
	"context"

	"github.com/jobscout/jobscout/internal/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

type CrawledJobRepo interface {
	// UpsertCrawledJob inserts or replaces a row keyed by source_id and
	// always resets the active flag. Returns the number of rows written.
	UpsertCrawledJob(ctx context.Context, j *models.CrawledJob) (int64, error)
	UpsertCrawledJobs(ctx context.Context, jobs []models.CrawledJob) (int64, error)
	// ListCrawledJobs returns active rows matching the filter predicates,
	// newest crawl first. Predicates are evaluated in SQL.
	ListCrawledJobs(ctx context.Context, f models.JobFilter) ([]models.CrawledJob, error)
	CountActiveCrawledJobs(ctx context.Context, keyword string) (int64, error)
	GetCrawledJobBySourceID(ctx context.Context, sourceID string) (*models.CrawledJob, error)
	// DeactivateExpired flips rows inactive when their deadline has passed
	// and the row is older than staleDays. Returns the flipped count.
	DeactivateExpired(ctx context.Context, staleDays int) (int64, error)
	// ResetCrawledJobs wipes the corpus table (administrative action only).
	ResetCrawledJobs(ctx context.Context) error
}

type CompanyJobRepo interface {
	CreateCompanyJob(ctx context.Context, j *models.CompanyJobPosting) (int64, error)
	GetCompanyJob(ctx context.Context, id int64) (*models.CompanyJobPosting, error)
	// ListPublishedCompanyJobs returns published postings, optionally
	// keyword-filtered across title/description/company.
	ListPublishedCompanyJobs(ctx context.Context, keyword string, limit int) ([]models.CompanyJobPosting, error)
}

type PortfolioRepo interface {
	CreatePortfolio(ctx context.Context, p *models.Portfolio) error
	GetPortfolio(ctx context.Context, id string) (*models.Portfolio, error)
	ListPublicPortfolios(ctx context.Context, limit int) ([]models.Portfolio, error)
}
