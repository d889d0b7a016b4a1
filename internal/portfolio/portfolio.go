// Package portfolio stores and validates candidate portfolio documents. The
// document body is JSON validated against an embedded schema; a document that
// fails validation is a caller error, not a degradation case.
package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "embed"

	"github.com/google/uuid"
	"github.com/qri-io/jsonschema"

	"github.com/jobscout/jobscout/internal/models"
	"github.com/jobscout/jobscout/pkg/repository"
)

//go:embed schema.json
var documentSchemaJSON []byte

// ErrInvalidDocument wraps schema violations so callers can map them to a
// 400-class response.
type ErrInvalidDocument struct {
	Violations []string
}

func (e *ErrInvalidDocument) Error() string {
	return "portfolio: invalid document: " + strings.Join(e.Violations, "; ")
}

// Service wraps the portfolio repository with document validation.
type Service struct {
	repo   repository.PortfolioRepo
	schema *jsonschema.Schema
	logger *slog.Logger
}

func NewService(repo repository.PortfolioRepo, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(documentSchemaJSON, rs); err != nil {
		return nil, fmt.Errorf("compile portfolio schema: %w", err)
	}

	return &Service{repo: repo, schema: rs, logger: logger}, nil
}

// Validate checks a raw document against the embedded schema. Returns
// *ErrInvalidDocument listing every violation, or an execution error when the
// payload is not even JSON.
func (s *Service) Validate(ctx context.Context, document []byte) error {
	verrs, err := s.schema.ValidateBytes(ctx, document)
	if err != nil {
		return fmt.Errorf("portfolio: validate document: %w", err)
	}
	if len(verrs) > 0 {
		violations := make([]string, 0, len(verrs))
		for _, v := range verrs {
			violations = append(violations, v.Error())
		}
		return &ErrInvalidDocument{Violations: violations}
	}
	return nil
}

// Save validates and upserts a portfolio. A blank id gets a fresh uuid;
// the stored document is the raw validated JSON, untouched.
func (s *Service) Save(ctx context.Context, id, userName string, document []byte, public bool) (*models.Portfolio, error) {
	if err := s.Validate(ctx, document); err != nil {
		return nil, err
	}

	if id == "" {
		id = uuid.NewString()
	}

	p := &models.Portfolio{
		ID:           id,
		UserName:     userName,
		DocumentJSON: string(document),
		Public:       public,
		Updated:      time.Now().Unix(),
	}
	if err := s.repo.CreatePortfolio(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("portfolio saved", "portfolio_id", id, "public", public)
	return p, nil
}

// Get returns a stored portfolio, or (nil, nil) when the id is unknown.
func (s *Service) Get(ctx context.Context, id string) (*models.Portfolio, error) {
	return s.repo.GetPortfolio(ctx, id)
}

// ListPublic returns public portfolios for candidate matching.
func (s *Service) ListPublic(ctx context.Context, limit int) ([]models.Portfolio, error) {
	if limit <= 0 {
		limit = 200
	}
	return s.repo.ListPublicPortfolios(ctx, limit)
}

// ParseDocument decodes stored document JSON into its structured view.
func ParseDocument(documentJSON string) (models.PortfolioDocument, error) {
	var doc models.PortfolioDocument
	if err := json.Unmarshal([]byte(documentJSON), &doc); err != nil {
		return models.PortfolioDocument{}, fmt.Errorf("portfolio: parse document: %w", err)
	}
	return doc, nil
}
