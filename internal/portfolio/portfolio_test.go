package portfolio_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jobscout/jobscout/internal/models"
	"github.com/jobscout/jobscout/internal/portfolio"
)

type memPortfolioRepo struct {
	rows map[string]models.Portfolio
}

func newMemPortfolioRepo() *memPortfolioRepo {
	return &memPortfolioRepo{rows: make(map[string]models.Portfolio)}
}

func (m *memPortfolioRepo) CreatePortfolio(ctx context.Context, p *models.Portfolio) error {
	m.rows[p.ID] = *p
	return nil
}

func (m *memPortfolioRepo) GetPortfolio(ctx context.Context, id string) (*models.Portfolio, error) {
	if p, ok := m.rows[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (m *memPortfolioRepo) ListPublicPortfolios(ctx context.Context, limit int) ([]models.Portfolio, error) {
	var out []models.Portfolio
	for _, p := range m.rows {
		if p.Public {
			out = append(out, p)
		}
	}
	return out, nil
}

func newTestService(t *testing.T) *portfolio.Service {
	t.Helper()
	svc, err := portfolio.NewService(newMemPortfolioRepo(), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

const validDocument = `{
	"summary": "Go backend engineer",
	"skills": [{"name": "Go", "level": "advanced"}, {"name": "SQL"}],
	"experiences": [{"company": "Acme", "role": "Backend Engineer", "description": "API 서버 개발"}],
	"projects": [{"name": "jobscout", "tech_stack": ["Go", "SQLite"]}],
	"experience_level": "3-5",
	"preferred_locations": ["서울"]
}`

func TestValidateAcceptsWellFormedDocument(t *testing.T) {
	svc := newTestService(t)
	if err := svc.Validate(context.Background(), []byte(validDocument)); err != nil {
		t.Fatalf("valid document rejected: %v", err)
	}
}

func TestValidateRejectsSchemaViolations(t *testing.T) {
	svc := newTestService(t)

	// skill entries require a name
	bad := `{"skills": [{"level": "advanced"}]}`
	err := svc.Validate(context.Background(), []byte(bad))
	if err == nil {
		t.Fatalf("expected schema violation")
	}

	var invalid *portfolio.ErrInvalidDocument
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidDocument, got %T: %v", err, err)
	}
	if len(invalid.Violations) == 0 {
		t.Fatalf("expected at least one violation message")
	}
}

func TestValidateRejectsNonJSON(t *testing.T) {
	svc := newTestService(t)
	if err := svc.Validate(context.Background(), []byte(`{not json`)); err == nil {
		t.Fatalf("expected error for malformed JSON")
	}
}

func TestSaveAssignsIDAndPersists(t *testing.T) {
	repo := newMemPortfolioRepo()
	svc, err := portfolio.NewService(repo, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	p, err := svc.Save(context.Background(), "", "alice", []byte(validDocument), true)
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("expected generated id")
	}
	if _, ok := repo.rows[p.ID]; !ok {
		t.Fatalf("portfolio not persisted")
	}

	// invalid documents never reach the repository
	if _, err := svc.Save(context.Background(), "", "bob", []byte(`{"projects":[{}]}`), true); err == nil {
		t.Fatalf("expected validation failure")
	}
	if len(repo.rows) != 1 {
		t.Fatalf("invalid document was persisted")
	}
}

func TestParseDocument(t *testing.T) {
	doc, err := portfolio.ParseDocument(validDocument)
	if err != nil {
		t.Fatalf("ParseDocument error: %v", err)
	}
	if doc.Summary != "Go backend engineer" || len(doc.Skills) != 2 {
		t.Fatalf("wrong parse: %#v", doc)
	}
	if doc.ExperienceLevel != "3-5" {
		t.Fatalf("experience level = %q", doc.ExperienceLevel)
	}

	if _, err := portfolio.ParseDocument(`{broken`); err == nil {
		t.Fatalf("expected error for broken JSON")
	}
}
