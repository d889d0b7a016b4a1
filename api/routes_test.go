package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/jobscout/jobscout/api"
	"github.com/jobscout/jobscout/internal/corpus"
	dbpkg "github.com/jobscout/jobscout/internal/db"
	"github.com/jobscout/jobscout/internal/match"
	"github.com/jobscout/jobscout/internal/models"
	"github.com/jobscout/jobscout/internal/portfolio"
	sqlite "github.com/jobscout/jobscout/internal/repository/sqlite"
)

// offlineEmbedder behaves like a backend with no credential: the matcher
// falls back to unranked results, which keeps handler tests deterministic.
type offlineEmbedder struct{}

func (offlineEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return nil, fmt.Errorf("offline")
}

func (offlineEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	return nil, fmt.Errorf("offline")
}

func (offlineEmbedder) Available() bool { return false }

var apiDBSeq int

type testEnv struct {
	router *mux.Router
	repo   *sqlite.SQLiteRepo
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	apiDBSeq++
	d, err := dbpkg.New(ctx, fmt.Sprintf("file:api_test%d?mode=memory&cache=shared", apiDBSeq), nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := dbpkg.Migrate(ctx, d); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo := sqlite.New(d, nil)
	store := corpus.NewStoreSource(repo)
	fetcher := corpus.NewFetcher(nil, store, store, corpus.NewCompanySource(repo))
	matcher := match.NewMatcher(fetcher, offlineEmbedder{}, nil)

	portfolios, err := portfolio.NewService(repo, nil)
	if err != nil {
		t.Fatalf("portfolio service: %v", err)
	}

	router := api.SetupRoutes("test", "now", api.Deps{
		Matcher:    matcher,
		Portfolios: portfolios,
		CompanyJob: repo,
		Crawler:    nil,
	})

	return &testEnv{router: router, repo: repo}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) seedCrawledJob(t *testing.T, sourceID, title string) {
	t.Helper()
	j := models.CrawledJob{
		Source:      "saramin",
		SourceID:    sourceID,
		Title:       title,
		Company:     "Acme",
		Location:    "서울",
		Description: "Go 백엔드 서버 개발",
		CrawledAt:   time.Now().UTC(),
	}
	if _, err := e.repo.UpsertCrawledJob(context.Background(), &j); err != nil {
		t.Fatalf("seed crawled job: %v", err)
	}
}

const portfolioBody = `{
	"user_name": "alice",
	"is_public": true,
	"document": {
		"summary": "Go backend engineer",
		"skills": [{"name": "Go"}],
		"experience_level": "3-5"
	}
}`

func TestHealthAndVersion(t *testing.T) {
	env := setupEnv(t)

	rr := env.do(t, "GET", "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("health status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "jobscout") {
		t.Fatalf("health body = %s", rr.Body.String())
	}

	rr = env.do(t, "GET", "/version", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "test") {
		t.Fatalf("version = %d %s", rr.Code, rr.Body.String())
	}
}

func TestPortfolioSaveAndGet(t *testing.T) {
	env := setupEnv(t)

	rr := env.do(t, "POST", "/v1/portfolios", portfolioBody)
	if rr.Code != http.StatusCreated {
		t.Fatalf("save status = %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil || resp.ID == "" {
		t.Fatalf("bad save response: %s", rr.Body.String())
	}

	rr = env.do(t, "GET", "/v1/portfolios/"+resp.ID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr.Code)
	}

	rr = env.do(t, "GET", "/v1/portfolios/missing", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing portfolio status = %d", rr.Code)
	}
}

func TestPortfolioSaveRejectsInvalidDocument(t *testing.T) {
	env := setupEnv(t)

	body := `{"document": {"skills": [{"level": "advanced"}]}}`
	rr := env.do(t, "POST", "/v1/portfolios", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid document status = %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "violations") {
		t.Fatalf("expected violations in body: %s", rr.Body.String())
	}
}

func TestRecommendEndpoint(t *testing.T) {
	env := setupEnv(t)
	env.seedCrawledJob(t, "saramin-1", "백엔드 개발자")
	env.seedCrawledJob(t, "saramin-2", "데이터 엔지니어")

	// missing portfolio_id
	rr := env.do(t, "GET", "/v1/jobs/recommend", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("missing portfolio_id status = %d", rr.Code)
	}

	// unknown portfolio
	rr = env.do(t, "GET", "/v1/jobs/recommend?portfolio_id=nope", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown portfolio status = %d", rr.Code)
	}

	// create a portfolio, then recommend against it
	rr = env.do(t, "POST", "/v1/portfolios", portfolioBody)
	var created struct {
		ID string `json:"id"`
	}
	json.Unmarshal(rr.Body.Bytes(), &created)

	rr = env.do(t, "GET", "/v1/jobs/recommend?portfolio_id="+created.ID+"&limit=5", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("recommend status = %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Total int                 `json:"total"`
		Items []models.JobPosting `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad recommend body: %v", err)
	}
	if resp.Total != 2 {
		t.Fatalf("expected 2 recommendations, got %d", resp.Total)
	}
	// offline embedder: results come back unranked, no scores
	for _, j := range resp.Items {
		if j.SimilarityScore != nil {
			t.Fatalf("unexpected score on unranked result")
		}
	}
}

func TestSearchAndCountEndpoints(t *testing.T) {
	env := setupEnv(t)
	env.seedCrawledJob(t, "saramin-1", "백엔드 개발자")

	rr := env.do(t, "GET", "/v1/jobs/search?q=백엔드", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("search status = %d", rr.Code)
	}
	var search struct {
		Total int `json:"total"`
	}
	json.Unmarshal(rr.Body.Bytes(), &search)
	if search.Total != 1 {
		t.Fatalf("search total = %d", search.Total)
	}

	rr = env.do(t, "GET", "/v1/jobs/count", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("count status = %d", rr.Code)
	}
	var count struct {
		Count int64 `json:"count"`
	}
	json.Unmarshal(rr.Body.Bytes(), &count)
	if count.Count != 1 {
		t.Fatalf("count = %d", count.Count)
	}
}

func TestGetJobByID(t *testing.T) {
	env := setupEnv(t)
	env.seedCrawledJob(t, "saramin-1", "백엔드 개발자")

	rr := env.do(t, "GET", "/v1/jobs/crawled-saramin-1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get job status = %d: %s", rr.Code, rr.Body.String())
	}
	var job models.JobPosting
	if err := json.Unmarshal(rr.Body.Bytes(), &job); err != nil {
		t.Fatalf("bad job body: %v", err)
	}
	if job.ID != "crawled-saramin-1" || job.Title != "백엔드 개발자" {
		t.Fatalf("wrong job: %#v", job)
	}

	rr = env.do(t, "GET", "/v1/jobs/crawled-unknown", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing job status = %d", rr.Code)
	}
}

func TestCandidateMatchingEndpoint(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	jobID, err := env.repo.CreateCompanyJob(ctx, &models.CompanyJobPosting{
		CompanyName: "Acme",
		Title:       "백엔드 개발자",
		Status:      "published",
	})
	if err != nil {
		t.Fatalf("seed company job: %v", err)
	}

	env.do(t, "POST", "/v1/portfolios", portfolioBody)

	rr := env.do(t, "GET", fmt.Sprintf("/v1/companies/jobs/%d/candidates", jobID), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("candidates status = %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Total      int                     `json:"total"`
		Candidates []models.CandidateMatch `json:"candidates"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad candidates body: %v", err)
	}
	if resp.Total != 1 || resp.Candidates[0].Rank != 1 {
		t.Fatalf("wrong candidates: %#v", resp)
	}

	rr = env.do(t, "GET", "/v1/companies/jobs/9999/candidates", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing company job status = %d", rr.Code)
	}

	rr = env.do(t, "GET", "/v1/companies/jobs/abc/candidates", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d", rr.Code)
	}
}

func TestAdminEndpointsWithCrawlerDisabled(t *testing.T) {
	env := setupEnv(t)

	if rr := env.do(t, "POST", "/v1/admin/crawl", ""); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("crawl status = %d", rr.Code)
	}
	if rr := env.do(t, "POST", "/v1/admin/reset", ""); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("reset status = %d", rr.Code)
	}
}
