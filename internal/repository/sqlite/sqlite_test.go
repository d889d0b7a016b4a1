package sqlite_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	dbpkg "github.com/jobscout/jobscout/internal/db"
	"github.com/jobscout/jobscout/internal/models"
	sqlite "github.com/jobscout/jobscout/internal/repository/sqlite"
)

var dbSeq int

// setupRepo opens a fresh in-memory database and runs migrations. Each test
// gets its own named memory DB so state never leaks between tests.
func setupRepo(t *testing.T) *sqlite.SQLiteRepo {
	t.Helper()
	ctx := context.Background()

	dbSeq++
	dsn := fmt.Sprintf("file:test%d?mode=memory&cache=shared", dbSeq)
	d, err := dbpkg.New(ctx, dsn, nil)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := dbpkg.Migrate(ctx, d); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return sqlite.New(d, nil)
}

func crawledFixture(sourceID, title string) models.CrawledJob {
	return models.CrawledJob{
		Source:       "saramin",
		SourceID:     sourceID,
		Title:        title,
		Company:      "Acme",
		Location:     "서울 강남구",
		Description:  "Go 백엔드 서버 개발",
		Requirements: []string{"Go", "SQL"},
		Experience:   "경력 3년↑",
		Deadline:     "~ 2026-09-30",
		CrawledAt:    time.Now().UTC(),
	}
}

func TestUpsertCrawledJobValidation(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if _, err := repo.UpsertCrawledJob(ctx, nil); err == nil {
		t.Fatalf("expected error for nil job")
	}
	if _, err := repo.UpsertCrawledJob(ctx, &models.CrawledJob{Title: "x"}); err == nil {
		t.Fatalf("expected error for empty source_id")
	}
}

func TestUpsertCrawledJobIdempotence(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	j := crawledFixture("saramin-100", "백엔드 개발자")
	if _, err := repo.UpsertCrawledJob(ctx, &j); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	// second upsert with the same source id must overwrite, not duplicate
	j2 := crawledFixture("saramin-100", "백엔드 개발자 (수정)")
	j2.Salary = "5,000만원"
	if _, err := repo.UpsertCrawledJob(ctx, &j2); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	count, err := repo.CountActiveCrawledJobs(ctx, "")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row after re-upsert, got %d", count)
	}

	got, err := repo.GetCrawledJobBySourceID(ctx, "saramin-100")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Title != "백엔드 개발자 (수정)" || got.Salary != "5,000만원" {
		t.Fatalf("overwrite did not take: %#v", got)
	}
}

func TestUpsertReactivatesDeactivatedRow(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	j := crawledFixture("saramin-200", "데이터 엔지니어")
	j.CrawledAt = time.Now().UTC().AddDate(0, 0, -60)
	if _, err := repo.UpsertCrawledJob(ctx, &j); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	flipped, err := repo.DeactivateExpired(ctx, 30)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if flipped != 1 {
		t.Fatalf("expected 1 deactivated, got %d", flipped)
	}

	// re-crawl the same posting: it must come back active
	fresh := crawledFixture("saramin-200", "데이터 엔지니어")
	if _, err := repo.UpsertCrawledJob(ctx, &fresh); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}

	got, err := repo.GetCrawledJobBySourceID(ctx, "saramin-200")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || !got.Active {
		t.Fatalf("re-crawled row not reactivated: %#v", got)
	}
}

func TestListCrawledJobsKeywordFilter(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	for i, title := range []string{"백엔드 개발자", "프론트엔드 개발자", "백엔드 엔지니어"} {
		j := crawledFixture(fmt.Sprintf("saramin-%d", i), title)
		j.Description = "채용 공고"
		j.CrawledAt = time.Now().UTC().Add(time.Duration(i) * time.Minute)
		if _, err := repo.UpsertCrawledJob(ctx, &j); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}

	got, err := repo.ListCrawledJobs(ctx, models.JobFilter{Keyword: "백엔드"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 백엔드 rows, got %d", len(got))
	}
	// newest crawl first
	if got[0].SourceID != "saramin-2" {
		t.Fatalf("ordering broken, first = %s", got[0].SourceID)
	}
}

func TestListCrawledJobsExperienceBand(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	rows := []struct{ id, experience string }{
		{"saramin-entry", "신입"},
		{"saramin-mid", "경력 4년 이상"},
		{"saramin-any", "경력무관"},
		{"saramin-senior", "경력 12년 이상"},
	}
	for _, r := range rows {
		j := crawledFixture(r.id, "개발자 "+r.id)
		j.Experience = r.experience
		if _, err := repo.UpsertCrawledJob(ctx, &j); err != nil {
			t.Fatalf("upsert %s: %v", r.id, err)
		}
	}

	got, err := repo.ListCrawledJobs(ctx, models.JobFilter{Experience: "3-5"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// 4년 matches the band, 무관 matches everything; 신입 and 12년 do not
	ids := map[string]bool{}
	for _, j := range got {
		ids[j.SourceID] = true
	}
	if len(got) != 2 || !ids["saramin-mid"] || !ids["saramin-any"] {
		t.Fatalf("experience band selected wrong rows: %v", ids)
	}

	// unknown band strings are ignored, not an error
	all, err := repo.ListCrawledJobs(ctx, models.JobFilter{Experience: "wizard"})
	if err != nil {
		t.Fatalf("list with unknown band: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("unknown band should match all rows, got %d", len(all))
	}
}

func TestListCrawledJobsLocationFilter(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	locations := []struct{ id, loc string }{
		{"saramin-a", "서울 강남구"},
		{"saramin-b", "부산 해운대구"},
		{"saramin-c", "경기 성남시"},
	}
	for _, r := range locations {
		j := crawledFixture(r.id, "개발자 "+r.id)
		j.Location = r.loc
		if _, err := repo.UpsertCrawledJob(ctx, &j); err != nil {
			t.Fatalf("upsert %s: %v", r.id, err)
		}
	}

	got, err := repo.ListCrawledJobs(ctx, models.JobFilter{Locations: []string{"서울", "부산"}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 location matches, got %d", len(got))
	}
}

func TestGetCrawledJobBySourceIDMissing(t *testing.T) {
	repo := setupRepo(t)

	got, err := repo.GetCrawledJobBySourceID(context.Background(), "saramin-nope")
	if err != nil {
		t.Fatalf("expected no error for missing row, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing row, got %#v", got)
	}
}

func TestDeactivateExpiredIsConservative(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	old := time.Now().UTC().AddDate(0, 0, -60)

	expired := crawledFixture("saramin-expired", "마감된 공고")
	expired.Deadline = "~ 2020-01-31"
	expired.CrawledAt = old

	rolling := crawledFixture("saramin-rolling", "상시 채용 공고")
	rolling.Deadline = "상시채용"
	rolling.CrawledAt = old

	noDeadline := crawledFixture("saramin-open", "마감일 없는 공고")
	noDeadline.Deadline = ""
	noDeadline.CrawledAt = old

	fresh := crawledFixture("saramin-fresh", "최근 공고")
	fresh.Deadline = "~ 2020-01-31"

	for _, j := range []models.CrawledJob{expired, rolling, noDeadline, fresh} {
		jj := j
		if _, err := repo.UpsertCrawledJob(ctx, &jj); err != nil {
			t.Fatalf("upsert %s: %v", j.SourceID, err)
		}
	}

	flipped, err := repo.DeactivateExpired(ctx, 30)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if flipped != 1 {
		t.Fatalf("expected exactly 1 deactivation, got %d", flipped)
	}

	for id, wantActive := range map[string]bool{
		"saramin-expired": false,
		"saramin-rolling": true,
		"saramin-open":    true,
		"saramin-fresh":   true,
	} {
		got, err := repo.GetCrawledJobBySourceID(ctx, id)
		if err != nil || got == nil {
			t.Fatalf("get %s: %v, %#v", id, err, got)
		}
		if got.Active != wantActive {
			t.Fatalf("%s active = %v, want %v", id, got.Active, wantActive)
		}
	}
}

func TestResetCrawledJobs(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	j := crawledFixture("saramin-1", "백엔드 개발자")
	if _, err := repo.UpsertCrawledJob(ctx, &j); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := repo.ResetCrawledJobs(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	count, err := repo.CountActiveCrawledJobs(ctx, "")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty corpus after reset, got %d", count)
	}
}

func TestCompanyJobCRUDAndPublishedListing(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	// missing row is nil, nil
	got, err := repo.GetCompanyJob(ctx, 9999)
	if err != nil || got != nil {
		t.Fatalf("expected nil,nil for missing row, got %#v, %v", got, err)
	}

	published := &models.CompanyJobPosting{
		CompanyName: "Acme",
		Title:       "백엔드 개발자",
		Description: "Go 서버 개발",
		Location:    "서울",
		Status:      "published",
	}
	id, err := repo.CreateCompanyJob(ctx, published)
	if err != nil {
		t.Fatalf("create published: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected non-zero id")
	}

	draft := &models.CompanyJobPosting{CompanyName: "Globex", Title: "draft 공고", Status: "draft"}
	if _, err := repo.CreateCompanyJob(ctx, draft); err != nil {
		t.Fatalf("create draft: %v", err)
	}

	got, err = repo.GetCompanyJob(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Title != published.Title {
		t.Fatalf("get wrong result: %#v", got)
	}

	list, err := repo.ListPublishedCompanyJobs(ctx, "", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != id {
		t.Fatalf("draft leaked into published listing: %#v", list)
	}

	filtered, err := repo.ListPublishedCompanyJobs(ctx, "백엔드", 10)
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(filtered) != 1 {
		t.Fatalf("keyword filter missed the published row")
	}
}

func TestPortfolioCRUDAndPublicListing(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	got, err := repo.GetPortfolio(ctx, "missing")
	if err != nil || got != nil {
		t.Fatalf("expected nil,nil for missing portfolio, got %#v, %v", got, err)
	}

	pub := &models.Portfolio{ID: "pf-1", UserName: "alice", DocumentJSON: `{"summary":"go dev"}`, Public: true, Updated: 2}
	priv := &models.Portfolio{ID: "pf-2", UserName: "bob", DocumentJSON: `{}`, Public: false, Updated: 1}
	for _, p := range []*models.Portfolio{pub, priv} {
		if err := repo.CreatePortfolio(ctx, p); err != nil {
			t.Fatalf("create %s: %v", p.ID, err)
		}
	}

	got, err = repo.GetPortfolio(ctx, "pf-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.UserName != "alice" {
		t.Fatalf("get wrong result: %#v", got)
	}

	// upsert on the same id replaces
	pub.UserName = "alice2"
	if err := repo.CreatePortfolio(ctx, pub); err != nil {
		t.Fatalf("re-create: %v", err)
	}
	got, _ = repo.GetPortfolio(ctx, "pf-1")
	if got == nil || got.UserName != "alice2" {
		t.Fatalf("upsert did not replace: %#v", got)
	}

	public, err := repo.ListPublicPortfolios(ctx, 10)
	if err != nil {
		t.Fatalf("list public: %v", err)
	}
	if len(public) != 1 || public[0].ID != "pf-1" {
		t.Fatalf("private portfolio leaked: %#v", public)
	}
}
