package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jobscout/jobscout/internal/models"
)

// UpsertCrawledJob inserts or replaces a crawled row keyed by source_id.
// Every field is overwritten (last crawl wins) and the active flag is reset;
// a re-crawled posting is implicitly still live.
func (r *SQLiteRepo) UpsertCrawledJob(ctx context.Context, j *models.CrawledJob) (int64, error) {
	if j == nil {
		return 0, fmt.Errorf("crawled job is nil")
	}
	if j.SourceID == "" {
		return 0, fmt.Errorf("crawled job source_id is empty")
	}
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.CrawledAt.IsZero() {
		j.CrawledAt = time.Now().UTC()
	}

	reqs, err := json.Marshal(emptyIfNil(j.Requirements))
	if err != nil {
		return 0, fmt.Errorf("marshal requirements: %w", err)
	}
	prefs, err := json.Marshal(emptyIfNil(j.Preferred))
	if err != nil {
		return 0, fmt.Errorf("marshal preferred: %w", err)
	}
	stack, err := json.Marshal(emptyIfNil(j.TechStack))
	if err != nil {
		return 0, fmt.Errorf("marshal tech stack: %w", err)
	}

	q := `INSERT INTO crawled_jobs (
		id, source, source_id, title, company, location, description,
		requirements_json, preferred_json, salary, url, experience,
		education, employment_type, deadline, tech_stack_json, crawled_at, is_active
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,1)
	ON CONFLICT(source_id) DO UPDATE SET
		title=excluded.title, company=excluded.company, location=excluded.location,
		description=excluded.description, requirements_json=excluded.requirements_json,
		preferred_json=excluded.preferred_json, salary=excluded.salary, url=excluded.url,
		experience=excluded.experience, education=excluded.education,
		employment_type=excluded.employment_type, deadline=excluded.deadline,
		tech_stack_json=excluded.tech_stack_json, crawled_at=excluded.crawled_at,
		is_active=1`

	res, err := r.conn.Exec(ctx, q,
		j.ID, j.Source, j.SourceID, j.Title, j.Company, j.Location, j.Description,
		string(reqs), string(prefs), j.Salary, j.URL, j.Experience,
		j.Education, j.EmploymentType, j.Deadline, string(stack), j.CrawledAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("upsert crawled job %s: %w", j.SourceID, err)
	}

	return res.RowsAffected()
}

// UpsertCrawledJobs upserts a batch row by row. A single bad row aborts the
// batch; callers batch per keyword so partial progress survives.
func (r *SQLiteRepo) UpsertCrawledJobs(ctx context.Context, jobs []models.CrawledJob) (int64, error) {
	var total int64
	for i := range jobs {
		n, err := r.UpsertCrawledJob(ctx, &jobs[i])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// ListCrawledJobs returns active rows matching the filter, newest crawl
// first. All predicates run in SQL; nothing is filtered client-side.
func (r *SQLiteRepo) ListCrawledJobs(ctx context.Context, f models.JobFilter) ([]models.CrawledJob, error) {
	where := []string{"is_active = 1"}
	var args []any

	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		clause, kwArgs := keywordClause(kw)
		where = append(where, clause)
		args = append(args, kwArgs...)
	}
	if band, ok := parseExperienceBand(f.Experience); ok {
		clause, expArgs := experienceClause(band)
		where = append(where, clause)
		args = append(args, expArgs...)
	}
	if clause, locArgs := locationClause(f.Locations); clause != "" {
		where = append(where, clause)
		args = append(args, locArgs...)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	q := `SELECT id, source, source_id, title, company, location, description,
		requirements_json, preferred_json, salary, url, experience, education,
		employment_type, deadline, tech_stack_json, crawled_at, is_active
	FROM crawled_jobs WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY crawled_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, f.Offset)

	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list crawled jobs: %w", err)
	}
	defer rows.Close()

	var out []models.CrawledJob
	for rows.Next() {
		j, err := scanCrawledJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

// CountActiveCrawledJobs mirrors the keyword predicate of ListCrawledJobs so
// pagination totals line up with list pages.
func (r *SQLiteRepo) CountActiveCrawledJobs(ctx context.Context, keyword string) (int64, error) {
	q := `SELECT COUNT(1) FROM crawled_jobs WHERE is_active = 1`
	var args []any
	if kw := strings.TrimSpace(keyword); kw != "" {
		clause, kwArgs := keywordClause(kw)
		q += " AND " + clause
		args = kwArgs
	}

	var count int64
	if err := r.conn.QueryRow(ctx, q, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count crawled jobs: %w", err)
	}
	return count, nil
}

func (r *SQLiteRepo) GetCrawledJobBySourceID(ctx context.Context, sourceID string) (*models.CrawledJob, error) {
	q := `SELECT id, source, source_id, title, company, location, description,
		requirements_json, preferred_json, salary, url, experience, education,
		employment_type, deadline, tech_stack_json, crawled_at, is_active
	FROM crawled_jobs WHERE source_id = ?`

	rows, err := r.conn.QueryRows(ctx, q, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanCrawledJob(rows)
}

// DeactivateExpired marks rows inactive when the deadline string is present,
// carries no rolling-recruitment marker, and the row has not been re-crawled
// within staleDays. Unparseable deadlines stay active on purpose: a false
// deactivation is worse than a stale listing.
func (r *SQLiteRepo) DeactivateExpired(ctx context.Context, staleDays int) (int64, error) {
	if staleDays <= 0 {
		staleDays = 30
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -staleDays).Unix()

	q := `UPDATE crawled_jobs SET is_active = 0
	WHERE is_active = 1
	  AND deadline IS NOT NULL
	  AND deadline != ''
	  AND deadline NOT LIKE '%상시%'
	  AND deadline NOT LIKE '%수시%'
	  AND deadline NOT LIKE '%채용시%'
	  AND lower(deadline) NOT LIKE '%rolling%'
	  AND crawled_at < ?`

	res, err := r.conn.Exec(ctx, q, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired jobs: %w", err)
	}
	return res.RowsAffected()
}

// ResetCrawledJobs wipes the corpus. Only the administrative reset endpoint
// calls this.
func (r *SQLiteRepo) ResetCrawledJobs(ctx context.Context) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM crawled_jobs`)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCrawledJob(row rowScanner) (*models.CrawledJob, error) {
	var (
		j                              models.CrawledJob
		location, description, salary  sql.NullString
		url, experience, education     sql.NullString
		employmentType, deadline       sql.NullString
		reqsJSON, prefsJSON, stackJSON string
		crawledAt                      int64
		active                         int
	)

	if err := row.Scan(&j.ID, &j.Source, &j.SourceID, &j.Title, &j.Company,
		&location, &description, &reqsJSON, &prefsJSON, &salary, &url,
		&experience, &education, &employmentType, &deadline, &stackJSON,
		&crawledAt, &active); err != nil {
		return nil, fmt.Errorf("scan crawled job: %w", err)
	}

	j.Location = location.String
	j.Description = description.String
	j.Salary = salary.String
	j.URL = url.String
	j.Experience = experience.String
	j.Education = education.String
	j.EmploymentType = employmentType.String
	j.Deadline = deadline.String
	j.CrawledAt = time.Unix(crawledAt, 0).UTC()
	j.Active = active == 1

	if err := json.Unmarshal([]byte(reqsJSON), &j.Requirements); err != nil {
		j.Requirements = []string{}
	}
	if err := json.Unmarshal([]byte(prefsJSON), &j.Preferred); err != nil {
		j.Preferred = []string{}
	}
	if err := json.Unmarshal([]byte(stackJSON), &j.TechStack); err != nil {
		j.TechStack = []string{}
	}

	return &j, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
