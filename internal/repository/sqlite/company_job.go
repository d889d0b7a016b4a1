package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jobscout/jobscout/internal/models"
)

func (r *SQLiteRepo) CreateCompanyJob(ctx context.Context, j *models.CompanyJobPosting) (int64, error) {
	if j == nil {
		return 0, fmt.Errorf("company job is nil")
	}
	if j.Status == "" {
		j.Status = "draft"
	}

	reqs, err := json.Marshal(emptyIfNil(j.Requirements))
	if err != nil {
		return 0, err
	}
	prefs, err := json.Marshal(emptyIfNil(j.Preferred))
	if err != nil {
		return 0, err
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO company_jobs (company_name, title, description, location, requirements_json, preferred_json, salary, status, created)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		j.CompanyName, j.Title, j.Description, j.Location, string(reqs), string(prefs), j.Salary, j.Status, now())
	if err != nil {
		return 0, fmt.Errorf("create company job: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetCompanyJob(ctx context.Context, id int64) (*models.CompanyJobPosting, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT id, company_name, title, description, location, requirements_json, preferred_json, salary, status, created
		 FROM company_jobs WHERE id = ?`, id)

	j, err := scanCompanyJob(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return j, nil
}

// ListPublishedCompanyJobs returns published postings, keyword-filtered in
// SQL across title, description and company name.
func (r *SQLiteRepo) ListPublishedCompanyJobs(ctx context.Context, keyword string, limit int) ([]models.CompanyJobPosting, error) {
	q := `SELECT id, company_name, title, description, location, requirements_json, preferred_json, salary, status, created
	FROM company_jobs WHERE status = 'published'`
	var args []any

	if kw := strings.TrimSpace(keyword); kw != "" {
		pattern := "%" + strings.ToLower(kw) + "%"
		q += ` AND (lower(title) LIKE ? OR lower(description) LIKE ? OR lower(company_name) LIKE ?)`
		args = append(args, pattern, pattern, pattern)
	}

	if limit <= 0 {
		limit = 50
	}
	q += ` ORDER BY created DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list company jobs: %w", err)
	}
	defer rows.Close()

	var out []models.CompanyJobPosting
	for rows.Next() {
		j, err := scanCompanyJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

func scanCompanyJob(row rowScanner) (*models.CompanyJobPosting, error) {
	var (
		j                             models.CompanyJobPosting
		description, location, salary sql.NullString
		reqsJSON, prefsJSON           string
	)

	if err := row.Scan(&j.ID, &j.CompanyName, &j.Title, &description, &location,
		&reqsJSON, &prefsJSON, &salary, &j.Status, &j.Created); err != nil {
		return nil, err
	}

	j.Description = description.String
	j.Location = location.String
	j.Salary = salary.String

	if err := json.Unmarshal([]byte(reqsJSON), &j.Requirements); err != nil {
		j.Requirements = []string{}
	}
	if err := json.Unmarshal([]byte(prefsJSON), &j.Preferred); err != nil {
		j.Preferred = []string{}
	}

	return &j, nil
}
