package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jobscout/jobscout/internal/models"
)

func (r *SQLiteRepo) CreatePortfolio(ctx context.Context, p *models.Portfolio) error {
	if p == nil {
		return fmt.Errorf("portfolio is nil")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	public := 0
	if p.Public {
		public = 1
	}

	_, err := r.conn.Exec(ctx,
		`INSERT INTO portfolios (id, user_name, document_json, is_public, updated) VALUES (?,?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET user_name=excluded.user_name, document_json=excluded.document_json,
		 is_public=excluded.is_public, updated=excluded.updated`,
		p.ID, p.UserName, p.DocumentJSON, public, now())
	if err != nil {
		return fmt.Errorf("create portfolio: %w", err)
	}
	return nil
}

func (r *SQLiteRepo) GetPortfolio(ctx context.Context, id string) (*models.Portfolio, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT id, user_name, document_json, is_public, updated FROM portfolios WHERE id = ?`, id)

	p, err := scanPortfolio(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *SQLiteRepo) ListPublicPortfolios(ctx context.Context, limit int) ([]models.Portfolio, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.conn.QueryRows(ctx,
		`SELECT id, user_name, document_json, is_public, updated FROM portfolios WHERE is_public = 1 ORDER BY updated DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list public portfolios: %w", err)
	}
	defer rows.Close()

	var out []models.Portfolio
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanPortfolio(row rowScanner) (*models.Portfolio, error) {
	var (
		p        models.Portfolio
		userName sql.NullString
		public   int
	)
	if err := row.Scan(&p.ID, &userName, &p.DocumentJSON, &public, &p.Updated); err != nil {
		return nil, err
	}
	p.UserName = userName.String
	p.Public = public == 1
	return &p, nil
}
