package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	appErrors "github.com/outreachly/outreach-backend/internal/errors"
	"github.com/outreachly/outreach-backend/internal/model"
)

// ProspectRepositoryInterface defines methods used by services
type ProspectRepositoryInterface interface {
	InsertBatch(ctx context.Context, prospects []model.Prospect) (int, error)
	GetByID(ctx context.Context, id int64) (*model.Prospect, error)
	FindMatch(ctx context.Context, email, companyName string) (*model.Prospect, error)
	List(ctx context.Context, offset, limit int) ([]*model.Prospect, int, error)
}

// ProspectRepository is the concrete implementation
type ProspectRepository struct {
	DB *sqlx.DB
}

const prospectColumns = `id, name, email, company_name, website, linkedin, industry, tech_stack, attributes, created_at`

// InsertBatch inserts all rows in one transaction; either every row lands or none does
func (r *ProspectRepository) InsertBatch(ctx context.Context, prospects []model.Prospect) (int, error) {
	if len(prospects) == 0 {
		return 0, nil
	}

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, appErrors.NewStore("begin prospect import", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, `
		INSERT INTO prospects (name, email, company_name, website, linkedin, industry, tech_stack, attributes, created_at)
		VALUES (:name, :email, :company_name, :website, :linkedin, :industry, :tech_stack, :attributes, :created_at)
	`)
	if err != nil {
		return 0, appErrors.NewStore("prepare prospect insert", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := range prospects {
		prospects[i].CreatedAt = now
		if _, err := stmt.ExecContext(ctx, prospects[i]); err != nil {
			return 0, appErrors.NewStore("insert prospect row "+strconv.Itoa(i+1), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, appErrors.NewStore("commit prospect import", err)
	}
	return len(prospects), nil
}

// GetByID fetches a prospect by ID
func (r *ProspectRepository) GetByID(ctx context.Context, id int64) (*model.Prospect, error) {
	query := `SELECT ` + prospectColumns + ` FROM prospects WHERE id = $1`

	var p model.Prospect
	if err := r.DB.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("prospect", strconv.FormatInt(id, 10))
		}
		return nil, appErrors.NewStore("get prospect", err)
	}
	return &p, nil
}

// FindMatch looks a prospect up by email address, falling back to the
// company name (imported startup lists carry the company in "name").
// An exact email match wins over a company match.
func (r *ProspectRepository) FindMatch(ctx context.Context, email, companyName string) (*model.Prospect, error) {
	query := `
		SELECT ` + prospectColumns + `
		FROM prospects
		WHERE lower(email) = lower($1)
		   OR ($2 <> '' AND (lower(company_name) = lower($2) OR lower(name) = lower($2)))
		ORDER BY (lower(email) = lower($1)) DESC, created_at DESC
		LIMIT 1
	`
	var p model.Prospect
	if err := r.DB.GetContext(ctx, &p, query, email, companyName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("prospect", email)
		}
		return nil, appErrors.NewStore("find prospect", err)
	}
	return &p, nil
}

// List returns prospects newest first with the total count
func (r *ProspectRepository) List(ctx context.Context, offset, limit int) ([]*model.Prospect, int, error) {
	var total int
	if err := r.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM prospects`); err != nil {
		return nil, 0, appErrors.NewStore("count prospects", err)
	}

	prospects := []*model.Prospect{}
	query := `SELECT ` + prospectColumns + ` FROM prospects ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	if err := r.DB.SelectContext(ctx, &prospects, query, limit, offset); err != nil {
		return nil, 0, appErrors.NewStore("list prospects", err)
	}
	return prospects, total, nil
}

var _ ProspectRepositoryInterface = (*ProspectRepository)(nil)
