package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	appErrors "github.com/outreachly/outreach-backend/internal/errors"
	"github.com/outreachly/outreach-backend/internal/model"
)

type EmailRepositoryInterface interface {
	// Lifecycle transitions
	Create(ctx context.Context, e *model.Email) error
	UpdateContent(ctx context.Context, id, subject, body string) error
	MarkSent(ctx context.Context, id string, at time.Time) error
	UpdateStatus(ctx context.Context, id string, from, to model.EmailStatus, lastError string) error
	MarkViewed(ctx context.Context, id string, at time.Time) (bool, error)
	MarkFollowedUp(ctx context.Context, id string, at time.Time) (bool, error)

	// Reads
	GetByID(ctx context.Context, id string) (*model.Email, error)
	ListDueForFollowUp(ctx context.Context, cutoff time.Time, after *DueCursor, limit int) ([]*model.Email, error)
	List(ctx context.Context, offset, limit int, status string) ([]*model.Email, int, error)
	Stats(ctx context.Context) (*model.EmailStats, error)
}

// DueCursor is the (sent_at, id) of the last row of a follow-up page
type DueCursor struct {
	SentAt time.Time
	ID     string
}

type EmailRepository struct {
	DB *sqlx.DB
}

const emailColumns = `id, prospect_id, recipient_email, recipient_name, company_name, campaign_type,
	status, subject, body, last_error, viewed, viewed_at, follow_up, sent_at, created_at, updated_at`

// Create inserts a drafting record. The id is allocated by the caller so
// the tracking pixel can reference it before anything is sent.
func (r *EmailRepository) Create(ctx context.Context, e *model.Email) error {
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	if e.Status == "" {
		e.Status = model.StatusDrafting
	}

	query := `
		INSERT INTO emails (id, prospect_id, recipient_email, recipient_name, company_name,
			campaign_type, status, subject, body, created_at, updated_at)
		VALUES (:id, :prospect_id, :recipient_email, :recipient_name, :company_name,
			:campaign_type, :status, :subject, :body, :created_at, :updated_at)
	`
	if _, err := r.DB.NamedExecContext(ctx, query, e); err != nil {
		return appErrors.NewStore("create email", err)
	}
	return nil
}

// UpdateContent persists the composed subject/body: drafting -> generated
func (r *EmailRepository) UpdateContent(ctx context.Context, id, subject, body string) error {
	query := `
		UPDATE emails
		SET subject = $1, body = $2, status = $3, last_error = '', updated_at = NOW()
		WHERE id = $4 AND status = $5
	`
	res, err := r.DB.ExecContext(ctx, query, subject, body, model.StatusGenerated, id, model.StatusDrafting)
	if err != nil {
		return appErrors.NewStore("update email content", err)
	}
	return expectOneRow(res, id, model.StatusDrafting)
}

// MarkSent records a successful delivery: generated -> sent, or viewed
// when the pixel was fetched before the delivery was recorded
func (r *EmailRepository) MarkSent(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE emails
		SET status = CASE WHEN viewed THEN $1 ELSE $2 END,
		    sent_at = $3, last_error = '', updated_at = $3
		WHERE id = $4 AND status = $5
	`
	res, err := r.DB.ExecContext(ctx, query, model.StatusViewed, model.StatusSent, at, id, model.StatusGenerated)
	if err != nil {
		return appErrors.NewStore("mark email sent", err)
	}
	return expectOneRow(res, id, model.StatusGenerated)
}

// UpdateStatus moves a record from -> to and records lastError, without
// touching content. It fails with ErrInvalidTransition unless the record
// is still in from.
func (r *EmailRepository) UpdateStatus(ctx context.Context, id string, from, to model.EmailStatus, lastError string) error {
	query := `
		UPDATE emails
		SET status = $1, last_error = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4
	`
	res, err := r.DB.ExecContext(ctx, query, to, lastError, id, from)
	if err != nil {
		return appErrors.NewStore("update email status", err)
	}
	return expectOneRow(res, id, from)
}

// MarkViewed sets viewed/viewed_at once. Later calls (including concurrent
// ones) match no row and report false, so viewed_at keeps the first value.
// A generated record can be fetched while its delivery is still being
// recorded; it keeps its status and MarkSent moves it straight to viewed.
func (r *EmailRepository) MarkViewed(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `
		UPDATE emails
		SET viewed = TRUE,
		    viewed_at = $2,
		    status = CASE WHEN status = 'sent' THEN 'viewed' ELSE status END,
		    updated_at = $2
		WHERE id = $1 AND viewed = FALSE AND status IN ('generated', 'sent', 'followed_up')
	`
	res, err := r.DB.ExecContext(ctx, query, id, at)
	if err != nil {
		return false, appErrors.NewStore("mark email viewed", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, appErrors.NewStore("mark email viewed", err)
	}
	return n == 1, nil
}

// MarkFollowedUp flips follow_up false -> true and moves the send baseline
func (r *EmailRepository) MarkFollowedUp(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `
		UPDATE emails
		SET follow_up = TRUE, status = 'followed_up', sent_at = $2, updated_at = $2
		WHERE id = $1 AND follow_up = FALSE AND status IN ('sent', 'viewed')
	`
	res, err := r.DB.ExecContext(ctx, query, id, at)
	if err != nil {
		return false, appErrors.NewStore("mark email followed up", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, appErrors.NewStore("mark email followed up", err)
	}
	return n == 1, nil
}

func (r *EmailRepository) GetByID(ctx context.Context, id string) (*model.Email, error) {
	query := `SELECT ` + emailColumns + ` FROM emails WHERE id = $1`

	var e model.Email
	if err := r.DB.GetContext(ctx, &e, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("email", id)
		}
		return nil, appErrors.NewStore("get email", err)
	}
	return &e, nil
}

// ListDueForFollowUp returns delivered records not yet followed up whose
// send timestamp is at or before cutoff, ordered by (sent_at, id). Pass
// the cursor of the previous page's last row to continue after it.
func (r *EmailRepository) ListDueForFollowUp(ctx context.Context, cutoff time.Time, after *DueCursor, limit int) ([]*model.Email, error) {
	query := `
		SELECT ` + emailColumns + `
		FROM emails
		WHERE follow_up = FALSE
		  AND status IN ('sent', 'viewed')
		  AND sent_at IS NOT NULL
		  AND sent_at <= $1`
	args := []interface{}{cutoff}
	if after != nil {
		query += ` AND (sent_at, id) > ($2, $3)`
		args = append(args, after.SentAt, after.ID)
	}
	query += fmt.Sprintf(" ORDER BY sent_at, id LIMIT $%d", len(args)+1)
	args = append(args, limit)

	emails := []*model.Email{}
	if err := r.DB.SelectContext(ctx, &emails, query, args...); err != nil {
		return nil, appErrors.NewStore("list emails due for follow-up", err)
	}
	return emails, nil
}

func (r *EmailRepository) List(ctx context.Context, offset, limit int, status string) ([]*model.Email, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if status != "" {
		where += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, status)
		argPos++
	}

	var total int
	if err := r.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM emails`+where, args...); err != nil {
		return nil, 0, appErrors.NewStore("count emails", err)
	}

	query := `SELECT ` + emailColumns + ` FROM emails` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	emails := []*model.Email{}
	if err := r.DB.SelectContext(ctx, &emails, query, args...); err != nil {
		return nil, 0, appErrors.NewStore("list emails", err)
	}
	return emails, total, nil
}

func (r *EmailRepository) Stats(ctx context.Context) (*model.EmailStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM prospects) AS prospects,
			COUNT(*) AS emails,
			COUNT(*) FILTER (WHERE viewed) AS viewed,
			COUNT(*) FILTER (WHERE status IN ('sent', 'viewed', 'followed_up')) AS sent,
			COUNT(*) FILTER (WHERE status = 'send_failed') AS send_failed,
			COUNT(*) FILTER (WHERE follow_up) AS followed_up
		FROM emails
	`
	var stats model.EmailStats
	if err := r.DB.GetContext(ctx, &stats, query); err != nil {
		return nil, appErrors.NewStore("email stats", err)
	}
	return &stats, nil
}

func expectOneRow(res sql.Result, id string, from model.EmailStatus) error {
	n, err := res.RowsAffected()
	if err != nil {
		return appErrors.NewStore("rows affected", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: email %s is not %s", ErrInvalidTransition, id, from)
	}
	return nil
}

var _ EmailRepositoryInterface = (*EmailRepository)(nil)
