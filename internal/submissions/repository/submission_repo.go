package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vinnesia/domainform-backend/internal/submissions/domain"
)

const table = "form_data"

var columns = []string{"id", "name", "email", "purpose", "platform_link", "user_id", "status", "created_at"}

// Querier is the subset of pgxpool.Pool the repository needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// SubmissionRepository stores form submissions in PostgreSQL
type SubmissionRepository struct {
	db  Querier
	ids func() uuid.UUID
}

func NewSubmissionRepository(db Querier) *SubmissionRepository {
	return &SubmissionRepository{db: db, ids: uuid.New}
}

// Create inserts a pending submission owned by req.UserID and returns the stored row.
func (r *SubmissionRepository) Create(ctx context.Context, req domain.CreateSubmissionRequest) (*domain.Submission, error) {
	var userID *string
	if req.UserID != "" {
		uid := req.UserID
		userID = &uid
	}

	query, args, err := psql.Insert(table).
		Columns("id", "name", "email", "purpose", "platform_link", "user_id", "status").
		Values(r.ids().String(), req.Name, req.Email, req.Purpose, req.PlatformLink, userID, string(domain.StatusPending)).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}

	sub, err := scanSubmission(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("insert submission: %w", err)
	}
	return sub, nil
}

// List returns the rows matching opts, newest first.
func (r *SubmissionRepository) List(ctx context.Context, opts domain.ListOptions) ([]domain.Submission, error) {
	if opts.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}

	var owner squirrel.Sqlizer = squirrel.Eq{"user_id": opts.UserID}
	if opts.Email != "" {
		owner = squirrel.Or{
			owner,
			squirrel.Expr("lower(email) = lower(?)", opts.Email),
		}
	}

	query, args, err := psql.Select(columns...).
		From(table).
		Where(owner).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Submission, 0)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return out, nil
}

func scanSubmission(row pgx.Row) (*domain.Submission, error) {
	var (
		sub    domain.Submission
		status string
	)
	if err := row.Scan(
		&sub.ID,
		&sub.Name,
		&sub.Email,
		&sub.Purpose,
		&sub.PlatformLink,
		&sub.UserID,
		&status,
		&sub.CreatedAt,
	); err != nil {
		return nil, err
	}
	sub.Status = domain.Status(status)
	if !sub.Status.Valid() {
		sub.Status = domain.StatusPending
	}
	return &sub, nil
}
