package submission

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// db is the slice of pgxpool.Pool the repository needs.
type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository stores quiz attempts in Postgres.
type Repository struct {
	db db
}

// NewRepository constructs a submission repository.
func NewRepository(db db) *Repository {
	return &Repository{db: db}
}

// Insert persists one attempt and returns the stored record with its
// server-assigned id and creation timestamp.
func (r *Repository) Insert(ctx context.Context, sub NewSubmission) (Record, error) {
	answers, err := json.Marshal(sub.Answers)
	if err != nil {
		return Record{}, fmt.Errorf("marshal answers: %w", err)
	}
	if sub.Meta == nil {
		sub.Meta = map[string]any{}
	}
	meta, err := json.Marshal(sub.Meta)
	if err != nil {
		return Record{}, fmt.Errorf("marshal meta: %w", err)
	}

	rec := Record{
		ID:      uuid.New(),
		Email:   sub.Email,
		Score:   sub.Score,
		Answers: sub.Answers,
		Meta:    sub.Meta,
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO submissions (submission_id, email, score, answers, meta)
		VALUES ($1, $2, $3, $4::jsonb, $5::jsonb)
		RETURNING created_at`,
		rec.ID, rec.Email, rec.Score, answers, meta)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		return Record{}, fmt.Errorf("insert submission: %w", err)
	}
	return rec, nil
}

// List returns recent attempts, newest first, optionally filtered by email.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT submission_id, email, score, answers, meta, created_at
		FROM submissions`
	args := []any{}
	if filter.Email != "" {
		query += ` WHERE email = $1`
		args = append(args, filter.Email)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec     Record
			answers []byte
			meta    []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Email, &rec.Score, &answers, &meta, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		if err := json.Unmarshal(answers, &rec.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
		if err := json.Unmarshal(meta, &rec.Meta); err != nil {
			return nil, fmt.Errorf("unmarshal meta: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
