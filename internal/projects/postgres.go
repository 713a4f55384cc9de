package projects

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const table = "projects"

var columns = []string{
	"id",
	"prompt",
	"url",
	"ntl",
	"agent_name",
	"agent_capabilities",
	"neural_seek_response",
	"generation_time",
	"component_count",
	"created_at",
}

// DB is the subset of pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository stores projects in Postgres.
type Repository struct {
	db  DB
	now func() time.Time
}

var _ Store = (*Repository)(nil)

// NewRepository wraps a pool.
func NewRepository(db DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

func selectBuilder() squirrel.SelectBuilder {
	return squirrel.
		Select(columns...).
		From(table).
		PlaceholderFormat(squirrel.Dollar)
}

// Create inserts p, assigning its ID and creation time when unset.
func (r *Repository) Create(ctx context.Context, p *Project) error {
	if p == nil {
		return errors.New("projects: nil project")
	}
	prepare(p, r.now())

	query, args, err := squirrel.
		Insert(table).
		Columns(columns...).
		Values(
			p.ID,
			p.Prompt,
			p.URL,
			nullableJSON(p.NTL),
			p.AgentName,
			p.AgentCapabilities,
			nullableJSON(p.NeuralSeekResponse),
			p.GenerationTime,
			p.ComponentCount,
			p.CreatedAt,
		).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("projects: build insert: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("projects: insert: %w", err)
	}
	return nil
}

// List returns the newest projects first.
func (r *Repository) List(ctx context.Context, limit int) ([]Project, error) {
	query, args, err := selectBuilder().
		OrderBy("created_at DESC").
		Limit(uint64(normalizeLimit(limit))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("projects: build list: %w", err)
	}
	var out []Project
	if err := pgxscan.Select(ctx, r.db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("projects: list: %w", err)
	}
	if out == nil {
		out = []Project{}
	}
	return out, nil
}

// Get loads one project.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Project, error) {
	query, args, err := selectBuilder().
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return Project{}, fmt.Errorf("projects: build get: %w", err)
	}
	var p Project
	if err := pgxscan.Get(ctx, r.db, &p, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pgxscan.NotFound(err) {
			return Project{}, ErrNotFound
		}
		return Project{}, fmt.Errorf("projects: get: %w", err)
	}
	return p, nil
}

// nullableJSON stores empty documents as NULL.
func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
