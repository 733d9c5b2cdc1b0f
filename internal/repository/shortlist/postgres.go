package shortlist

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domshort "github.com/kailas-cloud/candidex/internal/domain/shortlist"
)

//go:embed migrations/*.sql
var migrations embed.FS

// PgxPool is the subset of *pgxpool.Pool the store uses.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// NewPool opens a pgx pool for the transition log.
func NewPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	cfg.MaxConnIdleTime = 5 * time.Minute
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	return pool, nil
}

// PostgresStore keeps transitions in the shortlist_transitions table.
type PostgresStore struct {
	pool PgxPool
}

// NewPostgresStore creates a Postgres-backed transition log.
func NewPostgresStore(p PgxPool) *PostgresStore {
	return &PostgresStore{pool: p}
}

// Migrate applies the embedded schema files in name order. Statements are idempotent.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("op=shortlist.migrate: %w", err)
	}
	sort.Strings(names)
	for _, name := range names {
		body, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("op=shortlist.migrate %s: %w", name, err)
		}
		if _, err := s.pool.Exec(ctx, string(body)); err != nil {
			return fmt.Errorf("op=shortlist.migrate %s: %w", name, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const insertTransition = `INSERT INTO shortlist_transitions (job_id, candidate_id, from_stage, to_stage, decided_at)
VALUES ($1,$2,$3,$4,$5)`

// RecordTransition appends a single transition.
func (s *PostgresStore) RecordTransition(ctx context.Context, t domshort.Transition) error {
	_, err := s.pool.Exec(ctx, insertTransition, t.JobID, t.CandidateID, string(t.From), string(t.To), t.At.UTC())
	if err != nil {
		return fmt.Errorf("op=shortlist.record: %w", err)
	}
	return nil
}

// RecordTransitions appends transitions in one transaction; either all land or none do.
func (s *PostgresStore) RecordTransitions(ctx context.Context, ts []domshort.Transition) (err error) {
	if len(ts) == 0 {
		return nil
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("op=shortlist.record_batch begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	for _, t := range ts {
		if _, err = tx.Exec(ctx, insertTransition,
			t.JobID, t.CandidateID, string(t.From), string(t.To), t.At.UTC()); err != nil {
			return fmt.Errorf("op=shortlist.record_batch: %w", err)
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("op=shortlist.record_batch commit: %w", err)
	}
	return nil
}

// LatestStages returns the current stage of every candidate with at least one transition.
func (s *PostgresStore) LatestStages(ctx context.Context, jobID string) (map[string]domshort.Decision, error) {
	q := `SELECT DISTINCT ON (candidate_id) candidate_id, to_stage, decided_at
FROM shortlist_transitions WHERE job_id=$1 ORDER BY candidate_id, id DESC`
	rows, err := s.pool.Query(ctx, q, jobID)
	if err != nil {
		return nil, fmt.Errorf("op=shortlist.latest: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domshort.Decision)
	for rows.Next() {
		var (
			candidateID, stage string
			at                 time.Time
		)
		if err := rows.Scan(&candidateID, &stage, &at); err != nil {
			return nil, fmt.Errorf("op=shortlist.latest scan: %w", err)
		}
		out[candidateID] = domshort.NewDecision(candidateID, domshort.Stage(stage), at)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=shortlist.latest: %w", err)
	}
	return out, nil
}

// History returns a candidate's transitions oldest first.
func (s *PostgresStore) History(ctx context.Context, jobID, candidateID string) ([]domshort.Transition, error) {
	q := `SELECT from_stage, to_stage, decided_at FROM shortlist_transitions
WHERE job_id=$1 AND candidate_id=$2 ORDER BY id`
	rows, err := s.pool.Query(ctx, q, jobID, candidateID)
	if err != nil {
		return nil, fmt.Errorf("op=shortlist.history: %w", err)
	}
	defer rows.Close()

	var out []domshort.Transition
	for rows.Next() {
		var (
			from, to string
			at       time.Time
		)
		if err := rows.Scan(&from, &to, &at); err != nil {
			return nil, fmt.Errorf("op=shortlist.history scan: %w", err)
		}
		out = append(out, domshort.Transition{
			JobID: jobID, CandidateID: candidateID,
			From: domshort.Stage(from), To: domshort.Stage(to), At: at,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=shortlist.history: %w", err)
	}
	return out, nil
}
