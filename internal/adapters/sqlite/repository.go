package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/csg33k/churn-advisor/internal/domain"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Journal records completed submissions. It never stores form field values.
type Journal struct {
	db *sql.DB
}

// New opens the SQLite database and applies the embedded migrations, so the
// journal also works where `dbmate up` was never run.
func New(dsn string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) Record(ctx context.Context, e *domain.JournalEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	res, err := j.db.ExecContext(ctx, `
		INSERT INTO submissions (
			container, seq, outcome, label, probability, suggested_discount,
			latency_ms, error, created_at
		) VALUES (?,?,?,?,?,?,?,?,?)`,
		e.Container, int64(e.Seq), string(e.Outcome), e.Label,
		e.Probability, e.SuggestedDiscount,
		e.Latency.Milliseconds(), e.Error, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record submission: %w", err)
	}
	id, _ := res.LastInsertId()
	e.ID = id
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, container, seq, outcome, label, probability, suggested_discount,
		       latency_ms, error, created_at
		FROM submissions ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.JournalEntry
	for rows.Next() {
		var (
			e         domain.JournalEntry
			seq       int64
			outcome   string
			latencyMS int64
		)
		if err := rows.Scan(&e.ID, &e.Container, &seq, &outcome, &e.Label,
			&e.Probability, &e.SuggestedDiscount, &latencyMS, &e.Error, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Seq = uint64(seq)
		e.Outcome = domain.Outcome(outcome)
		e.Latency = time.Duration(latencyMS) * time.Millisecond
		out = append(out, e)
	}
	return out, rows.Err()
}

// migrate runs the "-- migrate:up" half of every dbmate migration in order.
// The statements are idempotent.
func migrate(db *sql.DB) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		raw, err := migrations.ReadFile(name)
		if err != nil {
			return err
		}
		up := string(raw)
		if i := strings.Index(up, "-- migrate:down"); i >= 0 {
			up = up[:i]
		}
		up = strings.Replace(up, "-- migrate:up", "", 1)
		if _, err := db.Exec(up); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}
	return nil
}
