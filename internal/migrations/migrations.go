// Package migrations holds the versioned schema and the runner that applies it.
//
// Files under sql/ are named NNNN_name.up.sql and NNNN_name.down.sql. Applied
// versions are recorded in schema_migrations, and every run holds a Postgres
// advisory lock so two processes never migrate concurrently.
package migrations

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
)

//go:embed sql/*.sql
var files embed.FS

// lockKey identifies the migration advisory lock.
const lockKey int64 = 0x7461736b626f6172

var fileName = regexp.MustCompile(`^(\d{4})_([a-z0-9_]+)\.(up|down)\.sql$`)

type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// State is a migration together with when (if ever) it was applied.
type State struct {
	Migration
	AppliedAt *time.Time
}

func (s State) Applied() bool { return s.AppliedAt != nil }

// Load returns the embedded migrations in version order.
func Load() ([]Migration, error) {
	sub, err := fs.Sub(files, "sql")
	if err != nil {
		return nil, err
	}
	return parse(sub)
}

func parse(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	byVersion := map[int]*Migration{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := fileName.FindStringSubmatch(e.Name())
		if m == nil {
			return nil, fmt.Errorf("unexpected migration file %q", e.Name())
		}
		version, _ := strconv.Atoi(m[1])
		body, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}

		mig, ok := byVersion[version]
		if !ok {
			mig = &Migration{Version: version, Name: m[2]}
			byVersion[version] = mig
		}
		if mig.Name != m[2] {
			return nil, fmt.Errorf("migration %04d has conflicting names %q and %q", version, mig.Name, m[2])
		}
		if m[3] == "up" {
			mig.Up = string(body)
		} else {
			mig.Down = string(body)
		}
	}

	out := make([]Migration, 0, len(byVersion))
	for _, mig := range byVersion {
		if mig.Up == "" || mig.Down == "" {
			return nil, fmt.Errorf("migration %04d_%s needs both up and down files", mig.Version, mig.Name)
		}
		out = append(out, *mig)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Runner applies migrations over a single dedicated connection.
type Runner struct {
	conn       *pgx.Conn
	migrations []Migration
}

func NewRunner(conn *pgx.Conn, migrations []Migration) *Runner {
	return &Runner{conn: conn, migrations: migrations}
}

// Up applies every pending migration and returns how many ran.
// Running it again once the schema is current is a no-op.
func (r *Runner) Up(ctx context.Context) (int, error) {
	var count int
	err := r.locked(ctx, func(applied map[int]time.Time) error {
		for _, m := range r.migrations {
			if _, ok := applied[m.Version]; ok {
				continue
			}
			if err := r.apply(ctx, m.Up, func(tx pgx.Tx) error {
				_, err := tx.Exec(ctx,
					`INSERT INTO schema_migrations (version, name, applied_at) VALUES ($1, $2, now())`,
					m.Version, m.Name)
				return err
			}); err != nil {
				return fmt.Errorf("apply %04d_%s: %w", m.Version, m.Name, err)
			}
			slog.Info("migration applied", "version", m.Version, "name", m.Name)
			count++
		}
		return nil
	})
	return count, err
}

// Down reverts the n most recently applied migrations.
func (r *Runner) Down(ctx context.Context, n int) (int, error) {
	if n <= 0 {
		return 0, errors.New("down: n must be positive")
	}
	var count int
	err := r.locked(ctx, func(applied map[int]time.Time) error {
		for i := len(r.migrations) - 1; i >= 0 && count < n; i-- {
			m := r.migrations[i]
			if _, ok := applied[m.Version]; !ok {
				continue
			}
			if err := r.apply(ctx, m.Down, func(tx pgx.Tx) error {
				_, err := tx.Exec(ctx, `DELETE FROM schema_migrations WHERE version = $1`, m.Version)
				return err
			}); err != nil {
				return fmt.Errorf("revert %04d_%s: %w", m.Version, m.Name, err)
			}
			slog.Info("migration reverted", "version", m.Version, "name", m.Name)
			count++
		}
		return nil
	})
	return count, err
}

func (r *Runner) Status(ctx context.Context) ([]State, error) {
	var out []State
	err := r.locked(ctx, func(applied map[int]time.Time) error {
		out = states(r.migrations, applied)
		return nil
	})
	return out, err
}

func states(migrations []Migration, applied map[int]time.Time) []State {
	out := make([]State, 0, len(migrations))
	for _, m := range migrations {
		s := State{Migration: m}
		if at, ok := applied[m.Version]; ok {
			s.AppliedAt = &at
		}
		out = append(out, s)
	}
	return out
}

// locked ensures the tracking table exists, takes the advisory lock, and
// hands fn the set of applied versions.
func (r *Runner) locked(ctx context.Context, fn func(applied map[int]time.Time) error) error {
	if _, err := r.conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, lockKey); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	defer func() {
		// The lock is session-scoped; release it on a fresh context so a
		// cancelled ctx does not leave it held.
		unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := r.conn.Exec(unlockCtx, `SELECT pg_advisory_unlock($1)`, lockKey); err != nil {
			slog.Error("release migration lock", "error", err)
		}
	}()

	if _, err := r.conn.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := r.applied(ctx)
	if err != nil {
		return err
	}
	return fn(applied)
}

func (r *Runner) applied(ctx context.Context) (map[int]time.Time, error) {
	rows, err := r.conn.Query(ctx, `SELECT version, applied_at FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	out := map[int]time.Time{}
	for rows.Next() {
		var version int
		var at time.Time
		if err := rows.Scan(&version, &at); err != nil {
			return nil, err
		}
		out[version] = at
	}
	return out, rows.Err()
}

// apply runs body and the bookkeeping statement in one transaction.
func (r *Runner) apply(ctx context.Context, body string, record func(tx pgx.Tx) error) error {
	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, body); err != nil {
		return err
	}
	if err := record(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
