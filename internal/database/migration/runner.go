// Package migration applies the versioned SQL files that define the skills
// schema. Files are named V<version>__<label>.sql; the set compiled into the
// binary is used unless Runner.Dir points somewhere else.
package migration

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

//go:embed sql/*.sql
var embedded embed.FS

// advisoryLockKey serialises concurrent runners (several server replicas
// starting at once).
const advisoryLockKey = 746295115

var (
	ErrChecksumMismatch = errors.New("applied migration was modified")
	ErrUnknownApplied   = errors.New("database has a migration this build does not know")
)

type Migration struct {
	Version  int64
	Label    string
	Filename string
	SQL      string
	Checksum string
}

// Record is a row of schema_migrations.
type Record struct {
	Version   int64
	Checksum  string
	AppliedAt time.Time
}

// State pairs a known migration with its record, if applied.
type State struct {
	Migration
	AppliedAt *time.Time
}

type Runner struct {
	Dir string
	Log *zap.Logger
}

// Run applies every pending migration and returns how many were applied.
func (r Runner) Run(ctx context.Context, db *sql.DB) (int, error) {
	if db == nil {
		return 0, errors.New("nil db")
	}
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}

	migs, err := Load(r.source())
	if err != nil || len(migs) == 0 {
		return 0, err
	}
	if err := createHistoryTable(ctx, db); err != nil {
		return 0, err
	}

	// Advisory locks are per session, so lock, read and apply all happen on
	// one pinned connection.
	conn, err := db.Conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, advisoryLockKey); err != nil {
		return 0, fmt.Errorf("acquire migration lock: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, advisoryLockKey)
	}()

	applied, err := readHistory(ctx, conn)
	if err != nil {
		return 0, err
	}
	pending, err := Plan(migs, applied)
	if err != nil {
		return 0, err
	}

	for i, m := range pending {
		start := time.Now()
		if err := apply(ctx, conn, m); err != nil {
			return i, err
		}
		log.Info("migration applied",
			zap.Int64("version", m.Version),
			zap.String("label", m.Label),
			zap.Duration("took", time.Since(start)),
		)
	}
	return len(pending), nil
}

// Status lists every known migration with its applied time, oldest first.
func (r Runner) Status(ctx context.Context, db *sql.DB) ([]State, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	migs, err := Load(r.source())
	if err != nil {
		return nil, err
	}
	if err := createHistoryTable(ctx, db); err != nil {
		return nil, err
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	applied, err := readHistory(ctx, conn)
	if err != nil {
		return nil, err
	}
	out := make([]State, 0, len(migs))
	for _, m := range migs {
		st := State{Migration: m}
		if rec, ok := applied[m.Version]; ok {
			at := rec.AppliedAt
			st.AppliedAt = &at
		}
		out = append(out, st)
	}
	return out, nil
}

// Plan returns the migrations in migs that are not in applied. It fails if
// an applied migration changed on disk or is missing from migs.
func Plan(migs []Migration, applied map[int64]Record) ([]Migration, error) {
	known := make(map[int64]struct{}, len(migs))
	var pending []Migration
	for _, m := range migs {
		known[m.Version] = struct{}{}
		rec, ok := applied[m.Version]
		if !ok {
			pending = append(pending, m)
			continue
		}
		if rec.Checksum != m.Checksum {
			return nil, fmt.Errorf("%w: V%d %s", ErrChecksumMismatch, m.Version, m.Filename)
		}
	}
	for v := range applied {
		if _, ok := known[v]; !ok {
			return nil, fmt.Errorf("%w: V%d", ErrUnknownApplied, v)
		}
	}
	return pending, nil
}

func (r Runner) source() fs.FS {
	if dir := strings.TrimSpace(r.Dir); dir != "" {
		return os.DirFS(dir)
	}
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		return embedded
	}
	return sub
}

var filenamePattern = regexp.MustCompile(`^V(\d+)__([A-Za-z0-9_.-]+)\.sql$`)

// Load reads migrations from the root of fsys, sorted by version. Files not
// matching the naming scheme are ignored.
func Load(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var migs []Migration
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m, ok, err := readMigration(fsys, e.Name())
		if err != nil {
			return nil, err
		}
		if ok {
			migs = append(migs, m)
		}
	}

	sort.Slice(migs, func(i, j int) bool { return migs[i].Version < migs[j].Version })
	for i := 1; i < len(migs); i++ {
		if migs[i].Version == migs[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d: %s and %s",
				migs[i].Version, migs[i-1].Filename, migs[i].Filename)
		}
	}
	return migs, nil
}

func readMigration(fsys fs.FS, name string) (Migration, bool, error) {
	parts := filenamePattern.FindStringSubmatch(name)
	if parts == nil {
		return Migration{}, false, nil
	}
	version, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Migration{}, false, fmt.Errorf("migration %s: bad version: %w", name, err)
	}
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Migration{}, false, err
	}
	body := strings.TrimSpace(string(raw))
	if body == "" {
		return Migration{}, false, fmt.Errorf("migration %s is empty", name)
	}
	sum := sha256.Sum256([]byte(body))
	return Migration{
		Version:  version,
		Label:    parts[2],
		Filename: name,
		SQL:      body,
		Checksum: hex.EncodeToString(sum[:]),
	}, true, nil
}

func createHistoryTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

func readHistory(ctx context.Context, conn *sql.Conn) (map[int64]Record, error) {
	rows, err := conn.QueryContext(ctx, `SELECT version, checksum, applied_at FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer rows.Close()

	out := map[int64]Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Version, &rec.Checksum, &rec.AppliedAt); err != nil {
			return nil, err
		}
		out[rec.Version] = rec
	}
	return out, rows.Err()
}

func apply(ctx context.Context, conn *sql.Conn, m Migration) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("apply %s: %w", m.Filename, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, checksum) VALUES ($1, $2, $3)`,
		m.Version, m.Label, m.Checksum,
	); err != nil {
		return fmt.Errorf("record %s: %w", m.Filename, err)
	}
	return tx.Commit()
}
