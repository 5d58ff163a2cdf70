package repository

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/basel-ax/archaeo/internal/domain"
)

// ErrNotFound is returned when no finding has the requested ID
var ErrNotFound = errors.New("finding not found")

// FindingRepository defines the interface for the findings archive
type FindingRepository interface {
	Save(ctx context.Context, f domain.Finding) error
	Get(ctx context.Context, id string) (*domain.Finding, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Finding, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Dialect selects the bind parameter syntax of the database
type Dialect int

const (
	// SQLite uses ? placeholders
	SQLite Dialect = iota
	// Postgres uses $n placeholders
	Postgres
)

// SQLFindingRepository implements FindingRepository on database/sql
type SQLFindingRepository struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLFindingRepository creates a findings repository over db
func NewSQLFindingRepository(db *sql.DB, dialect Dialect) *SQLFindingRepository {
	return &SQLFindingRepository{db: db, dialect: dialect}
}

// Migrate creates the findings table when missing
func (r *SQLFindingRepository) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS findings (
			id           TEXT PRIMARY KEY,
			module       TEXT NOT NULL,
			fingerprint  TEXT NOT NULL,
			params       TEXT NOT NULL DEFAULT '',
			payload_kind TEXT NOT NULL,
			payload      TEXT NOT NULL,
			created_at   BIGINT NOT NULL
		)
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return errors.Wrap(err, "create findings table")
	}
	index := `CREATE INDEX IF NOT EXISTS findings_created_at ON findings (created_at)`
	if _, err := r.db.ExecContext(ctx, index); err != nil {
		return errors.Wrap(err, "create findings index")
	}
	return nil
}

// Save stores a finding
func (r *SQLFindingRepository) Save(ctx context.Context, f domain.Finding) error {
	query := `
		INSERT INTO findings (id, module, fingerprint, params, payload_kind, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, r.rebind(query),
		f.ID, string(f.Module), f.Fingerprint, f.Params, string(f.PayloadKind), f.Payload, f.CreatedAt.UnixNano())
	return errors.Wrap(err, "insert finding")
}

// Get retrieves one finding by ID
func (r *SQLFindingRepository) Get(ctx context.Context, id string) (*domain.Finding, error) {
	query := `
		SELECT id, module, fingerprint, params, payload_kind, payload, created_at
		FROM findings
		WHERE id = ?
	`
	f, err := scanFinding(r.db.QueryRowContext(ctx, r.rebind(query), id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select finding")
	}
	return f, nil
}

// ListRecent returns the newest findings first
func (r *SQLFindingRepository) ListRecent(ctx context.Context, limit int) ([]domain.Finding, error) {
	query := `
		SELECT id, module, fingerprint, params, payload_kind, payload, created_at
		FROM findings
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, r.rebind(query), limit)
	if err != nil {
		return nil, errors.Wrap(err, "list findings")
	}
	defer rows.Close()

	var findings []domain.Finding
	for rows.Next() {
		f, err := scanFinding(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan finding")
		}
		findings = append(findings, *f)
	}
	return findings, rows.Err()
}

// DeleteOlderThan removes findings created before cutoff
func (r *SQLFindingRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM findings
		WHERE created_at < ?
	`
	res, err := r.db.ExecContext(ctx, r.rebind(query), cutoff.UnixNano())
	if err != nil {
		return 0, errors.Wrap(err, "delete findings")
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFinding(s scanner) (*domain.Finding, error) {
	var (
		f           domain.Finding
		module      string
		payloadKind string
		createdAt   int64
	)
	if err := s.Scan(&f.ID, &module, &f.Fingerprint, &f.Params, &payloadKind, &f.Payload, &createdAt); err != nil {
		return nil, err
	}
	f.Module = domain.ModuleType(module)
	f.PayloadKind = domain.PayloadKind(payloadKind)
	f.CreatedAt = time.Unix(0, createdAt)
	return &f, nil
}

// rebind rewrites ? placeholders as $1..$n for Postgres
func (r *SQLFindingRepository) rebind(query string) string {
	if r.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}
