// Package sqlite provides a SQLite-backed submission store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/youruser/pledgeapp/internal/submission"
	"github.com/youruser/pledgeapp/internal/submission/sqlite/migrations"
	"github.com/youruser/pledgeapp/internal/util"
)

// Store persists submissions in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ submission.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the store at path and applies embedded migrations. The path
// ":memory:" opens a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := ":memory:"
	if path != ":memory:" {
		cleanPath := filepath.Clean(path)
		if err := util.EnsureParentDir(cleanPath); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
		dsn = cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would get its own empty database
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save inserts one submission.
func (s *Store) Save(ctx context.Context, r submission.Record) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("submission id is required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO submissions (
		   id, organization_id, organization_name, name, grade, section,
		   phone, email, message, photo_status, created_at,
		   poster_generated, poster_downloaded, opt_in
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.OrganizationID, r.OrganizationName, r.Name, r.Grade, r.Section,
		r.Phone, r.Email, r.Message, r.PhotoStatus, toMillis(r.Timestamp),
		boolInt(r.PosterGenerated), boolInt(r.PosterDownloaded), boolInt(r.OptIn),
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// MarkDownloaded sets the downloaded flag.
func (s *Store) MarkDownloaded(ctx context.Context, id string) error {
	res, err := s.sqlDB.ExecContext(ctx, `UPDATE submissions SET poster_downloaded = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark downloaded: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return submission.ErrNotFound
	}
	return nil
}

// List returns every submission, oldest first.
func (s *Store) List(ctx context.Context) ([]submission.Record, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, organization_id, organization_name, name, grade, section,
		        phone, email, message, photo_status, created_at,
		        poster_generated, poster_downloaded, opt_in
		   FROM submissions
		  ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []submission.Record
	for rows.Next() {
		var (
			r                     submission.Record
			created               int64
			generated, downloaded int
			optIn                 int
		)
		if err := rows.Scan(&r.ID, &r.OrganizationID, &r.OrganizationName, &r.Name, &r.Grade, &r.Section,
			&r.Phone, &r.Email, &r.Message, &r.PhotoStatus, &created,
			&generated, &downloaded, &optIn); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		r.Timestamp = fromMillis(created)
		r.PosterGenerated = generated != 0
		r.PosterDownloaded = downloaded != 0
		r.OptIn = optIn != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
