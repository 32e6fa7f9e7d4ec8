package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cr-transcripts/pkg/domain"
)

var ErrNotConnected = errors.New("postgres DB not connected")

const transcriptDDL = `
CREATE TABLE IF NOT EXISTS transcript (
  filename TEXT PRIMARY KEY,
  source_url TEXT NOT NULL DEFAULT '',
  title TEXT NOT NULL DEFAULT '',
  lines JSONB NOT NULL DEFAULT '[]'::jsonb,
  line_count INTEGER NOT NULL DEFAULT 0,
  rendered TEXT NOT NULL DEFAULT '',
  processed_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

const upsertTranscriptQuery = `
INSERT INTO transcript (filename, source_url, title, lines, line_count, rendered, processed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (filename) DO UPDATE SET
  source_url = EXCLUDED.source_url,
  title = EXCLUDED.title,
  lines = EXCLUDED.lines,
  line_count = EXCLUDED.line_count,
  rendered = EXCLUDED.rendered,
  processed_at = EXCLUDED.processed_at`

const insertTranscriptQuery = `
INSERT INTO transcript (filename, source_url, title, lines, line_count, rendered, processed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (filename) DO NOTHING`

// SQLStore keeps transcript records in a Postgres table. Any DBProvider works,
// so the same store serves plain Postgres and Supabase.
type SQLStore struct {
	pg DBProvider
}

// NewSQLStore creates a store on top of a connected provider.
func NewSQLStore(pg DBProvider) *SQLStore {
	return &SQLStore{pg: pg}
}

func (s *SQLStore) db() (*sql.DB, error) {
	if s.pg == nil || s.pg.DB() == nil {
		return nil, ErrNotConnected
	}
	return s.pg.DB(), nil
}

// EnsureSchema creates the transcript table if needed.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, transcriptDDL); err != nil {
		return fmt.Errorf("create transcript table: %w", err)
	}
	return nil
}

// SaveTranscript upserts doc keyed by filename.
func (s *SQLStore) SaveTranscript(ctx context.Context, doc *domain.TranscriptDocument) error {
	db, err := s.db()
	if err != nil {
		return err
	}

	args, err := transcriptArgs(doc)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, upsertTranscriptQuery, args...); err != nil {
		return fmt.Errorf("upsert transcript %q: %w", doc.Filename, err)
	}
	return nil
}

// GetAllFilenames returns every stored filename.
func (s *SQLStore) GetAllFilenames(ctx context.Context) (domain.FileSet, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT filename FROM transcript`)
	if err != nil {
		return nil, fmt.Errorf("query filenames: %w", err)
	}
	return scanFilenames(rows)
}

// ExistingFilenames returns which of names are already stored.
func (s *SQLStore) ExistingFilenames(ctx context.Context, names []string) (domain.FileSet, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return domain.FileSet{}, nil
	}

	query, args := buildFilenameInQuery(names)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query existing filenames: %w", err)
	}
	return scanFilenames(rows)
}

// InsertMissingTx inserts docs in one transaction, leaving existing rows untouched.
func (s *SQLStore) InsertMissingTx(ctx context.Context, docs []domain.TranscriptDocument) error {
	db, err := s.db()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertTranscriptQuery)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range docs {
		if docs[i].Filename == "" {
			continue
		}
		args, err := transcriptArgs(&docs[i])
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert transcript %q: %w", docs[i].Filename, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close closes the underlying provider.
func (s *SQLStore) Close(ctx context.Context) error {
	if s.pg == nil {
		return nil
	}
	return s.pg.Close()
}

func transcriptArgs(doc *domain.TranscriptDocument) ([]interface{}, error) {
	lines := doc.Lines
	if lines == nil {
		lines = []domain.TranscriptLine{}
	}
	encoded, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("encode lines for %q: %w", doc.Filename, err)
	}
	return []interface{}{
		doc.Filename,
		doc.SourceURL,
		doc.Title,
		string(encoded),
		doc.LineCount,
		doc.Rendered,
		doc.ProcessedAt,
	}, nil
}

// buildFilenameInQuery builds a SELECT with one positional parameter per name.
func buildFilenameInQuery(names []string) (string, []interface{}) {
	placeholders := make([]string, len(names))
	args := make([]interface{}, len(names))
	for i, name := range names {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = name
	}
	return "SELECT filename FROM transcript WHERE filename IN (" + strings.Join(placeholders, ", ") + ")", args
}

func scanFilenames(rows *sql.Rows) (domain.FileSet, error) {
	defer rows.Close()

	files := make(domain.FileSet)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan filename: %w", err)
		}
		if name != "" {
			files.Add(name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return files, nil
}
