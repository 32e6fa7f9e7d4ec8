package db

import (
	"context"
	"database/sql"

	"cr-transcripts/pkg/domain"
)

// DBProvider is an interface for database clients that provide access to a sql.DB handle.
// This allows both PostgresClient and SupabaseClient to back a SQLStore interchangeably.
type DBProvider interface {
	DB() *sql.DB
	Close() error
}

// Store persists catalog records for processed transcripts.
type Store interface {
	// SaveTranscript inserts or replaces the record keyed by doc.Filename.
	SaveTranscript(ctx context.Context, doc *domain.TranscriptDocument) error

	// GetAllFilenames returns the filenames of every stored transcript.
	GetAllFilenames(ctx context.Context) (domain.FileSet, error)

	Close(ctx context.Context) error
}
