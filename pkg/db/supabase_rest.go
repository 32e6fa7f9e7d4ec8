package db

import (
	"context"
	"fmt"
	"time"

	"cr-transcripts/pkg/domain"
)

const transcriptTable = "transcript"

// RESTStore keeps transcript records through the Supabase REST API. It is used
// when a project URL and API key are configured without database credentials.
// The transcript table must already exist; see transcriptDDL.
type RESTStore struct {
	client *SupabaseClient
}

// NewRESTStore creates a store on top of a connected client whose SDK is set.
func NewRESTStore(client *SupabaseClient) *RESTStore {
	return &RESTStore{client: client}
}

// transcriptRow mirrors the transcript table columns.
type transcriptRow struct {
	Filename    string                  `json:"filename"`
	SourceURL   string                  `json:"source_url"`
	Title       string                  `json:"title"`
	Lines       []domain.TranscriptLine `json:"lines"`
	LineCount   int                     `json:"line_count"`
	Rendered    string                  `json:"rendered"`
	ProcessedAt time.Time               `json:"processed_at"`
}

func newTranscriptRow(doc *domain.TranscriptDocument) transcriptRow {
	lines := doc.Lines
	if lines == nil {
		lines = []domain.TranscriptLine{}
	}
	return transcriptRow{
		Filename:    doc.Filename,
		SourceURL:   doc.SourceURL,
		Title:       doc.Title,
		Lines:       lines,
		LineCount:   doc.LineCount,
		Rendered:    doc.Rendered,
		ProcessedAt: doc.ProcessedAt,
	}
}

// SaveTranscript upserts doc keyed by filename.
func (s *RESTStore) SaveTranscript(ctx context.Context, doc *domain.TranscriptDocument) error {
	if s.client == nil || s.client.SDK() == nil {
		return ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	_, _, err := s.client.SDK().
		From(transcriptTable).
		Upsert(newTranscriptRow(doc), "filename", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("upsert transcript %q: %w", doc.Filename, err)
	}
	return nil
}

// GetAllFilenames selects the filename column of every row.
func (s *RESTStore) GetAllFilenames(ctx context.Context) (domain.FileSet, error) {
	if s.client == nil || s.client.SDK() == nil {
		return nil, ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []struct {
		Filename string `json:"filename"`
	}
	if _, err := s.client.SDK().From(transcriptTable).Select("filename", "", false).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("select filenames: %w", err)
	}

	files := make(domain.FileSet, len(rows))
	for _, row := range rows {
		if row.Filename != "" {
			files.Add(row.Filename)
		}
	}
	return files, nil
}

// Close releases the client.
func (s *RESTStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
