package replication

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"cr-transcripts/pkg/domain"
)

const defaultBatchSize = 100

var (
	ErrNoSource = errors.New("replication source is required")
	ErrNoTarget = errors.New("replication target is required")
)

// Source yields every stored transcript. db.MongoStore implements it.
type Source interface {
	GetAllTranscripts(ctx context.Context) ([]domain.TranscriptDocument, error)
}

// Target accepts transcripts that are not stored yet. db.SQLStore implements it.
type Target interface {
	ExistingFilenames(ctx context.Context, names []string) (domain.FileSet, error)
	InsertMissingTx(ctx context.Context, docs []domain.TranscriptDocument) error
}

// Config wires the replication dependencies.
type Config struct {
	Source    Source
	Target    Target
	BatchSize int
	Logger    zerolog.Logger
}

// Stats reports what a replication pass did.
type Stats struct {
	Processed int
	Inserted  int
}

// Replicator copies the transcript catalog from one store to another.
// Transcripts already present in the target are left untouched.
type Replicator struct {
	source    Source
	target    Target
	batchSize int
	logger    zerolog.Logger
}

func NewReplicator(cfg Config) (*Replicator, error) {
	if cfg.Source == nil {
		return nil, ErrNoSource
	}
	if cfg.Target == nil {
		return nil, ErrNoTarget
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	return &Replicator{
		source:    cfg.Source,
		target:    cfg.Target,
		batchSize: cfg.BatchSize,
		logger:    cfg.Logger,
	}, nil
}

// Replicate reads all transcripts from the source and inserts the missing ones
// into the target, one batch at a time.
func (r *Replicator) Replicate(ctx context.Context) (Stats, error) {
	docs, err := r.source.GetAllTranscripts(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("read source: %w", err)
	}

	r.logger.Info().Int("count", len(docs)).Msg("Loaded transcripts from source, processing in batches...")

	var stats Stats
	for start := 0; start < len(docs); start += r.batchSize {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		end := batchEnd(start, r.batchSize, len(docs))
		inserted, err := r.processBatch(ctx, docs[start:end], start, end)
		if err != nil {
			return stats, err
		}
		stats.Processed += end - start
		stats.Inserted += inserted
	}

	r.logger.Info().
		Int("processed", stats.Processed).
		Int("inserted", stats.Inserted).
		Msg("Replication complete")
	return stats, nil
}

// processBatch checks which filenames already exist, then inserts the rest.
func (r *Replicator) processBatch(ctx context.Context, batch []domain.TranscriptDocument, start, end int) (int, error) {
	log := r.logger.With().Int("start", start).Int("end", end).Logger()
	log.Debug().Msg("Processing batch")

	existing, err := r.target.ExistingFilenames(ctx, filenames(batch))
	if err != nil {
		return 0, fmt.Errorf("check existing filenames for batch [%d:%d]: %w", start, end, err)
	}

	toInsert := filterNew(batch, existing)
	if len(toInsert) == 0 {
		log.Debug().Msg("No new transcripts to insert")
		return 0, nil
	}

	if err := r.target.InsertMissingTx(ctx, toInsert); err != nil {
		return 0, fmt.Errorf("insert batch [%d:%d]: %w", start, end, err)
	}
	log.Info().Int("inserted", len(toInsert)).Msg("Inserted transcripts")

	return len(toInsert), nil
}

func batchEnd(start, batchSize, total int) int {
	end := start + batchSize
	if end > total {
		return total
	}
	return end
}

func filenames(batch []domain.TranscriptDocument) []string {
	names := make([]string, 0, len(batch))
	for _, doc := range batch {
		if doc.Filename != "" {
			names = append(names, doc.Filename)
		}
	}
	return names
}

// filterNew drops transcripts without a filename or already present in existing.
func filterNew(batch []domain.TranscriptDocument, existing domain.FileSet) []domain.TranscriptDocument {
	out := make([]domain.TranscriptDocument, 0, len(batch))
	for _, doc := range batch {
		if doc.Filename == "" || existing.Has(doc.Filename) {
			continue
		}
		out = append(out, doc)
	}
	return out
}
