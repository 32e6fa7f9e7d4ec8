package transcriptservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"cr-transcripts/pkg/config"
	"cr-transcripts/pkg/content"
	"cr-transcripts/pkg/db"
	"cr-transcripts/pkg/domain"
	"cr-transcripts/pkg/filter"
	"cr-transcripts/pkg/httpclient"
	"cr-transcripts/pkg/index"
	"cr-transcripts/pkg/transcript"
)

// Service keeps a local mirror of the transcript pages and renders each one as
// Markdown. Files are handled one at a time.
type Service struct {
	cfg    *config.Config
	client *httpclient.HTTPClient
	store  db.Store
	logger zerolog.Logger
	now    func() time.Time
}

var (
	ErrNilConfig    = errors.New("config is nil")
	ErrEmptyURLRoot = errors.New("url root is empty")
)

// UpdateResult summarizes an index refresh.
type UpdateResult struct {
	Available  int
	Downloaded []string
}

// Result summarizes a processing pass.
type Result struct {
	Processed int
	Lines     int
	Outputs   []string

	// Cataloged is the number of transcripts in the store after the pass; zero
	// without a store.
	Cataloged int
}

// New creates a new transcript service. store may be nil.
func New(logger zerolog.Logger, cfg *config.Config, store db.Store) (*Service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	return &Service{
		cfg:    cfg,
		client: httpclient.NewClient(cfg.ClientType(), cfg.HTTP.Timeout),
		store:  store,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Run refreshes the local mirror when the update flag is set, then processes
// every local transcript.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	if s.cfg.Update {
		if _, err := s.Update(ctx); err != nil {
			return nil, fmt.Errorf("update: %w", err)
		}
	}
	return s.Process(ctx)
}

// Update downloads the index, works out which listed transcripts are missing
// from the data directory and downloads them.
func (s *Service) Update(ctx context.Context) (*UpdateResult, error) {
	if s.cfg.URLRoot == "" {
		return nil, ErrEmptyURLRoot
	}
	if err := os.MkdirAll(s.cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s.logger.Info().Msg("Updating transcripts...")

	remote, err := s.fetchIndex(ctx)
	if err != nil {
		return nil, err
	}

	pattern := s.cfg.FilePattern()
	local, err := filter.LocalFiles(s.cfg.DataDir, pattern)
	if err != nil {
		return nil, err
	}

	missing, err := filter.Missing(ctx, remote, local, pattern)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int("count", len(missing)).Msgf("Found %d new transcripts to download.", len(missing))

	result := &UpdateResult{Available: len(remote)}
	for _, name := range missing {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !isPlainName(name) {
			s.logger.Warn().Str("file", name).Msg("Skipping transcript link outside the data directory")
			continue
		}

		dest := filepath.Join(s.cfg.DataDir, name)
		if err := s.download(ctx, s.remoteURL(name), dest); err != nil {
			return result, err
		}
		result.Downloaded = append(result.Downloaded, name)
	}

	s.logger.Info().Msg("Transcript update complete.")
	return result, nil
}

// fetchIndex downloads the index document into the data directory and extracts
// the remote transcript names from it.
func (s *Service) fetchIndex(ctx context.Context) (domain.FileSet, error) {
	indexPath := filepath.Join(s.cfg.DataDir, s.cfg.Index.File)
	if err := s.download(ctx, s.remoteURL(s.cfg.Index.File), indexPath); err != nil {
		return nil, fmt.Errorf("fetch index: %w", err)
	}

	data, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	s.logger.Info().Str("file", s.cfg.Index.File).Msg("Parsing index for transcript files...")
	pattern := s.cfg.FilePattern()
	var remote domain.FileSet
	switch s.cfg.Index.Format {
	case config.IndexFormatFeed:
		remote, err = index.ExtractFeed(bytes.NewReader(data), pattern)
	case config.IndexFormatSitemap:
		remote, err = index.ExtractSitemap(bytes.NewReader(data), pattern)
	default:
		remote = index.Extract(bytes.NewReader(data), pattern)
	}
	if err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	return remote, nil
}

func (s *Service) download(ctx context.Context, url, dest string) error {
	s.logger.Info().Str("url", url).Str("dest", dest).Msgf("Downloading %s to %s", url, dest)
	return s.client.Download(ctx, url, dest)
}

func (s *Service) remoteURL(name string) string {
	return s.cfg.URLRoot + "/" + name
}

// Process renders every local transcript into the output directory.
func (s *Service) Process(ctx context.Context) (*Result, error) {
	local, err := filter.LocalFiles(s.cfg.DataDir, s.cfg.FilePattern())
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	result := &Result{}
	for _, name := range local.Sorted() {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		outputPath, doc, err := s.ProcessFile(ctx, name)
		if err != nil {
			return result, err
		}
		result.Processed++
		result.Lines += doc.LineCount
		result.Outputs = append(result.Outputs, outputPath)
	}

	if s.store != nil {
		cataloged, err := s.store.GetAllFilenames(ctx)
		if err != nil {
			return result, fmt.Errorf("list catalog: %w", err)
		}
		result.Cataloged = len(cataloged)
		s.logger.Info().Int("count", result.Cataloged).Msgf("Catalog holds %d transcripts.", result.Cataloged)
	}
	return result, nil
}

// ProcessFile extracts and renders one transcript from the data directory,
// overwriting its output file. When a store is configured the record is saved too.
func (s *Service) ProcessFile(ctx context.Context, name string) (string, *domain.TranscriptDocument, error) {
	s.logger.Info().Str("file", name).Msgf("Processing %s...", name)

	data, err := os.ReadFile(filepath.Join(s.cfg.DataDir, name))
	if err != nil {
		return "", nil, fmt.Errorf("read transcript: %w", err)
	}

	lines := transcript.Extract(bytes.NewReader(data))
	rendered := transcript.RenderString(lines, s.cfg.IncludeNames())

	outputPath := filepath.Join(s.cfg.OutputDir, outputName(name, s.cfg.Output.Extension))
	if err := os.WriteFile(outputPath, []byte(rendered), 0o644); err != nil {
		return "", nil, fmt.Errorf("write output: %w", err)
	}

	doc := &domain.TranscriptDocument{
		Filename:    name,
		SourceURL:   s.remoteURL(name),
		Lines:       lines,
		LineCount:   len(lines),
		Rendered:    rendered,
		ProcessedAt: s.now().UTC(),
	}

	if s.store != nil {
		if title, err := content.ExtractTitle(string(data)); err == nil {
			doc.Title = title
		}
		if err := s.store.SaveTranscript(ctx, doc); err != nil {
			return "", nil, fmt.Errorf("save transcript: %w", err)
		}
	}

	s.logger.Info().Str("output", outputPath).Int("lines", len(lines)).Msgf("Processed data saved to %s", outputPath)
	return outputPath, doc, nil
}

// outputName swaps the final extension of name for ext: cr2-01.html -> cr2-01.md.
func outputName(name, ext string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}

// isPlainName reports whether name is a bare filename with no directory parts.
func isPlainName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}
