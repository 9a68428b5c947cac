package seed

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"pharma-plus/internal/model"

	"github.com/rs/zerolog"
)

// Loader reads a seed document: a JSON array of product payloads.
type Loader interface {
	Load(ctx context.Context, path string) ([]model.ProductInput, error)
}

// decode parses a seed document. Names ending in .gz are gunzipped first.
func decode(r io.Reader, name string) ([]model.ProductInput, error) {
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		gzipReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader for %s: %w", name, err)
		}
		defer gzipReader.Close()
		r = gzipReader
	}

	var entries []model.ProductInput
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode seed document %s: %w", name, err)
	}

	return entries, nil
}

// fileLoader implements Loader for local seed files.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based seed loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "seed-loader").Logger(),
	}
}

// Load reads a seed document from the local file system.
func (l *fileLoader) Load(ctx context.Context, filePath string) ([]model.ProductInput, error) {
	l.logger.Info().Str("file", filePath).Msg("loading seed file")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open seed file")
		return nil, fmt.Errorf("failed to open seed file %s: %w", filePath, err)
	}
	defer file.Close()

	entries, err := decode(file, filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to read seed file")
		return nil, err
	}

	l.logger.Info().
		Str("file", filePath).
		Int("entries", len(entries)).
		Msg("seed file loaded successfully")

	return entries, nil
}
