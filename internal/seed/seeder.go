package seed

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"pharma-plus/internal/model"
	"pharma-plus/internal/repository"
	"pharma-plus/internal/service"

	"github.com/rs/zerolog"
)

// Summary counts what a seed run did.
type Summary struct {
	Created int
	Updated int
	Skipped int
}

// Seeder upserts seed entries into the catalogue. An entry matches an
// existing product by legacy id when it carries one, otherwise by name.
type Seeder struct {
	lookup   repository.ProductRepository
	products service.ProductService
	logger   zerolog.Logger
}

// NewSeeder creates a seeder. Writes go through the product service so seed
// entries get the same canonicalisation and validation as API payloads.
func NewSeeder(lookup repository.ProductRepository, products service.ProductService, logger zerolog.Logger) *Seeder {
	return &Seeder{
		lookup:   lookup,
		products: products,
		logger:   logger.With().Str("component", "seeder").Logger(),
	}
}

func (s *Seeder) existing(ctx context.Context, in *model.ProductInput) (*model.Product, error) {
	if in.LegacyID != nil {
		return s.lookup.GetByLegacyID(ctx, *in.LegacyID)
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		return s.lookup.GetByName(ctx, strings.TrimSpace(*in.Name))
	}
	return nil, nil
}

// Run upserts every entry. Entries failing validation are skipped and
// logged; store failures abort the run.
func (s *Seeder) Run(ctx context.Context, entries []model.ProductInput) (Summary, error) {
	var summary Summary

	for i := range entries {
		in := &entries[i]

		current, err := s.existing(ctx, in)
		if err != nil {
			return summary, fmt.Errorf("failed to look up seed entry %d: %w", i, err)
		}

		if current == nil {
			_, err = s.products.Create(ctx, in)
		} else {
			_, err = s.products.Update(ctx, current.ID.String(), in)
		}

		if err != nil {
			if kind := model.KindOf(err); kind == model.KindValidation || kind == model.KindConflict {
				s.logger.Warn().
					Err(err).
					Int("entry", i).
					Str("product", describe(in)).
					Msg("skipping seed entry")
				summary.Skipped++
				continue
			}
			return summary, fmt.Errorf("failed to upsert seed entry %d: %w", i, err)
		}

		if current == nil {
			summary.Created++
		} else {
			summary.Updated++
		}
	}

	s.logger.Info().
		Int("created", summary.Created).
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Msg("seed run finished")

	return summary, nil
}

// LoadAndRun loads the document at path with loader and upserts it.
func (s *Seeder) LoadAndRun(ctx context.Context, loader Loader, path string) (Summary, error) {
	entries, err := loader.Load(ctx, path)
	if err != nil {
		return Summary{}, err
	}
	return s.Run(ctx, entries)
}

// describe renders an entry's identity for logs.
func describe(in *model.ProductInput) string {
	if in.LegacyID != nil {
		return "id " + strconv.FormatInt(*in.LegacyID, 10)
	}
	if in.Name != nil {
		return *in.Name
	}
	return "unnamed"
}
