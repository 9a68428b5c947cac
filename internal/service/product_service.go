package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"pharma-plus/internal/model"
	"pharma-plus/internal/repository"

	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	normalizer  Normalizer
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, normalizer Normalizer, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		normalizer:  normalizer,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// List retrieves one page of products.
func (s *productService) List(ctx context.Context, filter model.ProductFilter) (*model.ProductPage, error) {
	filter.Normalise()

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).
			Int("page", filter.Page).
			Int("limit", filter.Limit).
			Msg("failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Int64("total", total).
		Int("page", filter.Page).
		Msg("listed products")

	return &model.ProductPage{
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
		Items: s.normalizer.NormalizeAll(products),
	}, nil
}

// resolve finds a product by native key first, then by legacy id.
func (s *productService) resolve(ctx context.Context, rawID string) (*model.Product, error) {
	id := model.ParseIdentifier(rawID)

	if id.Kind == model.IdentifierNative {
		p, err := s.productRepo.GetByID(ctx, id.Native)
		if err != nil {
			return nil, fmt.Errorf("failed to get product: %w", err)
		}
		if p != nil {
			return p, nil
		}
	}

	if id.HasLegacy {
		p, err := s.productRepo.GetByLegacyID(ctx, id.Legacy)
		if err != nil {
			return nil, fmt.Errorf("failed to get product: %w", err)
		}
		if p != nil {
			return p, nil
		}
	}

	s.logger.Debug().
		Str("product_id", rawID).
		Stringer("kind", id.Kind).
		Msg("product not found")
	return nil, model.ErrProductNotFound
}

// Get retrieves a single product.
func (s *productService) Get(ctx context.Context, rawID string) (*model.ProductView, error) {
	p, err := s.resolve(ctx, rawID)
	if err != nil {
		return nil, err
	}

	view := s.normalizer.Normalize(*p)
	return &view, nil
}

func validateName(name *string) error {
	if name == nil || strings.TrimSpace(*name) == "" {
		return model.NewValidationError(model.ErrCodeMissingField, "name is required")
	}
	return nil
}

func validatePrice(price *float64) error {
	if price == nil {
		return model.NewValidationError(model.ErrCodeMissingField, "price is required")
	}
	if math.IsNaN(*price) || math.IsInf(*price, 0) {
		return model.NewValidationError(model.ErrCodeInvalidField, "price must be a number")
	}
	if *price < 0 {
		return model.NewValidationError(model.ErrCodeInvalidField, "price must be zero or greater")
	}
	return nil
}

// Create validates and stores a new product.
func (s *productService) Create(ctx context.Context, in *model.ProductInput) (*model.ProductView, error) {
	s.normalizer.Canonicalize(in)

	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	if err := validatePrice(in.Price); err != nil {
		return nil, err
	}

	p := &model.Product{
		LegacyID:    in.LegacyID,
		Name:        strings.TrimSpace(*in.Name),
		Price:       *in.Price,
		Image:       in.Image,
		Img:         in.Img,
		Category:    in.Category,
		Cat:         in.Cat,
		Description: in.Description,
		Desc:        in.Desc,
		Uses:        in.Uses,
		Tag:         in.Tag,
		Stock:       in.Stock,
	}
	if p.Uses == nil {
		p.Uses = []string{}
	}
	if in.Featured != nil {
		p.Featured = *in.Featured
	}

	if err := s.productRepo.Create(ctx, p); err != nil {
		if model.KindOf(err) == model.KindConflict {
			return nil, err
		}
		s.logger.Error().Err(err).Str("name", p.Name).Msg("failed to create product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	view := s.normalizer.Normalize(*p)
	return &view, nil
}

// changesFrom converts the touched fields of in to column changes.
func changesFrom(in *model.ProductInput) (repository.Changes, error) {
	changes := repository.Changes{}

	if in.Touched(model.FieldName) {
		if err := validateName(in.Name); err != nil {
			return nil, err
		}
		changes["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Touched(model.FieldPrice) {
		if err := validatePrice(in.Price); err != nil {
			return nil, err
		}
		changes["price"] = *in.Price
	}

	nullable := []struct {
		field  string
		column string
		value  *string
	}{
		{model.FieldImage, "image", in.Image},
		{model.FieldImg, "img", in.Img},
		{model.FieldCategory, "category", in.Category},
		{model.FieldCat, "cat", in.Cat},
		{model.FieldDescription, "description", in.Description},
		{model.FieldDesc, "desc", in.Desc},
		{model.FieldTag, "tag", in.Tag},
	}
	for _, f := range nullable {
		if in.Touched(f.field) {
			changes[f.column] = f.value
		}
	}

	if in.Touched(model.FieldLegacyID) {
		changes["legacy_id"] = in.LegacyID
	}
	if in.Touched(model.FieldStock) {
		changes["stock"] = in.Stock
	}
	if in.Touched(model.FieldUses) {
		uses := in.Uses
		if uses == nil {
			uses = []string{}
		}
		changes["uses"] = uses
	}
	if in.Touched(model.FieldFeatured) {
		changes["featured"] = in.Featured != nil && *in.Featured
	}

	return changes, nil
}

// Update applies a partial update to the resolved product.
func (s *productService) Update(ctx context.Context, rawID string, in *model.ProductInput) (*model.ProductView, error) {
	current, err := s.resolve(ctx, rawID)
	if err != nil {
		return nil, err
	}

	s.normalizer.Canonicalize(in)

	changes, err := changesFrom(in)
	if err != nil {
		return nil, err
	}

	updated, err := s.productRepo.Update(ctx, current.ID, changes)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNotFound):
			// Removed between resolve and update.
			return nil, model.ErrProductNotFound
		case model.KindOf(err) == model.KindConflict:
			return nil, err
		}
		s.logger.Error().Err(err).Str("product_id", current.ID.String()).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	view := s.normalizer.Normalize(*updated)
	return &view, nil
}

// Delete removes the resolved product.
func (s *productService) Delete(ctx context.Context, rawID string) error {
	current, err := s.resolve(ctx, rawID)
	if err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, current.ID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrProductNotFound
		}
		s.logger.Error().Err(err).Str("product_id", current.ID.String()).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}
