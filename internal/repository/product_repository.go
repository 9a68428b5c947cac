package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"pharma-plus/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `id, legacy_id, name, price, image, img, category, cat,
	description, "desc", uses, featured, tag, stock, created_at, updated_at`

// Columns a partial update may touch.
var updatableColumns = map[string]bool{
	"legacy_id":   true,
	"name":        true,
	"price":       true,
	"image":       true,
	"img":         true,
	"category":    true,
	"cat":         true,
	"description": true,
	"desc":        true,
	"uses":        true,
	"featured":    true,
	"tag":         true,
	"stock":       true,
}

var sortColumns = map[string]string{
	model.SortCreatedAt: "created_at",
	model.SortPrice:     "price",
	model.SortName:      "name",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.LegacyID, &p.Name, &p.Price,
		&p.Image, &p.Img, &p.Category, &p.Cat,
		&p.Description, &p.Desc, &p.Uses, &p.Featured,
		&p.Tag, &p.Stock, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Uses == nil {
		p.Uses = []string{}
	}
	return &p, nil
}

// buildProductWhere turns a filter into a WHERE clause and its arguments.
// All criteria are ANDed; the text query matches any searchable column.
func buildProductWhere(filter model.ProductFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Featured != nil {
		add("featured = $%d", *filter.Featured)
	}
	if filter.Category != "" {
		add("(category = $%[1]d OR cat = $%[1]d)", filter.Category)
	}
	if filter.MinPrice != nil {
		add("price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("price <= $%d", *filter.MaxPrice)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		add(`(name ILIKE $%[1]d OR category ILIKE $%[1]d OR cat ILIKE $%[1]d
			OR description ILIKE $%[1]d OR "desc" ILIKE $%[1]d OR tag ILIKE $%[1]d)`,
			"%"+likeEscaper.Replace(q)+"%")
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// List returns one page of products and the total number of matches.
func (r *productRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, int64, error) {
	where, args := buildProductWhere(filter)

	var total int64
	countQuery := "SELECT COUNT(*) FROM products " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count products")
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	column, ok := sortColumns[filter.Sort]
	if !ok {
		column = sortColumns[model.SortCreatedAt]
	}
	direction := "DESC"
	if filter.Order == model.OrderAsc {
		direction = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		%s
		ORDER BY %s %s, id %s
		LIMIT $%d OFFSET $%d
	`, productColumns, where, column, direction, direction, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", filter.Limit).
			Int("offset", filter.Offset()).
			Msg("failed to query products")
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	return products, total, nil
}

func (r *productRepository) getOne(ctx context.Context, where string, arg any) (*model.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE %s", productColumns, where)

	p, err := scanProduct(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// GetByID retrieves a product by its native key.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := r.getOne(ctx, "id = $1", id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	if p == nil {
		r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
	}
	return p, nil
}

// GetByLegacyID retrieves a product by its legacy numeric id.
func (r *productRepository) GetByLegacyID(ctx context.Context, legacyID int64) (*model.Product, error) {
	p, err := r.getOne(ctx, "legacy_id = $1", legacyID)
	if err != nil {
		r.logger.Error().Err(err).Int64("legacy_id", legacyID).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

// GetByName retrieves the oldest product carrying exactly this name.
func (r *productRepository) GetByName(ctx context.Context, name string) (*model.Product, error) {
	p, err := r.getOne(ctx, "name = $1 ORDER BY created_at, id LIMIT 1", name)
	if err != nil {
		r.logger.Error().Err(err).Str("name", name).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

// Create inserts a product.
func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	if p.Uses == nil {
		p.Uses = []string{}
	}

	query := `
		INSERT INTO products (legacy_id, name, price, image, img, category, cat,
			description, "desc", uses, featured, tag, stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		p.LegacyID, p.Name, p.Price, p.Image, p.Img, p.Category, p.Cat,
		p.Description, p.Desc, p.Uses, p.Featured, p.Tag, p.Stock,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err := translateUnique(err); isConflict(err) {
			r.logger.Warn().Str("name", p.Name).Msg("product id already in use")
			return err
		}
		r.logger.Error().Err(err).Str("name", p.Name).Msg("failed to insert product")
		return fmt.Errorf("failed to insert product: %w", err)
	}

	r.logger.Info().
		Str("product_id", p.ID.String()).
		Str("name", p.Name).
		Msg("product created")

	return nil
}

// Update applies a partial update and returns the stored row.
func (r *productRepository) Update(ctx context.Context, id uuid.UUID, changes Changes) (*model.Product, error) {
	if len(changes) == 0 {
		p, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, model.ErrNotFound
		}
		return p, nil
	}

	columns := make([]string, 0, len(changes))
	for column := range changes {
		if !updatableColumns[column] {
			return nil, fmt.Errorf("column %q is not updatable", column)
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	sets := make([]string, 0, len(columns)+1)
	args := make([]any, 0, len(columns)+1)
	for _, column := range columns {
		args = append(args, changes[column])
		sets = append(sets, fmt.Sprintf("%s = $%d", pgx.Identifier{column}.Sanitize(), len(args)))
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE products
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), len(args), productColumns)

	p, err := scanProduct(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		if err := translateUnique(err); isConflict(err) {
			return nil, err
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	r.logger.Info().
		Str("product_id", id.String()).
		Strs("columns", columns).
		Msg("product updated")

	return p, nil
}

// Delete removes a product.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	r.logger.Info().Str("product_id", id.String()).Msg("product deleted")
	return nil
}
