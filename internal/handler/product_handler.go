package handler

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"pharma-plus/internal/model"
	"pharma-plus/internal/service"

	"github.com/rs/zerolog"
	"github.com/spf13/cast"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

func invalidQuery(param, want string) error {
	return model.NewValidationError(model.ErrCodeInvalidQuery, fmt.Sprintf("%s must be %s", param, want))
}

func queryFloat(query url.Values, param string) (*float64, error) {
	raw := strings.TrimSpace(query.Get(param))
	if raw == "" {
		return nil, nil
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, invalidQuery(param, "a number")
	}
	return &v, nil
}

// queryPaging parses page or limit as base 10. Explicit values below 1 are
// clamped to 1.
func queryPaging(query url.Values, param string) (int, error) {
	raw := strings.TrimSpace(query.Get(param))
	if raw == "" {
		return 0, nil
	}
	v, err := model.ParseDecimalInt(raw)
	if err != nil {
		return 0, invalidQuery(param, "an integer")
	}
	if v < 1 {
		v = 1
	}
	return int(v), nil
}

// parseFilter builds a listing filter from the query string.
func parseFilter(query url.Values) (model.ProductFilter, error) {
	filter := model.ProductFilter{
		Category: query.Get("category"),
		Query:    strings.TrimSpace(query.Get("q")),
		Sort:     strings.TrimSpace(query.Get("sort")),
		Order:    strings.ToLower(strings.TrimSpace(query.Get("order"))),
	}

	if raw := strings.TrimSpace(query.Get("featured")); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, invalidQuery("featured", "a boolean")
		}
		filter.Featured = &featured
	}

	var err error
	if filter.MinPrice, err = queryFloat(query, "minPrice"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = queryFloat(query, "maxPrice"); err != nil {
		return filter, err
	}
	if filter.Page, err = queryPaging(query, "page"); err != nil {
		return filter, err
	}
	if filter.Limit, err = queryPaging(query, "limit"); err != nil {
		return filter, err
	}

	return filter, nil
}

// List handles GET /api/products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	page, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// Get handles GET /api/products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Create handles POST /api/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	product, err := h.service.Create(r.Context(), &in)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	h.logger.Info().
		Str("product_id", product.ID.String()).
		Str("request_id", requestID(r)).
		Str("user_id", actor(r)).
		Msg("product created")

	writeJSON(w, http.StatusCreated, product)
}

// Update handles PATCH /api/products/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in model.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	product, err := h.service.Update(r.Context(), r.PathValue("id"), &in)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	h.logger.Info().
		Str("product_id", product.ID.String()).
		Str("request_id", requestID(r)).
		Str("user_id", actor(r)).
		Msg("product updated")

	writeJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	h.logger.Info().
		Str("product_id", r.PathValue("id")).
		Str("request_id", requestID(r)).
		Str("user_id", actor(r)).
		Msg("product deleted")

	writeJSON(w, http.StatusOK, model.DeleteResponse{OK: true})
}
