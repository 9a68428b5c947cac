package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Product is a catalogue record as stored. Each alias pair keeps both
// members; which one is authoritative is decided only at the boundary.
type Product struct {
	ID          uuid.UUID `db:"id"`
	LegacyID    *int64    `db:"legacy_id"`
	Name        string    `db:"name"`
	Price       float64   `db:"price"`
	Image       *string   `db:"image"`
	Img         *string   `db:"img"`
	Category    *string   `db:"category"`
	Cat         *string   `db:"cat"`
	Description *string   `db:"description"`
	Desc        *string   `db:"desc"`
	Uses        []string  `db:"uses"`
	Featured    bool      `db:"featured"`
	Tag         *string   `db:"tag"`
	Stock       *int      `db:"stock"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ProductView is the outward JSON shape of a product. The legacy alias keys
// mirror the resolved canonical values.
type ProductView struct {
	ID          uuid.UUID `json:"_id"`
	LegacyID    *int64    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Image       *string   `json:"image"`
	Img         *string   `json:"img"`
	Category    *string   `json:"category"`
	Cat         *string   `json:"cat"`
	Description *string   `json:"description"`
	Desc        *string   `json:"desc"`
	Uses        []string  `json:"uses"`
	Featured    bool      `json:"featured"`
	Tag         *string   `json:"tag,omitempty"`
	Stock       *int      `json:"stock,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Sort keys accepted by the product listing.
const (
	SortCreatedAt = "createdAt"
	SortPrice     = "price"
	SortName      = "name"

	OrderAsc  = "asc"
	OrderDesc = "desc"

	DefaultPage     = 1
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// ProductFilter describes a product listing request.
type ProductFilter struct {
	Featured *bool
	Category string
	MinPrice *float64
	MaxPrice *float64
	Query    string
	Page     int
	Limit    int
	Sort     string
	Order    string
}

// Normalise clamps paging and replaces unknown sort settings with defaults.
func (f *ProductFilter) Normalise() {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if maxPage := MaxPage(f.Limit); f.Page > maxPage {
		f.Page = maxPage
	}
	switch f.Sort {
	case SortCreatedAt, SortPrice, SortName:
	default:
		f.Sort = SortCreatedAt
	}
	if f.Order != OrderAsc {
		f.Order = OrderDesc
	}
}

// MaxPage is the last page whose offset fits in a 32-bit integer for the
// given page size.
func MaxPage(limit int) int {
	return math.MaxInt32/limit + 1
}

// Offset returns the number of rows to skip for the current page.
func (f *ProductFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// ProductPage is the listing response.
type ProductPage struct {
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
	Items []ProductView `json:"items"`
}

// DeleteResponse acknowledges a removed product.
type DeleteResponse struct {
	OK bool `json:"ok"`
}
