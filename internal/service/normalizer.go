package service

import (
	"strings"

	"pharma-plus/internal/model"
)

// Normalizer collapses alias pairs on the way out and fills canonical
// members on the way in.
type Normalizer struct {
	// BaseURL is prefixed to relative image paths. Empty leaves them as stored.
	BaseURL string
}

func pick(canonical, legacy *string) *string {
	if canonical != nil {
		return canonical
	}
	return legacy
}

func isAbsoluteURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// imageURL resolves a stored image path against the base URL.
func (n Normalizer) imageURL(image *string) *string {
	if image == nil || n.BaseURL == "" || isAbsoluteURL(*image) {
		return image
	}
	abs := n.BaseURL + *image
	return &abs
}

// Normalize converts a stored product into its outward view.
func (n Normalizer) Normalize(p model.Product) model.ProductView {
	image := n.imageURL(pick(p.Image, p.Img))
	category := pick(p.Category, p.Cat)
	description := pick(p.Description, p.Desc)

	uses := p.Uses
	if uses == nil {
		uses = []string{}
	}

	return model.ProductView{
		ID:          p.ID,
		LegacyID:    p.LegacyID,
		Name:        p.Name,
		Price:       p.Price,
		Image:       image,
		Img:         image,
		Category:    category,
		Cat:         category,
		Description: description,
		Desc:        description,
		Uses:        uses,
		Featured:    p.Featured,
		Tag:         p.Tag,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// NormalizeAll converts a slice of stored products.
func (n Normalizer) NormalizeAll(products []model.Product) []model.ProductView {
	views := make([]model.ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, n.Normalize(p))
	}
	return views
}

// Canonicalize copies legacy members into absent canonical members.
// Legacy members are left in place.
func (n Normalizer) Canonicalize(in *model.ProductInput) {
	fill := func(canonical **string, legacy *string, field string) {
		if *canonical == nil && legacy != nil {
			v := *legacy
			*canonical = &v
			in.Touch(field)
		}
	}

	fill(&in.Image, in.Img, model.FieldImage)
	fill(&in.Category, in.Cat, model.FieldCategory)
	fill(&in.Description, in.Desc, model.FieldDescription)
}
