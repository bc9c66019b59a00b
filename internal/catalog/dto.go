package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type SubcategoryDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

type CategoryDTO struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	Subcategories []SubcategoryDTO `json:"subcategories"`
}

// ProductDTO is a product joined with its taxonomy names and primary image.
type ProductDTO struct {
	ProductID      uuid.UUID        `json:"product_id"`
	Name           string           `json:"name"`
	Slug           string           `json:"slug"`
	Description    string           `json:"description"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price"`
	IsFeatured     bool             `json:"is_featured"`
	IsActive       bool             `json:"is_active"`
	Subcategory    *string          `json:"subcategory"`
	Category       *string          `json:"category"`
	ImageURL       *string          `json:"image_url"`
	CreatedAt      time.Time        `json:"-"`
}

// ProductFilter narrows the active product listing.
type ProductFilter struct {
	Category     string
	FeaturedOnly bool
	Limit        int
	Cursor       string
}

// SearchFilter pages through substring matches, newest first.
type SearchFilter struct {
	Query  string
	Limit  int
	Cursor string
}

type ProductPage = pagination.Page[ProductDTO]

func categoryFromModel(c models.Category) CategoryDTO {
	subs := make([]SubcategoryDTO, 0, len(c.Subcategories))
	for _, s := range c.Subcategories {
		subs = append(subs, SubcategoryDTO{ID: s.ID, Name: s.Name, Slug: s.Slug})
	}
	return CategoryDTO{ID: c.ID, Name: c.Name, Slug: c.Slug, Subcategories: subs}
}

type productRow struct {
	ID             uuid.UUID
	Name           string
	Slug           string
	Description    string
	Price          decimal.Decimal
	CompareAtPrice decimal.NullDecimal
	IsFeatured     bool
	IsActive       bool
	CreatedAt      time.Time
	Subcategory    *string
	Category       *string
	ImageURL       *string
}

func (r productRow) toDTO() ProductDTO {
	dto := ProductDTO{
		ProductID:   r.ID,
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		Price:       r.Price,
		IsFeatured:  r.IsFeatured,
		IsActive:    r.IsActive,
		Subcategory: r.Subcategory,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
		CreatedAt:   r.CreatedAt,
	}
	if r.CompareAtPrice.Valid {
		price := r.CompareAtPrice.Decimal
		dto.CompareAtPrice = &price
	}
	return dto
}
