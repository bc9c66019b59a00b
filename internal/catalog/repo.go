package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

const productColumns = `
p.id, p.name, p.slug, p.description, p.price, p.compare_at_price,
p.is_featured, p.is_active, p.created_at,
s.name AS subcategory,
c.name AS category,
(SELECT i.url FROM product_images i
  WHERE i.product_id = p.id AND i.is_primary = ?
  ORDER BY i.sort_order, i.id LIMIT 1) AS image_url`

const productJoins = `
LEFT JOIN subcategories s ON s.id = p.subcategory_id
LEFT JOIN categories c ON c.id = s.category_id`

// Repository reads the catalog tables.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListCategories returns every category with its subcategories, both sorted by name.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Preload("Subcategories", func(db *gorm.DB) *gorm.DB {
			return db.Order("name asc")
		}).
		Order("name asc").
		Find(&categories).Error
	return categories, err
}

func (r *Repository) productQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("products p").
		Select(productColumns, true).
		Joins(productJoins).
		Where("p.is_active = ?", true)
}

// ListProducts returns active products newest first, keyset-paginated on (created_at, id).
func (r *Repository) ListProducts(ctx context.Context, filter ProductFilter, cursor *pagination.Cursor) ([]productRow, error) {
	q := r.productQuery(ctx)
	if filter.Category != "" {
		category := strings.ToLower(filter.Category)
		q = q.Where("(LOWER(c.slug) = ? OR LOWER(c.name) = ?)", category, category)
	}
	if filter.FeaturedOnly {
		q = q.Where("p.is_featured = ?", true)
	}
	return scanPage(q, cursor, filter.Limit)
}

func scanPage(q *gorm.DB, cursor *pagination.Cursor, limit int) ([]productRow, error) {
	if cursor != nil {
		q = q.Where("(p.created_at < ? OR (p.created_at = ? AND p.id < ?))", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var rows []productRow
	err := q.Order("p.created_at desc").
		Order("p.id desc").
		Limit(pagination.LimitWithBuffer(limit)).
		Scan(&rows).Error
	return rows, err
}

// SearchProducts matches term as a case-insensitive substring of the product,
// subcategory, or category name. Pages share the listing's keyset order.
func (r *Repository) SearchProducts(ctx context.Context, term string, limit int, cursor *pagination.Cursor) ([]productRow, error) {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	q := r.productQuery(ctx).
		Where(`(LOWER(p.name) LIKE ? ESCAPE '\' OR LOWER(s.name) LIKE ? ESCAPE '\' OR LOWER(c.name) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern)
	return scanPage(q, cursor, limit)
}

// FindProduct loads one active product; ok is false when none matches.
func (r *Repository) FindProduct(ctx context.Context, id uuid.UUID) (*productRow, bool, error) {
	var rows []productRow
	if err := r.productQuery(ctx).Where("p.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return &rows[0], true, nil
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}
