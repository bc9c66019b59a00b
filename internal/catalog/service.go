package catalog

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

const maxSearchLength = 100

type catalogRepository interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListProducts(ctx context.Context, filter ProductFilter, cursor *pagination.Cursor) ([]productRow, error)
	SearchProducts(ctx context.Context, term string, limit int, cursor *pagination.Cursor) ([]productRow, error)
	FindProduct(ctx context.Context, id uuid.UUID) (*productRow, bool, error)
}

// Service exposes the read-only catalog.
type Service interface {
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	ListProducts(ctx context.Context, filter ProductFilter) (*ProductPage, error)
	Search(ctx context.Context, filter SearchFilter) (*ProductPage, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
}

type service struct {
	repo catalogRepository
}

func NewService(repo catalogRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryFromModel(c))
	}
	return out, nil
}

func (s *service) ListProducts(ctx context.Context, filter ProductFilter) (*ProductPage, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Limit = pagination.NormalizeLimit(filter.Limit)
	cursor, err := pagination.ParseCursor(filter.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.ListProducts(ctx, filter, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return toPage(rows, filter.Limit), nil
}

func (s *service) Search(ctx context.Context, filter SearchFilter) (*ProductPage, error) {
	query := strings.TrimSpace(filter.Query)
	if query == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search query is required")
	}
	if utf8.RuneCountInString(query) > maxSearchLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("search query must be at most %d characters", maxSearchLength))
	}
	limit := pagination.NormalizeLimit(filter.Limit)
	cursor, err := pagination.ParseCursor(filter.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.SearchProducts(ctx, query, limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search products")
	}
	return toPage(rows, limit), nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	row, ok, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	dto := row.toDTO()
	return &dto, nil
}

func toPage(rows []productRow, limit int) *ProductPage {
	page := pagination.Trim(toDTOs(rows), limit, func(p ProductDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ProductID}
	})
	return &page
}

func toDTOs(rows []productRow) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDTO())
	}
	return out
}
