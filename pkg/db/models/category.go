package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID            uuid.UUID     `gorm:"column:id;type:uuid;primaryKey"`
	Name          string        `gorm:"column:name;not null"`
	Slug          string        `gorm:"column:slug;not null;uniqueIndex:categories_slug_key"`
	Subcategories []Subcategory `gorm:"foreignKey:CategoryID"`
	CreatedAt     time.Time     `gorm:"column:created_at;autoCreateTime"`
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

type Subcategory struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CategoryID uuid.UUID `gorm:"column:category_id;type:uuid;not null"`
	Name       string    `gorm:"column:name;not null"`
	Slug       string    `gorm:"column:slug;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (s *Subcategory) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
