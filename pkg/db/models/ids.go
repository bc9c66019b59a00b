package models

import "github.com/google/uuid"

// ensureID assigns a random UUID when the primary key is still zero, so inserts do
// not depend on a database-side default.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every model, in dependency order, for gorm AutoMigrate in sqlite mode.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Subcategory{},
		&Product{},
		&ProductImage{},
		&ManualPayment{},
		&OutboxEvent{},
	}
}
