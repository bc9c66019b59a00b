package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a storefront customer account.
type User struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name         string     `gorm:"column:name;not null"`
	Lastname     string     `gorm:"column:lastname;not null"`
	Email        string     `gorm:"column:email;type:text;not null;uniqueIndex:users_email_key"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Phone        string     `gorm:"column:phone;not null"`
	Gender       *string    `gorm:"column:gender"`
	Address      *string    `gorm:"column:address"`
	Country      *string    `gorm:"column:country"`
	State        *string    `gorm:"column:state"`
	City         *string    `gorm:"column:city"`
	Pincode      *string    `gorm:"column:pincode"`
	PhotoURL     string     `gorm:"column:photo_url;not null"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}
