package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// UserDTO is the transport shape that omits credentials.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Lastname    string     `json:"lastname"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Gender      *string    `json:"gender"`
	Address     *string    `json:"address"`
	Country     *string    `json:"country"`
	State       *string    `json:"state"`
	City        *string    `json:"city"`
	Pincode     *string    `json:"pincode"`
	Photo       string     `json:"photo"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateUserDTO holds the data required to persist a new account.
type CreateUserDTO struct {
	Name         string
	Lastname     string
	Email        string
	PasswordHash string
	Phone        string
	Gender       *string
	PhotoURL     string
}

// ProfileFields are the columns a customer may edit. Nil optional fields clear the column.
type ProfileFields struct {
	Name     string
	Lastname string
	Email    string
	Phone    string
	Gender   *string
	Address  *string
	Country  *string
	State    *string
	City     *string
	Pincode  *string
	PhotoURL string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		Name:        u.Name,
		Lastname:    u.Lastname,
		Email:       u.Email,
		Phone:       u.Phone,
		Gender:      u.Gender,
		Address:     u.Address,
		Country:     u.Country,
		State:       u.State,
		City:        u.City,
		Pincode:     u.Pincode,
		Photo:       u.PhotoURL,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Name:         c.Name,
		Lastname:     c.Lastname,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		Phone:        c.Phone,
		Gender:       c.Gender,
		PhotoURL:     c.PhotoURL,
	}
}

func (p ProfileFields) columns() map[string]any {
	return map[string]any{
		"name":      p.Name,
		"lastname":  p.Lastname,
		"email":     p.Email,
		"phone":     p.Phone,
		"gender":    p.Gender,
		"address":   p.Address,
		"country":   p.Country,
		"state":     p.State,
		"city":      p.City,
		"pincode":   p.Pincode,
		"photo_url": p.PhotoURL,
	}
}
