package users

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Client is a bookstore customer. Email is the natural key used by imports.
type Client struct {
	ID           int64            `gorm:"primaryKey" json:"id"`
	Email        *string          `gorm:"uniqueIndex;not null" json:"email"`
	Password     *string          `gorm:"-" json:"password,omitempty"` // plain text, only present while importing
	PasswordHash string           `json:"-"`
	Name         *string          `json:"name"`
	Balance      *decimal.Decimal `gorm:"type:text" json:"balance"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// Employee is a member of the bookstore staff. Email is the natural key used by imports.
type Employee struct {
	ID           int64      `gorm:"primaryKey" json:"id"`
	Email        *string    `gorm:"uniqueIndex;not null" json:"email"`
	Password     *string    `gorm:"-" json:"password,omitempty"`
	PasswordHash string     `json:"-"`
	Name         *string    `json:"name"`
	Phone        *string    `json:"phone"`
	BirthDate    *time.Time `json:"birth_date"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Client) TableName() string {
	return "clients"
}

func (Employee) TableName() string {
	return "employees"
}

// AutoMigrate creates the clients and employees tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Client{}, &Employee{})
}
