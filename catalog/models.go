package catalog

import (
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AgeGroup is the target audience of a book.
type AgeGroup string

const (
	AgeGroupChild AgeGroup = "CHILD"
	AgeGroupTeen  AgeGroup = "TEEN"
	AgeGroupAdult AgeGroup = "ADULT"
	AgeGroupOther AgeGroup = "OTHER"
)

// AgeGroups lists the accepted age group names.
var AgeGroups = []string{
	string(AgeGroupChild), string(AgeGroupTeen), string(AgeGroupAdult), string(AgeGroupOther),
}

// Language is the language a book is written in.
type Language string

const (
	LanguageEnglish    Language = "ENGLISH"
	LanguageSpanish    Language = "SPANISH"
	LanguageFrench     Language = "FRENCH"
	LanguageGerman     Language = "GERMAN"
	LanguageUkrainian  Language = "UKRAINIAN"
	LanguageJapanese   Language = "JAPANESE"
	LanguageArabic     Language = "ARABIC"
	LanguageArmenian   Language = "ARMENIAN"
	LanguageGreek      Language = "GREEK"
	LanguageHindi      Language = "HINDI"
	LanguageKorean     Language = "KOREAN"
	LanguagePolish     Language = "POLISH"
	LanguagePortuguese Language = "PORTUGUESE"
	LanguageRussian    Language = "RUSSIAN"
	LanguageTurkish    Language = "TURKISH"
	LanguageOther      Language = "OTHER"
)

// Languages lists the accepted language names.
var Languages = []string{
	string(LanguageEnglish), string(LanguageSpanish), string(LanguageFrench), string(LanguageGerman),
	string(LanguageUkrainian), string(LanguageJapanese), string(LanguageArabic), string(LanguageArmenian),
	string(LanguageGreek), string(LanguageHindi), string(LanguageKorean), string(LanguagePolish),
	string(LanguagePortuguese), string(LanguageRussian), string(LanguageTurkish), string(LanguageOther),
}

// Book is a catalog entry. Slug, derived from name and author, is the natural key used by imports.
type Book struct {
	ID              int64            `gorm:"primaryKey" json:"id"`
	Slug            string           `gorm:"uniqueIndex;not null" json:"slug"`
	Name            *string          `json:"name"`
	Genre           *string          `json:"genre"`
	AgeGroup        AgeGroup         `json:"age_group,omitempty"`
	Price           *decimal.Decimal `gorm:"type:text" json:"price"`
	PublicationDate *time.Time       `json:"publication_date"`
	Author          *string          `json:"author"`
	NumberOfPages   int              `json:"number_of_pages"`
	Characteristics *string          `json:"characteristics"`
	Description     *string          `gorm:"type:text" json:"description"`
	Language        Language         `json:"language,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Order is a purchase of a number of copies of one book by a client, handled by an employee.
type Order struct {
	ID            int64            `gorm:"primaryKey" json:"id"`
	ClientID      int64            `gorm:"index" json:"client_id"`
	EmployeeID    int64            `gorm:"index" json:"employee_id"`
	BookID        int64            `gorm:"index" json:"book_id"`
	NumberOfBooks int              `json:"number_of_books"`
	OrderDate     *time.Time       `json:"order_date"`
	Price         *decimal.Decimal `gorm:"type:text" json:"price"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

func (Order) TableName() string {
	return "orders"
}

// BookSlug derives the natural key of a book from its name and author.
func BookSlug(name, author *string) string {
	var parts []string
	for _, p := range []*string{name, author} {
		if p != nil && strings.TrimSpace(*p) != "" {
			parts = append(parts, *p)
		}
	}
	// slug.Make keeps underscores, which are not valid in a book slug
	return slug.Make(strings.ReplaceAll(strings.Join(parts, " "), "_", " "))
}

// AutoMigrate creates the books and orders tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Book{}, &Order{})
}
