package models

import (
	"database/sql/driver"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Review is a customer review embedded in a product document.
type Review struct {
	User    string `json:"user"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Suggestion is a cross-sell entry shown next to a product.
type Suggestion struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Img   string  `json:"img"`
}

type Reviews []Review

func (r Reviews) Value() (driver.Value, error) {
	if r == nil {
		r = Reviews{}
	}
	return jsonValue(r)
}

func (r *Reviews) Scan(src any) error { return jsonScan(src, r) }

func (Reviews) GormDataType() string { return "jsonb" }

type Suggestions []Suggestion

func (s Suggestions) Value() (driver.Value, error) {
	if s == nil {
		s = Suggestions{}
	}
	return jsonValue(s)
}

func (s *Suggestions) Scan(src any) error { return jsonScan(src, s) }

func (Suggestions) GormDataType() string { return "jsonb" }

// Product is a catalog entry. Stock is a free-text label, not a count.
type Product struct {
	BaseModel
	Name          string         `gorm:"not null" json:"name"`
	Description   string         `json:"desc"`
	Price         float64        `gorm:"not null" json:"price"`
	OriginalPrice *float64       `json:"originalPrice,omitempty"`
	Discount      float64        `gorm:"default:0" json:"discount"`
	Rating        float64        `gorm:"default:0" json:"rating"`
	Stock         string         `gorm:"default:In Stock" json:"stock"`
	Sizes         pq.StringArray `gorm:"type:text[]" json:"sizes"`
	Images        pq.StringArray `gorm:"type:text[]" json:"images"`
	Category      string         `gorm:"index" json:"category"`
	Suggestions   Suggestions    `json:"suggestions"`
	Reviews       Reviews        `json:"reviews"`
}

// PrimaryImage returns the first image reference, if any.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ProductSummary is the live catalog view attached to cart lines.
type ProductSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Price float64   `json:"price"`
	Image string    `json:"img"`
	Stock string    `json:"stock"`
}

func (p Product) Summary() ProductSummary {
	return ProductSummary{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
		Image: p.PrimaryImage(),
		Stock: p.Stock,
	}
}

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	Category string
	Search   string
}
