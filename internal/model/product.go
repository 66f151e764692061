package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	Name    string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Price   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Capital decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"capital"`
	Stock   int             `gorm:"not null;default:0" json:"stock"`
}

// SameName reports whether name refers to this product, ignoring case and
// surrounding whitespace.
func (p *Product) SameName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(p.Name), strings.TrimSpace(name))
}

// Margin is the per-unit profit at the current price.
func (p *Product) Margin() decimal.Decimal {
	return p.Price.Sub(p.Capital)
}
