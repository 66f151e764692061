package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is one recorded sale. ProductID is a lookup key only: the
// product may have been renamed or deleted since, which is why the name is
// copied at sale time.
type Transaction struct {
	BaseModel
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string          `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Total       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"` // price * quantity, frozen
	Profit      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"profit"`
	Date        time.Time       `gorm:"type:date;not null;index" json:"date"`
}

// DateString renders the business date as YYYY-MM-DD.
func (t *Transaction) DateString() string {
	return t.Date.Format(DateLayout)
}
