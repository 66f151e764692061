package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel handles ID (UUID) and standard timestamps
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate keeps a caller-assigned ID so a sale can be compensated by ID
// before the row is read back.
func (base *BaseModel) BeforeCreate(tx *gorm.DB) (err error) {
	base.EnsureID()
	return
}

// EnsureID assigns a fresh UUID when none is set.
func (base *BaseModel) EnsureID() {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
}

// Touch stamps CreatedAt (first call only) and UpdatedAt.
func (base *BaseModel) Touch(now time.Time) {
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
}
