package repository

import (
	"go-pos-inventory/internal/model"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the relational schema. Transactions carry no
// foreign key to products since sales outlive deleted products.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.Product{}, &model.Transaction{}, &model.User{})
}
