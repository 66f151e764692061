package repository

import (
	"context"
	"time"

	"go-pos-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByName(ctx context.Context, name string) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	product.EnsureID()
	product.Touch(time.Now().UTC())
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// FindByName matches the whole name, ignoring case
func (r *productRepo) FindByName(ctx context.Context, name string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "LOWER(name) = LOWER(?)", name).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// Update writes every mutable column of product. Last writer wins.
func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	product.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":       product.Name,
			"price":      product.Price,
			"capital":    product.Capital,
			"stock":      product.Stock,
			"updated_at": product.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
