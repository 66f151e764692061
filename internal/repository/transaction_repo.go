package repository

import (
	"context"
	"time"

	"go-pos-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(ctx context.Context, transaction *model.Transaction) error
	FindAll(ctx context.Context) ([]model.Transaction, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	// FindByDateRange filters on the business date, inclusive on both ends
	FindByDateRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error)
	Update(ctx context.Context, transaction *model.Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) Create(ctx context.Context, transaction *model.Transaction) error {
	transaction.EnsureID()
	transaction.Touch(time.Now().UTC())
	transaction.Date = model.BusinessDate(transaction.Date)
	return r.db.WithContext(ctx).Create(transaction).Error
}

func (r *transactionRepo) FindAll(ctx context.Context) ([]model.Transaction, error) {
	var transactions []model.Transaction
	err := r.db.WithContext(ctx).Order("date DESC, created_at DESC").Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var transaction model.Transaction
	if err := r.db.WithContext(ctx).First(&transaction, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &transaction, nil
}

func (r *transactionRepo) FindByDateRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	var transactions []model.Transaction
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", model.BusinessDate(start), model.BusinessDate(end)).
		Order("date DESC, created_at DESC").
		Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) Update(ctx context.Context, transaction *model.Transaction) error {
	transaction.UpdatedAt = time.Now().UTC()
	transaction.Date = model.BusinessDate(transaction.Date)
	res := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ?", transaction.ID).
		Updates(map[string]interface{}{
			"product_id":   transaction.ProductID,
			"product_name": transaction.ProductName,
			"quantity":     transaction.Quantity,
			"total":        transaction.Total,
			"profit":       transaction.Profit,
			"date":         transaction.Date,
			"updated_at":   transaction.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *transactionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Transaction{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
