package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/observability"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/saga"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	opRecordSale = "record"
	opEditSale   = "edit"
	opDeleteSale = "delete"
)

// stockChange is the event payload entry for one product whose stock moved.
type stockChange struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Stock       int       `json:"stock"`
}

// RecordSale books a sale of in.Quantity units and takes them off stock.
func (s *inventoryService) RecordSale(ctx context.Context, in SaleInput) (result *SaleResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.observe(opRecordSale, err) }()

	product, err := s.resolveSale(ctx, in)
	if err != nil {
		return nil, err
	}
	if in.Quantity > product.Stock {
		return nil, &InsufficientStockError{ProductName: product.Name, Requested: in.Quantity, Available: product.Stock}
	}

	sale := &model.Transaction{ProductID: product.ID, Date: model.BusinessDate(in.Date)}
	fillSale(sale, product, in.Quantity)
	sale.EnsureID()
	newStock := product.Stock - in.Quantity

	sg := saga.New("record_sale", s.logger).
		Add("create transaction",
			func(ctx context.Context) error { return s.transactionRepo.Create(ctx, sale) },
			func(ctx context.Context) error { return ignoreNotFound(s.transactionRepo.Delete(ctx, sale.ID)) }).
		Add("decrement stock", s.setStock(product, newStock), nil)
	if err := s.runSaga(ctx, opRecordSale, sg); err != nil {
		return nil, err
	}

	s.logger.Info("sale recorded", "transaction_id", sale.ID, "product", product.Name,
		"quantity", sale.Quantity, "total", sale.Total.StringFixed(2), "stock", newStock)
	s.publishSale("sale_recorded", fmt.Sprintf("sold %d x %s", sale.Quantity, product.Name), sale,
		stockChange{ProductID: product.ID, ProductName: product.Name, Stock: newStock})
	return &SaleResult{TransactionID: sale.ID, Total: sale.Total, Profit: sale.Profit}, nil
}

// EditSale replaces a recorded sale with in, moving stock between the old
// and the new product as needed.
func (s *inventoryService) EditSale(ctx context.Context, id uuid.UUID, in SaleInput) (result *SaleResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.observe(opEditSale, err) }()

	existing, err := s.saleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product, err := s.resolveSale(ctx, in)
	if err != nil {
		return nil, err
	}

	updated := *existing
	updated.ProductID = product.ID
	updated.Date = model.BusinessDate(in.Date)
	fillSale(&updated, product, in.Quantity)

	sg := saga.New("edit_sale", s.logger)
	var changes []stockChange

	if existing.ProductID == product.ID {
		available := product.Stock + existing.Quantity
		if in.Quantity > available {
			return nil, &InsufficientStockError{ProductName: product.Name, Requested: in.Quantity, Available: available}
		}
		newStock := available - in.Quantity
		sg.Add("adjust stock", s.setStock(product, newStock), s.setStock(product, product.Stock))
		changes = append(changes, stockChange{ProductID: product.ID, ProductName: product.Name, Stock: newStock})
	} else {
		if in.Quantity > product.Stock {
			return nil, &InsufficientStockError{ProductName: product.Name, Requested: in.Quantity, Available: product.Stock}
		}
		previous, err := s.productIfExists(ctx, existing.ProductID)
		if err != nil {
			return nil, err
		}
		if previous != nil {
			restored := previous.Stock + existing.Quantity
			sg.Add("restore previous product stock", s.setStock(previous, restored), s.setStock(previous, previous.Stock))
			changes = append(changes, stockChange{ProductID: previous.ID, ProductName: previous.Name, Stock: restored})
		}
		newStock := product.Stock - in.Quantity
		sg.Add("decrement stock", s.setStock(product, newStock), s.setStock(product, product.Stock))
		changes = append(changes, stockChange{ProductID: product.ID, ProductName: product.Name, Stock: newStock})
	}
	sg.Add("update transaction", func(ctx context.Context) error {
		return s.transactionRepo.Update(ctx, &updated)
	}, nil)

	if err := s.runSaga(ctx, opEditSale, sg); err != nil {
		return nil, err
	}

	s.logger.Info("sale edited", "transaction_id", id, "product", product.Name,
		"old_quantity", existing.Quantity, "new_quantity", updated.Quantity)
	s.publishSale("sale_edited", fmt.Sprintf("sale of %s edited", product.Name), &updated, changes...)
	return &SaleResult{TransactionID: updated.ID, Total: updated.Total, Profit: updated.Profit}, nil
}

// DeleteSale removes a sale and puts its quantity back on stock when the
// product still exists.
func (s *inventoryService) DeleteSale(ctx context.Context, id uuid.UUID) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.observe(opDeleteSale, err) }()

	existing, err := s.saleByID(ctx, id)
	if err != nil {
		return err
	}
	product, err := s.productIfExists(ctx, existing.ProductID)
	if err != nil {
		return err
	}

	sg := saga.New("delete_sale", s.logger)
	var changes []stockChange
	if product != nil {
		restored := product.Stock + existing.Quantity
		sg.Add("restore stock", s.setStock(product, restored), s.setStock(product, product.Stock))
		changes = append(changes, stockChange{ProductID: product.ID, ProductName: product.Name, Stock: restored})
	} else {
		s.logger.Warn("sale references a deleted product, stock not restored",
			"transaction_id", id, "product_id", existing.ProductID)
	}
	sg.Add("delete transaction", func(ctx context.Context) error {
		return s.transactionRepo.Delete(ctx, id)
	}, nil)

	if err := s.runSaga(ctx, opDeleteSale, sg); err != nil {
		return err
	}

	s.logger.Info("sale deleted", "transaction_id", id, "product", existing.ProductName, "quantity", existing.Quantity)
	s.publishSale("sale_deleted", fmt.Sprintf("sale of %s deleted", existing.ProductName), existing, changes...)
	return nil
}

// resolveSale checks in and loads the product it names. The product lookup
// happens before the quantity and date checks.
func (s *inventoryService) resolveSale(ctx context.Context, in SaleInput) (*model.Product, error) {
	name := strings.TrimSpace(in.ProductName)
	if name == "" {
		return nil, invalid("product_name", "is required")
	}
	product, err := s.productByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if in.Quantity <= 0 {
		return nil, invalid("quantity", "must be greater than 0")
	}
	if in.Date.IsZero() {
		return nil, invalid("date", "is required")
	}
	return product, nil
}

// fillSale prices quantity units of product at its current price and cost.
func fillSale(sale *model.Transaction, product *model.Product, quantity int) {
	qty := decimal.NewFromInt(int64(quantity))
	sale.ProductName = product.Name
	sale.Quantity = quantity
	sale.Total = product.Price.Mul(qty)
	sale.Profit = product.Margin().Mul(qty)
}

// setStock returns a step that writes an absolute stock value for product.
// Writing absolute values keeps undo idempotent.
func (s *inventoryService) setStock(product *model.Product, stock int) func(ctx context.Context) error {
	snapshot := *product
	return func(ctx context.Context) error {
		p := snapshot
		p.Stock = stock
		return s.productRepo.Update(ctx, &p)
	}
}

func ignoreNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

func (s *inventoryService) runSaga(ctx context.Context, op string, sg *saga.Saga) error {
	err := sg.Run(ctx)
	if err == nil {
		return nil
	}
	var stepErr *saga.StepError
	if errors.As(err, &stepErr) {
		switch {
		case stepErr.NeedsReconciliation():
			s.metrics.Compensation(op, observability.CompensationFailed)
			s.logger.Error("sale operation left stores inconsistent, manual reconciliation required",
				"operation", op, "step", stepErr.Step, "error", stepErr.Err, "compensation_error", stepErr.Compensation)
		case len(stepErr.Compensated) > 0:
			s.metrics.Compensation(op, observability.CompensationRolledBack)
		}
	}
	return persistence(op+" sale", err)
}

func (s *inventoryService) observe(op string, err error) {
	s.metrics.SaleOperation(op, classify(err))
}

func (s *inventoryService) publishSale(action, message string, sale *model.Transaction, changes ...stockChange) {
	s.publish(action, message, map[string]any{
		"transaction": sale,
		"products":    changes,
	})
}
