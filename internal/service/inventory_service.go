package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/observability"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InventoryService interface {
	CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListProducts(ctx context.Context, search string) ([]model.Product, error)

	RecordSale(ctx context.Context, in SaleInput) (*SaleResult, error)
	EditSale(ctx context.Context, id uuid.UUID, in SaleInput) (*SaleResult, error)
	DeleteSale(ctx context.Context, id uuid.UUID) error
	GetSale(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	ListSales(ctx context.Context, search string) ([]model.Transaction, error)
	ListSalesByDateRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error)
}

// ProductInput is the writable part of a product.
type ProductInput struct {
	Name    string          `json:"name" validate:"required,notblank,max=255"`
	Price   decimal.Decimal `json:"price" validate:"gt=0"`
	Capital decimal.Decimal `json:"capital" validate:"gte=0"`
	Stock   int             `json:"stock" validate:"gte=0"`
}

// SaleInput describes a sale to record, or the new state of an edited one.
type SaleInput struct {
	ProductName string
	Quantity    int
	Date        time.Time
}

type SaleResult struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	Total         decimal.Decimal `json:"total"`
	Profit        decimal.Decimal `json:"profit"`
}

type inventoryService struct {
	productRepo     repository.ProductRepository
	transactionRepo repository.TransactionRepository
	wsHub           *ws.Hub
	metrics         *observability.Metrics
	logger          *slog.Logger

	// mu serializes every write so stock checks and the writes that follow
	// them see a single writer.
	mu sync.Mutex
}

// NewInventoryService wires the stores. hub and metrics may be nil.
func NewInventoryService(pRepo repository.ProductRepository, tRepo repository.TransactionRepository, hub *ws.Hub, metrics *observability.Metrics, logger *slog.Logger) InventoryService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &inventoryService{
		productRepo:     pRepo,
		transactionRepo: tRepo,
		wsHub:           hub,
		metrics:         metrics,
		logger:          logger,
	}
}

func (s *inventoryService) CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in.Name = strings.TrimSpace(in.Name)
	if err := validateProduct(in); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, in.Name, uuid.Nil); err != nil {
		return nil, err
	}

	product := &model.Product{Name: in.Name, Price: in.Price, Capital: in.Capital, Stock: in.Stock}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, persistence("create product", err)
	}

	s.logger.Info("product created", "product_id", product.ID, "name", product.Name, "stock", product.Stock)
	s.publish("product_created", fmt.Sprintf("product %q created", product.Name), product)
	return product, nil
}

func (s *inventoryService) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.productByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validateProduct(in); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, in.Name, id); err != nil {
		return nil, err
	}

	oldStock := existing.Stock
	existing.Name = in.Name
	existing.Price = in.Price
	existing.Capital = in.Capital
	existing.Stock = in.Stock
	if err := s.productRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "product", Key: id.String()}
		}
		return nil, persistence("update product", err)
	}

	s.logger.Info("product updated", "product_id", id, "old_stock", oldStock, "new_stock", existing.Stock)
	s.publish("product_updated", fmt.Sprintf("product %q updated", existing.Name), existing)
	return existing, nil
}

// DeleteProduct removes the product. Sales that reference it are kept.
func (s *inventoryService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Entity: "product", Key: id.String()}
		}
		return persistence("delete product", err)
	}

	s.logger.Info("product deleted", "product_id", id)
	s.publish("product_deleted", "product deleted", map[string]any{"id": id})
	return nil
}

func (s *inventoryService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return s.productByID(ctx, id)
}

// ListProducts returns all products, narrowed to names containing search
// (case-insensitive) when search is not blank.
func (s *inventoryService) ListProducts(ctx context.Context, search string) ([]model.Product, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, persistence("list products", err)
	}
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return products, nil
	}
	filtered := make([]model.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (s *inventoryService) GetSale(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	return s.saleByID(ctx, id)
}

func (s *inventoryService) ListSales(ctx context.Context, search string) ([]model.Transaction, error) {
	sales, err := s.transactionRepo.FindAll(ctx)
	if err != nil {
		return nil, persistence("list sales", err)
	}
	return FilterSales(sales, search), nil
}

// ListSalesByDateRange returns the sales whose business date lies in
// [start, end].
func (s *inventoryService) ListSalesByDateRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	sales, err := s.transactionRepo.FindByDateRange(ctx, start, end)
	if err != nil {
		return nil, persistence("list sales by date range", err)
	}
	return sales, nil
}

// FilterSales keeps the sales whose product name contains search,
// ignoring case. A blank search keeps everything.
func FilterSales(sales []model.Transaction, search string) []model.Transaction {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return sales
	}
	filtered := make([]model.Transaction, 0, len(sales))
	for _, t := range sales {
		if strings.Contains(strings.ToLower(t.ProductName), needle) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

func validateProduct(in ProductInput) error {
	if err := checkStruct(&in); err != nil {
		return err
	}
	if !isCents(in.Price) {
		return invalid("price", "must have at most 2 decimal places")
	}
	if !isCents(in.Capital) {
		return invalid("capital", "must have at most 2 decimal places")
	}
	if in.Capital.GreaterThan(in.Price) {
		return invalid("capital", "must not exceed price")
	}
	return nil
}

func isCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

func checkRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return invalid("date", "start and end are required")
	}
	if model.BusinessDate(start).After(model.BusinessDate(end)) {
		return invalid("start", "must not be after end")
	}
	return nil
}

// ensureUniqueName fails when another product (not self) already uses name.
func (s *inventoryService) ensureUniqueName(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.productRepo.FindByName(ctx, name)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return persistence("find product", err)
	case existing.ID != self:
		return invalid("name", "product %q already exists", existing.Name)
	}
	return nil
}

func (s *inventoryService) productByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "product", Key: id.String()}
		}
		return nil, persistence("find product", err)
	}
	return product, nil
}

func (s *inventoryService) productByName(ctx context.Context, name string) (*model.Product, error) {
	product, err := s.productRepo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "product", Key: name}
		}
		return nil, persistence("find product", err)
	}
	return product, nil
}

// productIfExists follows a sale's weak product reference. A product that
// has since been deleted yields nil without error.
func (s *inventoryService) productIfExists(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, persistence("find product", err)
	}
	return product, nil
}

func (s *inventoryService) saleByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	sale, err := s.transactionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "sale", Key: id.String()}
		}
		return nil, persistence("find sale", err)
	}
	return sale, nil
}

func (s *inventoryService) publish(action, message string, data any) {
	s.wsHub.Publish(ws.Event{
		Type:    ws.TypeStockUpdate,
		Action:  action,
		Data:    data,
		Message: message,
	})
}
