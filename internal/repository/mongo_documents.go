package repository

import (
	"fmt"
	"strings"
	"time"

	"go-pos-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names in the document store
const (
	ProductsCollection     = "products"
	TransactionsCollection = "transactions"
	UsersCollection        = "users"
)

type productDocument struct {
	ID        string               `bson:"_id"`
	Name      string               `bson:"name"`
	NameKey   string               `bson:"name_key"`
	Price     primitive.Decimal128 `bson:"price"`
	Capital   primitive.Decimal128 `bson:"capital"`
	Stock     int                  `bson:"stock"`
	CreatedAt time.Time            `bson:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at"`
}

type transactionDocument struct {
	ID          string               `bson:"_id"`
	ProductID   string               `bson:"product_id"`
	ProductName string               `bson:"product_name"`
	Quantity    int                  `bson:"quantity"`
	Total       primitive.Decimal128 `bson:"total"`
	Profit      primitive.Decimal128 `bson:"profit"`
	Date        time.Time            `bson:"date"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

type userDocument struct {
	ID        string    `bson:"_id"`
	Username  string    `bson:"username"`
	Password  string    `bson:"password"`
	FullName  string    `bson:"full_name"`
	Role      string    `bson:"role"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("repository: encode decimal %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("repository: decode decimal %s: %w", v, err)
	}
	return d, nil
}

func newProductDocument(p *model.Product) (productDocument, error) {
	price, err := toDecimal128(p.Price)
	if err != nil {
		return productDocument{}, err
	}
	capital, err := toDecimal128(p.Capital)
	if err != nil {
		return productDocument{}, err
	}
	return productDocument{
		ID:        p.ID.String(),
		Name:      p.Name,
		NameKey:   nameKey(p.Name),
		Price:     price,
		Capital:   capital,
		Stock:     p.Stock,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}, nil
}

func (d productDocument) toModel() (*model.Product, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("repository: product id %q: %w", d.ID, err)
	}
	price, err := fromDecimal128(d.Price)
	if err != nil {
		return nil, err
	}
	capital, err := fromDecimal128(d.Capital)
	if err != nil {
		return nil, err
	}
	p := &model.Product{Name: d.Name, Price: price, Capital: capital, Stock: d.Stock}
	p.ID = id
	p.CreatedAt = d.CreatedAt
	p.UpdatedAt = d.UpdatedAt
	return p, nil
}

func newTransactionDocument(t *model.Transaction) (transactionDocument, error) {
	total, err := toDecimal128(t.Total)
	if err != nil {
		return transactionDocument{}, err
	}
	profit, err := toDecimal128(t.Profit)
	if err != nil {
		return transactionDocument{}, err
	}
	return transactionDocument{
		ID:          t.ID.String(),
		ProductID:   t.ProductID.String(),
		ProductName: t.ProductName,
		Quantity:    t.Quantity,
		Total:       total,
		Profit:      profit,
		Date:        model.BusinessDate(t.Date),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}, nil
}

func (d transactionDocument) toModel() (*model.Transaction, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("repository: transaction id %q: %w", d.ID, err)
	}
	// product_id is a weak reference and may hold anything legacy data left there
	productID, _ := uuid.Parse(d.ProductID)
	total, err := fromDecimal128(d.Total)
	if err != nil {
		return nil, err
	}
	profit, err := fromDecimal128(d.Profit)
	if err != nil {
		return nil, err
	}
	t := &model.Transaction{
		ProductID:   productID,
		ProductName: d.ProductName,
		Quantity:    d.Quantity,
		Total:       total,
		Profit:      profit,
		Date:        model.BusinessDate(d.Date),
	}
	t.ID = id
	t.CreatedAt = d.CreatedAt
	t.UpdatedAt = d.UpdatedAt
	return t, nil
}

func newUserDocument(u *model.User) userDocument {
	return userDocument{
		ID:        u.ID.String(),
		Username:  u.Username,
		Password:  u.Password,
		FullName:  u.FullName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (d userDocument) toModel() (*model.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("repository: user id %q: %w", d.ID, err)
	}
	u := &model.User{Username: d.Username, Password: d.Password, FullName: d.FullName, Role: d.Role}
	u.ID = id
	u.CreatedAt = d.CreatedAt
	u.UpdatedAt = d.UpdatedAt
	return u, nil
}
