package service

import (
	"context"
	"testing"
	"time"

	"go-pos-inventory/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSales(t *testing.T, repo *fakeTransactionRepo, sales ...model.Transaction) {
	t.Helper()
	for i := range sales {
		require.NoError(t, repo.Create(context.Background(), &sales[i]))
	}
}

func sale(name string, qty int, total, profit string, date time.Time) model.Transaction {
	return model.Transaction{ProductName: name, Quantity: qty, Total: dec(total), Profit: dec(profit), Date: date}
}

func TestSummarize(t *testing.T) {
	products, sales := newFakeProductRepo(), newFakeTransactionRepo()
	d1 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	seedSales(t, sales,
		sale("Widget", 2, "20.00", "5.00", d1),
		sale("Gadget", 1, "30.00", "3.00", d1),
		sale("Widget", 1, "10.00", "2.50", d2),
		sale("Bolt", 5, "0.50", "0.10", d2),
		sale("Widget", 9, "90.00", "9.00", d2.AddDate(0, 0, 1)), // outside range
	)
	svc := NewSummaryService(products, sales, Thresholds{Critical: 5, Warning: 10}, nil)

	got, err := svc.Summarize(context.Background(), d1, d2)
	require.NoError(t, err)

	assert.Equal(t, 4, got.TransactionCount)
	assert.Equal(t, "60.50", got.TotalAmount.StringFixed(2))
	assert.Equal(t, "10.60", got.TotalProfit.StringFixed(2))

	require.Len(t, got.Products, 3)
	assert.Equal(t, "Gadget", got.Products[0].ProductName)
	assert.Equal(t, "Widget", got.Products[1].ProductName)
	assert.Equal(t, 3, got.Products[1].Quantity)
	assert.Equal(t, "Bolt", got.Products[2].ProductName)

	require.Len(t, got.Daily, 2)
	assert.Equal(t, "2024-01-10", got.Daily[0].Date)
	assert.Equal(t, 2, got.Daily[0].Transactions)
	assert.Equal(t, "50.00", got.Daily[0].Amount.StringFixed(2))
	assert.Equal(t, "2024-01-11", got.Daily[1].Date)
}

func TestSummarize_TiesSortByName(t *testing.T) {
	products, sales := newFakeProductRepo(), newFakeTransactionRepo()
	d := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	seedSales(t, sales, sale("Zeta", 1, "5.00", "0", d), sale("Alpha", 1, "5.00", "0", d))
	svc := NewSummaryService(products, sales, Thresholds{}, nil)

	got, err := svc.Summarize(context.Background(), d, d)
	require.NoError(t, err)
	require.Len(t, got.Products, 2)
	assert.Equal(t, "Alpha", got.Products[0].ProductName)
}

func TestSummarize_EmptyAndInvalidRange(t *testing.T) {
	svc := NewSummaryService(newFakeProductRepo(), newFakeTransactionRepo(), Thresholds{}, nil)
	d := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	got, err := svc.Summarize(context.Background(), d, d)
	require.NoError(t, err)
	assert.Equal(t, 0, got.TransactionCount)
	assert.True(t, got.TotalAmount.IsZero())
	assert.Empty(t, got.Products)

	_, err = svc.Summarize(context.Background(), d, d.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTotals(t *testing.T) {
	sales := newFakeTransactionRepo()
	now := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)
	seedSales(t, sales,
		sale("Widget", 1, "10.00", "0", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)),
		sale("Widget", 1, "20.00", "0", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		sale("Widget", 1, "40.00", "0", time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)),
		sale("Widget", 1, "80.00", "0", time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)),
	)
	svc := NewSummaryService(newFakeProductRepo(), sales, Thresholds{}, func() time.Time { return now })

	got, err := svc.Totals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "150.00", got.AllTime.StringFixed(2))
	assert.Equal(t, "30.00", got.ThisMonth.StringFixed(2))
	assert.Equal(t, "10.00", got.Today.StringFixed(2))
}

func TestStockAlerts(t *testing.T) {
	products := newFakeProductRepo()
	for name, stock := range map[string]int{"Empty": 0, "Low": 5, "Mid": 8, "Edge": 10, "Plenty": 11} {
		require.NoError(t, products.Create(context.Background(), &model.Product{Name: name, Price: dec("1"), Stock: stock}))
	}
	svc := NewSummaryService(products, newFakeTransactionRepo(), Thresholds{Critical: 5, Warning: 10}, nil)

	got, err := svc.StockAlerts(context.Background())
	require.NoError(t, err)

	require.Len(t, got.Critical, 2)
	assert.Equal(t, "Empty", got.Critical[0].Name)
	assert.Equal(t, "Low", got.Critical[1].Name)
	require.Len(t, got.Warning, 2)
	assert.Equal(t, "Mid", got.Warning[0].Name)
	assert.Equal(t, "Edge", got.Warning[1].Name)
}

func TestDashboardStats(t *testing.T) {
	products, sales := newFakeProductRepo(), newFakeTransactionRepo()
	ctx := context.Background()
	require.NoError(t, products.Create(ctx, &model.Product{Name: "Widget", Price: dec("10.00"), Capital: dec("6.00"), Stock: 3}))
	require.NoError(t, products.Create(ctx, &model.Product{Name: "Gadget", Price: dec("2.50"), Capital: dec("1.00"), Stock: 0}))
	require.NoError(t, products.Create(ctx, &model.Product{Name: "Bolt", Price: dec("0.10"), Capital: dec("0.05"), Stock: 100}))
	seedSales(t, sales, sale("Widget", 2, "20.00", "8.00", saleDay))
	svc := NewSummaryService(products, sales, Thresholds{Critical: 5, Warning: 10}, nil)

	got, err := svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, got.ProductCount)
	assert.Equal(t, 2, got.LowStockCount)
	assert.Equal(t, 1, got.OutOfStockCount)
	assert.Equal(t, 103, got.TotalUnits)
	assert.Equal(t, "40.00", got.StockValue.StringFixed(2))
	assert.Equal(t, "23.00", got.StockCost.StringFixed(2))
	assert.Equal(t, 1, got.TransactionCount)
	assert.Equal(t, "20.00", got.Revenue.StringFixed(2))
	assert.Equal(t, "8.00", got.Profit.StringFixed(2))
}

func TestSummaryStoreFailure(t *testing.T) {
	sales := newFakeTransactionRepo()
	sales.findErr = errStoreDown
	svc := NewSummaryService(newFakeProductRepo(), sales, Thresholds{}, nil)

	_, err := svc.Totals(context.Background())
	assert.ErrorIs(t, err, ErrPersistence)
}
