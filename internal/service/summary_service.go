package service

import (
	"context"
	"sort"
	"time"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"

	"github.com/shopspring/decimal"
)

type SummaryService interface {
	Summarize(ctx context.Context, start, end time.Time) (*SalesSummary, error)
	Totals(ctx context.Context) (*SalesTotals, error)
	StockAlerts(ctx context.Context) (*StockAlerts, error)
	DashboardStats(ctx context.Context) (*DashboardStats, error)
}

type ProductSales struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
	Profit      decimal.Decimal `json:"profit"`
}

type DailySales struct {
	Date         string          `json:"date"`
	Transactions int             `json:"transactions"`
	Amount       decimal.Decimal `json:"amount"`
	Profit       decimal.Decimal `json:"profit"`
}

type SalesSummary struct {
	Start            string          `json:"start"`
	End              string          `json:"end"`
	TransactionCount int             `json:"transaction_count"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TotalProfit      decimal.Decimal `json:"total_profit"`
	Products         []ProductSales  `json:"products"`
	Daily            []DailySales    `json:"daily"`
}

type SalesTotals struct {
	AllTime   decimal.Decimal `json:"all_time"`
	ThisMonth decimal.Decimal `json:"this_month"`
	Today     decimal.Decimal `json:"today"`
}

type StockAlerts struct {
	CriticalThreshold int             `json:"critical_threshold"`
	WarningThreshold  int             `json:"warning_threshold"`
	Critical          []model.Product `json:"critical"`
	Warning           []model.Product `json:"warning"`
}

type DashboardStats struct {
	ProductCount     int             `json:"product_count"`
	LowStockCount    int             `json:"low_stock_count"`
	OutOfStockCount  int             `json:"out_of_stock_count"`
	TotalUnits       int             `json:"total_units"`
	StockValue       decimal.Decimal `json:"stock_value"`
	StockCost        decimal.Decimal `json:"stock_cost"`
	TransactionCount int             `json:"transaction_count"`
	Revenue          decimal.Decimal `json:"revenue"`
	Profit           decimal.Decimal `json:"profit"`
}

// Thresholds bound the stock levels reported by StockAlerts. A product at or
// below Critical is critical; one above it and at or below Warning is a warning.
type Thresholds struct {
	Critical int
	Warning  int
}

type summaryService struct {
	productRepo     repository.ProductRepository
	transactionRepo repository.TransactionRepository
	thresholds      Thresholds
	now             func() time.Time
}

// NewSummaryService builds the read-side reports. now defaults to time.Now.
func NewSummaryService(pRepo repository.ProductRepository, tRepo repository.TransactionRepository, thresholds Thresholds, now func() time.Time) SummaryService {
	if now == nil {
		now = time.Now
	}
	return &summaryService{
		productRepo:     pRepo,
		transactionRepo: tRepo,
		thresholds:      thresholds,
		now:             now,
	}
}

func (s *summaryService) Summarize(ctx context.Context, start, end time.Time) (*SalesSummary, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	sales, err := s.transactionRepo.FindByDateRange(ctx, start, end)
	if err != nil {
		return nil, persistence("summarize sales", err)
	}

	summary := &SalesSummary{
		Start:            model.BusinessDate(start).Format(model.DateLayout),
		End:              model.BusinessDate(end).Format(model.DateLayout),
		TransactionCount: len(sales),
		TotalAmount:      decimal.Zero,
		TotalProfit:      decimal.Zero,
		Products:         []ProductSales{},
		Daily:            []DailySales{},
	}

	byProduct := map[string]*ProductSales{}
	byDay := map[string]*DailySales{}
	for _, sale := range sales {
		summary.TotalAmount = summary.TotalAmount.Add(sale.Total)
		summary.TotalProfit = summary.TotalProfit.Add(sale.Profit)

		p, ok := byProduct[sale.ProductName]
		if !ok {
			p = &ProductSales{ProductName: sale.ProductName, Amount: decimal.Zero, Profit: decimal.Zero}
			byProduct[sale.ProductName] = p
		}
		p.Quantity += sale.Quantity
		p.Amount = p.Amount.Add(sale.Total)
		p.Profit = p.Profit.Add(sale.Profit)

		day := sale.DateString()
		d, ok := byDay[day]
		if !ok {
			d = &DailySales{Date: day, Amount: decimal.Zero, Profit: decimal.Zero}
			byDay[day] = d
		}
		d.Transactions++
		d.Amount = d.Amount.Add(sale.Total)
		d.Profit = d.Profit.Add(sale.Profit)
	}

	for _, p := range byProduct {
		summary.Products = append(summary.Products, *p)
	}
	sort.Slice(summary.Products, func(i, j int) bool {
		a, b := summary.Products[i], summary.Products[j]
		if c := a.Amount.Cmp(b.Amount); c != 0 {
			return c > 0
		}
		return a.ProductName < b.ProductName
	})

	for _, d := range byDay {
		summary.Daily = append(summary.Daily, *d)
	}
	sort.Slice(summary.Daily, func(i, j int) bool { return summary.Daily[i].Date < summary.Daily[j].Date })

	return summary, nil
}

func (s *summaryService) Totals(ctx context.Context) (*SalesTotals, error) {
	sales, err := s.transactionRepo.FindAll(ctx)
	if err != nil {
		return nil, persistence("sales totals", err)
	}
	today := model.BusinessDate(s.now())
	totals := &SalesTotals{AllTime: decimal.Zero, ThisMonth: decimal.Zero, Today: decimal.Zero}
	for _, sale := range sales {
		totals.AllTime = totals.AllTime.Add(sale.Total)
		d := model.BusinessDate(sale.Date)
		if d.Year() == today.Year() && d.Month() == today.Month() {
			totals.ThisMonth = totals.ThisMonth.Add(sale.Total)
		}
		if d.Equal(today) {
			totals.Today = totals.Today.Add(sale.Total)
		}
	}
	return totals, nil
}

func (s *summaryService) StockAlerts(ctx context.Context) (*StockAlerts, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, persistence("stock alerts", err)
	}
	alerts := &StockAlerts{
		CriticalThreshold: s.thresholds.Critical,
		WarningThreshold:  s.thresholds.Warning,
		Critical:          []model.Product{},
		Warning:           []model.Product{},
	}
	for _, p := range products {
		switch {
		case p.Stock <= s.thresholds.Critical:
			alerts.Critical = append(alerts.Critical, p)
		case p.Stock <= s.thresholds.Warning:
			alerts.Warning = append(alerts.Warning, p)
		}
	}
	byStock := func(list []model.Product) func(i, j int) bool {
		return func(i, j int) bool {
			if list[i].Stock != list[j].Stock {
				return list[i].Stock < list[j].Stock
			}
			return list[i].Name < list[j].Name
		}
	}
	sort.Slice(alerts.Critical, byStock(alerts.Critical))
	sort.Slice(alerts.Warning, byStock(alerts.Warning))
	return alerts, nil
}

func (s *summaryService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, persistence("dashboard stats", err)
	}
	sales, err := s.transactionRepo.FindAll(ctx)
	if err != nil {
		return nil, persistence("dashboard stats", err)
	}

	stats := &DashboardStats{
		ProductCount:     len(products),
		TransactionCount: len(sales),
		StockValue:       decimal.Zero,
		StockCost:        decimal.Zero,
		Revenue:          decimal.Zero,
		Profit:           decimal.Zero,
	}
	for _, p := range products {
		units := decimal.NewFromInt(int64(p.Stock))
		stats.TotalUnits += p.Stock
		stats.StockValue = stats.StockValue.Add(p.Price.Mul(units))
		stats.StockCost = stats.StockCost.Add(p.Capital.Mul(units))
		if p.Stock == 0 {
			stats.OutOfStockCount++
		}
		if p.Stock <= s.thresholds.Warning {
			stats.LowStockCount++
		}
	}
	for _, sale := range sales {
		stats.Revenue = stats.Revenue.Add(sale.Total)
		stats.Profit = stats.Profit.Add(sale.Profit)
	}
	return stats, nil
}
