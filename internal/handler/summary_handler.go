package handler

import (
	"time"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SummaryHandler struct {
	service service.SummaryService
}

func NewSummaryHandler(s service.SummaryService) *SummaryHandler {
	return &SummaryHandler{service: s}
}

// GetSummary reports sales between start and end
// Query params: start, end (YYYY-MM-DD). end defaults to today, start to the
// first day of end's month.
func (h *SummaryHandler) GetSummary(c *fiber.Ctx) error {
	start, err := parseDateQuery(c, "start")
	if err != nil {
		return badRequest(c, "Invalid start date, use YYYY-MM-DD")
	}
	end, err := parseDateQuery(c, "end")
	if err != nil {
		return badRequest(c, "Invalid end date, use YYYY-MM-DD")
	}
	if end.IsZero() {
		end = model.BusinessDate(time.Now())
	}
	if start.IsZero() {
		start = end.AddDate(0, 0, 1-end.Day())
	}

	summary, err := h.service.Summarize(c.UserContext(), start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}

func (h *SummaryHandler) GetTotals(c *fiber.Ctx) error {
	totals, err := h.service.Totals(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(totals)
}

func (h *SummaryHandler) GetStockAlerts(c *fiber.Ctx) error {
	alerts, err := h.service.StockAlerts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(alerts)
}

// GetDashboardStats returns overview statistics
func (h *SummaryHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.DashboardStats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
