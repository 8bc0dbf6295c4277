package handler

import (
	"strconv"
	"time"

	"go-inventory-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

type DashboardHandler struct {
	service service.DashboardService
	loc     *time.Location
	now     func() time.Time
}

func NewDashboardHandler(s service.DashboardService, loc *time.Location) *DashboardHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardHandler{service: s, loc: loc, now: time.Now}
}

// GetStockMovement returns stock movement data for charts
// Query params: days (default 7)
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	daysStr := c.Query("days", "7")
	days, err := strconv.Atoi(daysStr)
	if err != nil || days <= 0 {
		days = 7
	}

	data, err := h.service.GetStockMovement(c.UserContext(), days)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetDashboardStats returns overview statistics
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats(c.UserContext())
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(stats)
}

// GetAccounting returns revenue, expenses and profit for a period.
// Either ?range=7d|1m|3m|6m|12m (default 1m) or ?start=YYYY-MM-DD&end=YYYY-MM-DD
// with end inclusive, both in the store's timezone.
// GET /api/v1/dashboard/accounting
func (h *DashboardHandler) GetAccounting(c *fiber.Ctx) error {
	start, end, err := h.period(c.Query("range", "1m"), c.Query("start"), c.Query("end"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	summary, err := h.service.GetAccounting(c.UserContext(), start, end)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"start": start,
		"end":   end,
		"data":  summary,
	})
}

func (h *DashboardHandler) period(rng, startStr, endStr string) (time.Time, time.Time, error) {
	if startStr != "" || endStr != "" {
		start, err := time.ParseInLocation(dateLayout, startStr, h.loc)
		if err != nil {
			return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "start must be YYYY-MM-DD")
		}
		end, err := time.ParseInLocation(dateLayout, endStr, h.loc)
		if err != nil {
			return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "end must be YYYY-MM-DD")
		}
		return start, end.AddDate(0, 0, 1), nil
	}

	now := h.now().In(h.loc)
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.loc).AddDate(0, 0, 1)
	switch rng {
	case "7d":
		return end.AddDate(0, 0, -7), end, nil
	case "1m":
		return end.AddDate(0, -1, 0), end, nil
	case "3m":
		return end.AddDate(0, -3, 0), end, nil
	case "6m":
		return end.AddDate(0, -6, 0), end, nil
	case "12m":
		return end.AddDate(-1, 0, 0), end, nil
	}
	return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "range must be one of 7d, 1m, 3m, 6m, 12m")
}
