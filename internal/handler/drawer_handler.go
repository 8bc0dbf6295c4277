package handler

import (
	"go-inventory-pos/internal/drawer"
	"go-inventory-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// DrawerHandler exposes the cash drawer machine. The client owns the session
// state and posts it with every call.
type DrawerHandler struct {
	service service.DrawerService
}

func NewDrawerHandler(s service.DrawerService) *DrawerHandler {
	return &DrawerHandler{service: s}
}

type DrawerRequest struct {
	Drawer drawer.State    `json:"drawer"`
	Amount decimal.Decimal `json:"amount"`
}

// Start opens the day with Amount as the starting float
// POST /api/v1/drawer/start
func (h *DrawerHandler) Start(c *fiber.Ctx) error {
	var req DrawerRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	next, err := h.service.Start(req.Drawer, req.Amount, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Drawer opened", "drawer": next})
}

// Sale adds Amount to cash sales; negative for refunds
// POST /api/v1/drawer/sale
func (h *DrawerHandler) Sale(c *fiber.Ctx) error {
	var req DrawerRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	next, err := h.service.RecordSale(req.Drawer, req.Amount, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cash sale recorded", "drawer": next})
}

// POST /api/v1/drawer/end
func (h *DrawerHandler) End(c *fiber.Ctx) error {
	var req DrawerRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	next, rec, err := h.service.EndDay(req.Drawer, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Drawer closed", "drawer": next, "reconciliation": rec})
}
