package handler

import (
	"time"

	"go-inventory-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ExpenseHandler struct {
	service service.ExpenseService
	loc     *time.Location
}

func NewExpenseHandler(s service.ExpenseService, loc *time.Location) *ExpenseHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ExpenseHandler{service: s, loc: loc}
}

// ListExpenses returns expenses dated within [start, end]. Without a range
// the current month is listed.
// GET /api/v1/expenses?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *ExpenseHandler) ListExpenses(c *fiber.Ctx) error {
	now := time.Now().In(h.loc)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, h.loc)
	end := start.AddDate(0, 1, 0)

	if s := c.Query("start"); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, h.loc)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "start must be YYYY-MM-DD"})
		}
		start = t
	}
	if e := c.Query("end"); e != "" {
		t, err := time.ParseInLocation(dateLayout, e, h.loc)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "end must be YYYY-MM-DD"})
		}
		end = t.AddDate(0, 0, 1)
	}

	expenses, err := h.service.ListExpenses(c.UserContext(), start, end)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(expenses)
}

// POST /api/v1/expenses
func (h *ExpenseHandler) CreateExpense(c *fiber.Ctx) error {
	var req service.ExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	expense, err := h.service.AddExpense(c.UserContext(), &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Expense recorded", "data": expense})
}

// PUT /api/v1/expenses/:id
func (h *ExpenseHandler) UpdateExpense(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, "expense")
	}
	var req service.ExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	expense, err := h.service.UpdateExpense(c.UserContext(), id, &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Expense updated", "data": expense})
}

// DELETE /api/v1/expenses/:id
func (h *ExpenseHandler) DeleteExpense(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, "expense")
	}
	if err := h.service.DeleteExpense(c.UserContext(), id, actor(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Expense deleted"})
}
