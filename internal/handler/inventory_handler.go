package handler

import (
	"strings"

	"go-inventory-pos/internal/drawer"
	"go-inventory-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const PaymentCash = "CASH"

type InventoryHandler struct {
	service service.InventoryService
	drawer  service.DrawerService
}

func NewInventoryHandler(s service.InventoryService, d service.DrawerService) *InventoryHandler {
	return &InventoryHandler{service: s, drawer: d}
}

// QuantityRequest is the body of transfer and restock.
type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

// TransactionRequest maps product ids to deltas: positive sells, negative
// returns. Drawer is the client's cash drawer session; it is only touched
// for cash payments.
type TransactionRequest struct {
	Items         map[uuid.UUID]int `json:"items"`
	PaymentMethod string            `json:"payment_method"`
	Drawer        *drawer.State     `json:"drawer"`
}

// GetProducts
// GET /api/v1/products
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetProducts(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(products)
}

// GET /api/v1/products/:id
func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, "product")
	}
	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(product)
}

// POST /api/v1/products
func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	product, err := h.service.AddProduct(c.UserContext(), &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created", "data": product})
}

// PUT /api/v1/products/:id
func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, "product")
	}
	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	updated, err := h.service.UpdateProduct(c.UserContext(), id, &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

// DELETE /api/v1/products/:id
func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, "product")
	}
	if err := h.service.DeleteProduct(c.UserContext(), id, actor(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// POST /api/v1/products/:id/transfer
func (h *InventoryHandler) TransferToShop(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, "product")
	}
	var req QuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	product, err := h.service.TransferStockToShop(c.UserContext(), id, req.Quantity, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Stock moved to shop", "data": product})
}

// POST /api/v1/products/:id/restock
func (h *InventoryHandler) Restock(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, "product")
	}
	var req QuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	product, err := h.service.Restock(c.UserContext(), id, req.Quantity, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product restocked", "data": product})
}

// CreateTransaction processes a cart. For a cash payment with a drawer
// session the drawer must be active before inventory is touched, and the
// cart total is added to it afterwards.
// POST /api/v1/transactions
func (h *InventoryHandler) CreateTransaction(c *fiber.Ctx) error {
	var req TransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	cash := strings.EqualFold(req.PaymentMethod, PaymentCash) && req.Drawer != nil
	if cash {
		if err := h.drawer.EnsureActive(*req.Drawer); err != nil {
			return fail(c, err)
		}
	}

	who := actor(c)
	result, err := h.service.ProcessTransaction(c.UserContext(), req.Items, who)
	if err != nil {
		return fail(c, err)
	}

	resp := fiber.Map{"message": "Transaction recorded", "data": result}
	if cash {
		next, err := h.drawer.RecordSale(*req.Drawer, result.Total, who)
		if err != nil {
			return fail(c, err)
		}
		resp["drawer"] = next
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetLogs returns the audit log, newest first.
// GET /api/v1/logs?limit=100
func (h *InventoryHandler) GetLogs(c *fiber.Ctx) error {
	logs, err := h.service.GetLogs(c.UserContext(), c.QueryInt("limit", service.DefaultLogLimit))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(logs)
}
