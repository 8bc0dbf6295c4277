package handler

import (
	"go-inventory-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type NavigationHandler struct {
	service service.NavigationService
}

func NewNavigationHandler(s service.NavigationService) *NavigationHandler {
	return &NavigationHandler{service: s}
}

// GetNavigation returns the menu for the caller's role
// GET /api/v1/navigation
func (h *NavigationHandler) GetNavigation(c *fiber.Ctx) error {
	return c.JSON(h.service.Build(localString(c, LocalRoleCode, "")))
}
