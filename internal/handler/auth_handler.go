package handler

import (
	"strings"

	"go-inventory-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email string `json:"email"`
}

// Login identifies the acting user by email and issues a token
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	if strings.TrimSpace(req.Email) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Email is required"})
	}

	response, err := h.authService.Login(c.UserContext(), req.Email)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(response)
}

// POST /api/v1/auth/heartbeat
func (h *AuthHandler) Heartbeat(c *fiber.Ctx) error {
	id, err := uuid.Parse(localString(c, LocalUserID, ""))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "Unauthorized"})
	}

	if err := h.authService.Heartbeat(c.UserContext(), id); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"message": "Heartbeat received", "status": "online"})
}

// ValidateTokenRequest represents the validate token request body
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateToken handles JWT token validation
// POST /api/v1/auth/validate-token
func (h *AuthHandler) ValidateToken(c *fiber.Ctx) error {
	var req ValidateTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	if req.Token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Token is required"})
	}

	response, err := h.authService.ValidateToken(c.UserContext(), req.Token)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(response)
}
