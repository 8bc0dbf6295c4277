package handler

import (
	"errors"

	"go-inventory-pos/internal/drawer"
	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/service"
	"go-inventory-pos/pkg/jwt"
	"go-inventory-pos/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by middleware.RequireAuth.
const (
	LocalUserID     = "user_id"
	LocalUserName   = "user_name"
	LocalUserEmail  = "user_email"
	LocalRoleCode   = "role_code"
	LocalPrivileges = "user_privileges"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string                     `json:"error"`
	Fields  []*validator.ErrorResponse `json:"fields,omitempty"`
	Details interface{}                `json:"details,omitempty"`
}

func localString(c *fiber.Ctx, key, fallback string) string {
	if v, ok := c.Locals(key).(string); ok && v != "" {
		return v
	}
	return fallback
}

// actor builds the acting user from the JWT context.
func actor(c *fiber.Ctx) model.Actor {
	return model.Actor{
		ID:    localString(c, LocalUserID, model.SystemActor.ID),
		Name:  localString(c, LocalUserName, "Unknown"),
		Email: localString(c, LocalUserEmail, ""),
	}
}

func invalidID(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid " + what + " ID"})
}

func badJSON(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid JSON"})
}

// fail writes the response for err. Errors it does not recognise are
// returned unchanged so the app's error handler logs them and answers 500.
func fail(c *fiber.Ctx, err error) error {
	var (
		verr *service.ValidationError
		ise  *service.InsufficientStockError
	)
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: verr.Message, Fields: verr.Fields})

	case errors.As(err, &ise):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error: ise.Error(),
			Details: fiber.Map{
				"product_id":   ise.ProductID,
				"product_name": ise.ProductName,
				"pool":         ise.Pool,
				"available":    ise.Available,
				"requested":    ise.Requested,
			},
		})

	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, drawer.ErrNegativeFloat),
		errors.Is(err, drawer.ErrInvalidState):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrEmailExists),
		errors.Is(err, drawer.ErrAlreadyActive),
		errors.Is(err, drawer.ErrNotActive):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUserInactive),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrSessionReplaced),
		errors.Is(err, jwt.ErrInvalidToken),
		errors.Is(err, jwt.ErrMissingToken):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrStoreUnavailable):
		// detail was logged by the service
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "Service temporarily unavailable, please retry"})
	}
	return err
}
