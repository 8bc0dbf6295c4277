package router

import (
	"go-inventory-pos/internal/handler"
	"go-inventory-pos/internal/middleware"
	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/service"
	"go-inventory-pos/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// Deps is everything the routes need.
type Deps struct {
	Auth       service.AuthService
	Hub        *ws.Hub
	Inventory  *handler.InventoryHandler
	Dashboard  *handler.DashboardHandler
	Expense    *handler.ExpenseHandler
	Drawer     *handler.DrawerHandler
	Navigation *handler.NavigationHandler
	AuthH      *handler.AuthHandler
	User       *handler.UserHandler
	Role       *handler.RoleHandler
}

// Setup registers the API under /api/v1 and the websocket at /ws.
func Setup(app *fiber.App, d Deps) {
	priv := middleware.RequirePrivilege
	requireAuth := middleware.RequireAuth(d.Auth)

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", d.AuthH.Login)
	auth.Post("/validate-token", d.AuthH.ValidateToken)
	auth.Post("/heartbeat", requireAuth, d.AuthH.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)

	protected.Get("/navigation", d.Navigation.GetNavigation)

	// Dashboard
	protected.Get("/dashboard/stats", priv(model.PrivDashboardView), d.Dashboard.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", priv(model.PrivDashboardView), d.Dashboard.GetStockMovement)
	protected.Get("/dashboard/accounting", priv(model.PrivExpenseView), d.Dashboard.GetAccounting)

	// Products
	protected.Get("/products", priv(model.PrivProductView), d.Inventory.GetProducts)
	protected.Get("/products/:id", priv(model.PrivProductView), d.Inventory.GetProduct)
	protected.Post("/products", priv(model.PrivProductCreate), d.Inventory.CreateProduct)
	protected.Put("/products/:id", priv(model.PrivProductUpdate), d.Inventory.UpdateProduct)
	protected.Delete("/products/:id", priv(model.PrivProductDelete), d.Inventory.DeleteProduct)
	protected.Post("/products/:id/transfer", priv(model.PrivStockTransfer), d.Inventory.TransferToShop)
	protected.Post("/products/:id/restock", priv(model.PrivStockRestock), d.Inventory.Restock)

	// Sales and returns
	protected.Post("/transactions", priv(model.PrivTransactionCreate), d.Inventory.CreateTransaction)
	protected.Get("/logs", priv(model.PrivLogView), d.Inventory.GetLogs)

	// Expenses
	protected.Get("/expenses", priv(model.PrivExpenseView), d.Expense.ListExpenses)
	protected.Post("/expenses", priv(model.PrivExpenseManage), d.Expense.CreateExpense)
	protected.Put("/expenses/:id", priv(model.PrivExpenseManage), d.Expense.UpdateExpense)
	protected.Delete("/expenses/:id", priv(model.PrivExpenseManage), d.Expense.DeleteExpense)

	// Cash drawer
	drawer := protected.Group("/drawer", priv(model.PrivDrawerOperate))
	drawer.Post("/start", d.Drawer.Start)
	drawer.Post("/sale", d.Drawer.Sale)
	drawer.Post("/end", d.Drawer.End)

	// User management
	protected.Get("/users", priv(model.PrivUserView), d.User.GetUsers)
	protected.Get("/users/:id", priv(model.PrivUserView), d.User.GetUser)
	protected.Post("/users", priv(model.PrivUserCreate), d.User.CreateUser)
	protected.Put("/users/:id", priv(model.PrivUserUpdate), d.User.UpdateUser)
	protected.Delete("/users/:id", priv(model.PrivUserDelete), d.User.DeleteUser)
	protected.Put("/users/:id/privileges", priv(model.PrivUserUpdatePrivilege), d.User.UpdateUserPrivileges)

	protected.Get("/roles", d.Role.GetRoles)
	protected.Get("/privileges", d.Role.GetPrivileges)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	}, middleware.RequireSocketAuth(d.Auth))
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !d.Hub.Join(c) {
			return
		}
		defer d.Hub.Leave(c)

		// Keep alive until the client goes away
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))
}
