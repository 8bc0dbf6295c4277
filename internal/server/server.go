// Package server wires repositories, services and handlers into a fiber app.
package server

import (
	"go-inventory-pos/internal/clock"
	"go-inventory-pos/internal/config"
	"go-inventory-pos/internal/events"
	"go-inventory-pos/internal/handler"
	"go-inventory-pos/internal/middleware"
	"go-inventory-pos/internal/repository"
	"go-inventory-pos/internal/router"
	"go-inventory-pos/internal/service"
	"go-inventory-pos/internal/ws"
	"go-inventory-pos/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type Server struct {
	App *fiber.App
	Hub *ws.Hub
	Bus *events.Bus
}

// New builds the app on an already migrated db. The hub is attached to the
// bus but not started; call Start.
func New(cfg *config.Config, db *gorm.DB, log zerolog.Logger) (*Server, error) {
	bus := events.NewBus()
	hub := ws.NewHub(log)
	if err := hub.Attach(bus); err != nil {
		return nil, err
	}

	productRepo := repository.NewProductRepo(db)
	logRepo := repository.NewLogRepo(db)
	expenseRepo := repository.NewExpenseRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	loc := cfg.Location()

	invService := service.NewInventoryService(productRepo, logRepo, clock.NewMonotonic(nil), bus, log, service.EngineOptions{
		TxTimeout:   cfg.TxTimeout,
		MaxAttempts: cfg.TxMaxAttempts,
	})
	dashService := service.NewDashboardService(productRepo, logRepo, expenseRepo, log, service.DashboardOptions{
		Location:          loc,
		LowStockThreshold: cfg.LowStockThreshold,
		ExpiryWindow:      cfg.ExpiryWindow(),
		TopSellingLimit:   cfg.TopSellingLimit,
	})
	expenseService := service.NewExpenseService(expenseRepo, log)
	drawerService := service.NewDrawerService(bus)
	authService := service.NewAuthService(userRepo, jwt.NewSigner(cfg.JWTSecret, cfg.JWTTTL()), bus, log)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)
	navService := service.NewNavigationService(cfg.Plugins)

	app := fiber.New(fiber.Config{
		AppName:      "Inventory POS v1.0",
		ErrorHandler: middleware.ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(cors.New())
	if !cfg.IsProduction() {
		app.Use(logger.New())
	}

	router.Setup(app, router.Deps{
		Auth:       authService,
		Hub:        hub,
		Inventory:  handler.NewInventoryHandler(invService, drawerService),
		Dashboard:  handler.NewDashboardHandler(dashService, loc),
		Expense:    handler.NewExpenseHandler(expenseService, loc),
		Drawer:     handler.NewDrawerHandler(drawerService),
		Navigation: handler.NewNavigationHandler(navService),
		AuthH:      handler.NewAuthHandler(authService),
		User:       handler.NewUserHandler(userService),
		Role:       handler.NewRoleHandler(userService),
	})

	return &Server{App: app, Hub: hub, Bus: bus}, nil
}

// Start runs the hub loop in the background.
func (s *Server) Start() {
	go s.Hub.Run()
}

// Shutdown stops accepting requests, drains pending events and closes
// websocket clients.
func (s *Server) Shutdown() error {
	err := s.App.Shutdown()
	s.Bus.WaitAsync()
	s.Hub.Stop()
	return err
}
