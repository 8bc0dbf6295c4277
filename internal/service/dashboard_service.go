package service

import (
	"context"
	"time"

	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/report"
	"go-inventory-pos/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type DashboardService interface {
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
	GetStockMovement(ctx context.Context, days int) ([]report.MovementPoint, error)
	GetAccounting(ctx context.Context, start, end time.Time) (*report.AccountingSummary, error)
}

type DashboardStats struct {
	report.CatalogSummary
	Today        report.TodaySummary      `json:"today"`
	TotalRevenue decimal.Decimal          `json:"total_revenue"`
	TopSelling   []report.ProductSales    `json:"top_selling"`
	Expiring     []report.ExpiringProduct `json:"expiring"`
	GeneratedAt  time.Time                `json:"generated_at"`
}

type DashboardOptions struct {
	Location          *time.Location
	LowStockThreshold int
	ExpiryWindow      time.Duration
	TopSellingLimit   int
}

// endOfTime bounds "all time" log queries.
var endOfTime = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

type dashboardService struct {
	productRepo repository.ProductRepository
	logRepo     repository.LogRepository
	expenseRepo repository.ExpenseRepository
	opts        DashboardOptions
	now         func() time.Time
	log         zerolog.Logger
}

func NewDashboardService(
	productRepo repository.ProductRepository,
	logRepo repository.LogRepository,
	expenseRepo repository.ExpenseRepository,
	log zerolog.Logger,
	opts DashboardOptions,
) DashboardService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &dashboardService{
		productRepo: productRepo,
		logRepo:     logRepo,
		expenseRepo: expenseRepo,
		opts:        opts,
		now:         time.Now,
		log:         log.With().Str("component", "dashboard").Logger(),
	}
}

// GetDashboardStats recomputes every figure from the catalog and the log.
func (s *dashboardService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	now := s.now()

	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, s.fail("load products", err)
	}
	sales, err := s.logRepo.FindByType(ctx, model.LogTransaction, time.Time{}, endOfTime)
	if err != nil {
		return nil, s.fail("load sales", err)
	}
	dayStart, dayEnd := report.DayBounds(now, s.opts.Location)
	today, err := s.logRepo.FindBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, s.fail("load today's log", err)
	}

	return &DashboardStats{
		CatalogSummary: report.Catalog(products, s.opts.LowStockThreshold),
		Today:          report.Today(today, now, s.opts.Location),
		TotalRevenue:   report.Revenue(sales),
		TopSelling:     report.TopSelling(sales, s.opts.TopSellingLimit),
		Expiring:       report.Expiring(products, now, s.opts.ExpiryWindow),
		GeneratedAt:    now.UTC(),
	}, nil
}

// MaxMovementDays bounds the stock movement chart; one point is built per day.
const MaxMovementDays = 366

// GetStockMovement covers the last days calendar days including today.
func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]report.MovementPoint, error) {
	if days <= 0 {
		days = 7
	}
	if days > MaxMovementDays {
		return nil, invalid("days must be at most %d", MaxMovementDays)
	}
	now := s.now()
	todayStart, todayEnd := report.DayBounds(now, s.opts.Location)
	start := todayStart.AddDate(0, 0, -(days - 1))

	logs, err := s.logRepo.FindBetween(ctx, start, todayEnd)
	if err != nil {
		return nil, s.fail("load stock movement", err)
	}
	return report.StockMovement(logs, start, todayEnd.Add(-time.Nanosecond), s.opts.Location), nil
}

func (s *dashboardService) GetAccounting(ctx context.Context, start, end time.Time) (*report.AccountingSummary, error) {
	if !end.After(start) {
		return nil, invalid("end must be after start")
	}
	logs, err := s.logRepo.FindByType(ctx, model.LogTransaction, start, end)
	if err != nil {
		return nil, s.fail("load sales", err)
	}
	expenses, err := s.expenseRepo.FindBetween(ctx, start, end)
	if err != nil {
		return nil, s.fail("load expenses", err)
	}
	sum := report.Accounting(logs, expenses, start, end)
	return &sum, nil
}

func (s *dashboardService) fail(op string, err error) error {
	s.log.Error().Err(err).Str("op", op).Msg("store error")
	return unavailable(op, err)
}
