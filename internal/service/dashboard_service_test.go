package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/repository"
	"go-inventory-pos/internal/service"
)

func newDashboard(f *fixture) service.DashboardService {
	return service.NewDashboardService(f.products, f.logs, repository.NewExpenseRepo(f.db), zerolog.Nop(), service.DashboardOptions{
		Location:          time.UTC,
		LowStockThreshold: 10,
		ExpiryWindow:      30 * 24 * time.Hour,
		TopSellingLimit:   2,
	})
}

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coffee := f.addProduct(t, "Coffee", 10, 20, 10)
	tea := f.addProduct(t, "Tea", 5, 0, 6)

	soon := time.Now().Add(48 * time.Hour)
	_, err := f.inv.UpdateProduct(ctx, tea.ID, &service.ProductRequest{
		Name: "Tea", Price: decimal.NewFromInt(5), ShopQuantity: 6, ExpiryDate: &soon,
	}, cashier)
	require.NoError(t, err)

	_, err = f.inv.ProcessTransaction(ctx, map[uuid.UUID]int{coffee.ID: 2, tea.ID: 4}, cashier)
	require.NoError(t, err)
	_, err = f.inv.ProcessTransaction(ctx, map[uuid.UUID]int{tea.ID: -1}, cashier)
	require.NoError(t, err)

	stats, err := newDashboard(f).GetDashboardStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalProducts)
	assert.Equal(t, 1, stats.LowStockCount)
	// revenue: 2*10 + 4*5
	assert.True(t, decimal.NewFromInt(40).Equal(stats.TotalRevenue), stats.TotalRevenue.String())
	assert.Equal(t, 6, stats.Today.ItemsSold)
	assert.Equal(t, 1, stats.Today.ItemsReturned)
	assert.Equal(t, 2, stats.Today.Transactions) // two carts, three lines
	assert.Equal(t, 36, stats.Today.NewStock)

	require.Len(t, stats.TopSelling, 2)
	assert.Equal(t, "Tea", stats.TopSelling[0].ProductName)
	assert.Equal(t, 4, stats.TopSelling[0].UnitsSold)

	require.Len(t, stats.Expiring, 1)
	assert.Equal(t, "Tea", stats.Expiring[0].Name)
}

func TestDashboardStockMovement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Coffee", 10, 20, 10)
	_, err := f.inv.ProcessTransaction(ctx, map[uuid.UUID]int{p.ID: 3}, cashier)
	require.NoError(t, err)

	points, err := newDashboard(f).GetStockMovement(ctx, 7)
	require.NoError(t, err)
	require.Len(t, points, 7)
	last := points[6]
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), last.Date)
	assert.Equal(t, 30, last.Inbound)
	assert.Equal(t, 3, last.Outbound)
}

func TestDashboardStockMovement_CapsDays(t *testing.T) {
	f := newFixture(t)
	d := newDashboard(f)

	_, err := d.GetStockMovement(context.Background(), service.MaxMovementDays+1)
	var verr *service.ValidationError
	assert.True(t, errors.As(err, &verr))

	points, err := d.GetStockMovement(context.Background(), service.MaxMovementDays)
	require.NoError(t, err)
	assert.Len(t, points, service.MaxMovementDays)
}

func TestDashboardAccounting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	expenses := service.NewExpenseService(repository.NewExpenseRepo(f.db), zerolog.Nop())
	p := f.addProduct(t, "Coffee", 10, 0, 10)

	_, err := f.inv.ProcessTransaction(ctx, map[uuid.UUID]int{p.ID: 5}, cashier)
	require.NoError(t, err)
	_, err = expenses.AddExpense(ctx, &service.ExpenseRequest{Date: time.Now(), Category: "rent", Amount: decimal.NewFromInt(30)}, cashier)
	require.NoError(t, err)

	start := time.Now().Add(-time.Hour)
	sum, err := newDashboard(f).GetAccounting(ctx, start, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(sum.Revenue))
	assert.True(t, decimal.NewFromInt(30).Equal(sum.Expenses))
	assert.True(t, decimal.NewFromInt(20).Equal(sum.Profit))

	_, err = newDashboard(f).GetAccounting(ctx, start, start)
	var verr *service.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestExpenseService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := service.NewExpenseService(repository.NewExpenseRepo(f.db), zerolog.Nop())
	day := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	_, err := svc.AddExpense(ctx, &service.ExpenseRequest{Category: "rent", Amount: decimal.NewFromInt(1)}, cashier)
	var verr *service.ValidationError
	assert.ErrorAs(t, err, &verr, "date is required")

	_, err = svc.AddExpense(ctx, &service.ExpenseRequest{Date: day, Category: "rent", Amount: decimal.NewFromInt(-1)}, cashier)
	assert.ErrorAs(t, err, &verr)

	e, err := svc.AddExpense(ctx, &service.ExpenseRequest{Date: day, Category: "rent", Amount: decimal.NewFromInt(100)}, cashier)
	require.NoError(t, err)

	updated, err := svc.UpdateExpense(ctx, e.ID, &service.ExpenseRequest{Date: day, Category: "utilities", Amount: decimal.NewFromInt(80)}, cashier)
	require.NoError(t, err)
	assert.Equal(t, "utilities", updated.Category)

	list, err := svc.ListExpenses(ctx, day.Add(-time.Hour), day.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, decimal.NewFromInt(80).Equal(list[0].Amount))

	require.NoError(t, svc.DeleteExpense(ctx, e.ID, cashier))
	assert.ErrorIs(t, svc.DeleteExpense(ctx, e.ID, cashier), service.ErrNotFound)
	_, err = svc.UpdateExpense(ctx, e.ID, &service.ExpenseRequest{Date: day, Category: "x"}, cashier)
	assert.ErrorIs(t, err, service.ErrNotFound)

	// expenses never touch the log
	assert.Empty(t, f.allLogs(t))
}

func TestExpenseService_DoesNotAffectInventory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Coffee", 10, 3, 3)
	svc := service.NewExpenseService(repository.NewExpenseRepo(f.db), zerolog.Nop())

	_, err := svc.AddExpense(ctx, &service.ExpenseRequest{Date: time.Now(), Category: "stock purchase", Amount: decimal.NewFromInt(500)}, cashier)
	require.NoError(t, err)

	got := f.reload(t, p.ID)
	assert.Equal(t, 3, got.StockQuantity)
	assert.Len(t, f.logsOfType(t, model.LogCreate), 1)
}
