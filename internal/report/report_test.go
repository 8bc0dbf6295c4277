package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-inventory-pos/internal/model"
)

var (
	coffee = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	tea    = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	milk   = uuid.MustParse("33333333-3333-3333-3333-333333333333")
)

func sale(ts time.Time, id uuid.UUID, name string, qc int, price string) model.LogEntry {
	return model.LogEntry{
		Timestamp: ts,
		Type:      model.LogTransaction,
		Items: []model.LogItem{{
			ProductID:      id,
			ProductName:    name,
			QuantityChange: qc,
			Price:          decimal.RequireFromString(price),
		}},
	}
}

func TestRevenue_SumsSoldItemsOnly(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	logs := []model.LogEntry{
		sale(now, coffee, "Coffee", -2, "10"),
		sale(now, tea, "Tea", 1, "7.5"),
		{Timestamp: now, Type: model.LogCreate, Items: []model.LogItem{{ProductID: milk, QuantityChange: 40, Price: decimal.NewFromInt(3)}}},
	}

	assert.True(t, decimal.NewFromInt(20).Equal(Revenue(logs)))
}

func TestRevenue_Empty(t *testing.T) {
	assert.True(t, Revenue(nil).IsZero())
}

func TestToday(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, loc)
	yesterday := now.AddDate(0, 0, -1)

	logs := []model.LogEntry{
		sale(now.Add(-time.Hour), coffee, "Coffee", -3, "10"),
		sale(now.Add(-2*time.Hour), tea, "Tea", 1, "5"),
		sale(yesterday, coffee, "Coffee", -50, "10"),
		{Timestamp: now.Add(-30 * time.Minute), Type: model.LogCreate, Items: []model.LogItem{{ProductID: milk, QuantityChange: 12, Price: decimal.NewFromInt(2)}}},
		{Timestamp: now, Type: model.LogTransfer, Items: []model.LogItem{{ProductID: milk, QuantityChange: 4, Price: decimal.NewFromInt(2)}}},
	}

	got := Today(logs, now, loc)
	assert.Equal(t, 3, got.ItemsSold)
	assert.Equal(t, 1, got.ItemsReturned)
	assert.Equal(t, 2, got.Transactions)
	assert.Equal(t, 12, got.NewStock)
	assert.True(t, decimal.NewFromInt(30).Equal(got.Revenue))
	assert.True(t, decimal.NewFromInt(5).Equal(got.Refunds))
	assert.True(t, decimal.NewFromInt(25).Equal(got.NetRevenue))
}

func TestToday_CountsCartsNotLines(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	cart := uuid.New()

	a := sale(now, coffee, "Coffee", -1, "10")
	b := sale(now, tea, "Tea", -2, "5")
	c := sale(now, milk, "Milk", -1, "3")
	a.BatchID, b.BatchID, c.BatchID = &cart, &cart, &cart
	other := uuid.New()
	d := sale(now, coffee, "Coffee", -1, "10")
	d.BatchID = &other

	got := Today([]model.LogEntry{a, b, c, d}, now, time.UTC)
	assert.Equal(t, 2, got.Transactions)
	assert.Equal(t, 5, got.ItemsSold)
}

func TestToday_UsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	// 23:30 UTC on the 9th is 06:30 on the 10th in WIB.
	ts := time.Date(2024, 5, 9, 23, 30, 0, 0, time.UTC)
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, loc)

	got := Today([]model.LogEntry{sale(ts, coffee, "Coffee", -1, "4")}, now, loc)
	assert.Equal(t, 1, got.ItemsSold)

	gotUTC := Today([]model.LogEntry{sale(ts, coffee, "Coffee", -1, "4")}, now, time.UTC)
	assert.Equal(t, 0, gotUTC.ItemsSold)
}

func TestTopSelling(t *testing.T) {
	now := time.Now()
	logs := []model.LogEntry{
		sale(now, coffee, "Coffee", -2, "10"),
		sale(now, tea, "Tea", -5, "4"),
		sale(now, coffee, "Coffee", -3, "10"),
		sale(now, milk, "Milk", -5, "2"),
		sale(now, tea, "Tea", 2, "4"),
	}

	top := TopSelling(logs, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "Coffee", top[0].ProductName)
	assert.Equal(t, 5, top[0].UnitsSold)
	assert.True(t, decimal.NewFromInt(50).Equal(top[0].Revenue))
	// Milk and Tea tie at 5 with Coffee; name order decides.
	assert.Equal(t, "Milk", top[1].ProductName)

	all := TopSelling(logs, 0)
	assert.Len(t, all, 3)
	assert.Equal(t, "Tea", all[2].ProductName)
}

func TestTopSelling_FallsBackToNameWithoutID(t *testing.T) {
	now := time.Now()
	logs := []model.LogEntry{
		sale(now, uuid.Nil, "Loose Candy", -1, "1"),
		sale(now, uuid.Nil, "Loose Candy", -4, "1"),
	}

	top := TopSelling(logs, 5)
	require.Len(t, top, 1)
	assert.Equal(t, 5, top[0].UnitsSold)
}

func TestExpiring(t *testing.T) {
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	at := func(days int) *time.Time {
		v := now.AddDate(0, 0, days)
		return &v
	}
	products := []model.Product{
		{Name: "Yogurt", ExpiryDate: at(5), ShopQuantity: 3},
		{Name: "Bread", ExpiryDate: at(-1), StockQuantity: 2},
		{Name: "Honey", ExpiryDate: at(365), ShopQuantity: 9},
		{Name: "Soap", ShopQuantity: 9},
		{Name: "Cheese", ExpiryDate: at(2)},
	}

	got := Expiring(products, now, 30*24*time.Hour)
	require.Len(t, got, 2)
	assert.Equal(t, "Bread", got[0].Name)
	assert.True(t, got[0].Expired)
	assert.Equal(t, "Yogurt", got[1].Name)
	assert.Equal(t, 5, got[1].DaysLeft)
	assert.False(t, got[1].Expired)
}

func TestStockMovement(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 3, 23, 59, 59, 0, time.UTC)
	logs := []model.LogEntry{
		{Timestamp: start.Add(time.Hour), Type: model.LogCreate, Items: []model.LogItem{{QuantityChange: 20}}},
		sale(start.Add(26*time.Hour), coffee, "Coffee", -4, "1"),
		{Timestamp: start.Add(27 * time.Hour), Type: model.LogTransfer, Items: []model.LogItem{{QuantityChange: 6}}},
		{Timestamp: start.Add(50 * time.Hour), Type: model.LogDelete, Items: []model.LogItem{{QuantityChange: -7}}},
		sale(start.AddDate(0, 0, 10), coffee, "Coffee", -100, "1"),
	}

	points := StockMovement(logs, start, end, time.UTC)
	require.Len(t, points, 3)
	assert.Equal(t, MovementPoint{Date: "2024-05-01", Inbound: 20}, points[0])
	assert.Equal(t, MovementPoint{Date: "2024-05-02", Outbound: 4}, points[1])
	assert.Equal(t, MovementPoint{Date: "2024-05-03", Outbound: 7}, points[2])
}

func TestAccounting(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	logs := []model.LogEntry{
		sale(start.Add(time.Hour), coffee, "Coffee", -10, "10"),
		sale(start.Add(2*time.Hour), coffee, "Coffee", 1, "10"),
		sale(end.Add(time.Hour), coffee, "Coffee", -10, "10"),
	}
	expenses := []model.Expense{
		{Date: start.AddDate(0, 0, 3), Category: "rent", Amount: decimal.NewFromInt(40)},
		{Date: start.AddDate(0, 0, 4), Category: "utilities", Amount: decimal.NewFromInt(15)},
		{Date: start.AddDate(0, 0, 5), Category: "utilities", Amount: decimal.NewFromInt(5)},
		{Date: start.AddDate(0, 0, -1), Category: "rent", Amount: decimal.NewFromInt(999)},
	}

	got := Accounting(logs, expenses, start, end)
	assert.True(t, decimal.NewFromInt(100).Equal(got.Revenue))
	assert.True(t, decimal.NewFromInt(10).Equal(got.Refunds))
	assert.True(t, decimal.NewFromInt(90).Equal(got.NetRevenue))
	assert.True(t, decimal.NewFromInt(60).Equal(got.Expenses))
	assert.True(t, decimal.NewFromInt(20).Equal(got.ExpensesByCategory["utilities"]))
	assert.True(t, decimal.NewFromInt(30).Equal(got.Profit))
}

func TestCatalog(t *testing.T) {
	products := []model.Product{
		{Name: "Coffee", Price: decimal.NewFromInt(10), StockQuantity: 20, ShopQuantity: 5},
		{Name: "Tea", Price: decimal.RequireFromString("2.5"), StockQuantity: 2, ShopQuantity: 2},
		{Name: "Milk", Price: decimal.NewFromInt(1)},
	}

	got := Catalog(products, 10)
	assert.Equal(t, 3, got.TotalProducts)
	assert.Equal(t, 2, got.LowStockCount)
	assert.Equal(t, 22, got.StockUnits)
	assert.Equal(t, 7, got.ShopUnits)
	assert.True(t, decimal.NewFromInt(260).Equal(got.TotalValuation))
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	start, end := DayBounds(time.Date(2024, 5, 10, 2, 0, 0, 0, time.UTC), loc)
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, loc), start)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}
