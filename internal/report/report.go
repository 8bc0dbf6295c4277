// Package report computes read-only projections over the audit log and the
// catalog. Every function is pure and recomputes from its inputs; nothing is
// cached or maintained incrementally.
package report

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-inventory-pos/internal/model"
)

// DayBounds returns [start, end) of the calendar day containing now in loc.
func DayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

func within(ts, start, end time.Time) bool {
	return !ts.Before(start) && ts.Before(end)
}

type TodaySummary struct {
	ItemsSold     int             `json:"items_sold"`
	ItemsReturned int             `json:"items_returned"`
	Revenue       decimal.Decimal `json:"revenue"`
	Refunds       decimal.Decimal `json:"refunds"`
	NetRevenue    decimal.Decimal `json:"net_revenue"`
	// Transactions counts carts, not log entries: entries sharing a batch id
	// are one cart.
	Transactions int `json:"transactions"`
	NewStock     int `json:"new_stock"`
}

// Today summarises TRANSACTION and CREATE entries stamped on now's day.
func Today(logs []model.LogEntry, now time.Time, loc *time.Location) TodaySummary {
	start, end := DayBounds(now, loc)
	sum := TodaySummary{Revenue: decimal.Zero, Refunds: decimal.Zero}
	carts := make(map[uuid.UUID]bool)

	for _, e := range logs {
		if !within(e.Timestamp, start, end) {
			continue
		}
		switch e.Type {
		case model.LogTransaction:
			if e.BatchID == nil {
				sum.Transactions++
			} else if !carts[*e.BatchID] {
				carts[*e.BatchID] = true
				sum.Transactions++
			}
			for _, it := range e.Items {
				amount := it.Price.Mul(decimal.NewFromInt(int64(abs(it.QuantityChange))))
				if it.QuantityChange < 0 {
					sum.ItemsSold += -it.QuantityChange
					sum.Revenue = sum.Revenue.Add(amount)
				} else {
					sum.ItemsReturned += it.QuantityChange
					sum.Refunds = sum.Refunds.Add(amount)
				}
			}
		case model.LogCreate:
			for _, it := range e.Items {
				sum.NewStock += it.QuantityChange
			}
		}
	}
	sum.NetRevenue = sum.Revenue.Sub(sum.Refunds)
	return sum
}

// Revenue is the sum of |quantity_change| * price over TRANSACTION items that
// decreased inventory.
func Revenue(logs []model.LogEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range logs {
		if e.Type != model.LogTransaction {
			continue
		}
		for _, it := range e.Items {
			if it.QuantityChange < 0 {
				total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(-it.QuantityChange))))
			}
		}
	}
	return total
}

type ProductSales struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitsSold   int             `json:"units_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// TopSelling groups sold units by product and returns the n best sellers,
// ties broken by name. n <= 0 returns every product that sold.
func TopSelling(logs []model.LogEntry, n int) []ProductSales {
	byKey := make(map[string]*ProductSales)
	var order []string

	for _, e := range logs {
		if e.Type != model.LogTransaction {
			continue
		}
		for _, it := range e.Items {
			if it.QuantityChange >= 0 {
				continue
			}
			key := it.ProductName
			if it.ProductID != uuid.Nil {
				key = it.ProductID.String()
			}
			ps, ok := byKey[key]
			if !ok {
				ps = &ProductSales{ProductID: it.ProductID, ProductName: it.ProductName, Revenue: decimal.Zero}
				byKey[key] = ps
				order = append(order, key)
			}
			units := -it.QuantityChange
			ps.UnitsSold += units
			ps.Revenue = ps.Revenue.Add(it.Price.Mul(decimal.NewFromInt(int64(units))))
			// keep the most recent name in case the product was renamed
			ps.ProductName = it.ProductName
		}
	}

	out := make([]ProductSales, 0, len(order))
	for _, k := range order {
		out = append(out, *byKey[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UnitsSold != out[j].UnitsSold {
			return out[i].UnitsSold > out[j].UnitsSold
		}
		return out[i].ProductName < out[j].ProductName
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

type ExpiringProduct struct {
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name"`
	ExpiryDate time.Time `json:"expiry_date"`
	DaysLeft   int       `json:"days_left"`
	Quantity   int       `json:"quantity"`
	Expired    bool      `json:"expired"`
}

// Expiring lists products already expired or expiring before now+window,
// soonest first. Products with nothing left in either pool are skipped.
func Expiring(products []model.Product, now time.Time, window time.Duration) []ExpiringProduct {
	limit := now.Add(window)
	var out []ExpiringProduct
	for i := range products {
		p := &products[i]
		if p.ExpiryDate == nil || p.TotalQuantity() == 0 || p.ExpiryDate.After(limit) {
			continue
		}
		left := p.ExpiryDate.Sub(now)
		out = append(out, ExpiringProduct{
			ProductID:  p.ID,
			Name:       p.Name,
			ExpiryDate: *p.ExpiryDate,
			DaysLeft:   int(left.Hours() / 24),
			Quantity:   p.TotalQuantity(),
			Expired:    !p.ExpiryDate.After(now),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ExpiryDate.Before(out[j].ExpiryDate) })
	return out
}

type MovementPoint struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// StockMovement buckets quantity changes per calendar day in loc over
// [start, end]. Transfers only move units between pools and are left out.
func StockMovement(logs []model.LogEntry, start, end time.Time, loc *time.Location) []MovementPoint {
	if loc == nil {
		loc = time.UTC
	}
	first, _ := DayBounds(start, loc)
	_, last := DayBounds(end, loc)

	var points []MovementPoint
	index := make(map[string]int)
	for day := first; day.Before(last); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		index[key] = len(points)
		points = append(points, MovementPoint{Date: key})
	}

	for _, e := range logs {
		if e.Type == model.LogTransfer || e.Timestamp.Before(start) || e.Timestamp.After(end) {
			continue
		}
		i, ok := index[e.Timestamp.In(loc).Format("2006-01-02")]
		if !ok {
			continue
		}
		for _, it := range e.Items {
			if it.QuantityChange > 0 {
				points[i].Inbound += it.QuantityChange
			} else {
				points[i].Outbound += -it.QuantityChange
			}
		}
	}
	return points
}

type AccountingSummary struct {
	Start              time.Time                  `json:"start"`
	End                time.Time                  `json:"end"`
	Revenue            decimal.Decimal            `json:"revenue"`
	Refunds            decimal.Decimal            `json:"refunds"`
	NetRevenue         decimal.Decimal            `json:"net_revenue"`
	Expenses           decimal.Decimal            `json:"expenses"`
	ExpensesByCategory map[string]decimal.Decimal `json:"expenses_by_category"`
	Profit             decimal.Decimal            `json:"profit"`
}

// Accounting combines sales from the log with expenses dated in [start, end).
func Accounting(logs []model.LogEntry, expenses []model.Expense, start, end time.Time) AccountingSummary {
	sum := AccountingSummary{
		Start:              start,
		End:                end,
		Revenue:            decimal.Zero,
		Refunds:            decimal.Zero,
		Expenses:           decimal.Zero,
		ExpensesByCategory: make(map[string]decimal.Decimal),
	}
	for _, e := range logs {
		if e.Type != model.LogTransaction || !within(e.Timestamp, start, end) {
			continue
		}
		for _, it := range e.Items {
			amount := it.Price.Mul(decimal.NewFromInt(int64(abs(it.QuantityChange))))
			if it.QuantityChange < 0 {
				sum.Revenue = sum.Revenue.Add(amount)
			} else {
				sum.Refunds = sum.Refunds.Add(amount)
			}
		}
	}
	for _, x := range expenses {
		if !within(x.Date, start, end) {
			continue
		}
		sum.Expenses = sum.Expenses.Add(x.Amount)
		sum.ExpensesByCategory[x.Category] = sum.ExpensesByCategory[x.Category].Add(x.Amount)
	}
	sum.NetRevenue = sum.Revenue.Sub(sum.Refunds)
	sum.Profit = sum.NetRevenue.Sub(sum.Expenses)
	return sum
}

type CatalogSummary struct {
	TotalProducts  int             `json:"total_products"`
	LowStockCount  int             `json:"low_stock_count"`
	StockUnits     int             `json:"stock_units"`
	ShopUnits      int             `json:"shop_units"`
	TotalValuation decimal.Decimal `json:"total_valuation"`
}

// Catalog counts products whose combined quantity is under lowStock as low.
func Catalog(products []model.Product, lowStock int) CatalogSummary {
	sum := CatalogSummary{TotalValuation: decimal.Zero}
	for i := range products {
		p := &products[i]
		sum.TotalProducts++
		sum.StockUnits += p.StockQuantity
		sum.ShopUnits += p.ShopQuantity
		if p.TotalQuantity() < lowStock {
			sum.LowStockCount++
		}
		sum.TotalValuation = sum.TotalValuation.Add(p.Price.Mul(decimal.NewFromInt(int64(p.TotalQuantity()))))
	}
	return sum
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
