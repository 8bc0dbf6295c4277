package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-inventory-pos/internal/clock"
	"go-inventory-pos/internal/events"
	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/repository"
	"go-inventory-pos/internal/service"
	"go-inventory-pos/internal/testutil"
)

var cashier = model.Actor{ID: "cashier-1", Name: "Rina"}

type fixture struct {
	db       *gorm.DB
	products repository.ProductRepository
	logs     repository.LogRepository
	bus      *events.Bus
	inv      service.InventoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := &fixture{
		db:       db,
		products: repository.NewProductRepo(db),
		logs:     repository.NewLogRepo(db),
		bus:      events.NewBus(),
	}
	f.inv = service.NewInventoryService(f.products, f.logs, clock.NewMonotonic(nil), f.bus, zerolog.Nop(),
		service.EngineOptions{TxTimeout: 5 * time.Second, MaxAttempts: 3})
	return f
}

func (f *fixture) addProduct(t *testing.T, name string, price int64, stock, shop int) *model.Product {
	t.Helper()
	p, err := f.inv.AddProduct(context.Background(), &service.ProductRequest{
		Name:          name,
		Price:         decimal.NewFromInt(price),
		StockQuantity: stock,
		ShopQuantity:  shop,
	}, cashier)
	require.NoError(t, err)
	return p
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) *model.Product {
	t.Helper()
	p, err := f.products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func (f *fixture) allLogs(t *testing.T) []model.LogEntry {
	t.Helper()
	entries, err := f.logs.FindRecent(context.Background(), 1000)
	require.NoError(t, err)
	return entries
}

func (f *fixture) logsOfType(t *testing.T, typ model.LogType) []model.LogEntry {
	t.Helper()
	var out []model.LogEntry
	for _, e := range f.allLogs(t) {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}
