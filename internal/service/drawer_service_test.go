package service_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-inventory-pos/internal/drawer"
	"go-inventory-pos/internal/events"
	"go-inventory-pos/internal/service"
)

func TestDrawerService_RoundTrip(t *testing.T) {
	bus := events.NewBus()
	var published []drawer.State
	require.NoError(t, bus.Subscribe(events.TopicDrawer, func(ev events.Event) {
		published = append(published, ev.Data.(drawer.State))
	}))
	svc := service.NewDrawerService(bus)

	st, err := svc.Start(drawer.State{}, decimal.NewFromInt(100), cashier)
	require.NoError(t, err)
	st, err = svc.RecordSale(st, decimal.NewFromInt(50), cashier)
	require.NoError(t, err)
	st, err = svc.RecordSale(st, decimal.NewFromInt(-20), cashier)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(130).Equal(st.ExpectedCash()))

	st, rec, err := svc.EndDay(st, cashier)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(130).Equal(rec.ExpectedCash))
	assert.Equal(t, drawer.Inactive, st.Status)
	assert.True(t, st.StartingCash.IsZero())
	assert.True(t, st.CashSales.IsZero())

	assert.Len(t, published, 4)
}

func TestDrawerService_Errors(t *testing.T) {
	svc := service.NewDrawerService(nil)

	_, err := svc.RecordSale(drawer.State{Status: drawer.Inactive}, decimal.NewFromInt(1), cashier)
	assert.ErrorIs(t, err, drawer.ErrNotActive)

	active := drawer.State{Status: drawer.Active, StartingCash: decimal.NewFromInt(10), CashSales: decimal.Zero}
	_, err = svc.Start(active, decimal.NewFromInt(5), cashier)
	assert.ErrorIs(t, err, drawer.ErrAlreadyActive)

	_, err = svc.Start(drawer.State{}, decimal.NewFromInt(-5), cashier)
	assert.ErrorIs(t, err, drawer.ErrNegativeFloat)

	_, err = svc.Start(drawer.State{Status: "open"}, decimal.NewFromInt(5), cashier)
	assert.ErrorIs(t, err, drawer.ErrInvalidState)

	assert.ErrorIs(t, svc.EnsureActive(drawer.State{}), drawer.ErrNotActive)
	assert.NoError(t, svc.EnsureActive(active))
}
