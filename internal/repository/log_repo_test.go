package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/repository"
	"go-inventory-pos/internal/testutil"
)

func TestLogRepo_AppendAndRead(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewLogRepo(testutil.NewDB(t))
	base := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	pid := uuid.New()

	var entries []*model.LogEntry
	for i := 0; i < 5; i++ {
		entries = append(entries, &model.LogEntry{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Type:      model.LogTransaction,
			UserID:    "u1",
			Items: []model.LogItem{
				{ProductID: pid, ProductName: "Coffee", QuantityChange: -(i + 1), Price: decimal.NewFromInt(10)},
			},
		})
	}
	require.NoError(t, repo.Append(ctx, nil, entries...))

	recent, err := repo.FindRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, -5, recent[0].Items[0].QuantityChange)
	assert.Equal(t, -3, recent[2].Items[0].QuantityChange)

	between, err := repo.FindBetween(ctx, base.Add(time.Minute), base.Add(3*time.Minute))
	require.NoError(t, err)
	require.Len(t, between, 2)
	assert.True(t, between[0].Timestamp.Before(between[1].Timestamp))
}

func TestLogRepo_FindByType(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewLogRepo(testutil.NewDB(t))
	now := time.Now().UTC()

	require.NoError(t, repo.Append(ctx, nil,
		&model.LogEntry{Timestamp: now, Type: model.LogCreate},
		&model.LogEntry{Timestamp: now.Add(time.Second), Type: model.LogTransfer},
	))

	got, err := repo.FindByType(ctx, model.LogTransfer, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.LogTransfer, got[0].Type)
}

func TestExpenseRepo_SoftDelete(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewExpenseRepo(testutil.NewDB(t))
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	e := &model.Expense{Date: day, Category: "rent", Amount: decimal.NewFromInt(100)}
	require.NoError(t, repo.Create(ctx, e))

	list, err := repo.FindBetween(ctx, day, day.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, e.ID, "u1"))
	list, err = repo.FindBetween(ctx, day, day.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = repo.FindByID(ctx, e.ID)
	assert.Error(t, err)
}
