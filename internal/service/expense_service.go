package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ExpenseService interface {
	AddExpense(ctx context.Context, req *ExpenseRequest, actor model.Actor) (*model.Expense, error)
	UpdateExpense(ctx context.Context, id uuid.UUID, req *ExpenseRequest, actor model.Actor) (*model.Expense, error)
	DeleteExpense(ctx context.Context, id uuid.UUID, actor model.Actor) error
	ListExpenses(ctx context.Context, start, end time.Time) ([]model.Expense, error)
}

type ExpenseRequest struct {
	Date        time.Time       `json:"date"`
	Category    string          `json:"category" validate:"required,max=100"`
	Description string          `json:"description" validate:"max=1000"`
	Amount      decimal.Decimal `json:"amount" validate:"gte=0"`
}

func (r *ExpenseRequest) check() error {
	r.Category = strings.TrimSpace(r.Category)
	if err := validate(r); err != nil {
		return err
	}
	if r.Date.IsZero() {
		return invalid("date is required")
	}
	return nil
}

type expenseService struct {
	repo repository.ExpenseRepository
	log  zerolog.Logger
}

func NewExpenseService(repo repository.ExpenseRepository, log zerolog.Logger) ExpenseService {
	return &expenseService{repo: repo, log: log.With().Str("component", "expense").Logger()}
}

func (s *expenseService) AddExpense(ctx context.Context, req *ExpenseRequest, actor model.Actor) (*model.Expense, error) {
	if err := req.check(); err != nil {
		return nil, err
	}
	e := &model.Expense{
		Date:        req.Date.UTC(),
		Category:    req.Category,
		Description: req.Description,
		Amount:      req.Amount,
	}
	e.CreatedBy = actor.ID
	e.UpdatedBy = actor.ID
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, s.fail("add expense", err)
	}
	s.log.Info().Str("user_id", actor.ID).Str("category", e.Category).Str("amount", e.Amount.String()).Msg("expense added")
	return e, nil
}

func (s *expenseService) UpdateExpense(ctx context.Context, id uuid.UUID, req *ExpenseRequest, actor model.Actor) (*model.Expense, error) {
	if err := req.check(); err != nil {
		return nil, err
	}
	e, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("expense %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, s.fail("load expense", err)
	}
	e.Date = req.Date.UTC()
	e.Category = req.Category
	e.Description = req.Description
	e.Amount = req.Amount
	e.UpdatedBy = actor.ID
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, s.fail("update expense", err)
	}
	return e, nil
}

func (s *expenseService) DeleteExpense(ctx context.Context, id uuid.UUID, actor model.Actor) error {
	err := s.repo.Delete(ctx, id, actor.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("expense %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return s.fail("delete expense", err)
	}
	return nil
}

// ListExpenses returns expenses dated in [start, end).
func (s *expenseService) ListExpenses(ctx context.Context, start, end time.Time) ([]model.Expense, error) {
	if !end.After(start) {
		return nil, invalid("end must be after start")
	}
	list, err := s.repo.FindBetween(ctx, start, end)
	if err != nil {
		return nil, s.fail("list expenses", err)
	}
	return list, nil
}

func (s *expenseService) fail(op string, err error) error {
	s.log.Error().Err(err).Str("op", op).Msg("store error")
	return unavailable(op, err)
}
