// Package drawer tracks a cashier's cash drawer over one shift.
//
// The session is advisory: it is a running total held by the point of sale,
// not a ledger. It is never reconciled against the audit log automatically.
package drawer

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

type Status string

const (
	Inactive Status = "inactive"
	Active   Status = "active"
)

var (
	ErrAlreadyActive = errors.New("cash drawer session already active")
	ErrNotActive     = errors.New("no active cash drawer session")
	ErrNegativeFloat = errors.New("starting cash cannot be negative")
	ErrInvalidState  = errors.New("invalid cash drawer state")
)

// State is the whole session; clients hold it between requests.
type State struct {
	Status       Status          `json:"status"`
	StartingCash decimal.Decimal `json:"starting_cash"`
	CashSales    decimal.Decimal `json:"cash_sales"`
}

func (s State) ExpectedCash() decimal.Decimal {
	return s.StartingCash.Add(s.CashSales)
}

// Validate rejects states no sequence of transitions can produce.
func (s State) Validate() error {
	switch s.Status {
	case Inactive:
		if !s.StartingCash.IsZero() || !s.CashSales.IsZero() {
			return ErrInvalidState
		}
	case Active:
		if s.StartingCash.IsNegative() {
			return ErrInvalidState
		}
	default:
		return ErrInvalidState
	}
	return nil
}

// Reconciliation is surfaced exactly once, when the day is ended.
type Reconciliation struct {
	StartingCash decimal.Decimal `json:"starting_cash"`
	CashSales    decimal.Decimal `json:"cash_sales"`
	ExpectedCash decimal.Decimal `json:"expected_cash"`
}

type Session struct {
	mu        sync.Mutex
	state     State
	observers map[int]func(State)
	nextID    int
}

func NewSession() *Session {
	return &Session{
		state:     State{Status: Inactive},
		observers: make(map[int]func(State)),
	}
}

// Restore rebuilds a session from a state a client sent back.
func Restore(st State) (*Session, error) {
	if st.Status == "" {
		st.Status = Inactive
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	s := NewSession()
	s.state = st
	return s, nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe calls fn with the new state after every transition. The returned
// func removes the observer.
func (s *Session) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Session) Start(startingCash decimal.Decimal) error {
	if startingCash.IsNegative() {
		return ErrNegativeFloat
	}
	s.mu.Lock()
	if s.state.Status == Active {
		s.mu.Unlock()
		return ErrAlreadyActive
	}
	s.state = State{Status: Active, StartingCash: startingCash, CashSales: decimal.Zero}
	s.mu.Unlock()

	s.notify()
	return nil
}

// RecordSale adds the monetary total of a completed cart: positive for a
// net sale, negative for a net return.
func (s *Session) RecordSale(cashDelta decimal.Decimal) error {
	s.mu.Lock()
	if s.state.Status != Active {
		s.mu.Unlock()
		return ErrNotActive
	}
	s.state.CashSales = s.state.CashSales.Add(cashDelta)
	s.mu.Unlock()

	s.notify()
	return nil
}

// EndDay closes the shift and resets the session to inactive with zero totals.
func (s *Session) EndDay() (Reconciliation, error) {
	s.mu.Lock()
	if s.state.Status != Active {
		s.mu.Unlock()
		return Reconciliation{}, ErrNotActive
	}
	rec := Reconciliation{
		StartingCash: s.state.StartingCash,
		CashSales:    s.state.CashSales,
		ExpectedCash: s.state.ExpectedCash(),
	}
	s.state = State{Status: Inactive, StartingCash: decimal.Zero, CashSales: decimal.Zero}
	s.mu.Unlock()

	s.notify()
	return rec, nil
}

func (s *Session) notify() {
	s.mu.Lock()
	st := s.state
	fns := make([]func(State), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
