package service

import (
	"fmt"

	"go-inventory-pos/internal/drawer"
	"go-inventory-pos/internal/events"
	"go-inventory-pos/internal/model"

	"github.com/shopspring/decimal"
)

// DrawerService drives a client-held drawer session one transition at a
// time. It keeps nothing between calls; each call restores the session from
// the state the client sent and returns the next state.
type DrawerService interface {
	Start(state drawer.State, startingCash decimal.Decimal, actor model.Actor) (drawer.State, error)
	RecordSale(state drawer.State, cashDelta decimal.Decimal, actor model.Actor) (drawer.State, error)
	EndDay(state drawer.State, actor model.Actor) (drawer.State, drawer.Reconciliation, error)
	EnsureActive(state drawer.State) error
}

type drawerService struct {
	bus *events.Bus
}

func NewDrawerService(bus *events.Bus) DrawerService {
	return &drawerService{bus: bus}
}

// open restores state and wires an observer that publishes each transition.
func (s *drawerService) open(state drawer.State, action string, actor model.Actor) (*drawer.Session, func(), error) {
	sess, err := drawer.Restore(state)
	if err != nil {
		return nil, nil, err
	}
	unsubscribe := sess.Subscribe(func(next drawer.State) {
		s.bus.Publish(events.TopicDrawer, events.Event{
			Type:    "drawer_update",
			Action:  action,
			Message: fmt.Sprintf("%s: drawer %s", actor.Name, action),
			User:    events.ActorFrom(actor),
			Data:    next,
		})
	})
	return sess, unsubscribe, nil
}

func (s *drawerService) Start(state drawer.State, startingCash decimal.Decimal, actor model.Actor) (drawer.State, error) {
	sess, done, err := s.open(state, "start", actor)
	if err != nil {
		return state, err
	}
	defer done()
	if err := sess.Start(startingCash); err != nil {
		return state, err
	}
	return sess.State(), nil
}

func (s *drawerService) RecordSale(state drawer.State, cashDelta decimal.Decimal, actor model.Actor) (drawer.State, error) {
	sess, done, err := s.open(state, "sale", actor)
	if err != nil {
		return state, err
	}
	defer done()
	if err := sess.RecordSale(cashDelta); err != nil {
		return state, err
	}
	return sess.State(), nil
}

func (s *drawerService) EndDay(state drawer.State, actor model.Actor) (drawer.State, drawer.Reconciliation, error) {
	sess, done, err := s.open(state, "end_day", actor)
	if err != nil {
		return state, drawer.Reconciliation{}, err
	}
	defer done()
	rec, err := sess.EndDay()
	if err != nil {
		return state, drawer.Reconciliation{}, err
	}
	return sess.State(), rec, nil
}

// EnsureActive reports whether a cash sale could be recorded on state.
func (s *drawerService) EnsureActive(state drawer.State) error {
	sess, err := drawer.Restore(state)
	if err != nil {
		return err
	}
	if sess.State().Status != drawer.Active {
		return drawer.ErrNotActive
	}
	return nil
}
