package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/thechaz2/budget-app/internal/core"
	"github.com/thechaz2/budget-app/internal/events"
	"github.com/thechaz2/budget-app/internal/storage"
)

// ErrMonthNotFound is returned when an operation requires a month that
// does not exist.
var ErrMonthNotFound = errors.New("month not found")

// Service is the month ledger manager. It owns the carry-forward rule:
// a month created for the first time opens with the closing balance its
// predecessor had at that moment, and the opening balance is never
// recomputed afterwards.
type Service struct {
	store     *storage.Store
	publisher events.Publisher

	// Collapses concurrent EnsureMonth calls for the same ym so the
	// check-then-insert cannot race with itself.
	ensure singleflight.Group
}

func NewService(store *storage.Store, publisher events.Publisher) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
	}
}

var (
	_ MonthService   = (*Service)(nil)
	_ BillService    = (*Service)(nil)
	_ MoneyInService = (*Service)(nil)
)

func (s *Service) ListMonths(ctx context.Context) ([]core.Month, error) {
	return s.store.ListMonths(ctx)
}

// EnsureMonth returns the month for ym, creating it on first reference.
// A freshly created month opens and closes at the predecessor's closing
// balance, or zero when no predecessor exists. That fallback is deliberate,
// not an error.
func (s *Service) EnsureMonth(ctx context.Context, ym string) (core.Month, error) {
	key, err := core.ParseYearMonth(ym)
	if err != nil {
		return core.Month{}, err
	}

	v, err, _ := s.ensure.Do(key.String(), func() (any, error) {
		month, created, err := s.store.CreateMonthCarryForward(ctx, key.String(), key.Prev().String())
		if err != nil {
			return core.Month{}, fmt.Errorf("ensure month %s: %w", key, err)
		}
		if created {
			s.publish(ctx, events.NewChangeEvent(events.EntityMonth, events.ActionCreated, month.YM, month.ID))
		}
		return month, nil
	})
	if err != nil {
		return core.Month{}, err
	}
	return v.(core.Month), nil
}

func (s *Service) DeleteMonth(ctx context.Context, ym string) error {
	key, err := core.NormalizeYM(ym)
	if err != nil {
		return err
	}

	month, err := s.store.GetMonth(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrMonthNotFound
	}
	if err != nil {
		return err
	}

	// Cascades to the month's bills and money-ins.
	if err := s.store.DeleteMonth(ctx, month.ID); err != nil {
		return err
	}

	s.publish(ctx, events.NewChangeEvent(events.EntityMonth, events.ActionDeleted, key, month.ID))
	return nil
}

// UpdateClosingBalance overwrites the closing balance of an existing month.
// It never touches a successor's opening balance: propagation happens
// lazily, the next time a successor is first created.
func (s *Service) UpdateClosingBalance(ctx context.Context, ym string, value float64) error {
	key, err := core.NormalizeYM(ym)
	if err != nil {
		return err
	}

	affected, err := s.store.SetClosingBalance(ctx, key, value)
	if err != nil {
		return err
	}
	if affected == 0 {
		slog.WarnContext(ctx, "Closing balance update for unknown month ignored", "ym", key)
		return nil
	}

	s.publish(ctx, events.NewChangeEvent(events.EntityMonth, events.ActionUpdated, key, 0))
	return nil
}

func (s *Service) ListBills(ctx context.Context, ym string) ([]core.Bill, error) {
	key, err := core.NormalizeYM(ym)
	if err != nil {
		return nil, err
	}
	return s.store.ListBills(ctx, key)
}

func (s *Service) AddBill(ctx context.Context, ym string, b core.Bill) (core.Bill, error) {
	if err := b.Validate(); err != nil {
		return core.Bill{}, err
	}

	month, err := s.EnsureMonth(ctx, ym)
	if err != nil {
		return core.Bill{}, err
	}

	b.MonthID = month.ID
	bill, err := s.store.InsertBill(ctx, b)
	if err != nil {
		return core.Bill{}, err
	}

	s.publish(ctx, events.NewChangeEvent(events.EntityBill, events.ActionCreated, month.YM, bill.ID))
	return bill, nil
}

func (s *Service) UpdateBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	if err := b.Validate(); err != nil {
		return core.Bill{}, err
	}
	if err := s.store.UpdateBill(ctx, b); err != nil {
		return core.Bill{}, err
	}

	s.publish(ctx, events.NewChangeEvent(events.EntityBill, events.ActionUpdated, "", b.ID))
	return b, nil
}

func (s *Service) DeleteBill(ctx context.Context, id int64) error {
	if err := s.store.DeleteBill(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.NewChangeEvent(events.EntityBill, events.ActionDeleted, "", id))
	return nil
}

func (s *Service) ListMoneyIns(ctx context.Context, ym string) ([]core.MoneyIn, error) {
	key, err := core.NormalizeYM(ym)
	if err != nil {
		return nil, err
	}
	return s.store.ListMoneyIns(ctx, key)
}

func (s *Service) AddMoneyIn(ctx context.Context, ym string, mi core.MoneyIn) (core.MoneyIn, error) {
	if err := mi.Validate(); err != nil {
		return core.MoneyIn{}, err
	}

	month, err := s.EnsureMonth(ctx, ym)
	if err != nil {
		return core.MoneyIn{}, err
	}

	mi.MonthID = month.ID
	moneyIn, err := s.store.InsertMoneyIn(ctx, mi)
	if err != nil {
		return core.MoneyIn{}, err
	}

	s.publish(ctx, events.NewChangeEvent(events.EntityMoneyIn, events.ActionCreated, month.YM, moneyIn.ID))
	return moneyIn, nil
}

func (s *Service) UpdateMoneyIn(ctx context.Context, mi core.MoneyIn) (core.MoneyIn, error) {
	if err := mi.Validate(); err != nil {
		return core.MoneyIn{}, err
	}
	if err := s.store.UpdateMoneyIn(ctx, mi); err != nil {
		return core.MoneyIn{}, err
	}

	s.publish(ctx, events.NewChangeEvent(events.EntityMoneyIn, events.ActionUpdated, "", mi.ID))
	return mi, nil
}

func (s *Service) DeleteMoneyIn(ctx context.Context, id int64) error {
	if err := s.store.DeleteMoneyIn(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.NewChangeEvent(events.EntityMoneyIn, events.ActionDeleted, "", id))
	return nil
}

// publish emits a change event when a publisher is configured. A broker
// failure is logged and swallowed: the mutation already succeeded locally
// and the request must not fail because of the event stream.
func (s *Service) publish(ctx context.Context, e events.ChangeEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishChange(ctx, e); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change event",
			"error", err,
			"entity", e.Entity,
			"action", e.Action,
			"id", e.ID)
	}
}
