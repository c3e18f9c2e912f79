package ledger

import (
	"context"

	"github.com/thechaz2/budget-app/internal/core"
)

// Ports consumed by the HTTP layer.
type (
	MonthService interface {
		// ListMonths returns all months ordered by ym ascending.
		ListMonths(ctx context.Context) ([]core.Month, error)
		// EnsureMonth returns the month for ym, creating it with the
		// carried-forward opening balance when it does not exist yet.
		EnsureMonth(ctx context.Context, ym string) (core.Month, error)
		// DeleteMonth removes a month and everything it owns.
		// Returns ErrMonthNotFound for an unknown ym.
		DeleteMonth(ctx context.Context, ym string) error
		// UpdateClosingBalance overwrites the closing balance of an
		// existing month. Unknown ym is silently a no-op.
		UpdateClosingBalance(ctx context.Context, ym string, value float64) error
	}

	BillService interface {
		ListBills(ctx context.Context, ym string) ([]core.Bill, error)
		// AddBill ensures the month exists, then inserts the bill into it.
		AddBill(ctx context.Context, ym string, b core.Bill) (core.Bill, error)
		// UpdateBill overwrites a bill by id. Unknown id is silently a no-op.
		UpdateBill(ctx context.Context, b core.Bill) (core.Bill, error)
		// DeleteBill removes a bill by id, delete-if-exists semantics.
		DeleteBill(ctx context.Context, id int64) error
	}

	MoneyInService interface {
		ListMoneyIns(ctx context.Context, ym string) ([]core.MoneyIn, error)
		AddMoneyIn(ctx context.Context, ym string, mi core.MoneyIn) (core.MoneyIn, error)
		UpdateMoneyIn(ctx context.Context, mi core.MoneyIn) (core.MoneyIn, error)
		DeleteMoneyIn(ctx context.Context, id int64) error
	}
)
