package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/thechaz2/budget-app/internal/core"
	"github.com/thechaz2/budget-app/internal/events"
	"github.com/thechaz2/budget-app/internal/storage"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []events.ChangeEvent
}

func (p *capturePublisher) PublishChange(ctx context.Context, e events.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func newTestService(t *testing.T) (*Service, *capturePublisher) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "budget.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	pub := &capturePublisher{}
	return NewService(store, pub), pub
}

func TestEnsureMonthCarriesForwardClosingBalance(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	jan, err := svc.EnsureMonth(ctx, "2025-01")
	if err != nil {
		t.Fatalf("ensure jan: %v", err)
	}
	if jan.OpeningBalance != 0 {
		t.Fatalf("first month must open at zero, got %v", jan.OpeningBalance)
	}

	if err := svc.UpdateClosingBalance(ctx, "2025-01", 412.30); err != nil {
		t.Fatalf("update closing: %v", err)
	}

	feb, err := svc.EnsureMonth(ctx, "2025-02")
	if err != nil {
		t.Fatalf("ensure feb: %v", err)
	}
	if feb.OpeningBalance != 412.30 {
		t.Fatalf("feb must open at jan's closing 412.30, got %v", feb.OpeningBalance)
	}
	if feb.ClosingBalance != 412.30 {
		t.Fatalf("new month closes where it opens, got %v", feb.ClosingBalance)
	}
}

func TestEnsureMonthAcceptsUnpaddedKeys(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.EnsureMonth(ctx, "2024-7")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if first.YM != "2024-07" {
		t.Fatalf("expected canonical ym 2024-07, got %q", first.YM)
	}

	second, err := svc.EnsureMonth(ctx, "2024-07")
	if err != nil {
		t.Fatalf("ensure padded: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("2024-7 and 2024-07 must address the same month, got ids %d and %d", first.ID, second.ID)
	}
}

func TestEnsureMonthIsIdempotent(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	first, err := svc.EnsureMonth(ctx, "2025-06")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	again, err := svc.EnsureMonth(ctx, "2025-06")
	if err != nil {
		t.Fatalf("re-ensure: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("expected same month row, got ids %d and %d", first.ID, again.ID)
	}
	if pub.count() != 1 {
		t.Fatalf("expected exactly one created event, got %d", pub.count())
	}
}

func TestEnsureMonthRejectsMalformedKey(t *testing.T) {
	svc, _ := newTestService(t)
	for _, ym := range []string{"", "2025", "2025-13", "jan-2025", "2025-07-01"} {
		if _, err := svc.EnsureMonth(context.Background(), ym); !errors.Is(err, core.ErrInvalidYearMonth) {
			t.Errorf("EnsureMonth(%q): expected ErrInvalidYearMonth, got %v", ym, err)
		}
	}
}

func TestClosingBalanceUpdateDoesNotRewriteExistingSuccessor(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.EnsureMonth(ctx, "2025-01"); err != nil {
		t.Fatalf("ensure jan: %v", err)
	}
	if err := svc.UpdateClosingBalance(ctx, "2025-01", 100); err != nil {
		t.Fatalf("set jan closing: %v", err)
	}
	feb, err := svc.EnsureMonth(ctx, "2025-02")
	if err != nil {
		t.Fatalf("ensure feb: %v", err)
	}
	if feb.OpeningBalance != 100 {
		t.Fatalf("feb opens at 100, got %v", feb.OpeningBalance)
	}

	// Revising January after February exists must leave February alone.
	if err := svc.UpdateClosingBalance(ctx, "2025-01", 999); err != nil {
		t.Fatalf("revise jan closing: %v", err)
	}
	feb, err = svc.EnsureMonth(ctx, "2025-02")
	if err != nil {
		t.Fatalf("re-ensure feb: %v", err)
	}
	if feb.OpeningBalance != 100 {
		t.Fatalf("feb opening must stay 100 after jan revision, got %v", feb.OpeningBalance)
	}
}

func TestNegativeClosingBalanceCarriesForward(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddBill(ctx, "2025-01", core.Bill{Name: "Rent", Amount: 1200}); err != nil {
		t.Fatalf("add rent: %v", err)
	}
	// The user closes January in the red.
	if err := svc.UpdateClosingBalance(ctx, "2025-01", -1200); err != nil {
		t.Fatalf("close january: %v", err)
	}

	feb, err := svc.EnsureMonth(ctx, "2025-02")
	if err != nil {
		t.Fatalf("ensure feb: %v", err)
	}
	if feb.OpeningBalance != -1200 {
		t.Fatalf("feb must open at -1200, got %v", feb.OpeningBalance)
	}
}

func TestUpdateClosingBalanceUnknownMonthIsNoOp(t *testing.T) {
	svc, pub := newTestService(t)
	if err := svc.UpdateClosingBalance(context.Background(), "2030-01", 50); err != nil {
		t.Fatalf("expected silent no-op, got %v", err)
	}
	if pub.count() != 0 {
		t.Fatalf("no-op must not publish events, got %d", pub.count())
	}
}

func TestAddBillCreatesMonthOnDemand(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	bill, err := svc.AddBill(ctx, "2025-09", core.Bill{Name: "Rent", Amount: 1200, Date: "2025-09-01"})
	if err != nil {
		t.Fatalf("add bill: %v", err)
	}
	if bill.ID == 0 || bill.MonthID == 0 {
		t.Fatalf("expected assigned ids, got %+v", bill)
	}

	months, err := svc.ListMonths(ctx)
	if err != nil {
		t.Fatalf("list months: %v", err)
	}
	if len(months) != 1 || months[0].YM != "2025-09" {
		t.Fatalf("expected month created implicitly, got %+v", months)
	}

	bills, err := svc.ListBills(ctx, "2025-9")
	if err != nil {
		t.Fatalf("list bills: %v", err)
	}
	if len(bills) != 1 || bills[0].Name != "Rent" || bills[0].Amount != 1200 {
		t.Fatalf("unexpected bills: %+v", bills)
	}
}

func TestAddBillValidates(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.AddBill(context.Background(), "2025-09", core.Bill{Name: "  "}); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestAddMoneyInCreatesMonthOnDemand(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mi, err := svc.AddMoneyIn(ctx, "2025-10", core.MoneyIn{Source: "Salary", Amount: 3000})
	if err != nil {
		t.Fatalf("add money-in: %v", err)
	}
	if mi.ID == 0 {
		t.Fatalf("expected assigned id, got %+v", mi)
	}

	moneyIns, err := svc.ListMoneyIns(ctx, "2025-10")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(moneyIns) != 1 || moneyIns[0].Source != "Salary" {
		t.Fatalf("unexpected money-ins: %+v", moneyIns)
	}
}

func TestDeleteMonthRemovesOwnedEntries(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddBill(ctx, "2025-11", core.Bill{Name: "Power", Amount: 60}); err != nil {
		t.Fatalf("add bill: %v", err)
	}
	if _, err := svc.AddMoneyIn(ctx, "2025-11", core.MoneyIn{Source: "Salary", Amount: 3000}); err != nil {
		t.Fatalf("add money-in: %v", err)
	}

	if err := svc.DeleteMonth(ctx, "2025-11"); err != nil {
		t.Fatalf("delete month: %v", err)
	}

	months, err := svc.ListMonths(ctx)
	if err != nil {
		t.Fatalf("list months: %v", err)
	}
	if len(months) != 0 {
		t.Fatalf("expected no months, got %+v", months)
	}
}

func TestDeleteMonthUnknown(t *testing.T) {
	svc, _ := newTestService(t)
	if err := svc.DeleteMonth(context.Background(), "2030-01"); !errors.Is(err, ErrMonthNotFound) {
		t.Fatalf("expected ErrMonthNotFound, got %v", err)
	}
}

func TestUpdateAndDeleteByUnknownIDAreSilent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.UpdateBill(ctx, core.Bill{ID: 404, Name: "Ghost", Amount: 1}); err != nil {
		t.Fatalf("update unknown bill: %v", err)
	}
	if _, err := svc.UpdateMoneyIn(ctx, core.MoneyIn{ID: 404, Source: "Ghost", Amount: 1}); err != nil {
		t.Fatalf("update unknown money-in: %v", err)
	}
	if err := svc.DeleteBill(ctx, 404); err != nil {
		t.Fatalf("delete unknown bill: %v", err)
	}
	if err := svc.DeleteMoneyIn(ctx, 404); err != nil {
		t.Fatalf("delete unknown money-in: %v", err)
	}
}

func TestConcurrentEnsureMonthCreatesOneRow(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.EnsureMonth(ctx, "2025-12"); err != nil {
				t.Errorf("ensure: %v", err)
			}
		}()
	}
	wg.Wait()

	months, err := svc.ListMonths(ctx)
	if err != nil {
		t.Fatalf("list months: %v", err)
	}
	if len(months) != 1 {
		t.Fatalf("expected a single month row, got %d", len(months))
	}
	if pub.count() != 1 {
		t.Fatalf("expected one created event, got %d", pub.count())
	}
}
