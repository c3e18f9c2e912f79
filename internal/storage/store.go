package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/thechaz2/budget-app/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// Store is the SQLite-backed persistent store for months, bills and
// money-ins. Month deletion cascades to owned rows via foreign keys,
// which are enabled on every connection through the DSN pragma.
type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	dsn := "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetMonth looks up a month by its canonical ym key.
func (s *Store) GetMonth(ctx context.Context, ym string) (core.Month, error) {
	var m core.Month
	err := s.db.QueryRowContext(ctx,
		`SELECT id, ym, opening_balance, closing_balance FROM months WHERE ym = ?`, ym).
		Scan(&m.ID, &m.YM, &m.OpeningBalance, &m.ClosingBalance)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Month{}, ErrNotFound
	}
	if err != nil {
		return core.Month{}, fmt.Errorf("get month %s: %w", ym, err)
	}
	return m, nil
}

// CreateMonthCarryForward creates the month row for ym unless it already
// exists, seeding both balances from prevYM's closing balance (zero when
// prevYM is absent). The existence check and insert share one transaction.
// The second return value reports whether a row was created.
func (s *Store) CreateMonthCarryForward(ctx context.Context, ym, prevYM string) (core.Month, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Month{}, false, fmt.Errorf("begin ensure month: %w", err)
	}
	defer tx.Rollback()

	var m core.Month
	err = tx.QueryRowContext(ctx,
		`SELECT id, ym, opening_balance, closing_balance FROM months WHERE ym = ?`, ym).
		Scan(&m.ID, &m.YM, &m.OpeningBalance, &m.ClosingBalance)
	if err == nil {
		return m, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return core.Month{}, false, fmt.Errorf("check month %s: %w", ym, err)
	}

	var prevBalance float64
	err = tx.QueryRowContext(ctx,
		`SELECT closing_balance FROM months WHERE ym = ?`, prevYM).Scan(&prevBalance)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return core.Month{}, false, fmt.Errorf("look up previous month %s: %w", prevYM, err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO months (ym, opening_balance, closing_balance) VALUES (?, ?, ?)`,
		ym, prevBalance, prevBalance)
	if err != nil {
		return core.Month{}, false, fmt.Errorf("insert month %s: %w", ym, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Month{}, false, fmt.Errorf("month insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Month{}, false, fmt.Errorf("commit ensure month: %w", err)
	}

	slog.InfoContext(ctx, "Month created",
		"id", id,
		"ym", ym,
		"opening_balance", prevBalance)

	return core.Month{ID: id, YM: ym, OpeningBalance: prevBalance, ClosingBalance: prevBalance}, true, nil
}

// ListMonths returns all months ordered by ym ascending.
func (s *Store) ListMonths(ctx context.Context) ([]core.Month, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ym, opening_balance, closing_balance FROM months ORDER BY ym`)
	if err != nil {
		return nil, fmt.Errorf("list months: %w", err)
	}
	defer rows.Close()

	months := []core.Month{}
	for rows.Next() {
		var m core.Month
		if err := rows.Scan(&m.ID, &m.YM, &m.OpeningBalance, &m.ClosingBalance); err != nil {
			return nil, fmt.Errorf("scan month: %w", err)
		}
		months = append(months, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate months: %w", err)
	}
	return months, nil
}

// DeleteMonth removes a month row by id. Owned bills and money-ins go with
// it through the ON DELETE CASCADE constraint.
func (s *Store) DeleteMonth(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM months WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete month %d: %w", id, err)
	}
	slog.InfoContext(ctx, "Month deleted", "id", id)
	return nil
}

// SetClosingBalance overwrites the closing balance of an existing month.
// Returns the number of affected rows; zero means the ym is unknown.
func (s *Store) SetClosingBalance(ctx context.Context, ym string, value float64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE months SET closing_balance = ? WHERE ym = ?`, value, ym)
	if err != nil {
		return 0, fmt.Errorf("update closing balance %s: %w", ym, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("closing balance rows affected: %w", err)
	}
	return affected, nil
}

func (s *Store) InsertBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO bills (month_id, name, amount, date, quarterly) VALUES (?, ?, ?, ?, ?)`,
		b.MonthID, b.Name, b.Amount, b.Date, boolToInt(b.Quarterly))
	if err != nil {
		return core.Bill{}, fmt.Errorf("insert bill: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Bill{}, fmt.Errorf("bill insert id: %w", err)
	}
	b.ID = id

	slog.InfoContext(ctx, "Bill saved",
		"id", b.ID,
		"name", b.Name,
		"amount", b.Amount,
		"quarterly", b.Quarterly)

	return b, nil
}

// UpdateBill overwrites the mutable fields of a bill by id. An unknown id
// affects zero rows and is not an error.
func (s *Store) UpdateBill(ctx context.Context, b core.Bill) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE bills SET name = ?, amount = ?, date = ?, quarterly = ? WHERE id = ?`,
		b.Name, b.Amount, b.Date, boolToInt(b.Quarterly), b.ID)
	if err != nil {
		return fmt.Errorf("update bill %d: %w", b.ID, err)
	}
	return nil
}

// DeleteBill removes a bill by id, delete-if-exists semantics.
func (s *Store) DeleteBill(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM bills WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete bill %d: %w", id, err)
	}
	return nil
}

// ListBills returns the bills owned by the month with the given ym,
// ordered by id.
func (s *Store) ListBills(ctx context.Context, ym string) ([]core.Bill, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.month_id, b.name, b.amount, b.date, b.quarterly
		FROM bills b
		JOIN months m ON m.id = b.month_id
		WHERE m.ym = ?
		ORDER BY b.id`, ym)
	if err != nil {
		return nil, fmt.Errorf("list bills for %s: %w", ym, err)
	}
	defer rows.Close()

	bills := []core.Bill{}
	for rows.Next() {
		var b core.Bill
		var quarterly int64
		if err := rows.Scan(&b.ID, &b.MonthID, &b.Name, &b.Amount, &b.Date, &quarterly); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		b.Quarterly = quarterly != 0
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bills: %w", err)
	}
	return bills, nil
}

func (s *Store) InsertMoneyIn(ctx context.Context, mi core.MoneyIn) (core.MoneyIn, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO money_ins (month_id, source, amount, date) VALUES (?, ?, ?, ?)`,
		mi.MonthID, mi.Source, mi.Amount, mi.Date)
	if err != nil {
		return core.MoneyIn{}, fmt.Errorf("insert money-in: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.MoneyIn{}, fmt.Errorf("money-in insert id: %w", err)
	}
	mi.ID = id

	slog.InfoContext(ctx, "Money-in saved",
		"id", mi.ID,
		"source", mi.Source,
		"amount", mi.Amount)

	return mi, nil
}

func (s *Store) UpdateMoneyIn(ctx context.Context, mi core.MoneyIn) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE money_ins SET source = ?, amount = ?, date = ? WHERE id = ?`,
		mi.Source, mi.Amount, mi.Date, mi.ID)
	if err != nil {
		return fmt.Errorf("update money-in %d: %w", mi.ID, err)
	}
	return nil
}

func (s *Store) DeleteMoneyIn(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM money_ins WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete money-in %d: %w", id, err)
	}
	return nil
}

func (s *Store) ListMoneyIns(ctx context.Context, ym string) ([]core.MoneyIn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT mi.id, mi.month_id, mi.source, mi.amount, mi.date
		FROM money_ins mi
		JOIN months m ON m.id = mi.month_id
		WHERE m.ym = ?
		ORDER BY mi.id`, ym)
	if err != nil {
		return nil, fmt.Errorf("list money-ins for %s: %w", ym, err)
	}
	defer rows.Close()

	moneyIns := []core.MoneyIn{}
	for rows.Next() {
		var mi core.MoneyIn
		if err := rows.Scan(&mi.ID, &mi.MonthID, &mi.Source, &mi.Amount, &mi.Date); err != nil {
			return nil, fmt.Errorf("scan money-in: %w", err)
		}
		moneyIns = append(moneyIns, mi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate money-ins: %w", err)
	}
	return moneyIns, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
