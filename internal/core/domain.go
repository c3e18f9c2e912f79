package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type (
	// Month is one budgeting period. OpeningBalance is fixed at creation time
	// (carried from the previous month's closing balance); ClosingBalance may
	// be overwritten at any time.
	Month struct {
		ID             int64
		YM             string
		OpeningBalance float64
		ClosingBalance float64
	}

	// Bill is a recurring outgoing owned by exactly one month.
	Bill struct {
		ID        int64
		MonthID   int64
		Name      string
		Amount    float64
		Date      string
		Quarterly bool
	}

	// MoneyIn is an income entry owned by exactly one month.
	MoneyIn struct {
		ID      int64
		MonthID int64
		Source  string
		Amount  float64
		Date    string
	}

	// YearMonth is a parsed ym key.
	YearMonth struct {
		Year  int
		Month int
	}
)

var (
	ErrInvalidYearMonth = errors.New("invalid year-month key")
	ErrInvalidAmount    = errors.New("amount must be a number")
	ErrEmptyName        = errors.New("empty bill name")
	ErrEmptySource      = errors.New("empty money-in source")
)

// ParseYearMonth parses a ym key in YYYY-M or YYYY-MM form.
func ParseYearMonth(s string) (YearMonth, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return YearMonth{}, ErrInvalidYearMonth
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1 {
		return YearMonth{}, ErrInvalidYearMonth
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return YearMonth{}, ErrInvalidYearMonth
	}
	return YearMonth{Year: year, Month: month}, nil
}

// String returns the canonical zero-padded YYYY-MM form.
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// Prev returns the chronologically preceding month, crossing the year
// boundary from January back to December.
func (ym YearMonth) Prev() YearMonth {
	if ym.Month == 1 {
		return YearMonth{Year: ym.Year - 1, Month: 12}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month - 1}
}

// NormalizeYM canonicalizes a ym key so that 2024-1 and 2024-01 address the
// same month row.
func NormalizeYM(s string) (string, error) {
	ym, err := ParseYearMonth(s)
	if err != nil {
		return "", err
	}
	return ym.String(), nil
}

// ParseAmount accepts the amount representations a JSON body may carry:
// a number, or a string holding one.
func ParseAmount(v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, ErrInvalidAmount
		}
		return f, nil
	default:
		return 0, ErrInvalidAmount
	}
}

func (b Bill) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (m MoneyIn) Validate() error {
	if strings.TrimSpace(m.Source) == "" {
		return ErrEmptySource
	}
	return nil
}
