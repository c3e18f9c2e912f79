package core

import (
	"errors"
	"testing"
)

func TestParseYearMonth(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2025-07", "2025-07", true},
		{"2025-7", "2025-07", true},
		{" 2025-12 ", "2025-12", true},
		{"1999-01", "1999-01", true},
		{"2025-13", "", false},
		{"2025-0", "", false},
		{"2025", "", false},
		{"2025-07-01", "", false},
		{"july", "", false},
		{"", "", false},
		{"-5", "", false},
	}
	for _, c := range cases {
		ym, err := ParseYearMonth(c.in)
		if c.ok {
			if err != nil {
				t.Errorf("ParseYearMonth(%q): unexpected error %v", c.in, err)
				continue
			}
			if got := ym.String(); got != c.want {
				t.Errorf("ParseYearMonth(%q) = %q, want %q", c.in, got, c.want)
			}
		} else if !errors.Is(err, ErrInvalidYearMonth) {
			t.Errorf("ParseYearMonth(%q): expected ErrInvalidYearMonth, got %v", c.in, err)
		}
	}
}

func TestNormalizeYM(t *testing.T) {
	got, err := NormalizeYM("2024-1")
	if err != nil {
		t.Fatalf("NormalizeYM: %v", err)
	}
	if got != "2024-01" {
		t.Fatalf("NormalizeYM(2024-1) = %q, want 2024-01", got)
	}
	if _, err := NormalizeYM("2024-00"); !errors.Is(err, ErrInvalidYearMonth) {
		t.Fatalf("expected ErrInvalidYearMonth, got %v", err)
	}
}

func TestPrevCrossesYearBoundary(t *testing.T) {
	prev := YearMonth{Year: 2025, Month: 1}.Prev()
	if prev.String() != "2024-12" {
		t.Fatalf("Prev(2025-01) = %s, want 2024-12", prev)
	}
	prev = YearMonth{Year: 2025, Month: 7}.Prev()
	if prev.String() != "2025-06" {
		t.Fatalf("Prev(2025-07) = %s, want 2025-06", prev)
	}
}

func TestParseAmount(t *testing.T) {
	if v, err := ParseAmount(12.5); err != nil || v != 12.5 {
		t.Fatalf("ParseAmount(12.5) = %v, %v", v, err)
	}
	if v, err := ParseAmount("1200"); err != nil || v != 1200 {
		t.Fatalf("ParseAmount(\"1200\") = %v, %v", v, err)
	}
	if v, err := ParseAmount(" -3.75 "); err != nil || v != -3.75 {
		t.Fatalf("ParseAmount(\" -3.75 \") = %v, %v", v, err)
	}
	if _, err := ParseAmount("abc"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := ParseAmount(nil); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for nil, got %v", err)
	}
	if _, err := ParseAmount(true); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for bool, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	if err := (Bill{Name: "  "}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := (Bill{Name: "Rent"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (MoneyIn{Source: ""}).Validate(); !errors.Is(err, ErrEmptySource) {
		t.Fatalf("expected ErrEmptySource, got %v", err)
	}
	if err := (MoneyIn{Source: "Salary"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
