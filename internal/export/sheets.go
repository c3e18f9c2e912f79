// Package export writes the full ledger to a Google Sheet for review
// outside the app. It is a one-shot snapshot, not a sync.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/thechaz2/budget-app/internal/config"
	"github.com/thechaz2/budget-app/internal/core"
)

// Ledger is the read surface the exporter needs.
type Ledger interface {
	ListMonths(ctx context.Context) ([]core.Month, error)
	ListBills(ctx context.Context, ym string) ([]core.Bill, error)
	ListMoneyIns(ctx context.Context, ym string) ([]core.MoneyIn, error)
}

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// New creates an exporter authenticated with service-account credentials
// from the config, either inline JSON or a file path.
func New(ctx context.Context, cfg *config.Config) (*Exporter, error) {
	var credentialsJSON []byte
	switch {
	case cfg.GoogleCredentialsJSON != "":
		credentialsJSON = []byte(cfg.GoogleCredentialsJSON)
	case cfg.GoogleCredentialsFile != "":
		data, err := os.ReadFile(cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing Google credentials (set GOOGLE_CREDENTIALS_JSON or GOOGLE_CREDENTIALS_FILE)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Exporter{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     cfg.GoogleSheetName,
	}, nil
}

// Export replaces the target sheet's contents with one summary row per
// month followed by its bills and money-ins. Returns the number of rows
// written.
func (e *Exporter) Export(ctx context.Context, ledger Ledger) (int, error) {
	if e.svc == nil {
		return 0, errors.New("sheets service not initialized")
	}

	months, err := ledger.ListMonths(ctx)
	if err != nil {
		return 0, fmt.Errorf("list months: %w", err)
	}

	rows := [][]any{
		{"Month", "Kind", "Name", "Amount", "Date", "Opening", "Closing"},
	}
	for _, m := range months {
		rows = append(rows, []any{m.YM, "month", "", "", "", m.OpeningBalance, m.ClosingBalance})

		bills, err := ledger.ListBills(ctx, m.YM)
		if err != nil {
			return 0, fmt.Errorf("list bills for %s: %w", m.YM, err)
		}
		for _, b := range bills {
			name := b.Name
			if b.Quarterly {
				name += " (quarterly)"
			}
			rows = append(rows, []any{m.YM, "bill", name, b.Amount, b.Date, "", ""})
		}

		moneyIns, err := ledger.ListMoneyIns(ctx, m.YM)
		if err != nil {
			return 0, fmt.Errorf("list money-ins for %s: %w", m.YM, err)
		}
		for _, mi := range moneyIns {
			rows = append(rows, []any{m.YM, "money_in", mi.Source, mi.Amount, mi.Date, "", ""})
		}
	}

	clearRange := fmt.Sprintf("%s!A:G", e.sheetName)
	if _, err := e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return 0, fmt.Errorf("clear sheet %s: %w", e.sheetName, err)
	}

	writeRange := fmt.Sprintf("%s!A1", e.sheetName)
	vr := &gsheet.ValueRange{Values: rows}
	if _, err := e.svc.Spreadsheets.Values.Update(e.spreadsheetID, writeRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return 0, fmt.Errorf("write sheet %s: %w", e.sheetName, err)
	}

	return len(rows), nil
}
