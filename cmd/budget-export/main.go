// budget-export writes a snapshot of the whole ledger to a Google Sheet
// and exits.
package main

import (
	"context"
	"os"
	"time"

	"github.com/thechaz2/budget-app/internal/cli"
	"github.com/thechaz2/budget-app/internal/export"
	"github.com/thechaz2/budget-app/internal/ledger"
	applog "github.com/thechaz2/budget-app/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentExport)

	cfg := cli.LoadAndValidateConfig(logger)
	if err := cfg.ValidateExport(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	store := cli.OpenStore(logger, cfg.DBPath)
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	exporter, err := export.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize exporter", applog.FieldError, err)
		os.Exit(1)
	}

	svc := ledger.NewService(store, nil)
	rows, err := exporter.Export(ctx, svc)
	if err != nil {
		logger.Error("Export failed", applog.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Export complete",
		"rows", rows,
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)
}
