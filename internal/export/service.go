// Package export renders reconciliation results for people: an XLSX
// workbook for download and currency strings for display.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nkmathur/partsrecon/internal/entity"
)

// Service produces XLSX bytes for comparison results.
type Service struct {
	symbol string
	logger *slog.Logger
}

func NewService(currencySymbol string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if currencySymbol == "" {
		currencySymbol = "₹"
	}
	return &Service{symbol: currencySymbol, logger: logger}
}

// FormatAmount renders an optional amount as a currency string with two
// decimal places and thousands separators. Absent amounts render empty.
func (s *Service) FormatAmount(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return s.symbol + humanize.FormatFloat("#,###.##", d.InexactFloat64())
}

// ComparisonXLSX returns an XLSX workbook (as bytes) with one row per
// reconciled key, in the order given.
func (s *Service) ComparisonXLSX(results []entity.ReconciliationResult) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Comparison"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defaultIdx, _ := f.GetSheetIndex("Sheet1"); defaultIdx != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Part Number",
		"Description",
		"Amount Estimate",
		"Amount Final",
		"Status",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range results {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, r.Key)
		write(2, r.Description)
		write(3, s.FormatAmount(r.LeftAmount))
		write(4, s.FormatAmount(r.RightAmount))
		write(5, r.Status.Label())
		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 18) // part number
	_ = f.SetColWidth(sheet, "B", "B", 44) // description
	_ = f.SetColWidth(sheet, "C", "D", 16) // amounts
	_ = f.SetColWidth(sheet, "E", "E", 14) // status

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(results),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
