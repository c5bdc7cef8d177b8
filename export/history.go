// Package export renders processing history as spreadsheets.
package export

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/aki307/frext/model"
	"github.com/xuri/excelize/v2"
)

const historySheet = "History"

var historyHeaders = []string{
	"ID",
	"Processed At",
	"File",
	"Template",
	"Status",
	"OCR Confidence",
	"Summary",
	"Categories",
	"Extracted Data",
}

// HistoryXLSX returns an XLSX workbook (as bytes) with one row per record.
func HistoryXLSX(records []model.ProcessingRecord, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	// rename the default sheet rather than leaving an empty Sheet1 behind
	if err := f.SetSheetName(f.GetSheetName(0), historySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range historyHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(historySheet, cell, h)
	}

	for i, r := range records {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(historySheet, cell, v)
		}

		write(1, r.ID)
		if !r.CreatedAt.IsZero() {
			write(2, r.CreatedAt.UTC().Format(time.RFC3339))
		}
		write(3, r.FileName)
		write(4, r.TemplateID)
		write(5, r.Status)
		if r.OCRResult != nil {
			write(6, r.OCRResult.Confidence)
		}
		if r.GPTResult != nil {
			write(7, r.GPTResult.Summary)
			write(8, strings.Join(r.GPTResult.Categories, ", "))
			write(9, formatData(r.GPTResult.ExtractedData))
		}
	}

	_ = f.SetColWidth(historySheet, "A", "A", 38) // id
	_ = f.SetColWidth(historySheet, "B", "B", 22) // timestamp
	_ = f.SetColWidth(historySheet, "C", "E", 18)
	_ = f.SetColWidth(historySheet, "F", "F", 14)
	_ = f.SetColWidth(historySheet, "G", "G", 48) // summary
	_ = f.SetColWidth(historySheet, "H", "I", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("export.xlsx.ok",
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// formatData renders extracted fields as "key: value" lines in key order.
func formatData(data map[string]any) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %v", k, data[k]))
	}
	return strings.Join(lines, "\n")
}
