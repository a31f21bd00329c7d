package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/lexfield/docpipe/internal/pipeline"
)

// Service produces XLSX bytes summarizing a batch of processing results.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ProcessingReportXLSX returns an XLSX workbook (as bytes) with one row per
// processed document. Row order follows the input slice.
func (s *Service) ProcessingReportXLSX(results []*pipeline.Result) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Processing Report"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// drop the default sheet so the report is the only one
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Document ID",
		"Document Type",
		"Extraction Method",
		"Quality",
		"Confidence",
		"Pages",
		"Language",
		"Text Length",
		"Chunks",
		"Processing (ms)",
		"Warnings",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range results {
		if r == nil {
			continue
		}
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.DocumentID)
		write(2, string(r.Metadata.DocumentType))
		write(3, string(r.Metadata.ExtractionMethod))
		write(4, string(r.Metadata.Quality))
		write(5, r.Confidence)
		write(6, r.Pages)
		write(7, r.Metadata.Language)
		write(8, len(r.Text))
		write(9, len(r.Chunks))
		write(10, r.ProcessingTime.Milliseconds())
		write(11, truncate(joinLog(r.ProcessingLog), 140))

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 38) // document id
	_ = f.SetColWidth(sheet, "B", "D", 18)
	_ = f.SetColWidth(sheet, "E", "F", 12)
	_ = f.SetColWidth(sheet, "G", "J", 14)
	_ = f.SetColWidth(sheet, "K", "K", 60) // warnings

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", row-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func joinLog(lines []string) string {
	out := ""
	for i, line := range lines {
		if i > 0 {
			out += "; "
		}
		out += line
	}
	return out
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
