package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/lexfield/docpipe/constants"
	"github.com/lexfield/docpipe/internal/pipeline"
)

func TestProcessingReportXLSX(t *testing.T) {
	svc := NewService(nil)
	results := []*pipeline.Result{
		{
			DocumentID:     "doc-1",
			Text:           "extracted text",
			Confidence:     92.5,
			Pages:          3,
			ProcessingTime: 1500 * time.Millisecond,
			Metadata: pipeline.Metadata{
				Language:         "en",
				DocumentType:     constants.Contract,
				Quality:          constants.QualityMedium,
				ExtractionMethod: constants.MethodOCR,
			},
			ProcessingLog: []string{"page 2 failed: corrupt image"},
		},
		nil,
		{
			DocumentID: "doc-2",
			Text:       "short",
			Confidence: 100,
			Pages:      1,
			Metadata: pipeline.Metadata{
				DocumentType:     constants.General,
				Quality:          constants.QualityLow,
				ExtractionMethod: constants.MethodNative,
			},
		},
	}

	data, err := svc.ProcessingReportXLSX(results)
	if err != nil {
		t.Fatalf("ProcessingReportXLSX error: %v", err)
	}

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open generated workbook: %v", err)
	}
	defer wb.Close()

	rows, err := wb.GetRows("Processing Report")
	if err != nil {
		t.Fatal(err)
	}
	// header + two data rows (nil entry skipped)
	if len(rows) != 3 {
		t.Fatalf("row count = %d, want 3", len(rows))
	}
	if rows[1][0] != "doc-1" {
		t.Errorf("first data row id = %q", rows[1][0])
	}
	if rows[1][2] != "ocr" {
		t.Errorf("method cell = %q, want ocr", rows[1][2])
	}
	if rows[2][3] != "low" {
		t.Errorf("quality cell = %q, want low", rows[2][3])
	}
}
