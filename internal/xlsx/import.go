package xlsx

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"grindlog/internal/models"
)

// ImportResult reports what an import run found in a workbook.
type ImportResult struct {
	Sessions    []*models.Session
	SkippedRows int // rows with an unparseable raw-data value
	OffDayRows  int
}

// ReadWorkbook extracts session batches from the hidden raw-data column of
// an exported workbook. Rows without a parseable raw-data value are skipped
// with a warning; a single bad row never fails the whole import.
func ReadWorkbook(path string) (*ImportResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheet)
	}

	rawIdx := -1
	for i, header := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(header), rawDataHeader) {
			rawIdx = i
			break
		}
	}
	if rawIdx < 0 {
		return nil, fmt.Errorf("no %q column found; was this file exported by grindlog?", rawDataHeader)
	}

	result := &ImportResult{}
	for n, row := range rows[1:] {
		if rawIdx >= len(row) {
			continue // trailing cells trimmed, nothing to parse
		}
		raw := strings.TrimSpace(row[rawIdx])
		if raw == "" {
			continue
		}
		if raw == offDayMarker {
			result.OffDayRows++
			continue
		}

		var sessions []*models.Session
		if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
			slog.Warn("skipping row with unparseable raw data", "row", n+2, "error", err)
			result.SkippedRows++
			continue
		}
		result.Sessions = append(result.Sessions, sessions...)
	}
	return result, nil
}
