// Package xlsx renders day summaries into spreadsheet workbooks and reads
// session batches back out of them. One declarative column catalog feeds a
// single renderer; the hidden raw-data column is the round-trip contract
// between export and import.
package xlsx

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"grindlog/internal/aggregate"
	"grindlog/internal/models"
)

// SheetName is the worksheet holding day rows.
const SheetName = "Sessions"

// offDayMarker is written into the raw-data cell of off-day rows instead of
// session JSON.
const offDayMarker = "IS_OFF_DAY"

// rawDataHeader labels the hidden round-trip column.
const rawDataHeader = "Raw Data"

// Column identifies one selectable export column.
type Column string

const (
	ColDate            Column = "date"
	ColSessionDateTime Column = "sessionDateTime"
	ColSessionCount    Column = "sessionCount"
	ColTotalTime       Column = "totalTime"
	ColPlanHours       Column = "planHours"
	ColPlanRemaining   Column = "planRemaining"
	ColPlayTime        Column = "playTime"
	ColSelectTime      Column = "selectTime"
	ColHands           Column = "hands"
	ColPlanHands       Column = "planHands"
	ColHandsPerHour    Column = "handsPerHour"
	ColNotes           Column = "notes"
)

type columnSpec struct {
	ID    Column
	Label string
}

// Catalog is the fixed set of exportable columns, in display order.
var Catalog = []columnSpec{
	{ColDate, "Дата"},
	{ColSessionDateTime, "Дата сессий"},
	{ColSessionCount, "Кол-во сессий"},
	{ColTotalTime, "Общее время"},
	{ColPlanHours, "План (часы)"},
	{ColPlanRemaining, "Осталось по плану"},
	{ColPlayTime, "Время игры"},
	{ColSelectTime, "Время селекта"},
	{ColHands, "Руки"},
	{ColPlanHands, "План (руки)"},
	{ColHandsPerHour, "Рук/час"},
	{ColNotes, "Заметки"},
}

// ParseColumns resolves a comma-separated column selection against the
// catalog, preserving catalog order. Empty input selects everything.
func ParseColumns(spec string) ([]Column, error) {
	if strings.TrimSpace(spec) == "" {
		cols := make([]Column, len(Catalog))
		for i, c := range Catalog {
			cols[i] = c.ID
		}
		return cols, nil
	}

	wanted := make(map[Column]bool)
	for _, part := range strings.Split(spec, ",") {
		id := Column(strings.TrimSpace(part))
		known := false
		for _, c := range Catalog {
			if c.ID == id {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown column: %q", part)
		}
		wanted[id] = true
	}

	var cols []Column
	for _, c := range Catalog {
		if wanted[c.ID] {
			cols = append(cols, c.ID)
		}
	}
	return cols, nil
}

// ExportOptions configures an export run.
type ExportOptions struct {
	Columns         []Column
	RemainingFormat aggregate.RemainingFormat
	DateLabel       aggregate.DateLabelOptions
	Totals          bool
}

// Export writes one row per day summary to an XLSX workbook at path,
// including the hidden raw-data column carrying the day's sessions as JSON.
func Export(path string, rows []aggregate.DaySummary, opts ExportOptions) error {
	if len(opts.Columns) == 0 {
		cols, _ := ParseColumns("")
		opts.Columns = cols
	}
	if opts.RemainingFormat == "" {
		opts.RemainingFormat = aggregate.RemainingHM
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	f.SetSheetName("Sheet1", SheetName)

	labels := make(map[Column]string, len(Catalog))
	for _, c := range Catalog {
		labels[c.ID] = c.Label
	}

	// Header row, raw-data column last and hidden.
	widths := make([]int, len(opts.Columns))
	for i, col := range opts.Columns {
		widths[i] = len([]rune(labels[col]))
		if err := setCell(f, i+1, 1, labels[col]); err != nil {
			return err
		}
	}
	rawCol := len(opts.Columns) + 1
	if err := setCell(f, rawCol, 1, rawDataHeader); err != nil {
		return err
	}

	for r, row := range rows {
		cells, raw, err := renderRow(row, opts)
		if err != nil {
			return err
		}
		for i, col := range opts.Columns {
			v := cells[col]
			if n := len([]rune(fmt.Sprint(v))); n > widths[i] {
				widths[i] = n
			}
			if err := setCell(f, i+1, r+2, v); err != nil {
				return err
			}
		}
		if err := setCell(f, rawCol, r+2, raw); err != nil {
			return err
		}
	}

	if opts.Totals {
		if err := writeTotals(f, rows, opts, len(rows)+2); err != nil {
			return err
		}
	}

	for i := range opts.Columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(SheetName, name, name, float64(widths[i]+4)); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	rawName, err := excelize.ColumnNumberToName(rawCol)
	if err != nil {
		return fmt.Errorf("raw column name: %w", err)
	}
	if err := f.SetColVisible(SheetName, rawName, false); err != nil {
		return fmt.Errorf("hide raw column: %w", err)
	}

	if err := styleHeader(f, rawCol); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// renderRow maps one day summary onto cell values plus the raw-data payload.
func renderRow(row aggregate.DaySummary, opts ExportOptions) (map[Column]any, string, error) {
	cells := make(map[Column]any, len(Catalog))
	cells[ColDate] = aggregate.DateLabel(row.Date, opts.DateLabel)

	if row.OffDay {
		// First non-date column carries the marker text, the rest stay blank.
		first := true
		for _, c := range Catalog {
			if c.ID == ColDate {
				continue
			}
			if first {
				cells[c.ID] = "Выходной"
				first = false
			} else {
				cells[c.ID] = ""
			}
		}
		return cells, offDayMarker, nil
	}

	has := row.HasSessions()
	cells[ColSessionDateTime] = sessionDateTimeLabel(row)
	cells[ColSessionCount] = blankUnless(has, row.SessionCount)
	cells[ColTotalTime] = blankUnless(has, aggregate.FormatClock(row.TotalSeconds))
	cells[ColPlayTime] = blankUnless(has, aggregate.FormatClock(row.PlaySeconds))
	cells[ColSelectTime] = blankUnless(has, aggregate.FormatClock(row.SelectSeconds))
	cells[ColHands] = blankUnless(has, row.HandsPlayed)
	cells[ColNotes] = row.Notes

	if row.PlanHours > 0 {
		cells[ColPlanHours] = row.PlanHours
		cells[ColPlanRemaining] = aggregate.FormatRemaining(row.PlanRemainingSeconds, opts.RemainingFormat)
	} else {
		cells[ColPlanHours] = ""
		cells[ColPlanRemaining] = ""
	}
	if row.PlanHands > 0 {
		cells[ColPlanHands] = row.PlanHands
	} else {
		cells[ColPlanHands] = ""
	}
	if row.PlaySeconds > 0 {
		cells[ColHandsPerHour] = row.HandsPerHour
	} else {
		cells[ColHandsPerHour] = blankUnless(has, 0)
	}

	sessions := row.Sessions
	if sessions == nil {
		sessions = []*models.Session{}
	}
	raw, err := json.Marshal(sessions)
	if err != nil {
		return nil, "", fmt.Errorf("encode raw data: %w", err)
	}
	return cells, string(raw), nil
}

func sessionDateTimeLabel(row aggregate.DaySummary) string {
	if len(row.Sessions) == 0 {
		return ""
	}

	datePart := aggregate.DateLabel(row.Date, aggregate.DateLabelOptions{Month: true, Year: true})
	if len(row.Sessions) == 1 {
		s := row.Sessions[0]
		return fmt.Sprintf("%s %s-%s", datePart,
			s.OverallStartTime.Local().Format("15:04"),
			s.OverallEndTime.Local().Format("15:04"))
	}

	ranges := make([]string, len(row.Sessions))
	for i, s := range row.Sessions {
		ranges[i] = fmt.Sprintf("(%s-%s)",
			s.OverallStartTime.Local().Format("15:04"),
			s.OverallEndTime.Local().Format("15:04"))
	}
	return datePart + " " + strings.Join(ranges, " ")
}

func blankUnless(has bool, v any) any {
	if !has {
		return ""
	}
	return v
}

// writeTotals appends a spacer, a bold totals row, and an italic description
// row below the day rows.
func writeTotals(f *excelize.File, rows []aggregate.DaySummary, opts ExportOptions, lastDataRow int) error {
	t := aggregate.Sum(rows)

	totals := map[Column]any{
		ColDate:          t.ActiveDays,
		ColSessionCount:  t.SessionCount,
		ColTotalTime:     aggregate.FormatHM(t.TotalSeconds),
		ColPlanHours:     blankUnless(t.PlanHours > 0, t.PlanHours),
		ColPlanRemaining: aggregate.FormatHM(t.PlanRemainingSeconds),
		ColPlayTime:      aggregate.FormatHM(t.PlaySeconds),
		ColSelectTime:    aggregate.FormatHM(t.SelectSeconds),
		ColHands:         t.HandsPlayed,
		ColPlanHands:     blankUnless(t.PlanHands > 0, t.PlanHands),
		ColHandsPerHour:  t.AvgHandsPerHour,
	}
	descriptions := map[Column]any{
		ColDate:          "Кол-во игровых дней",
		ColSessionCount:  "Общ. кол-во сессий",
		ColTotalTime:     "общее время",
		ColPlanHours:     "часов по плану",
		ColPlanRemaining: "осталось по плану",
		ColPlayTime:      "Общ. время игры",
		ColSelectTime:    "Общ. время селекта",
		ColHands:         "Всего рук",
		ColPlanHands:     "Кол-во рук по плану",
		ColHandsPerHour:  "среднее рук/час",
	}

	totalsRow := lastDataRow + 2 // one spacer row between data and totals
	descRow := totalsRow + 1

	for i, col := range opts.Columns {
		if v, ok := totals[col]; ok {
			if err := setCell(f, i+1, totalsRow, v); err != nil {
				return err
			}
		}
		if v, ok := descriptions[col]; ok {
			if err := setCell(f, i+1, descRow, v); err != nil {
				return err
			}
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("totals style: %w", err)
	}
	italic, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Italic: true, Color: "666666"}})
	if err != nil {
		return fmt.Errorf("description style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, totalsRow, totalsRow, bold); err != nil {
		return fmt.Errorf("style totals row: %w", err)
	}
	if err := f.SetRowStyle(SheetName, descRow, descRow, italic); err != nil {
		return fmt.Errorf("style description row: %w", err)
	}
	return nil
}

func styleHeader(f *excelize.File, lastCol int) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	end, err := excelize.CoordinatesToCellName(lastCol, 1)
	if err != nil {
		return fmt.Errorf("header cell: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", end, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetCellValue(SheetName, cell, v); err != nil {
		return fmt.Errorf("set cell %s: %w", cell, err)
	}
	return nil
}
