package report

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"reminder/internal/jsonfile"
)

const (
	sheetSummary = "Summary"
	sheetTasks   = "Tasks"
	sheetHabits  = "Habits"
)

// WriteXLSX renders s into dir/s.FileName() and returns the path.
func WriteXLSX(s Summary, dir string) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{sheetTasks, sheetHabits} {
		if _, err := f.NewSheet(name); err != nil {
			return "", fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return "", fmt.Errorf("create header style: %w", err)
	}

	if err := writeSummarySheet(f, s); err != nil {
		return "", err
	}
	if err := writeTasksSheet(f, s, header); err != nil {
		return "", err
	}
	if err := writeHabitsSheet(f, s, header); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("encode workbook: %w", err)
	}
	path := filepath.Join(dir, s.FileName())
	if err := jsonfile.WriteAtomic(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func writeSummarySheet(f *excelize.File, s Summary) error {
	rows := [][]any{
		{s.Title()},
		{"From", s.Start.Format(dateLayout)},
		{"To", s.End.Format(dateLayout)},
		{"Tasks completed", len(s.Tasks)},
		{},
		{"Habit", "Days done", "Days in period"},
	}
	for _, h := range s.Habits {
		done, days := s.HabitRate(h.ID)
		rows = append(rows, []any{h.Name, done, days})
	}
	for i, r := range rows {
		if len(r) == 0 {
			continue
		}
		if err := setRow(f, sheetSummary, i+1, r); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheetSummary, "A", "A", 30)
}

func writeTasksSheet(f *excelize.File, s Summary, header int) error {
	if err := setRow(f, sheetTasks, 1, []any{"Completed", "Description", "Priority"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetTasks, "A1", "C1", header); err != nil {
		return err
	}
	for i, t := range s.Tasks {
		row := []any{t.At.Format("2006-01-02 15:04"), t.Description, t.Priority}
		if err := setRow(f, sheetTasks, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheetTasks, "A", "A", 18); err != nil {
		return err
	}
	return f.SetColWidth(sheetTasks, "B", "B", 40)
}

func writeHabitsSheet(f *excelize.File, s Summary, header int) error {
	head := []any{"Date"}
	for _, h := range s.Habits {
		head = append(head, h.Name)
	}
	if err := setRow(f, sheetHabits, 1, head); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(head), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetHabits, "A1", last, header); err != nil {
		return err
	}
	for i, d := range s.Days {
		row := []any{d.Date.Format(dateLayout)}
		for _, h := range s.Habits {
			mark := ""
			if _, ok := d.Completed[h.ID]; ok {
				mark = "✓"
			}
			row = append(row, mark)
		}
		if err := setRow(f, sheetHabits, i+2, row); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheetHabits, "A", "A", 12)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("%s row %d: %w", sheet, row, err)
	}
	return nil
}
