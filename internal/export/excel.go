// Package export writes scrape results to their delivery formats: a styled
// Excel workbook and a JSON run summary.
package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/R41CY/movie-scraper/internal/imdb"
)

var excelHeaders = []string{
	"Rank", "Title", "Year", "Rating", "Genres", "Director", "Stars", "Plot", "URL",
}

var excelWidths = map[string]float64{
	"A": 6, "B": 40, "C": 8, "D": 8, "E": 28, "F": 24, "G": 40, "H": 70, "I": 48,
}

// Workbook builds one sheet per chart and returns the workbook for the
// caller to save or stream. Sheet order follows chart order.
func Workbook(sheets map[string][]imdb.Movie, order []string) (*excelize.File, error) {
	f := excelize.NewFile()

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1F4E79"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("build title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2E75B6"}},
	})
	if err != nil {
		return nil, fmt.Errorf("build header style: %w", err)
	}

	for _, chart := range order {
		movies, ok := sheets[chart]
		if !ok {
			continue
		}
		if err := writeSheet(f, chart, movies, titleStyle, headerStyle); err != nil {
			return nil, err
		}
	}

	// The default sheet is only a placeholder once real sheets exist.
	if len(order) > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("remove default sheet: %w", err)
		}
	}
	return f, nil
}

// WriteFile builds the workbook and saves it at path.
func WriteFile(path string, sheets map[string][]imdb.Movie, order []string) error {
	f, err := Workbook(sheets, order)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, chart string, movies []imdb.Movie, titleStyle, headerStyle int) error {
	sheet := sheetName(chart)
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(excelHeaders))
	if err := f.MergeCell(sheet, "A1", lastCol+"1"); err != nil {
		return fmt.Errorf("merge title row: %w", err)
	}
	if err := f.SetCellValue(sheet, "A1", chart); err != nil {
		return fmt.Errorf("write title: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", titleStyle); err != nil {
		return fmt.Errorf("style title: %w", err)
	}
	if err := f.SetRowHeight(sheet, 1, 24); err != nil {
		return fmt.Errorf("size title row: %w", err)
	}

	for i, header := range excelHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("write header %s: %w", header, err)
		}
	}
	if err := f.SetCellStyle(sheet, "A2", lastCol+"2", headerStyle); err != nil {
		return fmt.Errorf("style header row: %w", err)
	}

	for col, width := range excelWidths {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("size column %s: %w", col, err)
		}
	}

	for i, m := range movies {
		row := i + 3
		values := []any{
			m.Rank, m.Title, m.Year, m.Rating,
			strings.Join(m.Genres, ", "), m.Director,
			strings.Join(m.Stars, ", "), m.Plot, m.URL,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	// Keep the banner and headers visible while scrolling the data.
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze: true, YSplit: 2, TopLeftCell: "A3", ActivePane: "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze panes: %w", err)
	}
	return nil
}

// sheetName trims a chart name to Excel's 31 character sheet limit.
func sheetName(chart string) string {
	if len(chart) > 31 {
		return chart[:31]
	}
	return chart
}
