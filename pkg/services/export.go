package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"review-crawler-go/pkg/models"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet that holds the reviews in the Excel artifact.
const SheetName = "리뷰데이터"

var (
	csvHeader   = []string{"number", "date", "rating", "reviewer", "content", "tags", "has_photo"}
	excelHeader = []any{"번호", "작성일", "평점", "작성자", "리뷰내용", "태그", "사진리뷰"}
	colWidths   = []float64{8, 12, 8, 15, 80, 30, 10}
)

// utf8BOM lets spreadsheet apps detect the encoding of the CSV.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExportCSV writes reviews as UTF-8 CSV with a byte order mark.
func ExportCSV(w io.Writer, reviews []models.Review) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range reviews {
		record := []string{
			strconv.Itoa(r.Number),
			r.Date,
			strconv.Itoa(r.Rating),
			r.Reviewer,
			r.Content,
			r.Tags,
			photoCSV(r.HasPhoto),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write review %d: %w", r.Number, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func photoCSV(has bool) string {
	if has {
		return "True"
	}
	return "False"
}

func photoMark(has bool) string {
	if has {
		return "O"
	}
	return "X"
}

// ExportExcel writes reviews as an .xlsx workbook with a styled header row.
func ExportExcel(w io.Writer, reviews []models.Review) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &excelHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, r := range reviews {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{r.Number, r.Date, r.Rating, r.Reviewer, r.Content, r.Tags, photoMark(r.HasPhoto)}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write review %d: %w", r.Number, err)
		}
	}

	for i, width := range colWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to set width of %s: %w", col, err)
		}
	}

	if err := styleSheet(f, len(reviews)); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// styleSheet applies the header fill and the body borders. Number, rating
// and photo columns are centered; the rest wrap from the top.
func styleSheet(f *excelize.File, rows int) error {
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"366092"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "G1", header); err != nil {
		return err
	}
	if rows == 0 {
		return nil
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	body, err := f.NewStyle(&excelize.Style{
		Border:    border,
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create body style: %w", err)
	}
	centered, err := f.NewStyle(&excelize.Style{
		Border:    border,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create body style: %w", err)
	}

	last := rows + 1
	if err := f.SetCellStyle(SheetName, "A2", fmt.Sprintf("G%d", last), body); err != nil {
		return err
	}
	for _, col := range []string{"A", "C", "G"} {
		if err := f.SetCellStyle(SheetName, col+"2", fmt.Sprintf("%s%d", col, last), centered); err != nil {
			return err
		}
	}
	return nil
}
