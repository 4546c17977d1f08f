// Package report renders the daily close as a downloadable spreadsheet.
package report

import (
	"bytes"
	"encoding/csv"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/models"
)

const sheetName = "Uzávěrka"

var stockHeader = []string{"Položka", "Jednotka", "Prodáno g", "Prodáno ks", "Zbývá"}

// totalsRows lists the revenue block: label and amount in Kč.
func totalsRows(p models.ClosePayload) [][]any {
	return [][]any{
		{"Datum", p.Date},
		{"Hotovost", p.Totals.Cash},
		{"Karta", p.Totals.Card},
		{"QR", p.Totals.QR},
		{"Na podnik", p.Totals.OnHouse},
		{"Tržba celkem", p.Totals.TotalRevenue},
	}
}

// stockRows lists one row per food item, ordered by name.
func stockRows(p models.ClosePayload) [][]any {
	names := make([]string, 0, len(p.RemainingStock))
	for name := range p.RemainingStock {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]any, 0, len(names))
	for _, name := range names {
		remaining := p.RemainingStock[name]
		sold := p.SoldStock[name]
		rows = append(rows, []any{name, string(remaining.Unit), sold.Grams, sold.Pieces, remaining.Value})
	}
	return rows
}

// CSV renders the close as two blocks separated by an empty line.
func CSV(p models.ClosePayload) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	for _, row := range totalsRows(p) {
		_ = w.Write(toStrings(row))
	}
	_ = w.Write(nil)
	_ = w.Write(stockHeader)
	for _, row := range stockRows(p) {
		_ = w.Write(toStrings(row))
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// XLSX renders the close on a single sheet.
func XLSX(p models.ClosePayload) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	row := 1
	for _, values := range totalsRows(p) {
		setRow(f, row, values)
		row++
	}
	row++
	headerRow := row
	setRow(f, row, toAny(stockHeader))
	row++
	for _, values := range stockRows(p) {
		setRow(f, row, values)
		row++
	}

	_ = f.SetColWidth(sheetName, "A", "A", 22)
	_ = f.SetColWidth(sheetName, "B", "E", 14)

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E5E7EB"}, Pattern: 1},
	})
	start, _ := excelize.CoordinatesToCellName(1, headerRow)
	end, _ := excelize.CoordinatesToCellName(len(stockHeader), headerRow)
	_ = f.SetCellStyle(sheetName, start, end, style)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, values []any) {
	for c, v := range values {
		cell, _ := excelize.CoordinatesToCellName(c+1, row)
		_ = f.SetCellValue(sheetName, cell, v)
	}
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func toStrings(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		switch v := v.(type) {
		case string:
			out[i] = v
		case int64:
			out[i] = strconv.FormatInt(v, 10)
		}
	}
	return out
}
