package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrNoHeaderRow = errors.New("spreadsheet has no header row")
	ErrNoSheets    = errors.New("workbook has no sheets")
)

// ReadXLSX loads the first sheet, or the named sheet when provided, of an xlsx
// workbook into a table. The first row is the column schema. Cells that are
// empty or fail to parse as numbers become missing values.
func ReadXLSX(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open workbook, %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoSheets
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet %q, %w", sheet, err)
	}
	return fromRecords(rows)
}

// ReadCSV loads comma separated rows into a table. The first record is the
// column schema. Cells that are empty or fail to parse as numbers become
// missing values.
func ReadCSV(r io.Reader) (*Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to read csv records, %w", err)
	}
	return fromRecords(records)
}

func fromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrNoHeaderRow
	}

	header := make([]string, 0, len(records[0]))
	for _, h := range records[0] {
		header = append(header, strings.TrimSpace(h))
	}
	if len(header) == 0 {
		return nil, ErrNoHeaderRow
	}

	rows := make([][]float64, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		row := make([]float64, len(header))
		for j := range header {
			if j >= len(rec) {
				// trailing cells omitted by the xlsx reader
				row[j] = math.NaN()
				continue
			}
			row[j] = parseCell(rec[j])
		}
		rows = append(rows, row)
	}

	return New(header, rows)
}

func parseCell(cell string) float64 {
	cell = strings.TrimSpace(cell)
	switch cell {
	case "", "NA", "N/A", "NaN", "nan":
		return math.NaN()
	}
	// tolerate thousand separators from exported spreadsheets
	v, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func isBlank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
