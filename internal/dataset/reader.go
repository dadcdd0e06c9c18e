// Package dataset reads user-uploaded price tables.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"StockLens/internal/model"
)

// Table is a raw header plus string records, before normalization.
type Table struct {
	Header  []string
	Records [][]string
}

// Read parses an uploaded file by extension and normalizes it into a price series
// named after the file.
func Read(filename string, r io.Reader) (*model.PriceSeries, error) {
	const op = "read upload"
	var (
		t   *Table
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		t, err = ReadCSV(r)
	case ".xlsx":
		t, err = ReadXLSX(r)
	default:
		return nil, model.NewError(model.KindFormat, op,
			fmt.Errorf("%q: %w (want .csv or .xlsx)", filename, model.ErrUnsupportedFormat))
	}
	if err != nil {
		return nil, model.NewError(model.KindFormat, op, fmt.Errorf("%s: %w", filename, err))
	}

	bars, err := Normalize(t)
	if err != nil {
		return nil, model.NewError(model.KindFormat, op, fmt.Errorf("%s: %w", filename, err))
	}
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return &model.PriceSeries{Symbol: strings.ToUpper(name), Bars: bars, Source: model.SourceUpload}, nil
}

// ReadCSV reads a comma-separated table with a header row.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return toTable(rows)
}

// ReadXLSX reads the first sheet of a workbook.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return toTable(rows)
}

func toTable(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty table: %w", model.ErrNoData)
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return &Table{Header: header, Records: rows[1:]}, nil
}
