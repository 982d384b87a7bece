// Package sheet turns a buffered spreadsheet upload into chart-ready
// records: it parses the first sheet into a grid, keys each row by the
// header row, and projects the columns named in the chart configuration.
// It is a structural reshape only — no imputation, no validation of axis
// names against the actual headers.
package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/chartkeeper/internal/common"
	"github.com/dmitrijs2005/chartkeeper/internal/server/models"
	"github.com/xuri/excelize/v2"
)

// previewRows is how many full-width records are kept as the preview sample.
const previewRows = 5

// Result is the output of Ingest: the projected chart series, the preview
// sample, and the chart configuration as resolved for the chart type.
type Result struct {
	Series  []models.Record
	Preview []models.Record
	Config  models.ChartConfig
}

// Ingest parses data (the fully buffered upload; filename's extension picks
// the parser), drops empty rows, converts the grid into header-keyed records
// and projects the configured axis columns. An unparseable file yields
// common.ErrorBadFormat; axis names that match no header are not an error.
func Ingest(data []byte, filename, chartType string, cfg models.ChartConfig) (*Result, error) {
	grid, err := ParseGrid(data, filename)
	if err != nil {
		return nil, err
	}

	records := RecordsFromGrid(grid)

	resolved := models.ChartConfig{XAxis: cfg.XAxis, YAxis: cfg.YAxis}
	keys := []string{cfg.XAxis, cfg.YAxis}
	if chartType == models.ChartBubble && cfg.BubbleSize != "" {
		resolved.BubbleSize = cfg.BubbleSize
		keys = append(keys, cfg.BubbleSize)
	}

	series := make([]models.Record, 0, len(records))
	for _, rec := range records {
		series = append(series, project(rec, keys))
	}

	preview := records
	if len(preview) > previewRows {
		preview = preview[:previewRows]
	}

	return &Result{Series: series, Preview: preview, Config: resolved}, nil
}

// ParseGrid parses data into a row-major grid of typed cell values.
// xlsx/xls go through excelize (first sheet only); csv through encoding/csv
// with variable-length records allowed. Empty rows are dropped here so the
// header ends up first.
func ParseGrid(data []byte, filename string) ([][]any, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		rows, err = parseCSV(data)
	default:
		rows, err = parseWorkbook(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorBadFormat, err)
	}

	grid := make([][]any, 0, len(rows))
	for _, row := range rows {
		if emptyRow(row) {
			continue
		}
		cells := make([]any, len(row))
		for i, c := range row {
			cells[i] = parseValue(c)
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

// RecordsFromGrid converts a grid (header row first) into records mapping
// each header to the cell in the same column. Ragged rows produce records
// with the trailing keys absent. A grid without at least a header and one
// data row yields no records.
func RecordsFromGrid(grid [][]any) []models.Record {
	if len(grid) < 2 {
		return []models.Record{}
	}

	headers := make([]string, len(grid[0]))
	for i, h := range grid[0] {
		headers[i] = fmt.Sprint(h)
	}

	records := make([]models.Record, 0, len(grid)-1)
	for _, row := range grid[1:] {
		rec := models.Record{}
		for i, header := range headers {
			if i < len(row) {
				rec[header] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records
}

// project copies only the named keys out of rec. Keys absent from rec stay
// absent from the projection.
func project(rec models.Record, keys []string) models.Record {
	out := models.Record{}
	for _, k := range keys {
		if v, ok := rec[k]; ok {
			out[k] = v
		}
	}
	return out
}

func parseWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // ragged rows are fine
	return r.ReadAll()
}

func emptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseValue types a raw cell: int64 first, then float64, else the original
// string.
func parseValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
