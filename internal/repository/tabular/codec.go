// Package tabular converts stock records to and from spreadsheet rows.
package tabular

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/stocks/internal/domain/models"
)

// ErrMissingHeader is returned when a sheet has rows but no user_code column.
var ErrMissingHeader = errors.New("sheet header has no user_code column")

var dateLayouts = []string{
	models.DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// Header returns the canonical header row.
func Header() []interface{} {
	header := make([]interface{}, len(models.Columns))
	for i, col := range models.Columns {
		header[i] = col
	}
	return header
}

// Encode renders the table as a header row followed by one row per record.
// Null fields become nil cells.
func Encode(records []models.StockRecord) [][]interface{} {
	rows := make([][]interface{}, 0, len(records)+1)
	rows = append(rows, Header())
	for _, rec := range records {
		rows = append(rows, EncodeRecord(rec))
	}
	return rows
}

// EncodeRecord renders one record in canonical column order. Numbers that
// a float64 cannot hold exactly are written as text.
func EncodeRecord(rec models.StockRecord) []interface{} {
	row := make([]interface{}, len(models.Columns))
	for i, col := range models.Columns {
		switch v := rec.Value(col).(type) {
		case decimal.Decimal:
			row[i] = encodeNumber(v)
		case time.Time:
			row[i] = v.Format(models.DateLayout)
		default:
			row[i] = v
		}
	}
	return row
}

func encodeNumber(d decimal.Decimal) interface{} {
	f := d.InexactFloat64()
	if decimal.NewFromFloat(f).Equal(d) {
		return f
	}
	return d.String()
}

// Decode reads a header row and data rows back into records. Columns are
// matched by header name; unknown columns are dropped and canonical columns
// absent from the header stay null. A cell that cannot be converted is
// logged and stored as null; only a missing user_code header fails.
func Decode(rows [][]interface{}, logger *zap.Logger) ([]models.StockRecord, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(rows) == 0 {
		return []models.StockRecord{}, nil
	}

	index := make(map[string]int, len(rows[0]))
	for i, cell := range rows[0] {
		name := strings.TrimSpace(fmt.Sprint(cell))
		if _, seen := index[name]; !seen && models.IsColumn(name) {
			index[name] = i
		}
	}
	if _, ok := index[models.ColUserCode]; !ok {
		return nil, ErrMissingHeader
	}

	records := make([]models.StockRecord, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if isBlank(row) {
			continue
		}

		var rec models.StockRecord
		for _, col := range models.Columns {
			i, ok := index[col]
			if !ok || i >= len(row) {
				continue
			}
			value, err := decodeCell(col, row[i])
			if err == nil {
				if value == nil && col == models.ColUserCode {
					continue
				}
				err = rec.Set(col, value)
			}
			if err != nil {
				logger.Warn("unreadable cell stored as null",
					zap.Int("row", n+2),
					zap.String("column", col),
					zap.Any("value", row[i]),
					zap.Error(err))
			}
		}
		records = append(records, rec)
	}

	return records, nil
}

func isBlank(row []interface{}) bool {
	for _, cell := range row {
		if s, ok := cell.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		if cell != nil {
			return false
		}
	}
	return true
}

func decodeCell(col string, cell interface{}) (interface{}, error) {
	if s, ok := cell.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		cell = s
	}
	if cell == nil {
		return nil, nil
	}

	switch col {
	case models.ColUserCode:
		return decodeUserCode(cell), nil
	case models.ColDate:
		return decodeDate(cell)
	}
	return cell, nil
}

// decodeUserCode drops the ".0" suffix spreadsheet tools add to integer codes.
func decodeUserCode(cell interface{}) interface{} {
	s, ok := cell.(string)
	if !ok {
		return cell
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && strings.HasSuffix(s, ".0") {
		return f
	}
	return s
}

func decodeDate(cell interface{}) (interface{}, error) {
	switch v := cell.(type) {
	case time.Time:
		return v, nil
	case float64:
		return excelize.ExcelDateToTime(v, false)
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		if serial, err := strconv.ParseFloat(v, 64); err == nil {
			return excelize.ExcelDateToTime(serial, false)
		}
		return nil, fmt.Errorf("unrecognised date %q", v)
	default:
		return nil, fmt.Errorf("unsupported date cell of type %T", cell)
	}
}
