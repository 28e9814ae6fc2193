package models

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format accepted on input and used on output.
const DateLayout = "2006-01-02"

// Column names in canonical order. Every persisted row carries exactly these fields.
const (
	ColUserCode       = "user_code"
	ColSymbol         = "symbol"
	ColSeries         = "series"
	ColDate           = "date"
	ColPrevClose      = "prev_close"
	ColOpenPrice      = "open_price"
	ColHighPrice      = "high_price"
	ColLowPrice       = "low_price"
	ColLastPrice      = "last_price"
	ColClosePrice     = "close_price"
	ColAvgPrice       = "avg_price"
	ColTotalTradedQty = "total_traded_qty"
	ColTurnover       = "turnover"
	ColNoOfTrades     = "no_of_trades"
	ColDelQty         = "del_qty"
	ColDelToTradePer  = "del_to_trade_per"
)

// Columns lists the record schema in canonical order.
var Columns = []string{
	ColUserCode, ColSymbol, ColSeries, ColDate, ColPrevClose,
	ColOpenPrice, ColHighPrice, ColLowPrice, ColLastPrice, ColClosePrice,
	ColAvgPrice, ColTotalTradedQty, ColTurnover, ColNoOfTrades,
	ColDelQty, ColDelToTradePer,
}

var columnSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Columns))
	for _, c := range Columns {
		set[c] = struct{}{}
	}
	return set
}()

// IsColumn reports whether name belongs to the canonical schema.
func IsColumn(name string) bool {
	_, ok := columnSet[name]
	return ok
}

// StockRecord captures one daily trading entry owned by a user code.
type StockRecord struct {
	UserCode       string
	Symbol         sql.NullString
	Series         sql.NullString
	Date           sql.NullTime
	PrevClose      decimal.NullDecimal
	OpenPrice      decimal.NullDecimal
	HighPrice      decimal.NullDecimal
	LowPrice       decimal.NullDecimal
	LastPrice      decimal.NullDecimal
	ClosePrice     decimal.NullDecimal
	AvgPrice       decimal.NullDecimal
	TotalTradedQty decimal.NullDecimal
	Turnover       decimal.NullDecimal
	NoOfTrades     decimal.NullDecimal
	DelQty         decimal.NullDecimal
	DelToTradePer  decimal.NullDecimal
}

func (r *StockRecord) numeric(col string) *decimal.NullDecimal {
	switch col {
	case ColPrevClose:
		return &r.PrevClose
	case ColOpenPrice:
		return &r.OpenPrice
	case ColHighPrice:
		return &r.HighPrice
	case ColLowPrice:
		return &r.LowPrice
	case ColLastPrice:
		return &r.LastPrice
	case ColClosePrice:
		return &r.ClosePrice
	case ColAvgPrice:
		return &r.AvgPrice
	case ColTotalTradedQty:
		return &r.TotalTradedQty
	case ColTurnover:
		return &r.Turnover
	case ColNoOfTrades:
		return &r.NoOfTrades
	case ColDelQty:
		return &r.DelQty
	case ColDelToTradePer:
		return &r.DelToTradePer
	}
	return nil
}

// Value returns the field stored under col: nil for null, otherwise a string,
// time.Time or decimal.Decimal.
func (r StockRecord) Value(col string) any {
	switch col {
	case ColUserCode:
		return r.UserCode
	case ColSymbol:
		return nullString(r.Symbol)
	case ColSeries:
		return nullString(r.Series)
	case ColDate:
		if !r.Date.Valid {
			return nil
		}
		return r.Date.Time
	}
	if n := r.numeric(col); n != nil {
		if !n.Valid {
			return nil
		}
		return n.Decimal
	}
	return nil
}

func nullString(s sql.NullString) any {
	if !s.Valid {
		return nil
	}
	return s.String
}

// Set coerces value into the field named col. A nil value stores null.
// Unknown columns and unconvertible values yield a *ValidationError.
func (r *StockRecord) Set(col string, value any) error {
	switch col {
	case ColUserCode:
		code, err := UserCodeOf(value)
		if err != nil {
			return invalidField(col, err)
		}
		r.UserCode = code
		return nil
	case ColSymbol, ColSeries:
		s, err := toNullString(value)
		if err != nil {
			return invalidField(col, err)
		}
		if col == ColSymbol {
			r.Symbol = s
		} else {
			r.Series = s
		}
		return nil
	case ColDate:
		d, err := ParseDate(value)
		if err != nil {
			return invalidField(col, err)
		}
		r.Date = d
		return nil
	}

	n := r.numeric(col)
	if n == nil {
		return &ValidationError{Fields: []string{col}, Reason: "unknown field"}
	}
	d, err := toNullDecimal(value)
	if err != nil {
		return invalidField(col, err)
	}
	*n = d
	return nil
}

func invalidField(col string, err error) error {
	return &ValidationError{Fields: []string{col}, Reason: err.Error()}
}

// UserCodeOf renders a user code supplied as a string or a number as its string form.
func UserCodeOf(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case json.Number:
		return v.String(), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", fmt.Errorf("invalid user code %v", v)
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case nil:
		return "", fmt.Errorf("user code is required")
	default:
		return "", fmt.Errorf("unsupported user code type %T", value)
	}
}

func toNullString(value any) (sql.NullString, error) {
	switch v := value.(type) {
	case nil:
		return sql.NullString{}, nil
	case string:
		return sql.NullString{String: v, Valid: true}, nil
	case json.Number:
		return sql.NullString{String: v.String(), Valid: true}, nil
	case float64:
		return sql.NullString{String: strconv.FormatFloat(v, 'f', -1, 64), Valid: true}, nil
	case int:
		return sql.NullString{String: strconv.Itoa(v), Valid: true}, nil
	case bool:
		return sql.NullString{String: strconv.FormatBool(v), Valid: true}, nil
	default:
		return sql.NullString{}, fmt.Errorf("unsupported text value of type %T", value)
	}
}

// ParseDate accepts nil, a time.Time or a YYYY-MM-DD string.
func ParseDate(value any) (sql.NullTime, error) {
	switch v := value.(type) {
	case nil:
		return sql.NullTime{}, nil
	case time.Time:
		return sql.NullTime{Time: truncateDay(v), Valid: true}, nil
	case string:
		t, err := time.Parse(DateLayout, strings.TrimSpace(v))
		if err != nil {
			return sql.NullTime{}, fmt.Errorf("date %q does not match YYYY-MM-DD", v)
		}
		return sql.NullTime{Time: t, Valid: true}, nil
	default:
		return sql.NullTime{}, fmt.Errorf("unsupported date value of type %T", value)
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func toNullDecimal(value any) (decimal.NullDecimal, error) {
	switch v := value.(type) {
	case nil:
		return decimal.NullDecimal{}, nil
	case decimal.Decimal:
		return decimal.NewNullDecimal(v), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.NullDecimal{}, nil
		}
		return decimal.NewNullDecimal(decimal.NewFromFloat(v)), nil
	case float32:
		return decimal.NewNullDecimal(decimal.NewFromFloat32(v)), nil
	case int:
		return decimal.NewNullDecimal(decimal.NewFromInt(int64(v))), nil
	case int64:
		return decimal.NewNullDecimal(decimal.NewFromInt(v)), nil
	case json.Number:
		return parseDecimal(v.String())
	case string:
		return parseDecimal(v)
	default:
		return decimal.NullDecimal{}, fmt.Errorf("unsupported numeric value of type %T", value)
	}
}

func parseDecimal(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%q is not a number", s)
	}
	return decimal.NewNullDecimal(d), nil
}

// Equal reports whether both records hold the same values in every column.
func (r StockRecord) Equal(other StockRecord) bool {
	for _, col := range Columns {
		a, b := r.Value(col), other.Value(col)
		switch av := a.(type) {
		case decimal.Decimal:
			bv, ok := b.(decimal.Decimal)
			if !ok || !av.Equal(bv) {
				return false
			}
		case time.Time:
			bv, ok := b.(time.Time)
			if !ok || !av.Equal(bv) {
				return false
			}
		default:
			if a != b {
				return false
			}
		}
	}
	return true
}

// MarshalJSON emits every column in canonical order, nulls included.
func (r StockRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(col)
		buf.Write(key)
		buf.WriteByte(':')

		var raw []byte
		switch v := r.Value(col).(type) {
		case nil:
			raw = []byte("null")
		case decimal.Decimal:
			raw = []byte(v.String())
		case time.Time:
			raw, _ = json.Marshal(v.Format(DateLayout))
		default:
			var err error
			if raw, err = json.Marshal(v); err != nil {
				return nil, err
			}
		}
		buf.Write(raw)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts any subset of the columns; absent ones stay null.
func (r *StockRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return err
	}

	*r = StockRecord{}
	for _, col := range Columns {
		v, ok := fields[col]
		if !ok {
			continue
		}
		if col == ColUserCode && v == nil {
			continue
		}
		if err := r.Set(col, v); err != nil {
			return err
		}
	}
	return nil
}
