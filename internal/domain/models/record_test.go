package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnsCanonicalOrder(t *testing.T) {
	t.Parallel()

	want := []string{
		"user_code", "symbol", "series", "date", "prev_close",
		"open_price", "high_price", "low_price", "last_price", "close_price",
		"avg_price", "total_traded_qty", "turnover", "no_of_trades",
		"del_qty", "del_to_trade_per",
	}
	assert.Equal(t, want, Columns)
	assert.True(t, IsColumn("turnover"))
	assert.False(t, IsColumn("volume"))
}

func TestSetUserCodeFromNumber(t *testing.T) {
	t.Parallel()

	var r StockRecord
	require.NoError(t, r.Set(ColUserCode, float64(48273)))
	assert.Equal(t, "48273", r.UserCode)

	require.NoError(t, r.Set(ColUserCode, json.Number("15947")))
	assert.Equal(t, "15947", r.UserCode)
}

func TestSetDate(t *testing.T) {
	t.Parallel()

	var r StockRecord
	require.NoError(t, r.Set(ColDate, "2024-03-15"))
	assert.True(t, r.Date.Valid)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), r.Date.Time)

	err := r.Set(ColDate, "15/03/2024")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{ColDate}, verr.Fields)

	require.NoError(t, r.Set(ColDate, nil))
	assert.False(t, r.Date.Valid)
}

func TestSetNumericValues(t *testing.T) {
	t.Parallel()

	var r StockRecord
	require.NoError(t, r.Set(ColClosePrice, 101.5))
	require.NoError(t, r.Set(ColTurnover, "2500000.75"))
	require.NoError(t, r.Set(ColNoOfTrades, 42))
	require.NoError(t, r.Set(ColDelQty, nil))

	assert.Equal(t, "101.5", r.ClosePrice.Decimal.String())
	assert.Equal(t, "2500000.75", r.Turnover.Decimal.String())
	assert.Equal(t, "42", r.NoOfTrades.Decimal.String())
	assert.False(t, r.DelQty.Valid)

	assert.Error(t, r.Set(ColOpenPrice, "abc"))
	assert.Error(t, r.Set("volume", 1))
}

func TestMarshalJSONKeepsOrderAndNulls(t *testing.T) {
	t.Parallel()

	var r StockRecord
	require.NoError(t, r.Set(ColUserCode, "48273"))
	require.NoError(t, r.Set(ColSymbol, "INFY"))
	require.NoError(t, r.Set(ColDate, "2024-01-02"))
	require.NoError(t, r.Set(ColClosePrice, 101.5))

	raw, err := json.Marshal(r)
	require.NoError(t, err)

	want := `{"user_code":"48273","symbol":"INFY","series":null,"date":"2024-01-02",` +
		`"prev_close":null,"open_price":null,"high_price":null,"low_price":null,` +
		`"last_price":null,"close_price":101.5,"avg_price":null,"total_traded_qty":null,` +
		`"turnover":null,"no_of_trades":null,"del_qty":null,"del_to_trade_per":null}`
	assert.Equal(t, want, string(raw))

	var back StockRecord
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, r.Equal(back))
}

func TestEqualDetectsDifferences(t *testing.T) {
	t.Parallel()

	var a, b StockRecord
	require.NoError(t, a.Set(ColClosePrice, "10.50"))
	require.NoError(t, b.Set(ColClosePrice, 10.5))
	assert.True(t, a.Equal(b))

	require.NoError(t, b.Set(ColSymbol, "TCS"))
	assert.False(t, a.Equal(b))
}

func TestValidationErrorMessage(t *testing.T) {
	t.Parallel()

	err := MissingFieldsError([]string{"symbol", "date"})
	assert.Equal(t, "invalid field symbol, date: missing required fields", err.Error())
}
