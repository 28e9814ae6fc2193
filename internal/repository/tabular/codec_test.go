package tabular

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mamadbah2/stocks/internal/domain/models"
)

func sampleRecord(t *testing.T) models.StockRecord {
	t.Helper()

	var rec models.StockRecord
	require.NoError(t, rec.Set(models.ColUserCode, "48273"))
	require.NoError(t, rec.Set(models.ColSymbol, "INFY"))
	require.NoError(t, rec.Set(models.ColSeries, "EQ"))
	require.NoError(t, rec.Set(models.ColDate, "2024-01-02"))
	require.NoError(t, rec.Set(models.ColClosePrice, 1500.25))
	require.NoError(t, rec.Set(models.ColNoOfTrades, 1200))
	return rec
}

func TestEncodeWritesHeaderAndCanonicalRow(t *testing.T) {
	t.Parallel()

	rows := Encode([]models.StockRecord{sampleRecord(t)})
	require.Len(t, rows, 2)
	assert.Equal(t, Header(), rows[0])

	row := rows[1]
	require.Len(t, row, len(models.Columns))
	assert.Equal(t, "48273", row[0])
	assert.Equal(t, "INFY", row[1])
	assert.Equal(t, "2024-01-02", row[3])
	assert.Nil(t, row[4])
	assert.Equal(t, 1500.25, row[9])
	assert.Equal(t, float64(1200), row[13])
}

func TestDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	rec := sampleRecord(t)
	got, err := Decode(Encode([]models.StockRecord{rec}), nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, rec.Equal(got[0]))
}

func TestDecodeByHeaderNameDropsExtrasAndNullsMissing(t *testing.T) {
	t.Parallel()

	rows := [][]interface{}{
		{"symbol", "notes", "user_code", "close_price"},
		{"TCS", "ignored", float64(15947), "3400.5"},
		{"", "", "", ""},
		{"WIPRO", nil, "69351.0", nil},
	}

	got, err := Decode(rows, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "15947", got[0].UserCode)
	assert.Equal(t, "TCS", got[0].Symbol.String)
	assert.Equal(t, "3400.5", got[0].ClosePrice.Decimal.String())
	assert.False(t, got[0].Date.Valid)
	assert.False(t, got[0].OpenPrice.Valid)

	assert.Equal(t, "69351", got[1].UserCode)
	assert.False(t, got[1].ClosePrice.Valid)
}

func TestDecodeDateFormats(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for _, cell := range []interface{}{"2024-01-02", "2024-01-02 00:00:00", float64(45293), "45293"} {
		rows := [][]interface{}{{"user_code", "date"}, {"1", cell}}
		got, err := Decode(rows, nil)
		require.NoError(t, err, "cell %v", cell)
		require.Len(t, got, 1)
		assert.True(t, got[0].Date.Valid)
		assert.True(t, want.Equal(got[0].Date.Time), "cell %v decoded as %v", cell, got[0].Date.Time)
	}
}

func TestDecodeRejectsSheetWithoutUserCodeHeader(t *testing.T) {
	t.Parallel()

	_, err := Decode([][]interface{}{{"symbol"}, {"INFY"}}, nil)
	assert.ErrorIs(t, err, ErrMissingHeader)

	got, err := Decode(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeNullsUnreadableCellsAndKeepsOtherRows(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	rows := [][]interface{}{
		{"user_code", "symbol", "date", "open_price", "prev_close"},
		{"48273", "INFY", "2024-01-02", "1495.5", "1490"},
		{"15947", "TCS", "someday", "not-a-number", "N/A"},
	}

	got, err := Decode(rows, zap.New(core))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "1495.5", got[0].OpenPrice.Decimal.String())
	assert.True(t, got[0].Date.Valid)

	assert.Equal(t, "15947", got[1].UserCode)
	assert.Equal(t, "TCS", got[1].Symbol.String)
	assert.False(t, got[1].Date.Valid)
	assert.False(t, got[1].OpenPrice.Valid)
	assert.False(t, got[1].PrevClose.Valid)

	warned := logs.FilterMessage("unreadable cell stored as null").All()
	require.Len(t, warned, 3)
	assert.Equal(t, int64(3), warned[0].ContextMap()["row"])
	assert.Equal(t, "date", warned[0].ContextMap()["column"])
}

func TestEncodeKeepsDecimalsBeyondFloatPrecision(t *testing.T) {
	t.Parallel()

	rec := sampleRecord(t)
	require.NoError(t, rec.Set(models.ColTurnover, "12345678901234567891"))
	require.NoError(t, rec.Set(models.ColAvgPrice, "0.1000000000000000055511151231257827"))

	row := EncodeRecord(rec)
	assert.Equal(t, "12345678901234567891", row[12])
	assert.Equal(t, 1500.25, row[9])

	got, err := Decode(Encode([]models.StockRecord{rec}), nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, rec.Equal(got[0]))
	assert.Equal(t, "12345678901234567891", got[0].Turnover.Decimal.String())
}
