package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stocks/internal/domain/models"
	"github.com/mamadbah2/stocks/internal/repository/memory"
	"github.com/mamadbah2/stocks/internal/server/handlers"
	"github.com/mamadbah2/stocks/internal/server/router"
	"github.com/mamadbah2/stocks/internal/service/auth"
	"github.com/mamadbah2/stocks/internal/service/records"
)

func startServer(t *testing.T) string {
	t.Helper()

	authSvc := auth.NewService([]models.Credential{{Username: "user003", Password: "pass003", UserCode: "69351"}}, nil)
	recordSvc := records.NewService(memory.NewRepository(), nil, nil)
	srv := httptest.NewServer(router.New(handlers.NewAuthHandler(authSvc, nil), handlers.NewStockHandler(recordSvc, nil), nil))
	t.Cleanup(srv.Close)
	return srv.URL
}

func run(t *testing.T, server string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--server", server}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestParseAssignments(t *testing.T) {
	patch, err := parseAssignments([]string{"close_price=101.5", "symbol=INFY", "date=2024-01-02", "del_qty=null"})
	require.NoError(t, err)

	assert.Equal(t, json.Number("101.5"), patch["close_price"])
	assert.Equal(t, "INFY", patch["symbol"])
	assert.Equal(t, "2024-01-02", patch["date"])
	assert.Nil(t, patch["del_qty"])
	assert.Contains(t, patch, "del_qty")

	_, err = parseAssignments([]string{"novalue"})
	assert.Error(t, err)
}

func TestCommandsAgainstServer(t *testing.T) {
	server := startServer(t)

	out, err := run(t, server, "login", "-u", "user003", "-p", "pass003")
	require.NoError(t, err)
	assert.Equal(t, "69351", strings.TrimSpace(out))

	record := `{"symbol":"WIPRO","series":"EQ","date":"2024-03-01","prev_close":450,"open_price":452,
		"high_price":460,"low_price":449,"last_price":458,"close_price":457.5,"avg_price":455,
		"total_traded_qty":9000,"turnover":4095000,"no_of_trades":300,"del_qty":5000,"del_to_trade_per":55.5}`
	file := filepath.Join(t.TempDir(), "record.json")
	require.NoError(t, os.WriteFile(file, []byte(record), 0o600))

	out, err = run(t, server, "create", "69351", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, `"symbol": "WIPRO"`)

	out, err = run(t, server, "update", "69351", "--set", "close_price=460")
	require.NoError(t, err)
	assert.Contains(t, out, `"close_price": 460`)

	out, err = run(t, server, "list", "69351")
	require.NoError(t, err)
	assert.Contains(t, out, `"count": 1`)

	out, err = run(t, server, "delete", "69351")
	require.NoError(t, err)
	assert.Equal(t, "Successfully deleted 1 records for user_code: 69351", strings.TrimSpace(out))

	_, err = run(t, server, "list", "69351")
	assert.Error(t, err)
}
