package backup

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stocks/internal/domain/models"
	"github.com/mamadbah2/stocks/internal/repository/xlsx"
)

type staticSource struct {
	records []models.StockRecord
	err     error
}

func (s staticSource) Snapshot(context.Context) ([]models.StockRecord, error) {
	return s.records, s.err
}

func TestRunWritesTimestampedWorkbook(t *testing.T) {
	t.Parallel()

	var rec models.StockRecord
	require.NoError(t, rec.Set(models.ColUserCode, "48273"))
	require.NoError(t, rec.Set(models.ColSymbol, "INFY"))

	dir := t.TempDir()
	svc := NewService(staticSource{records: []models.StockRecord{rec}}, dir, nil)

	now := time.Date(2024, 2, 3, 20, 0, 0, 0, time.UTC)
	path, err := svc.Run(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "stocks-20240203-200000.xlsx"), path)

	got, err := xlsx.NewRepository(path, nil).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, rec.Equal(got[0]))
}

func TestRunSkipsWriteWhenSnapshotFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	svc := NewService(staticSource{err: errors.New("unreadable")}, dir, nil)

	_, err := svc.Run(context.Background(), time.Now())
	assert.Error(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "*.xlsx"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}
