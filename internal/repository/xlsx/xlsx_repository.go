package xlsx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/stocks/internal/domain/models"
	"github.com/mamadbah2/stocks/internal/repository/tabular"
)

// DefaultSheet is the sheet written by new workbooks.
const DefaultSheet = "Sheet1"

// Repository persists the whole stock table in a single-sheet Excel workbook.
type Repository struct {
	path   string
	logger *zap.Logger
}

// NewRepository builds a workbook-backed table store for the file at path.
func NewRepository(path string, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{path: path, logger: logger}
}

// Path returns the workbook location.
func (r *Repository) Path() string {
	return r.path
}

// Load reads every row of the workbook. A missing file is an empty table.
func (r *Repository) Load(ctx context.Context) ([]models.StockRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(r.path); errors.Is(err, os.ErrNotExist) {
		r.logger.Debug("workbook not found, starting empty table", zap.String("path", r.path))
		return []models.StockRecord{}, nil
	}

	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", r.path, err)
	}
	defer func() { _ = f.Close() }()

	sheet := DefaultSheet
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		sheet = f.GetSheetName(0)
	}

	cells, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	rows := make([][]interface{}, len(cells))
	for i, line := range cells {
		row := make([]interface{}, len(line))
		for j, cell := range line {
			row[j] = cell
		}
		rows[i] = row
	}

	records, err := tabular.Decode(rows, r.logger)
	if err != nil {
		return nil, fmt.Errorf("decode workbook %s: %w", r.path, err)
	}

	r.logger.Debug("workbook read", zap.String("path", r.path), zap.Int("rows", len(records)))
	return records, nil
}

// Save replaces the workbook with the given table. The content is written to
// a temporary file next to the target and renamed over it. The permissions
// of an existing workbook are kept; a new one is created 0644.
func (r *Repository) Save(ctx context.Context, records []models.StockRecord) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory %s: %w", dir, err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, row := range tabular.Encode(records) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(DefaultSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	tmp, err := os.CreateTemp(dir, ".stocks-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp workbook: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = f.Write(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write workbook: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync workbook: %w", err)
	}
	if err = tmp.Chmod(workbookMode(r.path)); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod workbook: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close workbook: %w", err)
	}
	if err = os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace workbook %s: %w", r.path, err)
	}

	r.logger.Debug("workbook written", zap.String("path", r.path), zap.Int("rows", len(records)))
	return nil
}

func workbookMode(path string) os.FileMode {
	if info, err := os.Stat(path); err == nil {
		return info.Mode().Perm()
	}
	return 0o644
}
