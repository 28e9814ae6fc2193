package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/stocks/internal/config"
	"github.com/mamadbah2/stocks/internal/domain/models"
	"github.com/mamadbah2/stocks/internal/repository/tabular"
)

// lastColumn is the spreadsheet column holding the final canonical field.
const lastColumn = "P"

// GoogleSheetRepository keeps the stock table in one tab of a Google spreadsheet.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	sheetName     string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed table store. When no
// client options are given the service account file from cfg is used.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger, opts ...option.ClientOption) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(opts) == 0 {
		opts = []option.ClientOption{
			option.WithCredentialsFile(cfg.CredentialsPath),
			option.WithScopes(sheetsapi.SpreadsheetsScope),
		}
	}

	service, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	sheetName := cfg.SheetName
	if sheetName == "" {
		sheetName = "Sheet1"
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
		logger:        logger,
	}, nil
}

func (r *GoogleSheetRepository) tableRange() string {
	return fmt.Sprintf("%s!A:%s", r.sheetName, lastColumn)
}

// Load fetches the whole table range with unformatted cell values.
func (r *GoogleSheetRepository) Load(ctx context.Context) ([]models.StockRecord, error) {
	sheetRange := r.tableRange()

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, sheetRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}

	records, err := tabular.Decode(resp.Values, r.logger)
	if err != nil {
		return nil, fmt.Errorf("decode range %s: %w", sheetRange, err)
	}

	r.logger.Debug("sheet range read", zap.String("range", sheetRange), zap.Int("rows", len(records)))
	return records, nil
}

// Save writes the header plus every record from A1, then clears whatever
// rows the previous table had below the new one. A failed write leaves the
// old table in place.
func (r *GoogleSheetRepository) Save(ctx context.Context, records []models.StockRecord) error {
	rows := tabular.Encode(records)
	for _, row := range rows {
		for i, cell := range row {
			// The API leaves a cell untouched when its value is null.
			if cell == nil {
				row[i] = ""
			}
		}
	}

	target := fmt.Sprintf("%s!A1", r.sheetName)
	call := r.service.Spreadsheets.Values.Update(r.spreadsheetID, target, &sheetsapi.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("write range %s: %w", target, err)
	}

	stale := fmt.Sprintf("%s!A%d:%s", r.sheetName, len(rows)+1, lastColumn)
	if _, err := r.service.Spreadsheets.Values.Clear(r.spreadsheetID, stale, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("clear range %s: %w", stale, err)
	}

	r.logger.Debug("sheet range written", zap.String("range", target), zap.Int("rows", len(records)))
	return nil
}
