package backup

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stocks/internal/domain/models"
	"github.com/mamadbah2/stocks/internal/repository/xlsx"
)

const fileLayout = "20060102-150405"

// Source supplies the table to back up.
type Source interface {
	Snapshot(ctx context.Context) ([]models.StockRecord, error)
}

// Service copies the live table into timestamped workbooks.
type Service struct {
	source Source
	dir    string
	logger *zap.Logger
}

// NewService builds a backup service writing into dir.
func NewService(source Source, dir string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, dir: dir, logger: logger}
}

// Run writes one backup stamped with now and returns its path.
func (s *Service) Run(ctx context.Context, now time.Time) (string, error) {
	records, err := s.source.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("snapshot stock table: %w", err)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("stocks-%s.xlsx", now.Format(fileLayout)))
	if err := xlsx.NewRepository(path, s.logger).Save(ctx, records); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}

	s.logger.Info("backup written", zap.String("path", path), zap.Int("rows", len(records)))
	return path, nil
}
