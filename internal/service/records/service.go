package records

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stocks/internal/domain/models"
)

var (
	// ErrNotFound indicates no record carries the requested user code.
	ErrNotFound = errors.New("no records found")
	// ErrStorage indicates the table could not be read or written.
	ErrStorage = errors.New("record storage unavailable")
)

// TableStore loads and replaces the whole stock table.
type TableStore interface {
	Load(ctx context.Context) ([]models.StockRecord, error)
	Save(ctx context.Context, records []models.StockRecord) error
}

// AuditSink receives one event per successful write.
type AuditSink interface {
	RecordEvent(ctx context.Context, event models.AuditEvent) error
}

// Service implements user-partitioned CRUD over the stock table. Every call
// reloads the table from the store; writes replace it whole.
type Service struct {
	store  TableStore
	audit  AuditSink
	logger *zap.Logger
	now    func() time.Time

	// mu serializes load/mutate/save within this process.
	mu sync.RWMutex
}

// NewService wires a record service. audit may be nil.
func NewService(store TableStore, audit AuditSink, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		audit:  audit,
		logger: logger,
		now:    time.Now,
	}
}

// load never fails: an unreadable table is logged and treated as empty.
// The boolean reports whether the read succeeded.
func (s *Service) load(ctx context.Context) ([]models.StockRecord, bool) {
	records, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Error("failed to read stock table", zap.Error(err))
		return []models.StockRecord{}, false
	}
	return records, true
}

func (s *Service) save(ctx context.Context, records []models.StockRecord) error {
	if err := s.store.Save(ctx, records); err != nil {
		s.logger.Error("failed to write stock table", zap.Error(err), zap.Int("rows", len(records)))
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}

// List returns the records owned by code in table order.
func (s *Service) List(ctx context.Context, code string) ([]models.StockRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all, _ := s.load(ctx)

	var out []models.StockRecord
	for _, rec := range all {
		if rec.UserCode == code {
			out = append(out, rec)
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w for user_code: %s", ErrNotFound, code)
	}

	s.logger.Debug("records listed", zap.String("user_code", code), zap.Int("count", len(out)))
	return out, nil
}

// Create appends one record for code. fields must name every column except
// user_code, which is always taken from code.
func (s *Service) Create(ctx context.Context, code string, fields map[string]any) (models.StockRecord, error) {
	var missing []string
	for _, col := range models.Columns {
		if col == models.ColUserCode {
			continue
		}
		if _, ok := fields[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return models.StockRecord{}, models.MissingFieldsError(missing)
	}

	rec := models.StockRecord{UserCode: code}
	for _, col := range models.Columns {
		if col == models.ColUserCode {
			continue
		}
		if err := rec.Set(col, fields[col]); err != nil {
			return models.StockRecord{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, ok := s.load(ctx)
	if !ok {
		// Appending to an empty fallback would overwrite the unreadable table.
		return models.StockRecord{}, fmt.Errorf("%w: table could not be read", ErrStorage)
	}

	all = append(all, rec)
	if err := s.save(ctx, all); err != nil {
		return models.StockRecord{}, err
	}

	s.record(ctx, models.AuditCreate, code, 1)
	s.logger.Info("record created", zap.String("user_code", code), zap.Int("rows", len(all)))
	return rec, nil
}

// UpdateByUser applies patch to every record owned by code and returns them.
// Keys outside the schema, and user_code itself, are ignored.
func (s *Service) UpdateByUser(ctx context.Context, code string, patch map[string]any) ([]models.StockRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, _ := s.load(ctx)
	if !containsCode(all, code) {
		return nil, fmt.Errorf("%w for user_code: %s", ErrNotFound, code)
	}

	var scratch models.StockRecord
	var keys []string
	for _, col := range models.Columns {
		value, ok := patch[col]
		if !ok || col == models.ColUserCode {
			continue
		}
		if err := scratch.Set(col, value); err != nil {
			return nil, err
		}
		keys = append(keys, col)
	}

	var updated []models.StockRecord
	for i := range all {
		if all[i].UserCode != code {
			continue
		}
		for _, col := range keys {
			// Already validated against scratch.
			_ = all[i].Set(col, patch[col])
		}
		updated = append(updated, all[i])
	}

	if err := s.save(ctx, all); err != nil {
		return nil, err
	}

	s.record(ctx, models.AuditUpdate, code, len(updated))
	s.logger.Info("records updated", zap.String("user_code", code), zap.Int("count", len(updated)), zap.Strings("fields", keys))
	return updated, nil
}

// DeleteByUser removes every record owned by code and returns how many went.
func (s *Service) DeleteByUser(ctx context.Context, code string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, _ := s.load(ctx)

	kept := make([]models.StockRecord, 0, len(all))
	for _, rec := range all {
		if rec.UserCode != code {
			kept = append(kept, rec)
		}
	}

	removed := len(all) - len(kept)
	if removed == 0 {
		return 0, fmt.Errorf("%w for user_code: %s", ErrNotFound, code)
	}

	if err := s.save(ctx, kept); err != nil {
		return 0, err
	}

	s.record(ctx, models.AuditDelete, code, removed)
	s.logger.Info("records deleted", zap.String("user_code", code), zap.Int("count", removed))
	return removed, nil
}

// Snapshot returns the full table. Unlike the other reads it reports
// storage failures instead of falling back to an empty table.
func (s *Service) Snapshot(ctx context.Context) ([]models.StockRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return records, nil
}

func (s *Service) record(ctx context.Context, op models.AuditOperation, code string, count int) {
	if s.audit == nil {
		return
	}

	event := models.AuditEvent{Operation: op, UserCode: code, Count: count, At: s.now().UTC()}
	if err := s.audit.RecordEvent(ctx, event); err != nil {
		s.logger.Warn("failed to archive audit event", zap.Error(err), zap.String("operation", string(op)))
	}
}

func containsCode(records []models.StockRecord, code string) bool {
	for _, rec := range records {
		if rec.UserCode == code {
			return true
		}
	}
	return false
}
