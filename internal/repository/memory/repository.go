// Package memory provides an in-process table store used by tests and local runs.
package memory

import (
	"context"
	"sync"

	"github.com/mamadbah2/stocks/internal/domain/models"
)

// Repository keeps the stock table in memory. LoadErr and SaveErr, when set,
// are returned by the corresponding call instead of touching the table.
type Repository struct {
	mu      sync.Mutex
	records []models.StockRecord

	LoadErr error
	SaveErr error
	Saves   int
}

// NewRepository seeds an in-memory store with a copy of records.
func NewRepository(records ...models.StockRecord) *Repository {
	return &Repository{records: clone(records)}
}

// Load returns a copy of the stored table.
func (r *Repository) Load(ctx context.Context) ([]models.StockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.LoadErr != nil {
		return nil, r.LoadErr
	}
	return clone(r.records), nil
}

// Save replaces the stored table with a copy of records.
func (r *Repository) Save(ctx context.Context, records []models.StockRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.SaveErr != nil {
		return r.SaveErr
	}
	r.records = clone(records)
	r.Saves++
	return nil
}

// Records returns a copy of the table without going through Load.
func (r *Repository) Records() []models.StockRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clone(r.records)
}

func clone(records []models.StockRecord) []models.StockRecord {
	out := make([]models.StockRecord, len(records))
	copy(out, records)
	return out
}
