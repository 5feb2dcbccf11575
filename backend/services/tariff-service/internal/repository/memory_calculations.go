package repository

import (
	"context"
	"sort"
	"sync"

	"meterbill/backend/services/tariff-service/internal/models"
)

// MemoryCalculationRepository keeps history in process memory.
type MemoryCalculationRepository struct {
	mu    sync.RWMutex
	items []models.Calculation
}

// NewMemoryCalculationRepository returns an empty repository.
func NewMemoryCalculationRepository() *MemoryCalculationRepository {
	return &MemoryCalculationRepository{}
}

// Create appends a calculation.
func (r *MemoryCalculationRepository) Create(_ context.Context, calc *models.Calculation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, cloneCalculation(*calc))
	return nil
}

// List returns up to limit calculations, newest first.
func (r *MemoryCalculationRepository) List(_ context.Context, limit int) ([]models.Calculation, error) {
	r.mu.RLock()
	out := make([]models.Calculation, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, cloneCalculation(c))
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeleteAll clears history and reports how many entries were removed.
func (r *MemoryCalculationRepository) DeleteAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.items))
	r.items = nil
	return n, nil
}

func cloneCalculation(c models.Calculation) models.Calculation {
	if c.Breakdown != nil {
		lines := make([]models.BreakdownLine, len(c.Breakdown))
		copy(lines, c.Breakdown)
		c.Breakdown = lines
	}
	return c
}
