package repository

import (
	"context"
	"sync"

	"meterbill/backend/services/tariff-service/internal/models"
)

// MemoryStatusRepository keeps status checks newest first, capped at max.
type MemoryStatusRepository struct {
	mu     sync.Mutex
	max    int
	checks []models.StatusCheck
}

// NewMemoryStatusRepository returns an empty repository.
func NewMemoryStatusRepository(max int) *MemoryStatusRepository {
	if max <= 0 {
		max = 1000
	}
	return &MemoryStatusRepository{max: max}
}

// Create stores a check.
func (r *MemoryStatusRepository) Create(_ context.Context, check *models.StatusCheck) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks = append([]models.StatusCheck{*check}, r.checks...)
	if len(r.checks) > r.max {
		r.checks = r.checks[:r.max]
	}
	return nil
}

// List returns stored checks, newest first.
func (r *MemoryStatusRepository) List(_ context.Context) ([]models.StatusCheck, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.StatusCheck, len(r.checks))
	copy(out, r.checks)
	return out, nil
}
