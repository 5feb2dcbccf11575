package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"meterbill/backend/services/tariff-service/internal/models"
)

// ErrClientNameRequired is returned for an empty status check.
var ErrClientNameRequired = errors.New("client_name required")

// StatusRepository stores status checks.
type StatusRepository interface {
	Create(ctx context.Context, check *models.StatusCheck) error
	List(ctx context.Context) ([]models.StatusCheck, error)
}

// StatusService records client heartbeats.
type StatusService struct {
	repo StatusRepository
}

// NewStatusService builds service.
func NewStatusService(repo StatusRepository) *StatusService {
	return &StatusService{repo: repo}
}

// CreateStatusCheck stores a heartbeat for clientName.
func (s *StatusService) CreateStatusCheck(ctx context.Context, clientName string) (*models.StatusCheck, error) {
	clientName = strings.TrimSpace(clientName)
	if clientName == "" {
		return nil, ErrClientNameRequired
	}
	check := &models.StatusCheck{
		ID:         uuid.NewString(),
		ClientName: clientName,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, check); err != nil {
		return nil, err
	}
	return check, nil
}

// ListStatusChecks returns stored heartbeats.
func (s *StatusService) ListStatusChecks(ctx context.Context) ([]models.StatusCheck, error) {
	checks, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if checks == nil {
		checks = []models.StatusCheck{}
	}
	return checks, nil
}
