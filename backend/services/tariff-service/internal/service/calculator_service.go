package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"meterbill/backend/libs/tariff"
	"meterbill/backend/services/tariff-service/internal/models"
)

const (
	// DefaultHistoryLimit is the page size used when none is configured.
	DefaultHistoryLimit = 100
	// MaxHistoryLimit caps a single history page.
	MaxHistoryLimit = 1000
)

var (
	// ErrReadingsOrder is returned when the current reading does not exceed the previous one.
	ErrReadingsOrder = errors.New("current reading must be greater than previous reading")
	// ErrInvalidReading is returned for non-finite or negative meter readings.
	ErrInvalidReading = errors.New("meter readings must be finite non-negative numbers")
	// ErrInvalidCalculation is returned when a history record fails validation.
	ErrInvalidCalculation = errors.New("invalid calculation")
)

// CalculationRepository stores calculation history.
type CalculationRepository interface {
	Create(ctx context.Context, calc *models.Calculation) error
	List(ctx context.Context, limit int) ([]models.Calculation, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// CalculationPublisher is notified after a calculation is stored.
type CalculationPublisher interface {
	PublishCalculation(calc models.Calculation)
}

// CalculatorService exposes tariff quotes and calculation history.
type CalculatorService struct {
	engine       *tariff.Engine
	repo         CalculationRepository
	publisher    CalculationPublisher
	historyLimit int
	logger       *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewCalculatorService builds service. publisher may be nil.
func NewCalculatorService(
	engine *tariff.Engine,
	repo CalculationRepository,
	publisher CalculationPublisher,
	historyLimit int,
	logger *zap.Logger,
) *CalculatorService {
	switch {
	case historyLimit <= 0:
		historyLimit = DefaultHistoryLimit
	case historyLimit > MaxHistoryLimit:
		historyLimit = MaxHistoryLimit
	}
	return &CalculatorService{
		engine:       engine,
		repo:         repo,
		publisher:    publisher,
		historyLimit: historyLimit,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
	}
}

// KWToMoney prices the consumption between two meter readings.
func (s *CalculatorService) KWToMoney(ctx context.Context, meterType string, previousReading, currentReading float64) (models.CostQuote, error) {
	if !validReading(previousReading) || !validReading(currentReading) {
		return models.CostQuote{}, ErrInvalidReading
	}
	consumption := decimal.NewFromFloat(currentReading).Sub(decimal.NewFromFloat(previousReading))
	if !consumption.IsPositive() {
		return models.CostQuote{}, ErrReadingsOrder
	}
	return s.PriceConsumption(ctx, meterType, consumption.InexactFloat64())
}

// PriceConsumption prices a consumption given directly in kW.
func (s *CalculatorService) PriceConsumption(_ context.Context, meterType string, kw float64) (models.CostQuote, error) {
	res, err := s.engine.PriceQuantity(meterType, kw)
	if err != nil {
		return models.CostQuote{}, err
	}
	s.logger.Debug("priced consumption",
		zap.String("meter_type", meterType),
		zap.String("consumption", res.Quantity.String()),
		zap.String("total_cost", res.Cost.String()),
	)
	return models.NewCostQuote(res), nil
}

// MoneyToKW finds the consumption amount buys.
func (s *CalculatorService) MoneyToKW(_ context.Context, meterType string, amount float64) (models.EnergyQuote, error) {
	res, err := s.engine.PriceAmount(meterType, amount)
	if err != nil {
		return models.EnergyQuote{}, err
	}
	s.logger.Debug("priced amount",
		zap.String("meter_type", meterType),
		zap.String("amount", res.Cost.String()),
		zap.String("total_kw", res.Quantity.String()),
	)
	return models.NewEnergyQuote(res), nil
}

// Rates returns the display form of the schedule table.
func (s *CalculatorService) Rates() map[string]interface{} {
	return models.RateSheet(s.engine.Table())
}

// SaveCalculation stores a client-computed calculation as given.
func (s *CalculatorService) SaveCalculation(ctx context.Context, input models.CalculationInput) (*models.Calculation, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	calc := &models.Calculation{
		ID:              s.newID(),
		CalculationType: input.CalculationType,
		MeterType:       input.MeterType,
		PreviousReading: input.PreviousReading,
		CurrentReading:  input.CurrentReading,
		Consumption:     input.Consumption,
		Amount:          input.Amount,
		TotalCost:       input.TotalCost,
		Breakdown:       input.Breakdown,
		Timestamp:       s.now(),
	}
	if err := s.repo.Create(ctx, calc); err != nil {
		return nil, fmt.Errorf("store calculation: %w", err)
	}

	s.logger.Info("calculation stored",
		zap.String("id", calc.ID),
		zap.String("calculation_type", calc.CalculationType),
		zap.String("meter_type", calc.MeterType),
	)
	if s.publisher != nil {
		s.publisher.PublishCalculation(*calc)
	}
	return calc, nil
}

// ListCalculations returns history newest first. limit <= 0 selects the default.
func (s *CalculatorService) ListCalculations(ctx context.Context, limit int) ([]models.Calculation, error) {
	if limit <= 0 {
		limit = s.historyLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	calcs, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if calcs == nil {
		calcs = []models.Calculation{}
	}
	return calcs, nil
}

// ClearCalculations deletes all history.
func (s *CalculatorService) ClearCalculations(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("calculations cleared", zap.Int64("deleted_count", n))
	return n, nil
}

func (s *CalculatorService) validateInput(input models.CalculationInput) error {
	switch input.CalculationType {
	case models.CalculationKWToMoney, models.CalculationMoneyToKW:
	default:
		return fmt.Errorf("%w: calculation_type must be %q or %q", ErrInvalidCalculation,
			models.CalculationKWToMoney, models.CalculationMoneyToKW)
	}
	if strings.TrimSpace(input.MeterType) == "" {
		return fmt.Errorf("%w: meter_type required", ErrInvalidCalculation)
	}
	if _, err := s.engine.Table().Lookup(input.MeterType); err != nil {
		return err
	}
	return nil
}

func validReading(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
