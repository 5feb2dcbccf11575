package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"meterbill/backend/services/tariff-service/internal/models"
)

// CalculationsSchema creates the history table.
var CalculationsSchema = []string{
	`CREATE TABLE IF NOT EXISTS electricity_calculations (
		id               TEXT PRIMARY KEY,
		calculation_type TEXT NOT NULL,
		meter_type       TEXT NOT NULL,
		previous_reading DOUBLE PRECISION,
		current_reading  DOUBLE PRECISION,
		consumption      DOUBLE PRECISION,
		amount           DOUBLE PRECISION,
		total_cost       DOUBLE PRECISION,
		breakdown        JSONB,
		created_at       TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS electricity_calculations_created_at_idx
		ON electricity_calculations (created_at DESC)`,
}

// PostgresCalculationRepository persists history in postgres.
type PostgresCalculationRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCalculationRepository returns repository.
func NewPostgresCalculationRepository(pool *pgxpool.Pool) *PostgresCalculationRepository {
	return &PostgresCalculationRepository{pool: pool}
}

// Create inserts a calculation.
func (r *PostgresCalculationRepository) Create(ctx context.Context, calc *models.Calculation) error {
	breakdown, err := encodeBreakdown(calc.Breakdown)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO electricity_calculations
			(id, calculation_type, meter_type, previous_reading, current_reading,
			 consumption, amount, total_cost, breakdown, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.pool.Exec(ctx, query,
		calc.ID,
		calc.CalculationType,
		calc.MeterType,
		calc.PreviousReading,
		calc.CurrentReading,
		calc.Consumption,
		calc.Amount,
		calc.TotalCost,
		breakdown,
		calc.Timestamp,
	)
	return err
}

// List returns latest calculations.
func (r *PostgresCalculationRepository) List(ctx context.Context, limit int) ([]models.Calculation, error) {
	const query = `
		SELECT id, calculation_type, meter_type, previous_reading, current_reading,
		       consumption, amount, total_cost, breakdown, created_at
		FROM electricity_calculations
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calcs []models.Calculation
	for rows.Next() {
		var (
			c   models.Calculation
			raw []byte
		)
		if err := rows.Scan(
			&c.ID,
			&c.CalculationType,
			&c.MeterType,
			&c.PreviousReading,
			&c.CurrentReading,
			&c.Consumption,
			&c.Amount,
			&c.TotalCost,
			&raw,
			&c.Timestamp,
		); err != nil {
			return nil, err
		}
		if c.Breakdown, err = decodeBreakdown(raw); err != nil {
			return nil, err
		}
		c.Timestamp = c.Timestamp.UTC()
		calcs = append(calcs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return calcs, nil
}

// DeleteAll removes every calculation.
func (r *PostgresCalculationRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM electricity_calculations`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// encodeBreakdown returns nil for a missing breakdown so the column stays NULL.
func encodeBreakdown(lines []models.BreakdownLine) (*string, error) {
	if lines == nil {
		return nil, nil
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("repository: encode breakdown: %w", err)
	}
	s := string(data)
	return &s, nil
}

func decodeBreakdown(raw []byte) ([]models.BreakdownLine, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var lines []models.BreakdownLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("repository: decode breakdown: %w", err)
	}
	return lines, nil
}
