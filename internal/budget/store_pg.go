package budget

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

type pgStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed budget store.
func NewPGStore(db *sql.DB) *pgStore {
	return &pgStore{DB: db}
}

func (s *pgStore) EnsurePeriod(ctx context.Context, key string, limit float64) (Period, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Period{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	p, err := s.lockAndEnsure(ctx, tx, key, limit)
	if err != nil {
		return Period{}, err
	}
	if err = tx.Commit(); err != nil {
		return Period{}, err
	}
	return p, nil
}

func (s *pgStore) GetPeriod(ctx context.Context, key string) (Period, error) {
	row := s.DB.QueryRowContext(ctx, `
SELECT period_key, total_cost, budget_limit, num_analyses, breakdown
FROM budget_periods WHERE period_key = $1`, key)
	p, err := scanPeriod(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Period{}, ErrPeriodNotFound
		}
		return Period{}, err
	}
	return p, nil
}

func (s *pgStore) AddCosts(ctx context.Context, key string, limit float64, costs map[string]float64, countAnalysis bool) (Period, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Period{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	p, err := s.lockAndEnsure(ctx, tx, key, limit)
	if err != nil {
		return Period{}, err
	}

	for service, cost := range costs {
		p.Breakdown[service] += cost
		p.TotalCost += cost
	}
	if countAnalysis {
		p.NumAnalyses++
	}

	breakdown, err := json.Marshal(p.Breakdown)
	if err != nil {
		return Period{}, err
	}
	if _, err = tx.ExecContext(ctx, `
UPDATE budget_periods
SET total_cost = $1, num_analyses = $2, breakdown = $3, updated_at = $4
WHERE period_key = $5`,
		p.TotalCost, p.NumAnalyses, breakdown, time.Now().UTC(), key); err != nil {
		return Period{}, err
	}
	if err = tx.Commit(); err != nil {
		return Period{}, err
	}
	return p, nil
}

func (s *pgStore) SetLimit(ctx context.Context, key string, limit float64) (Period, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Period{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	p, err := s.lockAndEnsure(ctx, tx, key, limit)
	if err != nil {
		return Period{}, err
	}
	p.BudgetLimit = limit
	if _, err = tx.ExecContext(ctx, `
UPDATE budget_periods SET budget_limit = $1, updated_at = $2 WHERE period_key = $3`,
		limit, time.Now().UTC(), key); err != nil {
		return Period{}, err
	}
	if err = tx.Commit(); err != nil {
		return Period{}, err
	}
	return p, nil
}

func (s *pgStore) RecordEvent(ctx context.Context, event ChargeEvent) error {
	costs, err := json.Marshal(event.Costs)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `
INSERT INTO charge_events (id, period_key, tender_id, costs, created_at)
VALUES ($1, $2, $3, $4, $5)`,
		event.ID, event.PeriodKey, event.TenderID, costs, event.Timestamp)
	return err
}

func (s *pgStore) ListRecent(ctx context.Context, limit int) ([]ChargeEvent, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, period_key, tender_id, costs, created_at
FROM charge_events ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []ChargeEvent
	for rows.Next() {
		var e ChargeEvent
		var costs []byte
		if err := rows.Scan(&e.ID, &e.PeriodKey, &e.TenderID, &costs, &e.Timestamp); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(costs, &e.Costs); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *pgStore) lockAndEnsure(ctx context.Context, tx *sql.Tx, key string, limit float64) (Period, error) {
	row := tx.QueryRowContext(ctx, `
SELECT period_key, total_cost, budget_limit, num_analyses, breakdown
FROM budget_periods WHERE period_key = $1 FOR UPDATE`, key)
	p, err := scanPeriod(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			p = Period{
				PeriodKey:   key,
				BudgetLimit: limit,
				Breakdown:   make(map[string]float64),
			}
			if _, err = tx.ExecContext(ctx, `
INSERT INTO budget_periods (period_key, total_cost, budget_limit, num_analyses, breakdown)
VALUES ($1, 0, $2, 0, '{}'::jsonb)`, key, limit); err != nil {
				return Period{}, err
			}
			return p, nil
		}
		return Period{}, err
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPeriod(row rowScanner) (Period, error) {
	var p Period
	var breakdown []byte
	if err := row.Scan(&p.PeriodKey, &p.TotalCost, &p.BudgetLimit, &p.NumAnalyses, &breakdown); err != nil {
		return Period{}, err
	}
	p.Breakdown = make(map[string]float64)
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &p.Breakdown); err != nil {
			return Period{}, err
		}
	}
	return p, nil
}
