package store

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/lazypower/decay/internal/decay"
)

// Calculation is one recorded decay evaluation.
type Calculation struct {
	ID        int64
	RunID     string
	Result    decay.Result
	Strict    bool
	CreatedAt int64 // unix millis
}

// RecordCalculation stores r and returns the stored row.
func (db *DB) RecordCalculation(r decay.Result, strict bool) (*Calculation, error) {
	c := &Calculation{
		RunID:     uuid.NewString(),
		Result:    r,
		Strict:    strict,
		CreatedAt: time.Now().UnixMilli(),
	}
	res, err := db.Exec(`
		INSERT INTO calculations (run_id, initial_amount, decay_rate, elapsed_time, decayed_amount, strict, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.RunID,
		toSQL(r.InitialAmount), toSQL(r.DecayRate), toSQL(r.ElapsedTime), toSQL(r.DecayedAmount),
		boolToInt(strict), c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert calculation: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return c, nil
}

// GetCalculation returns the calculation with the given run id, or nil.
func (db *DB) GetCalculation(runID string) (*Calculation, error) {
	row := db.QueryRow(`
		SELECT id, run_id, initial_amount, decay_rate, elapsed_time, decayed_amount, strict, created_at
		FROM calculations WHERE run_id = ?`, runID)
	c, err := scanCalculation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get calculation %s: %w", runID, err)
	}
	return c, nil
}

// RecentCalculations returns up to limit calculations, newest first.
func (db *DB) RecentCalculations(limit int) ([]Calculation, error) {
	rows, err := db.Query(`
		SELECT id, run_id, initial_amount, decay_rate, elapsed_time, decayed_amount, strict, created_at
		FROM calculations ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query calculations: %w", err)
	}
	defer rows.Close()

	var out []Calculation
	for rows.Next() {
		c, err := scanCalculation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan calculation: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// CountCalculations returns the number of recorded calculations.
func (db *DB) CountCalculations() (int, error) {
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM calculations").Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCalculation(s scanner) (*Calculation, error) {
	var (
		initial, rate, elapsed, decayed sql.NullFloat64
		strict                          int
	)
	calc := &Calculation{}
	if err := s.Scan(&calc.ID, &calc.RunID, &initial, &rate, &elapsed, &decayed, &strict, &calc.CreatedAt); err != nil {
		return nil, err
	}
	calc.Result = decay.Result{
		Params: decay.Params{
			InitialAmount: fromSQL(initial),
			DecayRate:     fromSQL(rate),
			ElapsedTime:   fromSQL(elapsed),
		},
		DecayedAmount: fromSQL(decayed),
	}
	calc.Strict = strict != 0
	return calc, nil
}

func toSQL(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func fromSQL(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
