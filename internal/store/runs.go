package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/ramsesyok/billiards/internal/models"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// RunStore writes the simulation_runs audit log to PostgreSQL.
type RunStore struct {
	db *sqlx.DB
}

func NewRunStore(db *sqlx.DB) *RunStore {
	return &RunStore{db: db}
}

// CreateRun inserts a new run. CreatedAt is set by the database.
func (s *RunStore) CreateRun(ctx context.Context, run *models.SimulationRun) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO simulation_runs (
			id, session_id, created_at, table_width, table_height, friction, magnus, spin_decay,
			ball_count, cue_speed, cue_spin, frames, elapsed_seconds, status
		) VALUES (
			:id, :session_id, NOW(), :table_width, :table_height, :friction, :magnus, :spin_decay,
			:ball_count, :cue_speed, :cue_spin, :frames, :elapsed_seconds, :status
		)`, run)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// FinishRun stamps the run's final status, frame count and simulated time.
func (s *RunStore) FinishRun(ctx context.Context, id, status string, frames int, elapsed float64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE simulation_runs SET finished_at = NOW(), status = $2, frames = $3, elapsed_seconds = $4 WHERE id = $1`,
		id, status, frames, elapsed,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (s *RunStore) GetRun(ctx context.Context, id string) (*models.SimulationRun, error) {
	var run models.SimulationRun
	err := s.db.GetContext(ctx, &run, `SELECT * FROM simulation_runs WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return &run, nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *RunStore) RecentRuns(ctx context.Context, limit int) ([]models.SimulationRun, error) {
	if limit <= 0 {
		limit = 50
	}
	runs := []models.SimulationRun{}
	if err := s.db.SelectContext(ctx, &runs, `SELECT * FROM simulation_runs ORDER BY created_at DESC LIMIT $1`, limit); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}
