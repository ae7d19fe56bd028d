package models

import (
	"database/sql"
	"time"
)

// Run statuses
const (
	RunStatusRunning   = "RUNNING"
	RunStatusSettled   = "SETTLED"
	RunStatusAbandoned = "ABANDONED"
)

// SimulationRun is the audit record of one shot simulated by a session.
type SimulationRun struct {
	ID             string       `db:"id" json:"id"`
	SessionID      string       `db:"session_id" json:"session_id"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	FinishedAt     sql.NullTime `db:"finished_at" json:"finished_at,omitempty"`
	TableWidth     float64      `db:"table_width" json:"table_width"`
	TableHeight    float64      `db:"table_height" json:"table_height"`
	Friction       float64      `db:"friction" json:"friction"`
	Magnus         float64      `db:"magnus" json:"magnus"`
	SpinDecay      float64      `db:"spin_decay" json:"spin_decay"`
	BallCount      int          `db:"ball_count" json:"ball_count"`
	CueSpeed       float64      `db:"cue_speed" json:"cue_speed"`
	CueSpin        float64      `db:"cue_spin" json:"cue_spin"`
	Frames         int          `db:"frames" json:"frames"`
	ElapsedSeconds float64      `db:"elapsed_seconds" json:"elapsed_seconds"`
	Status         string       `db:"status" json:"status"`
}
