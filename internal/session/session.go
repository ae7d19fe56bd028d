package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/ramsesyok/billiards/internal/game"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusRunning Status = "RUNNING" // at least one ball is moving
	StatusSettled Status = "SETTLED" // every ball is at rest
)

// ShotRequest describes a break. Zero-valued fields fall back to the default
// break for the configured table.
type ShotRequest struct {
	CuePos      *game.Vec2  `json:"cue_pos,omitempty"`
	CueVel      *game.Vec2  `json:"cue_vel,omitempty"`
	CueSpin     *float64    `json:"cue_spin,omitempty"`
	RackCenter  *game.Vec2  `json:"rack_center,omitempty"`
	Rack        string      `json:"rack,omitempty"`         // named layout, see game.RackNames
	RackOffsets []game.Vec2 `json:"rack_offsets,omitempty"` // wins over Rack
	BallRadius  float64     `json:"ball_radius,omitempty"`
	Realtime    bool        `json:"realtime"` // advanced by the runner at the configured frame rate
}

// resolve fills the request's gaps from the default break.
func (r ShotRequest) resolve(table game.Table, defaultRadius float64) (game.Break, error) {
	radius := r.BallRadius
	if radius == 0 {
		radius = defaultRadius
	}
	if radius < 0 {
		return game.Break{}, fmt.Errorf("%w: ball radius must be positive", ErrInvalidShot)
	}

	b := game.DefaultBreak(table.Width, table.Height, radius)
	if r.CuePos != nil {
		b.CuePos = *r.CuePos
	}
	if r.CueVel != nil {
		b.CueVel = *r.CueVel
	}
	if r.CueSpin != nil {
		b.CueSpin = *r.CueSpin
	}
	if r.RackCenter != nil {
		b.RackCenter = *r.RackCenter
	}
	switch {
	case r.RackOffsets != nil:
		b.RackOffsets = r.RackOffsets
	case r.Rack != "":
		offsets, err := game.RackByName(r.Rack, radius)
		if err != nil {
			return game.Break{}, fmt.Errorf("%w: %v", ErrInvalidShot, err)
		}
		b.RackOffsets = offsets
	}
	return b, nil
}

// Session owns one physics engine. All engine access goes through the
// session's mutex, so the engine itself stays single-threaded.
type Session struct {
	ID        string
	CreatedAt time.Time
	Realtime  bool

	mu           sync.Mutex
	engine       *game.PhysicsEngine
	runID        string
	frame        int
	elapsed      float64
	status       Status
	lastActivity time.Time
	cueSpeed     float64
	cueSpin      float64
	runClosed    bool // the current run has been finished in the run log
}

// runEnd is the run log entry written when a run stops.
type runEnd struct {
	runID   string
	frames  int
	elapsed float64
}

// Info is a summary of a session for listings.
type Info struct {
	ID           string    `json:"id"`
	RunID        string    `json:"run_id"`
	Status       Status    `json:"status"`
	Realtime     bool      `json:"realtime"`
	Frame        int       `json:"frame"`
	Elapsed      float64   `json:"elapsed"`
	BallCount    int       `json:"ball_count"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

// shoot re-racks the engine. Callers hold s.mu.
func (s *Session) shoot(b game.Break, runID string, now time.Time) {
	b.Apply(s.engine)
	s.runID = runID
	s.frame = 0
	s.elapsed = 0
	s.status = StatusRunning
	s.lastActivity = now
	s.cueSpeed = b.CueVel.Length()
	s.cueSpin = b.CueSpin
	s.runClosed = false
	if s.engine.AllStopped() {
		s.status = StatusSettled
		s.runClosed = true
	}
}

// closeRun marks a running run as finished and returns its log entry, or nil
// when the run already ended. Callers hold s.mu.
func (s *Session) closeRun() *runEnd {
	if s.status != StatusRunning || s.runClosed {
		return nil
	}
	s.runClosed = true
	return &runEnd{runID: s.runID, frames: s.frame, elapsed: s.elapsed}
}

// abandon closes the current run if it is still in motion.
func (s *Session) abandon() *runEnd {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeRun()
}

// advance runs frames engine updates of dt seconds. end is non-nil when this
// call settled a run that still has to be finished in the run log.
func (s *Session) advance(dt float64, frames int, now time.Time) (frame game.Frame, end *runEnd) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < frames; i++ {
		s.engine.Update(dt)
		s.frame++
		s.elapsed += dt
	}
	s.lastActivity = now

	if s.status == StatusRunning && s.engine.AllStopped() {
		end = s.closeRun()
		s.status = StatusSettled
	}
	return s.engine.Snapshot(s.frame, s.elapsed), end
}

// Snapshot copies the current table.
func (s *Session) Snapshot() game.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot(s.frame, s.elapsed)
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		ID:           s.ID,
		RunID:        s.runID,
		Status:       s.status,
		Realtime:     s.Realtime,
		Frame:        s.frame,
		Elapsed:      s.elapsed,
		BallCount:    len(s.engine.Balls()),
		CreatedAt:    s.CreatedAt,
		LastActivity: s.lastActivity,
	}
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}
