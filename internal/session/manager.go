package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ramsesyok/billiards/internal/config"
	"github.com/ramsesyok/billiards/internal/game"
	"github.com/ramsesyok/billiards/internal/models"
	"github.com/ramsesyok/billiards/internal/observability"
	"go.uber.org/zap"
)

var (
	ErrNotFound     = errors.New("session not found")
	ErrLimitReached = errors.New("session limit reached")
	ErrInvalidShot  = errors.New("invalid shot")
	ErrInvalidStep  = errors.New("invalid step")
)

// RunRecorder keeps the audit log of simulated shots.
type RunRecorder interface {
	CreateRun(ctx context.Context, run *models.SimulationRun) error
	FinishRun(ctx context.Context, id, status string, frames int, elapsed float64) error
}

// FramePublisher receives every frame the runner produces.
type FramePublisher interface {
	PublishFrame(ctx context.Context, sessionID string, frame game.Frame) error
}

type nopRecorder struct{}

func (nopRecorder) CreateRun(context.Context, *models.SimulationRun) error { return nil }
func (nopRecorder) FinishRun(context.Context, string, string, int, float64) error { return nil }

// Manager owns every live session.
type Manager struct {
	sessions         map[string]*Session
	table            game.Table
	ballRadius       float64
	maxSessions      int
	maxFramesPerStep int
	recorder         RunRecorder
	logger           *zap.Logger
	now              func() time.Time
	mu               sync.RWMutex
}

// NewManager builds a manager for the table described by cfg. A nil recorder
// disables the run log.
func NewManager(cfg *config.Config, recorder RunRecorder) *Manager {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Manager{
		sessions: make(map[string]*Session),
		table: game.Table{
			Width:     cfg.TableWidth,
			Height:    cfg.TableHeight,
			Friction:  cfg.Friction,
			Magnus:    cfg.Magnus,
			SpinDecay: cfg.SpinDecay,
		},
		ballRadius:       cfg.BallRadius,
		maxSessions:      cfg.MaxSessions,
		maxFramesPerStep: cfg.MaxFramesPerStep,
		recorder:         recorder,
		logger:           observability.GetLogger().Named("session"),
		now:              time.Now,
	}
}

// Table returns the table every session is simulated on.
func (m *Manager) Table() game.Table {
	return m.table
}

// BallRadius is the radius used when a shot does not name one.
func (m *Manager) BallRadius() float64 {
	return m.ballRadius
}

// Create racks a new session and returns it with its first frame.
func (m *Manager) Create(ctx context.Context, req ShotRequest) (*Session, game.Frame, error) {
	b, err := req.resolve(m.table, m.ballRadius)
	if err != nil {
		return nil, game.Frame{}, err
	}

	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		Realtime:  req.Realtime,
		engine:    m.table.NewEngine(),
	}

	m.mu.Lock()
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		m.mu.Unlock()
		return nil, game.Frame{}, ErrLimitReached
	}
	m.sessions[s.ID] = s
	m.mu.Unlock()

	s.mu.Lock()
	s.shoot(b, uuid.NewString(), now)
	frame := s.engine.Snapshot(s.frame, s.elapsed)
	run := m.newRun(s)
	s.mu.Unlock()

	m.record(ctx, run)
	m.logger.Info("Session created",
		zap.String("session_id", s.ID),
		zap.Int("balls", len(frame.Balls)),
		zap.Bool("realtime", s.Realtime))
	return s, frame, nil
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Snapshot returns the current frame of a session.
func (m *Manager) Snapshot(id string) (game.Frame, error) {
	s, err := m.Get(id)
	if err != nil {
		return game.Frame{}, err
	}
	return s.Snapshot(), nil
}

// Delete removes a session. A run still in motion is logged as abandoned.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	if end := s.abandon(); end != nil {
		m.finish(ctx, s.ID, end, models.RunStatusAbandoned)
	}
	m.logger.Info("Session deleted", zap.String("session_id", id))
	return nil
}

// List returns every session, oldest first.
func (m *Manager) List() []Info {
	all := m.all()
	infos := make([]Info, 0, len(all))
	for _, s := range all {
		infos = append(infos, s.Info())
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return infos
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Step advances a session by frames updates of dt seconds.
func (m *Manager) Step(ctx context.Context, id string, dt float64, frames int) (game.Frame, error) {
	if dt <= 0 {
		return game.Frame{}, fmt.Errorf("%w: dt must be positive", ErrInvalidStep)
	}
	if frames < 1 || (m.maxFramesPerStep > 0 && frames > m.maxFramesPerStep) {
		return game.Frame{}, fmt.Errorf("%w: frames must be between 1 and %d", ErrInvalidStep, m.maxFramesPerStep)
	}

	s, err := m.Get(id)
	if err != nil {
		return game.Frame{}, err
	}
	frame, end := s.advance(dt, frames, m.now())
	if end != nil {
		m.finish(ctx, s.ID, end, models.RunStatusSettled)
	}
	return frame, nil
}

// Reset re-racks a session with a new shot. A run still in motion is logged
// as abandoned and a new run is opened.
func (m *Manager) Reset(ctx context.Context, id string, req ShotRequest) (game.Frame, error) {
	b, err := req.resolve(m.table, m.ballRadius)
	if err != nil {
		return game.Frame{}, err
	}
	s, err := m.Get(id)
	if err != nil {
		return game.Frame{}, err
	}

	s.mu.Lock()
	end := s.closeRun()
	s.shoot(b, uuid.NewString(), m.now())
	frame := s.engine.Snapshot(s.frame, s.elapsed)
	run := m.newRun(s)
	s.mu.Unlock()

	if end != nil {
		m.finish(ctx, s.ID, end, models.RunStatusAbandoned)
	}
	m.record(ctx, run)
	m.logger.Info("Session reset", zap.String("session_id", id), zap.String("run_id", run.ID))
	return frame, nil
}

// ReapIdle deletes sessions with no activity for maxIdle and returns how many
// were removed.
func (m *Manager) ReapIdle(ctx context.Context, maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)
	reaped := 0
	for _, s := range m.all() {
		if s.idleSince().After(cutoff) {
			continue
		}
		if err := m.Delete(ctx, s.ID); err == nil {
			reaped++
		}
	}
	return reaped
}

// realtime returns the sessions the runner should advance.
func (m *Manager) realtime() []*Session {
	var out []*Session
	for _, s := range m.all() {
		if s.Realtime && s.Status() == StatusRunning {
			out = append(out, s)
		}
	}
	return out
}

func (m *Manager) all() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// newRun builds the run log entry for the shot just taken. Callers hold s.mu.
func (m *Manager) newRun(s *Session) *models.SimulationRun {
	status := models.RunStatusRunning
	if s.status == StatusSettled {
		status = models.RunStatusSettled
	}
	return &models.SimulationRun{
		ID:          s.runID,
		SessionID:   s.ID,
		CreatedAt:   s.lastActivity,
		TableWidth:  m.table.Width,
		TableHeight: m.table.Height,
		Friction:    m.table.Friction,
		Magnus:      m.table.Magnus,
		SpinDecay:   m.table.SpinDecay,
		BallCount:   len(s.engine.Balls()),
		CueSpeed:    s.cueSpeed,
		CueSpin:     s.cueSpin,
		Status:      status,
	}
}

func (m *Manager) record(ctx context.Context, run *models.SimulationRun) {
	if err := m.recorder.CreateRun(ctx, run); err != nil {
		m.logger.Error("Failed to record run", zap.String("run_id", run.ID), zap.Error(err))
	}
}

func (m *Manager) finish(ctx context.Context, sessionID string, end *runEnd, status string) {
	runID, frames, elapsed := end.runID, end.frames, end.elapsed
	if err := m.recorder.FinishRun(ctx, runID, status, frames, elapsed); err != nil {
		m.logger.Error("Failed to finish run",
			zap.String("run_id", runID), zap.String("status", status), zap.Error(err))
		return
	}
	m.logger.Info("Run finished",
		zap.String("session_id", sessionID),
		zap.String("run_id", runID),
		zap.String("status", status),
		zap.Int("frames", frames),
		zap.Float64("elapsed", elapsed))
}
