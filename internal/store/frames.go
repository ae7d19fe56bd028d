package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ramsesyok/billiards/internal/game"
	"github.com/redis/go-redis/v9"
)

// ErrNoFrame is returned when no frame is cached for a session.
var ErrNoFrame = errors.New("no cached frame")

// FrameChannelPrefix prefixes the pub/sub channel frames are published on.
const FrameChannelPrefix = "frames:"

// FrameStore caches each session's latest frame in Redis and publishes every
// frame on frames:<session>.
type FrameStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewFrameStore(rdb *redis.Client, ttl time.Duration) *FrameStore {
	return &FrameStore{rdb: rdb, ttl: ttl}
}

func frameKey(sessionID string) string {
	return "session:" + sessionID + ":frame"
}

// FrameChannel is the pub/sub channel for a session's frames.
func FrameChannel(sessionID string) string {
	return FrameChannelPrefix + sessionID
}

// SessionFromChannel extracts the session ID from a frame channel name.
func SessionFromChannel(channel string) (string, bool) {
	if !strings.HasPrefix(channel, FrameChannelPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(channel, FrameChannelPrefix)
	return id, id != ""
}

// PublishFrame caches the frame and publishes it to subscribers.
func (s *FrameStore) PublishFrame(ctx context.Context, sessionID string, frame game.Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.SetEx(ctx, frameKey(sessionID), data, s.ttl)
	pipe.Publish(ctx, FrameChannel(sessionID), data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish frame for session %s: %w", sessionID, err)
	}
	return nil
}

// LatestFrame returns the last frame cached for the session.
func (s *FrameStore) LatestFrame(ctx context.Context, sessionID string) (*game.Frame, error) {
	data, err := s.rdb.Get(ctx, frameKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoFrame
	}
	if err != nil {
		return nil, fmt.Errorf("get frame for session %s: %w", sessionID, err)
	}

	var frame game.Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("decode frame for session %s: %w", sessionID, err)
	}
	return &frame, nil
}

// DeleteFrames drops the cached frame of a session.
func (s *FrameStore) DeleteFrames(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, frameKey(sessionID)).Err()
}

// Subscribe listens on every session's frame channel.
func (s *FrameStore) Subscribe(ctx context.Context) *redis.PubSub {
	return s.rdb.PSubscribe(ctx, FrameChannelPrefix+"*")
}
