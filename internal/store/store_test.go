package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ramsesyok/billiards/internal/database"
	"github.com/ramsesyok/billiards/internal/game"
	"github.com/ramsesyok/billiards/internal/migrations"
	"github.com/ramsesyok/billiards/internal/models"
	"github.com/ramsesyok/billiards/internal/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameChannelRoundTrip(t *testing.T) {
	id := uuid.NewString()
	got, ok := SessionFromChannel(FrameChannel(id))
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = SessionFromChannel("idle_events")
	assert.False(t, ok)
	_, ok = SessionFromChannel(FrameChannelPrefix)
	assert.False(t, ok)
}

// The tests below need live services and are skipped unless
// TEST_REDIS_URL / TEST_DATABASE_URL are set.

func TestFrameStoreAgainstRedis(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	rdb, err := redis.Connect(url)
	require.NoError(t, err)
	defer rdb.Close()

	ctx := context.Background()
	fs := NewFrameStore(rdb, time.Minute)
	id := uuid.NewString()

	_, err = fs.LatestFrame(ctx, id)
	assert.ErrorIs(t, err, ErrNoFrame)

	sub := fs.Subscribe(ctx)
	defer sub.Close()
	_, err = sub.Receive(ctx) // subscription confirmation
	require.NoError(t, err)

	engine := game.NineFootTable().NewEngine()
	game.DefaultBreak(engine.TableWidth(), engine.TableHeight(), game.DefaultBallRadius).Apply(engine)
	frame := engine.Snapshot(1, 1.0/60)
	require.NoError(t, fs.PublishFrame(ctx, id, frame))

	cached, err := fs.LatestFrame(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, frame, *cached)

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, FrameChannel(id), msg.Channel)

	require.NoError(t, fs.DeleteFrames(ctx, id))
	_, err = fs.LatestFrame(ctx, id)
	assert.ErrorIs(t, err, ErrNoFrame)
}

func TestRunStoreAgainstPostgres(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, migrations.RunMigrations(url, "../../migrations"))
	db, err := database.Connect(url)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	rs := NewRunStore(db)
	run := &models.SimulationRun{
		ID:          uuid.NewString(),
		SessionID:   uuid.NewString(),
		TableWidth:  2.7432,
		TableHeight: 1.3716,
		Friction:    0.02,
		Magnus:      0.0005,
		SpinDecay:   1,
		BallCount:   10,
		CueSpeed:    3.16,
		CueSpin:     30,
		Status:      models.RunStatusRunning,
	}
	require.NoError(t, rs.CreateRun(ctx, run))
	require.NoError(t, rs.FinishRun(ctx, run.ID, models.RunStatusSettled, 1200, 20))

	got, err := rs.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusSettled, got.Status)
	assert.Equal(t, 1200, got.Frames)
	assert.True(t, got.FinishedAt.Valid)

	recent, err := rs.RecentRuns(ctx, 5)
	require.NoError(t, err)
	assert.NotEmpty(t, recent)

	_, err = rs.GetRun(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.ErrorIs(t, rs.FinishRun(ctx, uuid.NewString(), models.RunStatusSettled, 0, 0), ErrRunNotFound)
}
