package ws

import (
	"context"

	"github.com/ramsesyok/billiards/internal/store"
	"go.uber.org/zap"
)

// RunFrameSubscriber relays frames published to Redis into the hub, so every
// server instance serves the frames of sessions simulated on any instance.
func RunFrameSubscriber(ctx context.Context, hub *Hub, frames *store.FrameStore) error {
	pubsub := frames.Subscribe(ctx)
	defer pubsub.Close()

	logger := hub.logger.Named("subscriber")
	logger.Info("Frame subscriber started")
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Frame subscriber stopping")
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			sessionID, ok := store.SessionFromChannel(msg.Channel)
			if !ok {
				logger.Debug("Ignoring message on unexpected channel", zap.String("channel", msg.Channel))
				continue
			}
			hub.relayFrame(sessionID, []byte(msg.Payload))
		}
	}
}
