package scoreboard

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quizdash/server/internal/domain"
	ws "github.com/quizdash/server/pkg/http/ws"
)

// feedSink is the hub surface the broadcaster needs.
type feedSink interface {
	BroadcastAll(msg ws.Message) error
}

// FeedUpdate is the frame pushed to WebSocket subscribers after each
// accepted submission: the new result plus the fresh top-scorer list.
type FeedUpdate struct {
	Latest     ResultEvent               `json:"latest"`
	TopScorers []domain.LeaderboardEntry `json:"topScorers"`
}

// topScorerSource lets the broadcaster refresh the leaderboard on demand.
type topScorerSource interface {
	TopScorers(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// Broadcaster listens for Redis Pub/Sub result announcements and forwards
// scoreboard updates to all connected WebSocket clients.
type Broadcaster struct {
	redis   *redis.Client
	sink    feedSink
	stats   topScorerSource
	channel string
	topN    int
	logger  zerolog.Logger
}

// NewBroadcaster creates a Pub/Sub powered scoreboard broadcaster.
func NewBroadcaster(redisClient *redis.Client, sink feedSink, statsSource topScorerSource, channel string, topN int, logger zerolog.Logger) *Broadcaster {
	if channel == "" {
		channel = DefaultChannel
	}
	if topN <= 0 {
		topN = 10
	}
	return &Broadcaster{
		redis:   redisClient,
		sink:    sink,
		stats:   statsSource,
		channel: channel,
		topN:    topN,
		logger:  logger.With().Str("component", "scoreboard_broadcaster").Logger(),
	}
}

// Run subscribes to the announcement channel and blocks until the context
// is cancelled.
func (b *Broadcaster) Run(ctx context.Context) error {
	if b.redis == nil || b.sink == nil {
		return nil
	}

	sub := b.redis.Subscribe(ctx, b.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.forward(ctx, msg.Payload)
		}
	}
}

func (b *Broadcaster) forward(ctx context.Context, payload string) {
	var evt ResultEvent
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		b.logger.Warn().Err(err).Msg("failed to decode result event")
		return
	}

	update := FeedUpdate{Latest: evt}
	if b.stats != nil {
		if top, err := b.stats.TopScorers(ctx, b.topN); err == nil {
			update.TopScorers = top
		} else {
			b.logger.Warn().Err(err).Msg("failed to refresh top scorers for feed")
		}
	}

	raw, err := json.Marshal(update)
	if err != nil {
		b.logger.Warn().Err(err).Msg("failed to marshal feed update")
		return
	}

	if err := b.sink.BroadcastAll(ws.Message{Type: ws.TypeScoreboardUpdate, Payload: raw}); err != nil {
		b.logger.Warn().Err(err).Msg("failed to broadcast feed update")
	}
}
