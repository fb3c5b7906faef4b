package scoreboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quizdash/server/internal/domain"
)

// DefaultChannel is the Redis Pub/Sub channel for result announcements.
const DefaultChannel = "scoreboard:updates"

// ResultEvent is the wire form of one accepted submission, announced over
// Redis so every API instance can push it to its WebSocket subscribers.
type ResultEvent struct {
	Username       string    `json:"username"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CorrectAnswers int       `json:"correctAnswers"`
	CompletedAt    time.Time `json:"completedAt"`
}

// Publisher announces accepted submissions on a Redis channel. Redis is a
// transport only; the ledger in Postgres stays the source of truth.
type Publisher struct {
	redis   *redis.Client
	channel string
	logger  zerolog.Logger
}

// NewPublisher creates a scoreboard announcement publisher.
func NewPublisher(redisClient *redis.Client, channel string, logger zerolog.Logger) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{
		redis:   redisClient,
		channel: channel,
		logger:  logger.With().Str("component", "scoreboard_publisher").Logger(),
	}
}

// Announce publishes one result. Failures are reported but must never fail
// the submission that triggered them; the caller decides whether to log.
func (p *Publisher) Announce(ctx context.Context, row domain.UserResult) error {
	if p.redis == nil {
		return nil
	}

	evt := ResultEvent{
		Username:       row.Username,
		Score:          row.Result.Score,
		TotalQuestions: row.Result.TotalQuestions,
		CorrectAnswers: row.Result.CorrectAnswers,
		CompletedAt:    row.Result.CompletedAt,
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal result event: %w", err)
	}

	if err := p.redis.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publish result event: %w", err)
	}
	return nil
}
