package scoreboard

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/quizdash/server/internal/domain"
	ws "github.com/quizdash/server/pkg/http/ws"
)

type captureSink struct {
	messages chan ws.Message
}

func (c *captureSink) BroadcastAll(msg ws.Message) error {
	c.messages <- msg
	return nil
}

type fixedTopScorers struct {
	entries []domain.LeaderboardEntry
}

func (f *fixedTopScorers) TopScorers(context.Context, int) ([]domain.LeaderboardEntry, error) {
	return f.entries, nil
}

func TestPublisherAnnounceNilRedis(t *testing.T) {
	p := NewPublisher(nil, "", zerolog.Nop())
	err := p.Announce(context.Background(), domain.UserResult{Username: "alice"})
	assert.NoError(t, err)
}

func TestAnnounceReachesSubscribers(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &captureSink{messages: make(chan ws.Message, 1)}
	top := &fixedTopScorers{entries: []domain.LeaderboardEntry{
		{Username: "alice", BestScore: 90, AverageScore: 80, TotalQuizzes: 2},
	}}

	b := NewBroadcaster(client, sink, top, "", 10, zerolog.Nop())
	go b.Run(ctx)

	// Give the subscriber a moment to attach before publishing.
	assert.Eventually(t, func() bool {
		return client.PubSubNumSub(ctx, DefaultChannel).Val()[DefaultChannel] > 0
	}, time.Second, 10*time.Millisecond)

	completed := time.Now().UTC().Truncate(time.Second)
	p := NewPublisher(client, "", zerolog.Nop())
	err := p.Announce(ctx, domain.UserResult{
		Username: "alice",
		Result: domain.QuizResult{
			Score:          90,
			TotalQuestions: 10,
			CorrectAnswers: 9,
			CompletedAt:    completed,
		},
	})
	assert.NoError(t, err)

	select {
	case msg := <-sink.messages:
		assert.Equal(t, ws.TypeScoreboardUpdate, msg.Type)

		var update FeedUpdate
		assert.NoError(t, json.Unmarshal(msg.Payload, &update))
		assert.Equal(t, "alice", update.Latest.Username)
		assert.Equal(t, 90, update.Latest.Score)
		assert.Equal(t, 9, update.Latest.CorrectAnswers)
		assert.True(t, update.Latest.CompletedAt.Equal(completed))
		assert.Len(t, update.TopScorers, 1)
		assert.Equal(t, "alice", update.TopScorers[0].Username)
	case <-time.After(2 * time.Second):
		t.Fatal("no feed update broadcast")
	}
}

func TestBroadcasterIgnoresMalformedEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &captureSink{messages: make(chan ws.Message, 2)}
	b := NewBroadcaster(client, sink, &fixedTopScorers{}, "", 10, zerolog.Nop())
	go b.Run(ctx)

	assert.Eventually(t, func() bool {
		return client.PubSubNumSub(ctx, DefaultChannel).Val()[DefaultChannel] > 0
	}, time.Second, 10*time.Millisecond)

	assert.NoError(t, client.Publish(ctx, DefaultChannel, "{not json").Err())

	// A well-formed event published after the garbage still gets through.
	p := NewPublisher(client, "", zerolog.Nop())
	assert.NoError(t, p.Announce(ctx, domain.UserResult{
		Username: "bob",
		Result:   domain.QuizResult{Score: 40, TotalQuestions: 10, CorrectAnswers: 4},
	}))

	select {
	case msg := <-sink.messages:
		var update FeedUpdate
		assert.NoError(t, json.Unmarshal(msg.Payload, &update))
		assert.Equal(t, "bob", update.Latest.Username)
	case <-time.After(2 * time.Second):
		t.Fatal("broadcaster stopped forwarding after a malformed event")
	}
}
