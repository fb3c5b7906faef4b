package scoreboard

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizdash/server/internal/domain"
	"github.com/quizdash/server/internal/stats"
)

// Ranker derives a user's leaderboard position from the result ledger.
type Ranker struct {
	ledger stats.Ledger
	logger zerolog.Logger
}

// NewRanker constructs a ranker over the ledger.
func NewRanker(ledger stats.Ledger, logger zerolog.Logger) *Ranker {
	return &Ranker{
		ledger: ledger,
		logger: logger.With().Str("component", "ranker").Logger(),
	}
}

// RankOf returns the user's competition rank among everyone with at least
// one result: 1 + the number of users whose best score strictly exceeds
// theirs, so tied best scores share a rank. A nil ranking (with nil error)
// means the user has no results yet.
func (r *Ranker) RankOf(ctx context.Context, userID uuid.UUID) (*domain.Ranking, error) {
	rows, err := r.ledger.ListAllWithUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all results: %w", err)
	}
	return ComputeRanking(rows, userID), nil
}

// ComputeRanking applies the strict-greater-than counting rule over raw
// ledger rows. Dense ranking is deliberately not used: after a two-way tie
// at rank 1 the next user is ranked 3, matching the counting definition.
func ComputeRanking(rows []domain.UserResult, userID uuid.UUID) *domain.Ranking {
	bestByUser := make(map[uuid.UUID]int)
	for _, row := range rows {
		best, ok := bestByUser[row.UserID]
		if !ok || row.Result.Score > best {
			bestByUser[row.UserID] = row.Result.Score
		}
	}

	userBest, ranked := bestByUser[userID]
	if !ranked {
		return nil
	}

	rank := 1
	for id, best := range bestByUser {
		if id != userID && best > userBest {
			rank++
		}
	}

	return &domain.Ranking{
		Rank:       rank,
		TotalUsers: len(bestByUser),
		BestScore:  userBest,
	}
}
