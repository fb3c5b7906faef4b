// Package stats derives user and global metrics from the result ledger.
// Nothing here is stored: every figure is recomputed from ledger rows on
// read, so statistics always reflect the latest committed submissions.
package stats

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizdash/server/internal/domain"
)

// RecentResultsLimit caps the history slice embedded in UserStats.
const RecentResultsLimit = 5

// Ledger is the read side of the quiz result ledger.
type Ledger interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.QuizResult, error)
	ListAllWithUsers(ctx context.Context) ([]domain.UserResult, error)
	RecentWithUsers(ctx context.Context, limit int) ([]domain.UserResult, error)
}

// Aggregator computes statistics and leaderboard views on demand.
type Aggregator struct {
	ledger Ledger
	logger zerolog.Logger
}

// NewAggregator constructs a statistics aggregator over the ledger.
func NewAggregator(ledger Ledger, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		ledger: ledger,
		logger: logger.With().Str("component", "stats").Logger(),
	}
}

// UserStats derives a user's metrics from all their results. A user with no
// results gets the zero value, not an error.
func (a *Aggregator) UserStats(ctx context.Context, userID uuid.UUID) (domain.UserStats, error) {
	results, err := a.ledger.ListByUser(ctx, userID)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("list results: %w", err)
	}
	return ComputeUserStats(results), nil
}

// TopScorers groups all results by user, computes best/average/accuracy per
// user and returns up to limit entries ordered by best score descending,
// average score descending. Users without results never appear.
func (a *Aggregator) TopScorers(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := a.ledger.ListAllWithUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all results: %w", err)
	}
	return RankTopScorers(rows, limit), nil
}

// RecentActivity returns the latest completed attempts across all users.
func (a *Aggregator) RecentActivity(ctx context.Context, limit int) ([]domain.UserResult, error) {
	rows, err := a.ledger.RecentWithUsers(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent results: %w", err)
	}
	return rows, nil
}

// ComputeUserStats aggregates one user's results. The input must be ordered
// newest first, as the ledger returns it; the recent-results slice is a
// prefix of it.
func ComputeUserStats(results []domain.QuizResult) domain.UserStats {
	stats := domain.UserStats{RecentResults: []domain.QuizResult{}}
	if len(results) == 0 {
		return stats
	}

	scoreSum := 0
	for _, r := range results {
		scoreSum += r.Score
		if r.Score > stats.BestScore {
			stats.BestScore = r.Score
		}
		stats.TotalQuestions += r.TotalQuestions
		stats.TotalCorrect += r.CorrectAnswers
	}

	stats.TotalQuizzes = len(results)
	stats.AverageScore = roundRatio(scoreSum, len(results))
	stats.Accuracy = roundPercent(stats.TotalCorrect, stats.TotalQuestions)

	recent := results
	if len(recent) > RecentResultsLimit {
		recent = recent[:RecentResultsLimit]
	}
	stats.RecentResults = append(stats.RecentResults, recent...)

	return stats
}

// RankTopScorers produces the ordered leaderboard from raw ledger rows.
func RankTopScorers(rows []domain.UserResult, limit int) []domain.LeaderboardEntry {
	type bucket struct {
		username  string
		best      int
		scoreSum  int
		quizzes   int
		correct   int
		questions int
	}

	byUser := make(map[uuid.UUID]*bucket)
	for _, row := range rows {
		b, ok := byUser[row.UserID]
		if !ok {
			b = &bucket{username: row.Username}
			byUser[row.UserID] = b
		}
		if row.Result.Score > b.best {
			b.best = row.Result.Score
		}
		b.scoreSum += row.Result.Score
		b.quizzes++
		b.correct += row.Result.CorrectAnswers
		b.questions += row.Result.TotalQuestions
	}

	entries := make([]domain.LeaderboardEntry, 0, len(byUser))
	for _, b := range byUser {
		entries = append(entries, domain.LeaderboardEntry{
			Username:     b.username,
			BestScore:    b.best,
			AverageScore: roundRatio(b.scoreSum, b.quizzes),
			Accuracy:     roundPercent(b.correct, b.questions),
			TotalQuizzes: b.quizzes,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].BestScore != entries[j].BestScore {
			return entries[i].BestScore > entries[j].BestScore
		}
		if entries[i].AverageScore != entries[j].AverageScore {
			return entries[i].AverageScore > entries[j].AverageScore
		}
		// Map iteration order must not leak into the response.
		return entries[i].Username < entries[j].Username
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// roundRatio rounds sum/n to the nearest integer, half up.
func roundRatio(sum, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}

// roundPercent rounds correct/total to a whole percentage, half up.
func roundPercent(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
