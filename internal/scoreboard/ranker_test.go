package scoreboard

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/quizdash/server/internal/domain"
)

func rankRow(userID uuid.UUID, username string, score int) domain.UserResult {
	return domain.UserResult{
		UserID:   userID,
		Username: username,
		Result:   domain.QuizResult{ID: uuid.New(), Score: score, TotalQuestions: 10},
	}
}

func TestComputeRankingUniqueBest(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()

	rows := []domain.UserResult{
		rankRow(alice, "alice", 90),
		rankRow(alice, "alice", 40),
		rankRow(bob, "bob", 70),
	}

	ranking := ComputeRanking(rows, alice)
	assert.NotNil(t, ranking)
	assert.Equal(t, 1, ranking.Rank)
	assert.Equal(t, 2, ranking.TotalUsers)
	assert.Equal(t, 90, ranking.BestScore)

	ranking = ComputeRanking(rows, bob)
	assert.Equal(t, 2, ranking.Rank)
	assert.Equal(t, 70, ranking.BestScore)
}

func TestComputeRankingTiedBestSharesRank(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	carol := uuid.New()

	rows := []domain.UserResult{
		rankRow(alice, "alice", 90),
		rankRow(bob, "bob", 90),
		rankRow(carol, "carol", 80),
	}

	assert.Equal(t, 1, ComputeRanking(rows, alice).Rank)
	assert.Equal(t, 1, ComputeRanking(rows, bob).Rank)
	// Competition ranking: after a two-way tie at 1 the next rank is 3.
	assert.Equal(t, 3, ComputeRanking(rows, carol).Rank)
}

func TestComputeRankingUsesBestNotLatest(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()

	rows := []domain.UserResult{
		rankRow(alice, "alice", 100),
		rankRow(alice, "alice", 10),
		rankRow(bob, "bob", 50),
	}

	ranking := ComputeRanking(rows, alice)
	assert.Equal(t, 1, ranking.Rank)
	assert.Equal(t, 100, ranking.BestScore)
}

func TestComputeRankingUnrankedUser(t *testing.T) {
	rows := []domain.UserResult{rankRow(uuid.New(), "alice", 90)}
	assert.Nil(t, ComputeRanking(rows, uuid.New()))
	assert.Nil(t, ComputeRanking(nil, uuid.New()))
}

type stubRankLedger struct {
	rows []domain.UserResult
	err  error
}

func (s *stubRankLedger) ListByUser(context.Context, uuid.UUID) ([]domain.QuizResult, error) {
	return nil, nil
}

func (s *stubRankLedger) ListAllWithUsers(context.Context) ([]domain.UserResult, error) {
	return s.rows, s.err
}

func (s *stubRankLedger) RecentWithUsers(context.Context, int) ([]domain.UserResult, error) {
	return nil, nil
}

func TestRankOf(t *testing.T) {
	alice := uuid.New()
	ledger := &stubRankLedger{rows: []domain.UserResult{rankRow(alice, "alice", 75)}}
	ranker := NewRanker(ledger, zerolog.Nop())

	ranking, err := ranker.RankOf(context.Background(), alice)
	assert.NoError(t, err)
	assert.Equal(t, 1, ranking.Rank)
	assert.Equal(t, 1, ranking.TotalUsers)

	ranking, err = ranker.RankOf(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, ranking)
}

func TestRankOfLedgerError(t *testing.T) {
	ranker := NewRanker(&stubRankLedger{err: assert.AnError}, zerolog.Nop())
	_, err := ranker.RankOf(context.Background(), uuid.New())
	assert.Error(t, err)
}
