package scoreboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/quizdash/server/internal/auth"
	"github.com/quizdash/server/internal/auth/jwt"
	"github.com/quizdash/server/internal/domain"
)

type stubStatsSource struct {
	top    []domain.LeaderboardEntry
	recent []domain.UserResult
	err    error
}

func (s *stubStatsSource) TopScorers(context.Context, int) ([]domain.LeaderboardEntry, error) {
	return s.top, s.err
}

func (s *stubStatsSource) RecentActivity(context.Context, int) ([]domain.UserResult, error) {
	return s.recent, s.err
}

type stubRankSource struct {
	ranking *domain.Ranking
	err     error
}

func (s *stubRankSource) RankOf(context.Context, uuid.UUID) (*domain.Ranking, error) {
	return s.ranking, s.err
}

func TestTopScorersEndpoint(t *testing.T) {
	stats := &stubStatsSource{top: []domain.LeaderboardEntry{
		{Username: "alice", BestScore: 90, AverageScore: 80, Accuracy: 85, TotalQuizzes: 4},
	}}
	h := NewHTTPHandler(stats, &stubRankSource{}, HandlerOptions{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.TopScorers(rec, httptest.NewRequest(http.MethodGet, "/api/scoreboard/top-scorers", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var entries []domain.LeaderboardEntry
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].Username)
	assert.Equal(t, 90, entries[0].BestScore)
}

func TestRecentResultsEndpoint(t *testing.T) {
	completed := time.Now().UTC().Truncate(time.Second)
	stats := &stubStatsSource{recent: []domain.UserResult{
		{
			UserID:   uuid.New(),
			Username: "bob",
			Result: domain.QuizResult{
				Score:          70,
				TotalQuestions: 10,
				CorrectAnswers: 7,
				CompletedAt:    completed,
			},
		},
	}}
	h := NewHTTPHandler(stats, &stubRankSource{}, HandlerOptions{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.RecentResults(rec, httptest.NewRequest(http.MethodGet, "/api/scoreboard/recent-results", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var results []recentResult
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	assert.Len(t, results, 1)
	assert.Equal(t, "bob", results[0].Username)
	assert.Equal(t, 70, results[0].Score)
	// User IDs stay out of the public feed.
	assert.NotContains(t, rec.Body.String(), "userId")
}

func TestUserRankingRanked(t *testing.T) {
	ranker := &stubRankSource{ranking: &domain.Ranking{Rank: 3, TotalUsers: 12, BestScore: 80}}
	h := NewHTTPHandler(&stubStatsSource{}, ranker, HandlerOptions{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/scoreboard/user-ranking", nil)
	claims := &jwt.Claims{UserID: uuid.New(), Username: "tester"}
	req = req.WithContext(auth.ContextWithClaims(req.Context(), claims))

	rec := httptest.NewRecorder()
	h.UserRanking(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 3, resp["ranking"])
	assert.EqualValues(t, 12, resp["totalUsers"])
	assert.EqualValues(t, 80, resp["bestScore"])
}

func TestUserRankingNoAttempts(t *testing.T) {
	h := NewHTTPHandler(&stubStatsSource{}, &stubRankSource{}, HandlerOptions{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/scoreboard/user-ranking", nil)
	claims := &jwt.Claims{UserID: uuid.New(), Username: "tester"}
	req = req.WithContext(auth.ContextWithClaims(req.Context(), claims))

	rec := httptest.NewRecorder()
	h.UserRanking(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp["ranking"])
	assert.Equal(t, "No quiz attempts yet", resp["message"])
}

func TestUserRankingRequiresClaims(t *testing.T) {
	h := NewHTTPHandler(&stubStatsSource{}, &stubRankSource{}, HandlerOptions{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.UserRanking(rec, httptest.NewRequest(http.MethodGet, "/api/scoreboard/user-ranking", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
