package scoreboard

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizdash/server/internal/auth"
	"github.com/quizdash/server/internal/domain"
	httperrors "github.com/quizdash/server/pkg/http/errors"
)

// statsSource is the aggregator surface the scoreboard endpoints need.
type statsSource interface {
	TopScorers(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	RecentActivity(ctx context.Context, limit int) ([]domain.UserResult, error)
}

// rankSource resolves a user's position.
type rankSource interface {
	RankOf(ctx context.Context, userID uuid.UUID) (*domain.Ranking, error)
}

// HandlerOptions bounds the scoreboard views.
type HandlerOptions struct {
	TopScorersLimit    int // default 10
	RecentResultsLimit int // default 20
}

// HTTPHandler exposes the scoreboard REST endpoints.
type HTTPHandler struct {
	stats  statsSource
	ranker rankSource
	opts   HandlerOptions
	logger zerolog.Logger
}

// NewHTTPHandler constructs the scoreboard HTTP handler.
func NewHTTPHandler(stats statsSource, ranker rankSource, opts HandlerOptions, logger zerolog.Logger) *HTTPHandler {
	if opts.TopScorersLimit <= 0 {
		opts.TopScorersLimit = 10
	}
	if opts.RecentResultsLimit <= 0 {
		opts.RecentResultsLimit = 20
	}
	return &HTTPHandler{
		stats:  stats,
		ranker: ranker,
		opts:   opts,
		logger: logger.With().Str("component", "scoreboard_http").Logger(),
	}
}

// TopScorers handles GET /api/scoreboard/top-scorers
func (h *HTTPHandler) TopScorers(w http.ResponseWriter, r *http.Request) {
	entries, err := h.stats.TopScorers(r.Context(), h.opts.TopScorersLimit)
	if err != nil {
		h.logger.Error().Err(err).Msg("top scorers query failed")
		httperrors.RespondInternalError(w, "Could not load top scorers")
		return
	}
	writeJSON(w, entries)
}

// recentResult is the public shape of one recent attempt.
type recentResult struct {
	Username       string    `json:"username"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CorrectAnswers int       `json:"correctAnswers"`
	CompletedAt    time.Time `json:"completedAt"`
}

// RecentResults handles GET /api/scoreboard/recent-results
func (h *HTTPHandler) RecentResults(w http.ResponseWriter, r *http.Request) {
	rows, err := h.stats.RecentActivity(r.Context(), h.opts.RecentResultsLimit)
	if err != nil {
		h.logger.Error().Err(err).Msg("recent results query failed")
		httperrors.RespondInternalError(w, "Could not load recent results")
		return
	}

	recent := make([]recentResult, len(rows))
	for i, row := range rows {
		recent[i] = recentResult{
			Username:       row.Username,
			Score:          row.Result.Score,
			TotalQuestions: row.Result.TotalQuestions,
			CorrectAnswers: row.Result.CorrectAnswers,
			CompletedAt:    row.Result.CompletedAt,
		}
	}
	writeJSON(w, recent)
}

// UserRanking handles GET /api/scoreboard/user-ranking (authenticated)
func (h *HTTPHandler) UserRanking(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	ranking, err := h.ranker.RankOf(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Error().Err(err).Msg("ranking query failed")
		httperrors.RespondInternalError(w, "Could not compute ranking")
		return
	}

	if ranking == nil {
		// A user without attempts is a valid state, not an error.
		writeJSON(w, map[string]interface{}{
			"ranking": nil,
			"message": "No quiz attempts yet",
		})
		return
	}

	writeJSON(w, map[string]interface{}{
		"ranking":    ranking.Rank,
		"totalUsers": ranking.TotalUsers,
		"bestScore":  ranking.BestScore,
	})
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
