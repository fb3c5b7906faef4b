// Package users serves the authenticated profile, history and statistics
// endpoints.
package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizdash/server/internal/auth"
	"github.com/quizdash/server/internal/domain"
	httperrors "github.com/quizdash/server/pkg/http/errors"
)

// Directory resolves account rows.
type Directory interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
}

// Ledger is the per-user read side of the result ledger.
type Ledger interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.QuizResult, error)
}

// statsSource provides the aggregate stats block.
type statsSource interface {
	UserStats(ctx context.Context, userID uuid.UUID) (domain.UserStats, error)
}

// HTTPHandler exposes /api/users endpoints.
type HTTPHandler struct {
	users  Directory
	ledger Ledger
	stats  statsSource
	logger zerolog.Logger
}

// NewHTTPHandler constructs the users HTTP handler.
func NewHTTPHandler(users Directory, ledger Ledger, stats statsSource, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		users:  users,
		ledger: ledger,
		stats:  stats,
		logger: logger.With().Str("component", "users_http").Logger(),
	}
}

// Profile handles GET /api/users/profile
func (h *HTTPHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	user, err := h.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "User not found")
			return
		}
		h.logger.Error().Err(err).Msg("profile query failed")
		httperrors.RespondInternalError(w, "Could not load profile")
		return
	}

	writeJSON(w, map[string]interface{}{
		"id":        user.ID.String(),
		"username":  user.Username,
		"email":     user.Email,
		"createdAt": user.CreatedAt,
	})
}

// historyItem is one attempt in the user's history view.
type historyItem struct {
	ID             string    `json:"id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CorrectAnswers int       `json:"correctAnswers"`
	CreatedAt      time.Time `json:"createdAt"`
	CompletedAt    time.Time `json:"completedAt"`
	TimeTaken      int       `json:"timeTaken"` // whole minutes
}

// History handles GET /api/users/history
func (h *HTTPHandler) History(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	results, err := h.ledger.ListByUser(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Error().Err(err).Msg("history query failed")
		httperrors.RespondInternalError(w, "Could not load history")
		return
	}

	history := make([]historyItem, len(results))
	for i, res := range results {
		history[i] = historyItem{
			ID:             res.ID.String(),
			Score:          res.Score,
			TotalQuestions: res.TotalQuestions,
			CorrectAnswers: res.CorrectAnswers,
			CreatedAt:      res.CreatedAt,
			CompletedAt:    res.CompletedAt,
			TimeTaken:      int(res.CompletedAt.Sub(res.CreatedAt).Minutes()),
		}
	}
	writeJSON(w, history)
}

// Stats handles GET /api/users/stats
func (h *HTTPHandler) Stats(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	stats, err := h.stats.UserStats(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Error().Err(err).Msg("user stats query failed")
		httperrors.RespondInternalError(w, "Could not load statistics")
		return
	}

	results, err := h.ledger.ListByUser(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Error().Err(err).Msg("stats history query failed")
		httperrors.RespondInternalError(w, "Could not load statistics")
		return
	}

	resp := map[string]interface{}{
		"totalQuizzes":            stats.TotalQuizzes,
		"averageScore":            stats.AverageScore,
		"bestScore":               stats.BestScore,
		"totalQuestionsAttempted": stats.TotalQuestions,
		"totalCorrectAnswers":     stats.TotalCorrect,
		"accuracy":                stats.Accuracy,
		"firstQuiz":               nil,
		"lastQuiz":                nil,
	}
	if len(results) > 0 {
		first, last := quizSpan(results)
		resp["firstQuiz"] = first
		resp["lastQuiz"] = last
	}
	writeJSON(w, resp)
}

// quizSpan returns the earliest creation and latest completion timestamps.
func quizSpan(results []domain.QuizResult) (time.Time, time.Time) {
	first := results[0].CreatedAt
	last := results[0].CompletedAt
	for _, res := range results[1:] {
		if res.CreatedAt.Before(first) {
			first = res.CreatedAt
		}
		if res.CompletedAt.After(last) {
			last = res.CompletedAt
		}
	}
	return first, last
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
