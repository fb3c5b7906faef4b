package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizdash/server/internal/auth"
	"github.com/quizdash/server/internal/domain"
	httperrors "github.com/quizdash/server/pkg/http/errors"
)

// statsSource provides the per-user stats block for GET /api/quiz/stats.
type statsSource interface {
	UserStats(ctx context.Context, userID uuid.UUID) (domain.UserStats, error)
}

// Announcer is notified after each accepted submission. Announcement
// failures never fail the submission itself.
type Announcer interface {
	Announce(ctx context.Context, row domain.UserResult) error
}

// HandlerOptions carries quiz endpoint defaults.
type HandlerOptions struct {
	DefaultQuestionCount int // default 10
	MaxQuestionCount     int // default 50
}

// HTTPHandler exposes the quiz-taking endpoints.
type HTTPHandler struct {
	svc       *Service
	stats     statsSource
	announcer Announcer
	opts      HandlerOptions
	logger    zerolog.Logger
}

// NewHTTPHandler constructs the quiz HTTP handler. announcer may be nil.
func NewHTTPHandler(svc *Service, stats statsSource, announcer Announcer, opts HandlerOptions, logger zerolog.Logger) *HTTPHandler {
	if opts.DefaultQuestionCount <= 0 {
		opts.DefaultQuestionCount = 10
	}
	if opts.MaxQuestionCount <= 0 {
		opts.MaxQuestionCount = 50
	}
	return &HTTPHandler{
		svc:       svc,
		stats:     stats,
		announcer: announcer,
		opts:      opts,
		logger:    logger.With().Str("component", "quiz_http").Logger(),
	}
}

// Questions handles GET /api/quiz/questions?count=N
func (h *HTTPHandler) Questions(w http.ResponseWriter, r *http.Request) {
	count := h.opts.DefaultQuestionCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "count must be a positive integer", "count")
			return
		}
		count = parsed
	}
	if count > h.opts.MaxQuestionCount {
		count = h.opts.MaxQuestionCount
	}

	offered, err := h.svc.SelectQuestionSet(r.Context(), count)
	if err != nil {
		h.logger.Error().Err(err).Msg("question selection failed")
		httperrors.RespondInternalError(w, "Could not load questions")
		return
	}

	// An empty bank yields an empty array; clients must handle an empty quiz.
	if offered == nil {
		offered = []domain.OfferedQuestion{}
	}
	h.respondJSON(w, http.StatusOK, offered)
}

type submitRequest struct {
	Answers []domain.SubmittedAnswer `json:"answers"`
}

// Submit handles POST /api/quiz/submit
func (h *HTTPHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid answers format")
		return
	}

	result, err := h.svc.Score(r.Context(), claims.UserID, req.Answers)
	if err != nil {
		if errors.Is(err, domain.ErrEmptySubmission) {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeEmptySubmission, "Submission must contain at least one answer")
			return
		}
		// Store failures stay server-side; the client gets a generic 5xx.
		h.logger.Error().Err(err).Str("user_id", claims.UserID.String()).Msg("submission failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeSubmitFailed, "Could not save quiz result")
		return
	}

	h.announce(domain.UserResult{
		UserID:   claims.UserID,
		Username: claims.Username,
		Result:   result,
	})

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "Quiz submitted successfully",
		"score":          result.Score,
		"correctAnswers": result.CorrectAnswers,
		"totalQuestions": result.TotalQuestions,
		"resultId":       result.ID.String(),
	})
}

// Stats handles GET /api/quiz/stats
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

	h.respondJSON(w, http.StatusOK, stats)
}

func (h *HTTPHandler) announce(row domain.UserResult) {
	if h.announcer == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.announcer.Announce(ctx, row); err != nil {
			h.logger.Warn().Err(err).Msg("result announcement failed")
		}
	}()
}

func (h *HTTPHandler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}
