package quiz

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizdash/server/internal/domain"
)

// QuestionStore provides read access to the immutable question bank.
type QuestionStore interface {
	Pool(ctx context.Context) ([]domain.Question, error)
	CorrectOptions(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.OptionKey, error)
}

// ResultLedger is the append-only record of completed attempts.
type ResultLedger interface {
	Append(ctx context.Context, result domain.QuizResult) (uuid.UUID, error)
}

// Service selects question sets and scores submissions.
type Service struct {
	questions QuestionStore
	ledger    ResultLedger
	logger    zerolog.Logger
}

// NewService constructs the quiz core service.
func NewService(questions QuestionStore, ledger ResultLedger, logger zerolog.Logger) *Service {
	return &Service{
		questions: questions,
		ledger:    ledger,
		logger:    logger.With().Str("component", "quiz").Logger(),
	}
}

// SelectQuestionSet returns up to count questions drawn uniformly at random
// without repetition, each with its options in a fresh presentation order.
// An empty bank yields an empty set, not an error.
func (s *Service) SelectQuestionSet(ctx context.Context, count int) ([]domain.OfferedQuestion, error) {
	pool, err := s.questions.Pool(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch question pool: %w", err)
	}

	picked := sampleQuestions(pool, count)
	offered := make([]domain.OfferedQuestion, len(picked))
	for i, q := range picked {
		offered[i] = PresentShuffled(q)
	}
	return offered, nil
}

// PresentShuffled builds one presentation of a question. The four
// (key, text) pairs are reordered by a uniform Fisher-Yates permutation;
// keys travel with their texts, so exactly one offered option carries the
// originally correct content. Each call is independent.
func PresentShuffled(q domain.Question) domain.OfferedQuestion {
	options := q.Options()
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return domain.OfferedQuestion{
		ID:       q.ID,
		Question: q.Text,
		Options:  options,
	}
}

// Score validates answers against the stored correct options, computes the
// rounded percentage score and appends exactly one ledger row. Submitting the
// same answers twice creates two independent rows; deduplication is not part
// of the contract. An answer naming an unknown question counts as incorrect.
func (s *Service) Score(ctx context.Context, userID uuid.UUID, answers []domain.SubmittedAnswer) (domain.QuizResult, error) {
	if len(answers) == 0 {
		return domain.QuizResult{}, domain.ErrEmptySubmission
	}

	ids := make([]uuid.UUID, 0, len(answers))
	seen := make(map[uuid.UUID]struct{}, len(answers))
	for _, a := range answers {
		if _, ok := seen[a.QuestionID]; ok {
			continue
		}
		seen[a.QuestionID] = struct{}{}
		ids = append(ids, a.QuestionID)
	}

	correctByID, err := s.questions.CorrectOptions(ctx, ids)
	if err != nil {
		return domain.QuizResult{}, fmt.Errorf("look up correct options: %w", err)
	}

	correct := 0
	for _, a := range answers {
		if key, ok := correctByID[a.QuestionID]; ok && key == a.SelectedOption {
			correct++
		}
	}

	total := len(answers)
	now := time.Now().UTC()
	result := domain.QuizResult{
		UserID:         userID,
		Score:          percentage(correct, total),
		TotalQuestions: total,
		CorrectAnswers: correct,
		CreatedAt:      now,
		CompletedAt:    now,
	}

	id, err := s.ledger.Append(ctx, result)
	if err != nil {
		return domain.QuizResult{}, fmt.Errorf("append quiz result: %w", err)
	}
	result.ID = id

	submissionsTotal.Inc()
	submissionScores.Observe(float64(result.Score))

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("result_id", id.String()).
		Int("score", result.Score).
		Int("correct", correct).
		Int("total", total).
		Msg("quiz scored")

	return result, nil
}

// sampleQuestions draws up to count elements uniformly without repetition.
// Fisher-Yates on a copy keeps the caller's slice untouched.
func sampleQuestions(pool []domain.Question, count int) []domain.Question {
	shuffled := make([]domain.Question, len(pool))
	copy(shuffled, pool)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if count < 0 {
		count = 0
	}
	if count > len(shuffled) {
		count = len(shuffled)
	}
	return shuffled[:count]
}

// percentage rounds half up, matching round(correct/total*100).
func percentage(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
