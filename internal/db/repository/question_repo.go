package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/quizdash/server/internal/domain"
)

// QuestionRepository reads the immutable question bank.
type QuestionRepository struct {
	db DB
}

func NewQuestionRepository(db DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// Pool returns every stored question as the candidate pool for selection.
// Random sampling happens in the quiz service with an explicit shuffle, not
// in SQL, so selection behavior does not depend on store-level randomness.
func (r *QuestionRepository) Pool(ctx context.Context) ([]domain.Question, error) {
	rows, err := r.db.Query(ctx,
		`SELECT question_id, question_text, option_a, option_b, option_c, option_d, correct_option, created_at
		 FROM questions`)
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		var correct string
		if err := rows.Scan(&q.ID, &q.Text, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &correct, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.CorrectOption = domain.OptionKey(correct)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return questions, nil
}

// CorrectOptions resolves the stored correct option key for each requested
// question. Missing identifiers are simply absent from the returned map.
func (r *QuestionRepository) CorrectOptions(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.OptionKey, error) {
	correct := make(map[uuid.UUID]domain.OptionKey, len(ids))
	if len(ids) == 0 {
		return correct, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT question_id, correct_option FROM questions WHERE question_id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("select correct options: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var key string
		if err := rows.Scan(&id, &key); err != nil {
			return nil, fmt.Errorf("scan correct option: %w", err)
		}
		correct[id] = domain.OptionKey(key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate correct options: %w", err)
	}
	return correct, nil
}
