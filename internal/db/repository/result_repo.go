package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/quizdash/server/internal/domain"
)

// ResultRepository is the append-only quiz result ledger. Rows are inserted
// once and never updated or deleted here.
type ResultRepository struct {
	db DB
}

func NewResultRepository(db DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Append inserts one completed attempt and returns its identifier. The
// insert is a single statement, so a failure persists nothing.
func (r *ResultRepository) Append(ctx context.Context, result domain.QuizResult) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.Exec(ctx,
		`INSERT INTO quiz_results (result_id, user_id, score, total_questions, correct_answers, created_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, result.UserID, result.Score, result.TotalQuestions, result.CorrectAnswers, result.CreatedAt, result.CompletedAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert quiz result: %w", err)
	}
	return id, nil
}

// ListByUser returns a user's attempts newest first. Equal completion times
// fall back to insertion order via the monotonic seq column, so the ordering
// is deterministic.
func (r *ResultRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.QuizResult, error) {
	rows, err := r.db.Query(ctx,
		`SELECT result_id, user_id, score, total_questions, correct_answers, created_at, completed_at
		 FROM quiz_results
		 WHERE user_id = $1
		 ORDER BY completed_at DESC, seq ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("select results by user: %w", err)
	}
	defer rows.Close()
	return collectResults(rows)
}

// ListAllWithUsers returns every ledger row joined with its username, the
// raw input for leaderboard and ranking aggregation.
func (r *ResultRepository) ListAllWithUsers(ctx context.Context) ([]domain.UserResult, error) {
	rows, err := r.db.Query(ctx,
		`SELECT u.user_id, u.username, r.result_id, r.score, r.total_questions, r.correct_answers, r.created_at, r.completed_at
		 FROM quiz_results r
		 JOIN users u ON u.user_id = r.user_id`)
	if err != nil {
		return nil, fmt.Errorf("select all results: %w", err)
	}
	defer rows.Close()
	return collectUserResults(rows)
}

// RecentWithUsers returns the most recently completed attempts across all
// users, newest first.
func (r *ResultRepository) RecentWithUsers(ctx context.Context, limit int) ([]domain.UserResult, error) {
	rows, err := r.db.Query(ctx,
		`SELECT u.user_id, u.username, r.result_id, r.score, r.total_questions, r.correct_answers, r.created_at, r.completed_at
		 FROM quiz_results r
		 JOIN users u ON u.user_id = r.user_id
		 ORDER BY r.completed_at DESC, r.seq ASC
		 LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("select recent results: %w", err)
	}
	defer rows.Close()
	return collectUserResults(rows)
}

func collectResults(rows pgx.Rows) ([]domain.QuizResult, error) {
	var results []domain.QuizResult
	for rows.Next() {
		var res domain.QuizResult
		if err := rows.Scan(&res.ID, &res.UserID, &res.Score, &res.TotalQuestions, &res.CorrectAnswers, &res.CreatedAt, &res.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan quiz result: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quiz results: %w", err)
	}
	return results, nil
}

func collectUserResults(rows pgx.Rows) ([]domain.UserResult, error) {
	var results []domain.UserResult
	for rows.Next() {
		var ur domain.UserResult
		res := &ur.Result
		if err := rows.Scan(&ur.UserID, &ur.Username, &res.ID, &res.Score, &res.TotalQuestions, &res.CorrectAnswers, &res.CreatedAt, &res.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan user result: %w", err)
		}
		res.UserID = ur.UserID
		results = append(results, ur)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user results: %w", err)
	}
	return results, nil
}
