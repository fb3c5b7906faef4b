package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. PasswordHash stays server-side; OAuth
// accounts carry an empty hash.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}

// OptionKey identifies one of the four answer options of a question.
type OptionKey string

const (
	OptionA OptionKey = "A"
	OptionB OptionKey = "B"
	OptionC OptionKey = "C"
	OptionD OptionKey = "D"
)

// OptionKeys lists the four keys in canonical storage order.
var OptionKeys = [4]OptionKey{OptionA, OptionB, OptionC, OptionD}

// Valid reports whether the key is one of the four enumerated values.
func (k OptionKey) Valid() bool {
	switch k {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

// Question is an immutable MCQ row with exactly one correct option.
type Question struct {
	ID            uuid.UUID
	Text          string
	OptionA       string
	OptionB       string
	OptionC       string
	OptionD       string
	CorrectOption OptionKey
	CreatedAt     time.Time
}

// Options returns the (key, text) pairs in canonical order.
func (q Question) Options() []Option {
	return []Option{
		{Key: OptionA, Text: q.OptionA},
		{Key: OptionB, Text: q.OptionB},
		{Key: OptionC, Text: q.OptionC},
		{Key: OptionD, Text: q.OptionD},
	}
}

// Option is a single answer choice as presented to clients.
type Option struct {
	Key  OptionKey `json:"key"`
	Text string    `json:"text"`
}

// OfferedQuestion is one presentation of a Question: the same four
// (key, text) pairs in a freshly shuffled display order. The key stays
// attached to its option text, so a submitted key identifies option
// content and no shuffle state has to survive the request.
type OfferedQuestion struct {
	ID       uuid.UUID `json:"id"`
	Question string    `json:"question"`
	Options  []Option  `json:"options"`
}

// SubmittedAnswer pairs a question with the option key the user picked.
type SubmittedAnswer struct {
	QuestionID     uuid.UUID `json:"questionId"`
	SelectedOption OptionKey `json:"selectedOption"`
}

// QuizResult is one completed attempt. Rows are append-only: created
// exactly once per submission, never updated or deleted.
type QuizResult struct {
	ID             uuid.UUID `json:"resultId"`
	UserID         uuid.UUID `json:"-"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CorrectAnswers int       `json:"correctAnswers"`
	CreatedAt      time.Time `json:"createdAt"`
	CompletedAt    time.Time `json:"completedAt"`
}

// UserResult joins a ledger row with the username that produced it.
type UserResult struct {
	UserID   uuid.UUID
	Username string
	Result   QuizResult
}

// UserStats is derived from a user's ledger rows on every read.
type UserStats struct {
	TotalQuizzes   int          `json:"totalQuizzes"`
	AverageScore   int          `json:"averageScore"`
	BestScore      int          `json:"bestScore"`
	TotalQuestions int          `json:"totalQuestions"`
	TotalCorrect   int          `json:"totalCorrect"`
	Accuracy       int          `json:"accuracy"`
	RecentResults  []QuizResult `json:"recentResults"`
}

// LeaderboardEntry is one scoreboard row, recomputed from the ledger.
type LeaderboardEntry struct {
	Username     string `json:"username"`
	BestScore    int    `json:"bestScore"`
	AverageScore int    `json:"averageScore"`
	Accuracy     int    `json:"accuracy"`
	TotalQuizzes int    `json:"totalQuizzes"`
}

// Ranking places a user among everyone with at least one result.
// Competition ranking: tied best scores share the same rank.
type Ranking struct {
	Rank       int `json:"ranking"`
	TotalUsers int `json:"totalUsers"`
	BestScore  int `json:"bestScore"`
}
