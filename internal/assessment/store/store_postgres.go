package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"skillproof/internal/assessment/models"
	"skillproof/internal/sentinel"
	id "skillproof/pkg/domain"
)

// PostgresStore persists quizzes and attempts in PostgreSQL. Attempts get
// INSERT only; the schema carries no update path for them.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindQuiz(ctx context.Context, quizID id.QuizID) (*models.Quiz, error) {
	query := `
		SELECT id, title, skill_tag, questions, created_at
		FROM quizzes
		WHERE id = $1
	`
	var (
		quiz      models.Quiz
		idStr     string
		questions []byte
	)
	err := s.db.QueryRowContext(ctx, query, quizID.String()).
		Scan(&idStr, &quiz.Title, &quiz.SkillTag, &questions, &quiz.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find quiz: %w", err)
	}
	parsedID, err := id.ParseQuizID(idStr)
	if err != nil {
		return nil, fmt.Errorf("scan quiz id: %w", err)
	}
	quiz.ID = parsedID
	if err := json.Unmarshal(questions, &quiz.Questions); err != nil {
		return nil, fmt.Errorf("decode quiz questions: %w", err)
	}
	return &quiz, nil
}

func (s *PostgresStore) CreateAttempt(ctx context.Context, attempt *models.Attempt) error {
	query := `
		INSERT INTO quiz_attempts (
			id, quiz_id, candidate_id, team_id, seed, answer,
			score, max_score, pass, anchor_tx, vc_json, message, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(ctx, query,
		attempt.ID.String(), attempt.QuizID.String(), attempt.CandidateID.String(), attempt.TeamID.String(),
		attempt.Seed, attempt.Answer,
		attempt.Score, attempt.MaxScore, attempt.Pass, attempt.AnchorTx, attempt.VCJSON, attempt.Message, attempt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create attempt: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindAttempt(ctx context.Context, attemptID id.AttemptID) (*models.Attempt, error) {
	query := attemptSelect + ` WHERE id = $1`
	attempt, err := scanAttempt(s.db.QueryRowContext(ctx, query, attemptID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find attempt: %w", err)
	}
	return attempt, nil
}

func (s *PostgresStore) FindAttemptsByCandidate(ctx context.Context, candidateID id.CandidateID) ([]*models.Attempt, error) {
	query := attemptSelect + ` WHERE candidate_id = $1 ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query, candidateID.String())
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []*models.Attempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, attempt)
	}
	return out, rows.Err()
}

const attemptSelect = `
	SELECT id, quiz_id, candidate_id, team_id, seed, answer,
		score, max_score, pass, anchor_tx, vc_json, message, created_at
	FROM quiz_attempts
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (*models.Attempt, error) {
	var (
		a            models.Attempt
		idStr        string
		quizStr      string
		candidateStr string
		teamStr      string
	)
	err := row.Scan(
		&idStr, &quizStr, &candidateStr, &teamStr, &a.Seed, &a.Answer,
		&a.Score, &a.MaxScore, &a.Pass, &a.AnchorTx, &a.VCJSON, &a.Message, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	attemptID, err := id.ParseAttemptID(idStr)
	if err != nil {
		return nil, fmt.Errorf("scan attempt id: %w", err)
	}
	a.ID = attemptID
	quizID, err := id.ParseQuizID(quizStr)
	if err != nil {
		return nil, fmt.Errorf("scan quiz id: %w", err)
	}
	a.QuizID = quizID
	candidateID, err := id.ParseCandidateID(candidateStr)
	if err != nil {
		return nil, fmt.Errorf("scan candidate id: %w", err)
	}
	a.CandidateID = candidateID
	teamID, err := id.ParseTeamID(teamStr)
	if err != nil {
		return nil, fmt.Errorf("scan team id: %w", err)
	}
	a.TeamID = teamID
	return &a, nil
}
