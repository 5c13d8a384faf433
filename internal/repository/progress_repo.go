package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"emotionquest/internal/database"
	"emotionquest/internal/models"
)

// ErrNotFound is returned when a learner has no stored progress yet.
var ErrNotFound = errors.New("progress not found")

// ProgressRepository persists learner progress records. Counters live in
// columns; the unlocked set, histories, and achievements are stored as
// JSON text so a record is always written and read as a whole.
type ProgressRepository struct {
	db *database.DB
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *database.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

const progressColumns = `learner_id, total_score, total_sessions, total_correct,
	       total_questions, best_streak, current_level, unlocked_emotions,
	       session_history, speech_history, conversation_history,
	       mimicry_history, achievements, updated_at`

// Load retrieves a learner's progress record.
func (r *ProgressRepository) Load(learnerID string) (*models.PlayerProgress, error) {
	query := `
		SELECT ` + progressColumns + `
		FROM learner_progress
		WHERE learner_id = ?
	`

	progress, err := scanProgress(r.db.QueryRow(query, learnerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load progress for %s: %w", learnerID, err)
	}
	return progress, nil
}

// Save writes the whole progress record, replacing any previous row.
func (r *ProgressRepository) Save(progress *models.PlayerProgress) error {
	unlocked, err := json.Marshal(progress.UnlockedEmotions)
	if err != nil {
		return fmt.Errorf("encode unlocked emotions: %w", err)
	}
	sessions, err := json.Marshal(emptyAsList(progress.SessionHistory))
	if err != nil {
		return fmt.Errorf("encode session history: %w", err)
	}
	speech, err := json.Marshal(emptyAsList(progress.SpeechHistory))
	if err != nil {
		return fmt.Errorf("encode speech history: %w", err)
	}
	conversations, err := json.Marshal(emptyAsList(progress.ConversationHistory))
	if err != nil {
		return fmt.Errorf("encode conversation history: %w", err)
	}
	mimicry, err := json.Marshal(emptyAsList(progress.MimicryHistory))
	if err != nil {
		return fmt.Errorf("encode mimicry history: %w", err)
	}
	achievements, err := json.Marshal(emptyAsList(progress.Achievements))
	if err != nil {
		return fmt.Errorf("encode achievements: %w", err)
	}

	now := time.Now()

	update := `
		UPDATE learner_progress
		SET total_score = ?, total_sessions = ?, total_correct = ?,
		    total_questions = ?, best_streak = ?, current_level = ?,
		    unlocked_emotions = ?, session_history = ?, speech_history = ?,
		    conversation_history = ?, mimicry_history = ?, achievements = ?,
		    updated_at = ?
		WHERE learner_id = ?
	`

	result, err := r.db.Exec(update,
		progress.TotalScore, progress.TotalSessions, progress.TotalCorrectAnswers,
		progress.TotalQuestions, progress.BestStreak, progress.CurrentLevel,
		string(unlocked), string(sessions), string(speech),
		string(conversations), string(mimicry), string(achievements),
		now, progress.LearnerID,
	)
	if err != nil {
		return fmt.Errorf("save progress for %s: %w", progress.LearnerID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("save progress for %s: %w", progress.LearnerID, err)
	}
	if rows > 0 {
		return nil
	}

	insert := `
		INSERT INTO learner_progress (` + progressColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(insert,
		progress.LearnerID,
		progress.TotalScore, progress.TotalSessions, progress.TotalCorrectAnswers,
		progress.TotalQuestions, progress.BestStreak, progress.CurrentLevel,
		string(unlocked), string(sessions), string(speech),
		string(conversations), string(mimicry), string(achievements),
		now,
	)
	if err != nil {
		return fmt.Errorf("save progress for %s: %w", progress.LearnerID, err)
	}
	return nil
}

// LoadAll retrieves every stored progress record, used by the backup tool.
func (r *ProgressRepository) LoadAll() ([]*models.PlayerProgress, error) {
	query := `
		SELECT ` + progressColumns + `
		FROM learner_progress
		ORDER BY learner_id
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("load all progress: %w", err)
	}
	defer rows.Close()

	var all []*models.PlayerProgress
	for rows.Next() {
		progress, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("load all progress: %w", err)
		}
		all = append(all, progress)
	}
	return all, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProgress(row rowScanner) (*models.PlayerProgress, error) {
	progress := &models.PlayerProgress{}
	var unlocked, sessions, speech, conversations, mimicry, achievements string

	err := row.Scan(
		&progress.LearnerID,
		&progress.TotalScore,
		&progress.TotalSessions,
		&progress.TotalCorrectAnswers,
		&progress.TotalQuestions,
		&progress.BestStreak,
		&progress.CurrentLevel,
		&unlocked,
		&sessions,
		&speech,
		&conversations,
		&mimicry,
		&achievements,
		&progress.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(unlocked), &progress.UnlockedEmotions); err != nil {
		return nil, fmt.Errorf("decode unlocked emotions: %w", err)
	}
	if err := json.Unmarshal([]byte(sessions), &progress.SessionHistory); err != nil {
		return nil, fmt.Errorf("decode session history: %w", err)
	}
	if err := json.Unmarshal([]byte(speech), &progress.SpeechHistory); err != nil {
		return nil, fmt.Errorf("decode speech history: %w", err)
	}
	if err := json.Unmarshal([]byte(conversations), &progress.ConversationHistory); err != nil {
		return nil, fmt.Errorf("decode conversation history: %w", err)
	}
	if err := json.Unmarshal([]byte(mimicry), &progress.MimicryHistory); err != nil {
		return nil, fmt.Errorf("decode mimicry history: %w", err)
	}
	if err := json.Unmarshal([]byte(achievements), &progress.Achievements); err != nil {
		return nil, fmt.Errorf("decode achievements: %w", err)
	}

	return progress, nil
}

// emptyAsList keeps nil slices encoding as [] instead of null.
func emptyAsList[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
