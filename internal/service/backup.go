package service

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/klauspost/compress/zstd"

	"emotionquest/internal/models"
)

// BackupData is the on-disk backup structure: every learner's progress
// record plus enough metadata to sanity-check an import.
type BackupData struct {
	Version    string            `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Learners   []learnerSnapshot `json:"learners"`
}

// learnerSnapshot flattens a progress record for serialization.
type learnerSnapshot struct {
	LearnerID           string                  `json:"learner_id"`
	TotalScore          int                     `json:"total_score"`
	TotalSessions       int                     `json:"total_sessions"`
	TotalCorrectAnswers int                     `json:"total_correct"`
	TotalQuestions      int                     `json:"total_questions"`
	BestStreak          int                     `json:"best_streak"`
	CurrentLevel        int                     `json:"current_level"`
	UnlockedEmotions    []models.Emotion        `json:"unlocked_emotions"`
	SessionHistory      []models.SessionRecord  `json:"session_history"`
	SpeechHistory       []models.ActivityRecord `json:"speech_history"`
	ConversationHistory []models.ActivityRecord `json:"conversation_history"`
	MimicryHistory      []models.MimicryRecord  `json:"mimicry_history"`
	Achievements        []string                `json:"achievements"`
}

const backupVersion = "1"

// BackupStore is the slice of the progress store a backup needs.
type BackupStore interface {
	LoadAll() ([]*models.PlayerProgress, error)
	Save(progress *models.PlayerProgress) error
}

// BackupService exports and imports learner progress as
// zstd-compressed JSON.
type BackupService struct {
	repo BackupStore
}

// NewBackupService creates a new backup service
func NewBackupService(repo BackupStore) *BackupService {
	return &BackupService{repo: repo}
}

// Export writes every progress record to outputPath.
func (s *BackupService) Export(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create backup file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}
	return file.Close()
}

// ExportToWriter writes the compressed backup to w.
func (s *BackupService) ExportToWriter(w io.Writer) error {
	all, err := s.repo.LoadAll()
	if err != nil {
		return fmt.Errorf("collect progress records: %w", err)
	}

	backup := BackupData{
		Version:    backupVersion,
		ExportedAt: time.Now(),
	}
	for _, p := range all {
		backup.Learners = append(backup.Learners, toSnapshot(p))
	}

	return encodeBackup(w, backup)
}

func encodeBackup(w io.Writer, backup BackupData) error {
	encoder, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create zstd encoder: %w", err)
	}

	if err := json.NewEncoder(encoder).Encode(backup); err != nil {
		encoder.Close()
		return fmt.Errorf("encode backup: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}
	return nil
}

// Import reads a backup file and saves every record it contains,
// replacing existing progress for the same learners.
func (s *BackupService) Import(inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open backup file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader reads a compressed backup from r and saves each record.
func (s *BackupService) ImportFromReader(r io.Reader) error {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("create zstd decoder: %w", err)
	}
	defer decoder.Close()

	var backup BackupData
	if err := json.NewDecoder(decoder).Decode(&backup); err != nil {
		return fmt.Errorf("decode backup: %w", err)
	}
	if backup.Version != backupVersion {
		return fmt.Errorf("unsupported backup version: %q", backup.Version)
	}

	for _, snapshot := range backup.Learners {
		progress := fromSnapshot(snapshot)
		if err := s.repo.Save(progress); err != nil {
			return fmt.Errorf("import learner %s: %w", snapshot.LearnerID, err)
		}
	}
	return nil
}

func toSnapshot(p *models.PlayerProgress) learnerSnapshot {
	return learnerSnapshot{
		LearnerID:           p.LearnerID,
		TotalScore:          p.TotalScore,
		TotalSessions:       p.TotalSessions,
		TotalCorrectAnswers: p.TotalCorrectAnswers,
		TotalQuestions:      p.TotalQuestions,
		BestStreak:          p.BestStreak,
		CurrentLevel:        p.CurrentLevel,
		UnlockedEmotions:    p.UnlockedEmotions,
		SessionHistory:      p.SessionHistory,
		SpeechHistory:       p.SpeechHistory,
		ConversationHistory: p.ConversationHistory,
		MimicryHistory:      p.MimicryHistory,
		Achievements:        p.Achievements,
	}
}

func fromSnapshot(s learnerSnapshot) *models.PlayerProgress {
	return &models.PlayerProgress{
		LearnerID:           s.LearnerID,
		TotalScore:          s.TotalScore,
		TotalSessions:       s.TotalSessions,
		TotalCorrectAnswers: s.TotalCorrectAnswers,
		TotalQuestions:      s.TotalQuestions,
		BestStreak:          s.BestStreak,
		CurrentLevel:        s.CurrentLevel,
		UnlockedEmotions:    s.UnlockedEmotions,
		SessionHistory:      s.SessionHistory,
		SpeechHistory:       s.SpeechHistory,
		ConversationHistory: s.ConversationHistory,
		MimicryHistory:      s.MimicryHistory,
		Achievements:        s.Achievements,
	}
}
