package service

import (
	"bytes"
	"sort"
	"strings"
	"testing"
	"time"

	"emotionquest/internal/models"
)

func (f *fakeStore) LoadAll() ([]*models.PlayerProgress, error) {
	var all []*models.PlayerProgress
	for _, p := range f.records {
		snapshot := *p
		all = append(all, &snapshot)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].LearnerID < all[j].LearnerID })
	return all, nil
}

func TestBackupRoundTrip(t *testing.T) {
	source := newFakeStore()
	source.records["kid-1"] = &models.PlayerProgress{
		LearnerID:        "kid-1",
		TotalScore:       2350,
		TotalSessions:    4,
		CurrentLevel:     3,
		UnlockedEmotions: []models.Emotion{models.EmotionHappy, models.EmotionSad, models.EmotionNeutral, models.EmotionSurprised, models.EmotionAngry},
		SessionHistory: []models.SessionRecord{
			{SessionID: "s1", CompletedAt: time.Now().UTC(), Score: 500, Questions: 8, Correct: 6},
		},
		Achievements: []string{"first_session"},
	}
	source.records["kid-2"] = &models.PlayerProgress{
		LearnerID:        "kid-2",
		CurrentLevel:     1,
		UnlockedEmotions: models.BaseEmotions,
	}

	var buf bytes.Buffer
	if err := NewBackupService(source).ExportToWriter(&buf); err != nil {
		t.Fatalf("ExportToWriter: %v", err)
	}

	target := newFakeStore()
	if err := NewBackupService(target).ImportFromReader(&buf); err != nil {
		t.Fatalf("ImportFromReader: %v", err)
	}

	if len(target.records) != 2 {
		t.Fatalf("imported %d learners, want 2", len(target.records))
	}
	restored := target.records["kid-1"]
	if restored.TotalScore != 2350 || restored.CurrentLevel != 3 {
		t.Errorf("restored kid-1 = (score %d, level %d), want (2350, 3)", restored.TotalScore, restored.CurrentLevel)
	}
	if len(restored.SessionHistory) != 1 || restored.SessionHistory[0].SessionID != "s1" {
		t.Errorf("restored session history = %+v, want the original entry", restored.SessionHistory)
	}
	if len(restored.Achievements) != 1 {
		t.Errorf("restored achievements = %v, want 1 entry", restored.Achievements)
	}
}

func TestImportRejectsUnknownVersion(t *testing.T) {
	source := newFakeStore()
	var buf bytes.Buffer
	if err := NewBackupService(source).ExportToWriter(&buf); err != nil {
		t.Fatalf("ExportToWriter: %v", err)
	}

	data := BackupData{Version: "9"}
	var raw bytes.Buffer
	if err := encodeBackup(&raw, data); err != nil {
		t.Fatalf("encoding tampered backup: %v", err)
	}

	err := NewBackupService(newFakeStore()).ImportFromReader(&raw)
	if err == nil || !strings.Contains(err.Error(), "unsupported backup version") {
		t.Errorf("import = %v, want unsupported version error", err)
	}
}
