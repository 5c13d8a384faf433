package assets

import (
	"os"
	"path/filepath"
	"testing"

	"emotionquest/internal/models"
)

func writeImage(t *testing.T, dir, emotion, name string) {
	t.Helper()
	sub := filepath.Join(dir, emotion)
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("mkdir %s: %v", sub, err)
	}
	if err := os.WriteFile(filepath.Join(sub, name), []byte("not-a-real-jpeg"), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestCatalogScan(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "happy", "smile_01.jpg")
	writeImage(t, dir, "happy", "smile_02.png")
	writeImage(t, dir, "sad", "frown_01.jpeg")
	writeImage(t, dir, "happy", "notes.txt") // non-image, ignored

	// Unknown emotion directory is ignored
	writeImage(t, dir, "confused", "huh_01.jpg")

	catalog, err := NewCatalog(dir)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	defer catalog.Close()

	happy := catalog.QuestionsFor(models.EmotionHappy)
	if len(happy) != 2 {
		t.Fatalf("got %d happy questions, want 2", len(happy))
	}
	for _, q := range happy {
		if q.CorrectEmotion != models.EmotionHappy {
			t.Errorf("question %s tagged %s, want happy", q.ID, q.CorrectEmotion)
		}
		if q.IsPlaceholder() {
			t.Errorf("scanned question %s should carry an image handle", q.ID)
		}
	}

	if got := catalog.QuestionsFor(models.EmotionSad); len(got) != 1 {
		t.Errorf("got %d sad questions, want 1", len(got))
	}
	if got := catalog.QuestionsFor(models.EmotionFear); len(got) != 0 {
		t.Errorf("got %d fear questions, want 0", len(got))
	}
}

func TestCatalogMissingDirectory(t *testing.T) {
	catalog, err := NewCatalog(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("NewCatalog on missing dir: %v", err)
	}
	defer catalog.Close()

	if got := catalog.QuestionsFor(models.EmotionHappy); len(got) != 0 {
		t.Errorf("missing dir should yield no questions, got %d", len(got))
	}
}

func TestCatalogReload(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "neutral", "calm_01.jpg")

	catalog, err := NewCatalog(dir)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	defer catalog.Close()

	if got := catalog.QuestionsFor(models.EmotionNeutral); len(got) != 1 {
		t.Fatalf("got %d neutral questions, want 1", len(got))
	}

	writeImage(t, dir, "neutral", "calm_02.jpg")
	if err := catalog.reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	if got := catalog.QuestionsFor(models.EmotionNeutral); len(got) != 2 {
		t.Errorf("after reload got %d neutral questions, want 2", len(got))
	}
}
