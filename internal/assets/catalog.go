// Package assets serves quiz questions from a directory of emotion
// photos. The directory layout is one subdirectory per emotion label
// (e.g. questions/happy/smile_01.jpg); the catalog hot-reloads when the
// directory changes.
package assets

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"emotionquest/internal/models"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Catalog is a directory-backed question source.
type Catalog struct {
	dir string

	mu        sync.RWMutex
	questions map[models.Emotion][]models.GameQuestion

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewCatalog scans dir and returns a catalog. A missing directory is not
// an error; the catalog is simply empty and the curriculum falls back to
// placeholder questions.
func NewCatalog(dir string) (*Catalog, error) {
	c := &Catalog{
		dir:  dir,
		done: make(chan struct{}),
	}
	if err := c.reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// QuestionsFor returns the available questions for an emotion, in a
// stable order. The returned slice is a copy.
func (c *Catalog) QuestionsFor(emotion models.Emotion) []models.GameQuestion {
	c.mu.RLock()
	defer c.mu.RUnlock()

	questions := c.questions[emotion]
	out := make([]models.GameQuestion, len(questions))
	copy(out, questions)
	return out
}

// Watch starts reloading the catalog when the asset directory changes.
// Call Close to stop watching.
func (c *Catalog) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	c.watcher = watcher

	if err := watcher.Add(c.dir); err != nil {
		watcher.Close()
		c.watcher = nil
		return err
	}
	// Watch emotion subdirectories too; fsnotify is not recursive.
	entries, _ := os.ReadDir(c.dir)
	for _, entry := range entries {
		if entry.IsDir() {
			_ = watcher.Add(filepath.Join(c.dir, entry.Name()))
		}
	}

	go c.watchLoop()
	return nil
}

// Close stops the directory watcher.
func (c *Catalog) Close() {
	if c.watcher != nil {
		close(c.done)
		c.watcher.Close()
	}
}

func (c *Catalog) watchLoop() {
	for {
		select {
		case <-c.done:
			return
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = c.watcher.Add(event.Name)
				}
			}
			if err := c.reload(); err != nil {
				log.Printf("asset catalog reload failed: %v", err)
			}
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("asset catalog watch error: %v", err)
		}
	}
}

// reload rescans the asset directory and swaps in the new question set.
func (c *Catalog) reload() error {
	questions := make(map[models.Emotion][]models.GameQuestion)

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			c.swap(questions)
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		emotion, ok := models.ParseEmotion(entry.Name())
		if !ok {
			continue
		}

		files, err := os.ReadDir(filepath.Join(c.dir, entry.Name()))
		if err != nil {
			continue
		}
		for _, file := range files {
			if file.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(file.Name()))] {
				continue
			}
			handle := filepath.Join(entry.Name(), file.Name())
			questions[emotion] = append(questions[emotion], models.GameQuestion{
				ID:             handle,
				CorrectEmotion: emotion,
				ImageHandle:    handle,
			})
		}
		sort.Slice(questions[emotion], func(i, j int) bool {
			return questions[emotion][i].ID < questions[emotion][j].ID
		})
	}

	c.swap(questions)
	return nil
}

func (c *Catalog) swap(questions map[models.Emotion][]models.GameQuestion) {
	c.mu.Lock()
	c.questions = questions
	c.mu.Unlock()
}
