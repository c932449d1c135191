package services

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// CleanupService prunes stale files from the local upload temp directory.
// It runs independently of request handling and is not synchronized with
// in-flight uploads.
type CleanupService struct {
	tempDir string
	maxAge  time.Duration
}

func NewCleanupService(tempDir string, maxAge time.Duration) *CleanupService {
	return &CleanupService{tempDir: tempDir, maxAge: maxAge}
}

// RemoveStale deletes temp files older than the configured age and
// returns how many were removed.
func (s *CleanupService) RemoveStale() (int, error) {
	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read temp dir: %w", err)
	}

	cutoff := time.Now().Add(-s.maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.tempDir, entry.Name())); err != nil {
			log.Printf("[CLEANUP] Failed to remove %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}
	return removed, nil
}

// CleanupTemp handles POST /api/cleanup-temp.
func (s *CleanupService) CleanupTemp(w http.ResponseWriter, r *http.Request) {
	removed, err := s.RemoveStale()
	if err != nil {
		log.Printf("[CLEANUP] Temp cleanup failed: %v", err)
		respondError(w, err)
		return
	}

	log.Printf("[CLEANUP] Removed %d stale temp files", removed)
	respondJSON(w, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Removed %d stale files", removed),
	})
}
