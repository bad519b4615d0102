package feedback

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/portalgenie/backend/internal/storage/models"
	"github.com/portalgenie/backend/pkg/logger"
)

// Store is the append-only feedback log. Records are never mutated or
// deleted, and every score is derived from the log alone so history can
// be recomputed after a rollback of the file.
type Store struct {
	path string

	mu      sync.Mutex
	records []models.FeedbackRecord
}

// Load reads the feedback log. A missing or corrupt file yields an
// empty history: losing feedback must never take report search down.
func Load(path string) *Store {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Failed to read feedback log, starting empty",
				zap.String("path", path),
				zap.Error(err),
			)
		}
		return s
	}

	var records []models.FeedbackRecord
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Warn("Feedback log is corrupt, starting empty",
			zap.String("path", path),
			zap.Error(err),
		)
		return s
	}

	s.records = records
	logger.Info("Feedback log loaded",
		zap.String("path", path),
		zap.Int("records", len(records)),
	)
	return s
}

// NewStore builds a store around in-memory records (tests). A non-empty
// path enables persistence.
func NewStore(records []models.FeedbackRecord, path string) *Store {
	return &Store{path: path, records: records}
}

// Append adds a record to the log and rewrites the file through a temp
// file + rename so a reader never sees a partially written log.
func (s *Store) Append(query string, matches []string, sentiment string) error {
	if sentiment != models.FeedbackPositive && sentiment != models.FeedbackNegative {
		return fmt.Errorf("invalid feedback sentiment %q", sentiment)
	}

	record := models.FeedbackRecord{
		Query:     query,
		Matches:   matches,
		Feedback:  sentiment,
		Timestamp: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record)

	if err := s.persistLocked(); err != nil {
		s.records = s.records[:len(s.records)-1]
		return fmt.Errorf("failed to persist feedback log: %w", err)
	}

	logger.Info("Feedback recorded",
		zap.String("sentiment", sentiment),
		zap.Int("matches", len(matches)),
		zap.Int("total_records", len(s.records)),
	)

	return nil
}

// Len reports the number of records in the log.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// ScoreFor derives the net sentiment for a report:
// (positive - negative) / total over all records mentioning it, in
// [-1, 1], or 0 when the report never appears.
func (s *Store) ScoreFor(reportID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var positive, total int
	for _, r := range s.records {
		if !mentions(r.Matches, reportID) {
			continue
		}
		total++
		if r.Feedback == models.FeedbackPositive {
			positive++
		}
	}

	if total == 0 {
		return 0
	}
	negative := total - positive
	return float64(positive-negative) / float64(total)
}

func mentions(matches []string, reportID string) bool {
	for _, m := range matches {
		if m == reportID {
			return true
		}
	}
	return false
}

func (s *Store) persistLocked() error {
	if s.path == "" {
		return nil
	}

	data, err := json.Marshal(s.records)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback log: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".feedback-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace feedback log: %w", err)
	}

	return nil
}
