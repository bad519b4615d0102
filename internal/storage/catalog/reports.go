package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/portalgenie/backend/internal/storage/models"
	"github.com/portalgenie/backend/pkg/logger"
)

// ReportStore holds the report catalog. Loaded once at startup and
// read-only afterwards.
type ReportStore struct {
	reports []models.Report
	byID    map[string]*models.Report
}

func LoadReports(path string) (*ReportStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reports dataset: %w", err)
	}

	var reports []models.Report
	if err := json.Unmarshal(data, &reports); err != nil {
		return nil, fmt.Errorf("failed to parse reports dataset: %w", err)
	}

	byID := make(map[string]*models.Report, len(reports))
	for i := range reports {
		byID[reports[i].ReportID] = &reports[i]
	}

	logger.Info("Report catalog loaded",
		zap.String("path", path),
		zap.Int("reports", len(reports)),
	)

	return &ReportStore{reports: reports, byID: byID}, nil
}

// NewReportStore builds a store from in-memory reports (tests).
func NewReportStore(reports []models.Report) *ReportStore {
	byID := make(map[string]*models.Report, len(reports))
	for i := range reports {
		byID[reports[i].ReportID] = &reports[i]
	}
	return &ReportStore{reports: reports, byID: byID}
}

func (s *ReportStore) All() []models.Report {
	return s.reports
}

func (s *ReportStore) Get(reportID string) (*models.Report, bool) {
	r, ok := s.byID[reportID]
	return r, ok
}

func (s *ReportStore) Len() int {
	return len(s.reports)
}

// CorpusText renders the embedding text for a report, concatenating its
// name, description, column names, filter names and example phrases.
func CorpusText(r *models.Report) string {
	var b strings.Builder
	b.WriteString(r.Name)
	b.WriteString(" - ")
	b.WriteString(r.Description)
	b.WriteString(" Columns: ")
	b.WriteString(strings.Join(r.Columns, " "))
	b.WriteString(" Filters: ")
	for i, f := range r.Filters {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(f.Name)
	}
	if len(r.Examples) > 0 {
		b.WriteString(" Examples: ")
		b.WriteString(strings.Join(r.Examples, " "))
	}
	return b.String()
}
