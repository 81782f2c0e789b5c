package repository

import (
	"sort"
	"sync"

	"olexparser/internal/core/model"
)

type inMemoryReportRepository struct {
	reports map[string]*model.CaseReport
	mutex   sync.RWMutex
}

func NewInMemoryReportRepository() ReportRepository {
	return &inMemoryReportRepository{
		reports: make(map[string]*model.CaseReport),
	}
}

func (r *inMemoryReportRepository) Create(report *model.CaseReport) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.reports[report.ID] = report
	return nil
}

func (r *inMemoryReportRepository) FindByID(id string) (*model.CaseReport, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if report, exists := r.reports[id]; exists {
		return report, nil
	}
	return nil, nil
}

// FindAll returns the newest report first, matching the Mongo sort
func (r *inMemoryReportRepository) FindAll() ([]*model.CaseReport, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]*model.CaseReport, 0, len(r.reports))
	for _, report := range r.reports {
		result = append(result, report)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AnalyzedAt.After(result[j].AnalyzedAt)
	})
	return result, nil
}

func (r *inMemoryReportRepository) Delete(id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.reports, id)
	return nil
}
