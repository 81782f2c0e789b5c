package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"olexparser/internal/cache"
	"olexparser/internal/core/model"
	"olexparser/internal/core/repository"
	"olexparser/internal/discovery"
	"olexparser/internal/export"
)

var (
	ErrEmptyPath      = errors.New("case path is required")
	ErrReportNotFound = errors.New("case report not found")
)

// Export formats
const (
	FormatGPX     = "gpx"
	FormatGeoJSON = "geojson"
)

type CaseService interface {
	Analyze(ctx context.Context, root string) (*model.CaseReport, error)
	GetReport(ctx context.Context, id string) (*model.CaseReport, error)
	ListReports(ctx context.Context) ([]*model.CaseReport, error)
	Export(ctx context.Context, id, format string) ([]byte, error)
}

// Cache is the subset of cache.Store the service uses
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
}

type Metrics interface {
	CaseAnalyzed(d time.Duration, files map[string]int, records int, diagnostics map[string]int)
	CaseFailed()
	CacheLookup(hit bool)
}

type Notifier interface {
	PublishCaseAnalyzed(r *model.CaseReport) error
}

type caseService struct {
	reportRepo repository.ReportRepository
	opts       Options
	cache      Cache
	metrics    Metrics
	notifier   Notifier
}

// NewCaseService wires the service. cache, metrics and notifier may be nil.
func NewCaseService(reportRepo repository.ReportRepository, opts Options, c Cache, m Metrics, n Notifier) CaseService {
	return &caseService{
		reportRepo: reportRepo,
		opts:       opts,
		cache:      c,
		metrics:    m,
		notifier:   n,
	}
}

// load discovers and assembles the folder at root
func (s *caseService) load(ctx context.Context, root string) (*Case, error) {
	res, err := discovery.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", root, err)
	}
	return Assemble(ctx, res, s.opts)
}

func (s *caseService) Analyze(ctx context.Context, root string) (*model.CaseReport, error) {
	if root == "" {
		return nil, ErrEmptyPath
	}

	start := time.Now()
	c, err := s.load(ctx, root)
	if err != nil {
		if s.metrics != nil {
			s.metrics.CaseFailed()
		}
		return nil, err
	}
	report := BuildReport(c)

	if s.metrics != nil {
		s.metrics.CaseAnalyzed(time.Since(start), fileCounts(c), recordCount(c), report.Counts)
	}
	logrus.WithFields(logrus.Fields{
		"case":        report.ID,
		"root":        root,
		"diagnostics": len(report.Diagnostics),
		"duration":    time.Since(start),
	}).Info("case analyzed")

	if err := s.reportRepo.Create(report); err != nil {
		return nil, fmt.Errorf("store report: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.ReportKey(report.ID), report); err != nil {
			logrus.WithError(err).WithField("case", report.ID).Warn("failed to cache report")
		}
	}
	if s.notifier != nil {
		if err := s.notifier.PublishCaseAnalyzed(report); err != nil {
			logrus.WithError(err).WithField("case", report.ID).Warn("failed to publish case notification")
		}
	}
	return report, nil
}

func (s *caseService) GetReport(ctx context.Context, id string) (*model.CaseReport, error) {
	var cached model.CaseReport
	if s.lookup(ctx, cache.ReportKey(id), &cached) {
		return &cached, nil
	}

	report, err := s.reportRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrReportNotFound
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.ReportKey(id), report); err != nil {
			logrus.WithError(err).WithField("case", id).Warn("failed to cache report")
		}
	}
	return report, nil
}

func (s *caseService) ListReports(ctx context.Context) ([]*model.CaseReport, error) {
	return s.reportRepo.FindAll()
}

// Export re-parses the report's folder and renders it. The folder is read
// again because reports do not keep individual records.
func (s *caseService) Export(ctx context.Context, id, format string) ([]byte, error) {
	if format != FormatGPX && format != FormatGeoJSON {
		return nil, fmt.Errorf("unsupported export format %q", format)
	}

	key := cache.ExportKey(id, format)
	var cached []byte
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}

	report, err := s.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := s.load(ctx, report.Root)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch format {
	case FormatGPX:
		err = export.WriteGPX(&buf, c)
	case FormatGeoJSON:
		err = export.WriteGeoJSON(&buf, c)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, buf.Bytes()); err != nil {
			logrus.WithError(err).WithField("case", id).Warn("failed to cache export")
		}
	}
	return buf.Bytes(), nil
}

// lookup reads key from the cache into dest and reports a hit
func (s *caseService) lookup(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err != nil && !cache.IsMiss(err) {
		logrus.WithError(err).WithField("key", key).Warn("cache read failed")
	}
	if s.metrics != nil {
		s.metrics.CacheLookup(err == nil)
	}
	return err == nil
}

func fileCounts(c *Case) map[string]int {
	n := len(c.UnassociatedSegments())
	for _, tf := range c.TripFiles() {
		for _, trip := range tf.Trips() {
			n += len(trip.Segments())
		}
	}
	return map[string]int{
		"turdata": len(c.TripFiles()),
		"ruter":   len(c.RouteFiles()),
		"segment": n,
	}
}

func recordCount(c *Case) int {
	n := 0
	for _, f := range c.UnassociatedSegments() {
		n += f.Len()
	}
	for _, tf := range c.TripFiles() {
		for _, trip := range tf.Trips() {
			for _, f := range trip.Segments() {
				n += f.Len()
			}
		}
	}
	return n
}
