package scheduler

import (
	"context"
	"time"

	"github.com/ikkim/storerating-backend/internal/storage"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const archiveTimeout = 2 * time.Minute

type ReportBuilder interface {
	BuildStoreReport() ([]byte, error)
}

type ReportUploader interface {
	UploadReport(ctx context.Context, t time.Time, data []byte) (*storage.ArchivedReport, error)
}

// ReportArchiveScheduler periodically uploads the store report to object storage.
type ReportArchiveScheduler struct {
	cron     *cron.Cron
	schedule string
	reports  ReportBuilder
	uploader ReportUploader
	now      func() time.Time
}

// NewReportArchiveScheduler creates the scheduler. schedule is a standard
// five-field cron expression.
func NewReportArchiveScheduler(schedule string, reports ReportBuilder, uploader ReportUploader) *ReportArchiveScheduler {
	return &ReportArchiveScheduler{
		cron:     cron.New(),
		schedule: schedule,
		reports:  reports,
		uploader: uploader,
		now:      time.Now,
	}
}

// Start registers the archive job and starts the cron runner.
func (s *ReportArchiveScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		logger.Error("Failed to add cron job for report archive", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Report archive scheduler started", map[string]interface{}{
		"schedule": s.schedule,
	})
	return nil
}

// RunOnce builds and uploads one report.
func (s *ReportArchiveScheduler) RunOnce(ctx context.Context) (*storage.ArchivedReport, error) {
	logger.Info("Starting scheduled report archive")

	data, err := s.reports.BuildStoreReport()
	if err != nil {
		logger.Error("Failed to build store report", err)
		return nil, err
	}

	report, err := s.uploader.UploadReport(ctx, s.now(), data)
	if err != nil {
		logger.Error("Failed to archive store report", err)
		return nil, err
	}

	logger.Info("Store report archived", map[string]interface{}{
		"key":   report.Key,
		"url":   report.FileURL,
		"bytes": len(data),
	})
	return report, nil
}

// Stop waits for a running job to finish.
func (s *ReportArchiveScheduler) Stop() {
	logger.Info("Stopping report archive scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Report archive scheduler stopped")
}
