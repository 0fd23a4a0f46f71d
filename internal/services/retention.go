package services

import (
	"fmt"
	"sync"
	"time"

	"epif/internal/repository"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// AssessmentPurger is the part of the repository the retention job needs.
type AssessmentPurger interface {
	PurgeAssessmentsBefore(cutoff time.Time) (int64, error)
}

var _ AssessmentPurger = (repository.AssessmentRepository)(nil)

// RetentionJob periodically hard-deletes assessments older than the
// retention window.
type RetentionJob struct {
	purger    AssessmentPurger
	retention time.Duration
	cron      *cron.Cron
	now       func() time.Time
	logger    *logrus.Logger

	mu      sync.Mutex
	running bool
}

// NewRetentionJob schedules a purge on a standard cron spec such as
// "@daily" or "0 3 * * *". days must be positive.
func NewRetentionJob(purger AssessmentPurger, days int, schedule string, logger *logrus.Logger) (*RetentionJob, error) {
	if days <= 0 {
		return nil, fmt.Errorf("retention days must be positive, got %d", days)
	}
	spec, err := cron.ParseStandard(schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid retention schedule %q: %w", schedule, err)
	}

	j := &RetentionJob{
		purger:    purger,
		retention: time.Duration(days) * 24 * time.Hour,
		cron:      cron.New(),
		now:       time.Now,
		logger:    logger,
	}
	j.cron.Schedule(spec, cron.FuncJob(func() { j.RunOnce() }))
	return j, nil
}

func (j *RetentionJob) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		return
	}
	j.running = true
	j.cron.Start()
	j.logger.WithField("retention", j.retention).Info("Retention job started")
}

// Stop waits for a running purge to finish.
func (j *RetentionJob) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	j.running = false
	j.mu.Unlock()

	<-j.cron.Stop().Done()
	j.logger.Info("Retention job stopped")
}

// RunOnce purges everything created before now minus the retention window.
func (j *RetentionJob) RunOnce() (int64, error) {
	cutoff := j.now().Add(-j.retention)
	n, err := j.purger.PurgeAssessmentsBefore(cutoff)
	if err != nil {
		j.logger.WithError(err).WithField("cutoff", cutoff).Error("Failed to purge assessments")
		return 0, err
	}
	j.logger.WithFields(logrus.Fields{
		"cutoff": cutoff,
		"purged": n,
	}).Info("Purged expired assessments")
	return n, nil
}
