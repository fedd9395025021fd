package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/websap/backend/internal/logger"
)

// CleanupService periodically expires IP blocks and prunes old suspicious
// requests and read notifications.
type CleanupService struct {
	Cron          *cron.Cron
	security      *SecurityService
	notifications *NotificationService
	retention     time.Duration
	now           func() time.Time
}

// NewCleanupService schedules the cleanup job with a standard five field cron
// expression. Nothing runs until Start is called.
func NewCleanupService(security *SecurityService, notifications *NotificationService, retention time.Duration, schedule string) (*CleanupService, error) {
	s := &CleanupService{
		Cron:          cron.New(),
		security:      security,
		notifications: notifications,
		retention:     retention,
		now:           time.Now,
	}
	if _, err := s.Cron.AddFunc(schedule, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *CleanupService) Start() {
	s.Cron.Start()
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *CleanupService) Stop() {
	<-s.Cron.Stop().Done()
}

// CleanupResult counts the rows touched by one run.
type CleanupResult struct {
	ExpiredBlocks       int64
	SuspiciousPruned    int64
	NotificationsPruned int64
}

// RunOnce performs a single cleanup pass. Step errors are logged and do not
// stop the remaining steps.
func (s *CleanupService) RunOnce(ctx context.Context) CleanupResult {
	log := logger.Component("cleanup")
	var res CleanupResult
	var err error

	if res.ExpiredBlocks, err = s.security.DeactivateExpired(ctx); err != nil {
		log.WithError(err).Error("failed to expire ip blocks")
	}

	if s.retention > 0 {
		before := s.now().Add(-s.retention)
		if res.SuspiciousPruned, err = s.security.PruneSuspicious(ctx, before); err != nil {
			log.WithError(err).Error("failed to prune suspicious requests")
		}
		if s.notifications != nil {
			if res.NotificationsPruned, err = s.notifications.PruneRead(before); err != nil {
				log.WithError(err).Error("failed to prune notifications")
			}
		}
	}

	log.WithFields(logrus.Fields{
		"expired_blocks": res.ExpiredBlocks,
		"suspicious":     res.SuspiciousPruned,
		"notifications":  res.NotificationsPruned,
	}).Info("cleanup finished")
	return res
}
