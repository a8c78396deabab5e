package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/jroneil/MI-Tool/internal/domain/models"
	"github.com/jroneil/MI-Tool/internal/domain/ports"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// UsageReporter periodically logs models that are close to the record quota
type UsageReporter struct {
	records     ports.RecordRepository
	schedule    string
	recordLimit int
	warnPercent int

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewUsageReporter creates a reporter. schedule is a cron spec or descriptor such as "@hourly".
func NewUsageReporter(records ports.RecordRepository, schedule string, recordLimit, warnPercent int) *UsageReporter {
	if warnPercent <= 0 || warnPercent > 100 {
		warnPercent = 80
	}
	return &UsageReporter{
		records:     records,
		schedule:    schedule,
		recordLimit: recordLimit,
		warnPercent: warnPercent,
	}
}

// Start schedules the report. It returns an error for an unparsable schedule.
func (u *UsageReporter) Start() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.running {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(u.schedule, func() { u.Run(context.Background()) }); err != nil {
		return fmt.Errorf("invalid usage report schedule %q: %w", u.schedule, err)
	}
	c.Start()

	u.cron = c
	u.running = true
	logrus.WithField("schedule", u.schedule).Info("⏰ usage reporter started")
	return nil
}

// Stop halts the schedule and waits for a running report to finish
func (u *UsageReporter) Stop() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.running {
		return
	}
	<-u.cron.Stop().Done()
	u.running = false
	logrus.Info("⏰ usage reporter stopped")
}

// Run computes one report and returns the models at or above the warning threshold
func (u *UsageReporter) Run(ctx context.Context) []models.ModelUsage {
	usage, err := u.records.UsageByModel(ctx)
	if err != nil {
		logrus.WithError(err).Error("❌ usage report failed")
		return nil
	}

	var near []models.ModelUsage
	for _, m := range usage {
		if u.recordLimit <= 0 || m.Records*100 < u.recordLimit*u.warnPercent {
			continue
		}
		near = append(near, m)
		logrus.WithFields(logrus.Fields{
			"model_id":     m.ModelID,
			"workspace_id": m.WorkspaceID,
			"slug":         m.Slug,
			"records":      m.Records,
			"limit":        u.recordLimit,
		}).Warn("⚠️ model is near its record limit")
	}

	logrus.WithFields(logrus.Fields{"models": len(usage), "near_limit": len(near)}).Info("📝 usage report complete")
	return near
}
