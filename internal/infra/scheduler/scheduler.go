// Package scheduler fires callbacks when the user's calendar day changes.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	rcron "github.com/robfig/cron/v3"

	"github.com/studyplan/planner/internal/domain"
)

// midnight is the cron schedule of a day change.
const midnight = "0 0 * * *"

// stopTimeout bounds how long Stop waits for a running callback.
const stopTimeout = 5 * time.Second

// DayChange runs a callback at every local midnight of a timezone.
type DayChange struct {
	logger   domain.Logger
	loc      *time.Location
	onChange func()
	cron     *rcron.Cron
	stopCh   chan struct{}
	schedule rcron.Schedule
	mu       sync.Mutex
}

// NewDayChange creates a DayChange for loc. It does nothing until Start is called.
func NewDayChange(loc *time.Location, logger domain.Logger, onChange func()) (*DayChange, error) {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = domain.NopLogger{}
	}
	schedule, err := rcron.ParseStandard(spec(loc))
	if err != nil {
		return nil, fmt.Errorf("parse schedule: %w", err)
	}
	return &DayChange{
		logger:   logger,
		loc:      loc,
		onChange: onChange,
		schedule: schedule,
	}, nil
}

func spec(loc *time.Location) string {
	return "CRON_TZ=" + loc.String() + " " + midnight
}

// Next returns the first day change strictly after t.
func (d *DayChange) Next(t time.Time) time.Time {
	return d.schedule.Next(t)
}

// Start begins firing callbacks. The scheduler stops when ctx is done or Stop is called.
func (d *DayChange) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cron != nil {
		return nil
	}

	c := rcron.New(rcron.WithLocation(d.loc))
	c.Schedule(d.schedule, rcron.FuncJob(d.fire))
	c.Start()
	d.cron = c
	d.stopCh = make(chan struct{})
	d.logger.Debug(0, "scheduler", "day change scheduler started for "+d.loc.String())

	stopCh := d.stopCh
	go func() {
		select {
		case <-ctx.Done():
			d.Stop()
		case <-stopCh:
		}
	}()
	return nil
}

// Stop halts the scheduler and waits briefly for a running callback.
func (d *DayChange) Stop() {
	d.mu.Lock()
	c := d.cron
	stopCh := d.stopCh
	d.cron = nil
	d.stopCh = nil
	d.mu.Unlock()

	if c == nil {
		return
	}
	close(stopCh)

	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(stopTimeout):
		d.logger.Warn(0, "scheduler", "stop timeout waiting for running callback")
	}
	d.logger.Debug(0, "scheduler", "day change scheduler stopped")
}

func (d *DayChange) fire() {
	d.logger.Info(0, "scheduler", "day changed")
	if d.onChange != nil {
		d.onChange()
	}
}
