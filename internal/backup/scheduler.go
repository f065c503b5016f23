// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

/*
scheduler.go - Backup Scheduling

A scheduled run creates an archive labeled with the schedule prefix and
then rotates archives containing that prefix down to MaxKept. Manual
archives use other labels and are never rotated.

Every step is written both to zerolog and to the activity log, which the
admin API serves as plain entries.

The Scheduler is a suture service; cron deployments call RunScheduled
once from the CLI instead.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/gallery/internal/logging"
)

// Scheduler runs RunScheduled on a fixed interval
type Scheduler struct {
	manager  *Manager
	log      *ActivityLog
	schedule ScheduleConfig
}

// NewScheduler returns a scheduler for manager's schedule configuration.
func NewScheduler(manager *Manager, log *ActivityLog) *Scheduler {
	return &Scheduler{
		manager:  manager,
		log:      log,
		schedule: manager.cfg.Schedule,
	}
}

// Serve implements suture.Service. With scheduling disabled it blocks until
// canceled so the supervisor does not restart it.
func (s *Scheduler) Serve(ctx context.Context) error {
	if !s.schedule.Enabled || s.schedule.Interval <= 0 {
		logging.Info().Msg("Scheduled backups disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	logging.Info().
		Dur("interval", s.schedule.Interval).
		Str("prefix", s.schedule.Prefix).
		Int("max_kept", s.schedule.MaxKept).
		Msg("Backup scheduler started")

	ticker := time.NewTicker(s.schedule.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// Failures are logged; the next tick tries again.
			_ = s.RunScheduled(ctx)
		}
	}
}

// String implements fmt.Stringer for suture logs.
func (s *Scheduler) String() string {
	return "backup-scheduler"
}

// RunScheduled creates one scheduled archive and rotates old ones.
func (s *Scheduler) RunScheduled(ctx context.Context) error {
	s.record("Starting scheduled backup...")

	archive, err := s.manager.Create(ctx, s.schedule.Prefix)
	if err != nil {
		s.fail("Scheduled backup failed", err)
		return fmt.Errorf("scheduled backup: %w", err)
	}
	s.record("Backup created successfully: " + archive.Path)

	matched, err := s.manager.Matching(ctx, s.schedule.Prefix)
	if err != nil {
		s.fail("Failed to list scheduled backups", err)
		return fmt.Errorf("scheduled rotation: %w", err)
	}
	s.record(fmt.Sprintf("Found %d scheduled backups, keeping %d", len(matched), s.schedule.MaxKept))

	if excess := len(matched) - s.schedule.MaxKept; excess > 0 {
		for _, a := range matched[:excess] {
			s.record("Deleting old backup: " + a.Filename)
		}
	}

	if _, err := s.manager.Rotate(ctx, s.schedule.Prefix, s.schedule.MaxKept); err != nil {
		s.fail("Scheduled rotation failed", err)
		return fmt.Errorf("scheduled rotation: %w", err)
	}

	s.record("Scheduled backup completed successfully")
	return nil
}

func (s *Scheduler) record(message string) {
	logging.Info().Str("component", "backup-scheduler").Msg(message)
	if err := s.log.Append(message); err != nil {
		logging.Warn().Err(err).Msg("Failed to write backup activity log")
	}
}

func (s *Scheduler) fail(message string, err error) {
	logging.Error().Err(err).Str("component", "backup-scheduler").Msg(message)
	if lerr := s.log.Append("ERROR: " + message + ": " + err.Error()); lerr != nil {
		logging.Warn().Err(lerr).Msg("Failed to write backup activity log")
	}
}
