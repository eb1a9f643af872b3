package services

import (
	"alnooracademy_go/database"
	"alnooracademy_go/models"
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReminderScheduler owns the cron jobs: upcoming-class reminders, the
// daily schedule digest, the overdue-challan marker and queue flushes.
type ReminderScheduler struct {
	cron    *cron.Cron
	archive *LogArchiveService
}

func NewReminderScheduler() *ReminderScheduler {
	return &ReminderScheduler{
		cron:    cron.New(),
		archive: NewLogArchiveService(90),
	}
}

// Start registers and launches all jobs. Schedules are evaluated in the
// server's local time.
func (rs *ReminderScheduler) Start() error {
	jobs := []struct {
		spec string
		name string
		fn   func()
	}{
		{"* * * * *", "flush-notification-queue", FlushNotificationQueue},
		{"* * * * *", "flush-log-queue", rs.archive.FlushLogQueue},
		{"*/5 * * * *", "upcoming-class-reminders", rs.sendUpcomingClassReminders},
		{"0 7 * * *", "daily-digest", rs.sendDailyDigest},
		{"30 0 * * *", "overdue-challan-marker", rs.markOverdueChallans},
		{"0 2 * * 0", "archive-old-logs", func() {
			if err := rs.archive.ArchiveOldLogs(); err != nil {
				logrus.WithError(err).Error("Log archival failed")
			}
		}},
	}

	for _, job := range jobs {
		j := job
		if _, err := rs.cron.AddFunc(j.spec, func() {
			defer func() {
				if r := recover(); r != nil {
					logrus.WithFields(logrus.Fields{"job": j.name, "panic": r}).Error("panic recovered in cron job")
				}
			}()
			j.fn()
		}); err != nil {
			return err
		}
	}

	rs.cron.Start()
	logrus.Info("Reminder scheduler started")
	return nil
}

// Stop halts the cron loop and waits for running jobs.
func (rs *ReminderScheduler) Stop() {
	ctx := rs.cron.Stop()
	<-ctx.Done()
}

// sendUpcomingClassReminders notifies teachers and students of classes
// starting within the next 30 or 60 minutes. A Redis marker per
// schedule+window prevents duplicate reminders across ticks.
func (rs *ReminderScheduler) sendUpcomingClassReminders() {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var schedules []models.Schedule
	if err := database.DB.Preload("Students").
		Where("class_date = ? AND status = ?", today, "scheduled").
		Find(&schedules).Error; err != nil {
		logrus.WithError(err).Error("Failed to load today's schedules for reminders")
		return
	}

	for _, s := range schedules {
		start, err := time.Parse("15:04", s.StartTime)
		if err != nil {
			continue
		}
		startAt := time.Date(today.Year(), today.Month(), today.Day(), start.Hour(), start.Minute(), 0, 0, time.UTC)
		minutesUntil := int(time.Until(startAt).Minutes())

		for _, window := range []int{60, 30} {
			// fires once per window, on the tick entering the 5 minute band
			if minutesUntil > window || minutesUntil <= window-5 {
				continue
			}
			if !claimReminderWindow(s.ID, window) {
				continue
			}
			sched := s
			NotifyUpcomingClass(s.TeacherID, &sched, minutesUntil)
			for _, student := range s.Students {
				NotifyUpcomingClass(student.ID, &sched, minutesUntil)
			}
		}
	}
}

func claimReminderWindow(scheduleID uint, window int) bool {
	redisClient := database.GetRedisClient()
	if redisClient == nil {
		return true
	}
	key := fmt.Sprintf("reminder:%d:%d", scheduleID, window)
	ok, err := redisClient.SetNX(context.Background(), key, "1", 2*time.Hour).Result()
	if err != nil {
		return true
	}
	return ok
}

// sendDailyDigest tells every teacher and student how many classes they
// have today.
func (rs *ReminderScheduler) sendDailyDigest() {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var schedules []models.Schedule
	if err := database.DB.Preload("Students").
		Where("class_date = ? AND status = ?", today, "scheduled").
		Find(&schedules).Error; err != nil {
		logrus.WithError(err).Error("Failed to load schedules for daily digest")
		return
	}

	counts := make(map[uint]int)
	for _, s := range schedules {
		counts[s.TeacherID]++
		for _, student := range s.Students {
			counts[student.ID]++
		}
	}

	for userID, count := range counts {
		NotifyDailyDigest(userID, count, today)
	}

	logrus.WithField("recipients", len(counts)).Info("Daily digest sent")
}

// markOverdueChallans flips pending challans past their due date to
// overdue.
func (rs *ReminderScheduler) markOverdueChallans() {
	now := time.Now().UTC()
	result := database.DB.Model(&models.FeeChallan{}).
		Where("status = ? AND due_date < ?", "pending", now).
		Update("status", "overdue")
	if result.Error != nil {
		logrus.WithError(result.Error).Error("Failed to mark overdue challans")
		return
	}
	if result.RowsAffected > 0 {
		logrus.WithField("count", result.RowsAffected).Info("Marked challans overdue")
	}
}
