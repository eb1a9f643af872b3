package services

import (
	"alnooracademy_go/config"
	"alnooracademy_go/database"
	"alnooracademy_go/models"
	ws "alnooracademy_go/services/websocket"
	"alnooracademy_go/utils"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const notificationQueueKey = "notifications:queue"

// QueueNotification persists a notification and pushes it to the user's
// open websocket connections. With USE_REDIS_NOTIFICATIONS enabled the
// insert goes through a Redis list first and a background worker batches
// the writes; otherwise it hits the database directly.
func QueueNotification(n *models.Notification) {
	if config.AppConfig != nil && config.AppConfig.UseRedisNotifications {
		if err := enqueueNotification(n); err == nil {
			ws.DefaultHub().SendToUser(n.UserID, notificationPayload(n))
			return
		}
		// fall through to the direct insert on Redis failure
	}

	if err := database.DB.Create(n).Error; err != nil {
		logrus.WithError(err).Error("Failed to save notification")
		return
	}
	ws.DefaultHub().SendToUser(n.UserID, notificationPayload(n))
}

func notificationPayload(n *models.Notification) map[string]interface{} {
	return map[string]interface{}{
		"event":        "notification",
		"notification": utils.ToNotificationDTO(*n),
	}
}

func enqueueNotification(n *models.Notification) error {
	redisClient := database.GetRedisClient()
	if redisClient == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return redisClient.RPush(context.Background(), notificationQueueKey, data).Err()
}

// FlushNotificationQueue drains the Redis queue into the database in one
// batch insert. The reminder scheduler calls this every minute.
func FlushNotificationQueue() {
	redisClient := database.GetRedisClient()
	if redisClient == nil {
		return
	}
	ctx := context.Background()

	var batch []models.Notification
	for i := 0; i < 500; i++ {
		data, err := redisClient.LPop(ctx, notificationQueueKey).Bytes()
		if err != nil {
			break
		}
		var n models.Notification
		if err := json.Unmarshal(data, &n); err != nil {
			logrus.WithError(err).Warn("Dropping malformed queued notification")
			continue
		}
		batch = append(batch, n)
	}
	if len(batch) == 0 {
		return
	}

	if err := database.DB.Create(&batch).Error; err != nil {
		logrus.WithError(err).Error("Failed to flush notification queue")
	}
}

// scheduleCreatedNotifications builds the booking notices for the
// teacher and every student of a new schedule.
func scheduleCreatedNotifications(schedule models.Schedule, studentIDs []uint) []models.Notification {
	date := utils.FormatDateDMY(schedule.ClassDate)

	out := make([]models.Notification, 0, len(studentIDs)+1)
	out = append(out, models.Notification{
		UserID:    schedule.TeacherID,
		Title:     "New class scheduled",
		TitleUr:   "نئی کلاس شیڈول ہوئی",
		Message:   fmt.Sprintf("You have a %s class on %s from %s to %s", schedule.SubjectName, date, schedule.StartTime, schedule.EndTime),
		MessageUr: fmt.Sprintf("%s کی کلاس %s کو %s سے %s تک ہے", schedule.SubjectName, date, schedule.StartTime, schedule.EndTime),
		Type:      "info",
	})

	for _, id := range studentIDs {
		out = append(out, models.Notification{
			UserID:    id,
			Title:     "New class scheduled",
			TitleUr:   "نئی کلاس شیڈول ہوئی",
			Message:   fmt.Sprintf("Your %s class with %s is on %s from %s to %s", schedule.SubjectName, schedule.TeacherName, date, schedule.StartTime, schedule.EndTime),
			MessageUr: fmt.Sprintf("%s کی کلاس %s کے ساتھ %s کو %s سے %s تک ہے", schedule.SubjectName, schedule.TeacherName, date, schedule.StartTime, schedule.EndTime),
			Type:      "info",
		})
	}
	return out
}

// NotifyScheduleCreated tells the teacher and every student about a new
// class booking. The schedule is taken by value; a caller may keep
// writing to its own copy after handing this off to a goroutine.
func NotifyScheduleCreated(schedule models.Schedule, studentIDs []uint) {
	for _, n := range scheduleCreatedNotifications(schedule, studentIDs) {
		n := n
		QueueNotification(&n)
	}
}

// NotifyChallanIssued tells a student a fee challan was generated.
func NotifyChallanIssued(challan *models.FeeChallan) {
	QueueNotification(&models.Notification{
		UserID:    challan.StudentID,
		Title:     "Fee challan issued",
		TitleUr:   "فیس چالان جاری ہوا",
		Message:   fmt.Sprintf("A fee challan of %d for %s is due on %s", challan.Amount, challan.Month, utils.FormatDateDMY(challan.DueDate)),
		MessageUr: fmt.Sprintf("%s کے لیے %d کا فیس چالان %s تک واجب الادا ہے", challan.Month, challan.Amount, utils.FormatDateDMY(challan.DueDate)),
		Type:      "warning",
	})
}

// NotifyUpcomingClass reminds a user of a class starting soon.
func NotifyUpcomingClass(userID uint, schedule *models.Schedule, minutes int) {
	QueueNotification(&models.Notification{
		UserID:    userID,
		Title:     "Upcoming class",
		TitleUr:   "آنے والی کلاس",
		Message:   fmt.Sprintf("Your %s class starts at %s (in about %d minutes)", schedule.SubjectName, schedule.StartTime, minutes),
		MessageUr: fmt.Sprintf("آپ کی %s کلاس %s بجے شروع ہوگی (تقریباً %d منٹ میں)", schedule.SubjectName, schedule.StartTime, minutes),
		Type:      "info",
	})
}

// NotifyDailyDigest sends a user the day's class count.
func NotifyDailyDigest(userID uint, count int, date time.Time) {
	QueueNotification(&models.Notification{
		UserID:    userID,
		Title:     "Today's classes",
		TitleUr:   "آج کی کلاسیں",
		Message:   fmt.Sprintf("You have %d class(es) scheduled for %s", count, utils.FormatDateDMY(date)),
		MessageUr: fmt.Sprintf("آج %s کو آپ کی %d کلاسیں شیڈول ہیں", utils.FormatDateDMY(date), count),
		Type:      "info",
	})
}
