package controllers

import (
	"alnooracademy_go/database"
	"alnooracademy_go/middleware"
	"alnooracademy_go/models"
	"alnooracademy_go/utils"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type NotificationController struct{}

// GetNotifications lists the caller's notifications, newest first
func (nc *NotificationController) GetNotifications(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	query := database.DB.Preload("User").Where("user_id = ?", claims.UserID)
	if unread := c.Query("unread"); unread == "true" {
		query = query.Where("`read` = ?", false)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Limit(100).Find(&notifications).Error; err != nil {
		logrus.WithError(err).Error("Failed to fetch notifications")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch notifications"})
	}

	out := make([]utils.NotificationDTO, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, utils.ToNotificationDTO(n))
	}

	return c.JSON(fiber.Map{
		"notifications": out,
		"total":         len(out),
	})
}

// GetUnreadCount returns the caller's unread notification count
func (nc *NotificationController) GetUnreadCount(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	var count int64
	if err := database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND `read` = ?", claims.UserID, false).
		Count(&count).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count notifications"})
	}

	return c.JSON(fiber.Map{"unread": count})
}

// MarkAsRead marks one of the caller's notifications as read
func (nc *NotificationController) MarkAsRead(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	var notification models.Notification
	if err := database.DB.Where("user_id = ?", claims.UserID).First(&notification, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Notification not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch notification"})
	}

	if !notification.Read {
		now := time.Now()
		if err := database.DB.Model(&notification).Updates(map[string]interface{}{
			"read":    true,
			"read_at": now,
		}).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update notification"})
		}
	}

	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

// MarkAllAsRead marks every unread notification of the caller as read
func (nc *NotificationController) MarkAllAsRead(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	now := time.Now()
	if err := database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND `read` = ?", claims.UserID, false).
		Updates(map[string]interface{}{"read": true, "read_at": now}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update notifications"})
	}

	return c.JSON(fiber.Map{"message": "All notifications marked as read"})
}
