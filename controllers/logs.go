package controllers

import (
	"alnooracademy_go/database"
	"alnooracademy_go/models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type LogController struct{}

// GetActivityLogs lists activity logs (admin only), filterable by user,
// action and resource, paginated.
func (lc *LogController) GetActivityLogs(c *fiber.Ctx) error {
	query := database.DB.Model(&models.ActivityLog{}).Preload("User")

	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if resource := c.Query("resource"); resource != "" {
		query = query.Where("resource = ?", resource)
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := c.QueryInt("per_page", 50)
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count logs"})
	}

	var logs []models.ActivityLog
	if err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&logs).Error; err != nil {
		logrus.WithError(err).Error("Failed to fetch activity logs")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch activity logs"})
	}

	return c.JSON(fiber.Map{
		"logs":     logs,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// GetLogArchives lists archive records (admin only)
func (lc *LogController) GetLogArchives(c *fiber.Ctx) error {
	var archives []models.LogArchive
	if err := database.DB.Order("created_at DESC").Find(&archives).Error; err != nil {
		logrus.WithError(err).Error("Failed to fetch log archives")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch log archives"})
	}

	return c.JSON(fiber.Map{
		"archives": archives,
		"total":    len(archives),
	})
}
