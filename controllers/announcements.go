package controllers

import (
	"alnooracademy_go/database"
	"alnooracademy_go/middleware"
	"alnooracademy_go/models"
	"alnooracademy_go/utils"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AnnouncementController struct{}

type CreateAnnouncementRequest struct {
	Title          string   `json:"title" validate:"required"`
	Content        string   `json:"content" validate:"required"`
	RecipientRoles []string `json:"recipient_roles" validate:"required,min=1"`
}

// CreateAnnouncement publishes an announcement to one or more roles.
// Staff only; supervisors cannot address the admin role.
func (anc *AnnouncementController) CreateAnnouncement(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	var req CreateAnnouncementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	for _, role := range req.RecipientRoles {
		if !utils.IsValidRole(role) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid recipient role: " + role})
		}
		if role == "admin" && claims.Role != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only admins can address announcements to admins"})
		}
	}

	rolesJSON, _ := json.Marshal(req.RecipientRoles)
	announcement := models.Announcement{
		Title:          req.Title,
		Content:        req.Content,
		SenderID:       claims.UserID,
		SenderRole:     claims.Role,
		RecipientRoles: rolesJSON,
	}
	if err := database.DB.Create(&announcement).Error; err != nil {
		logrus.WithError(err).Error("Failed to create announcement")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create announcement"})
	}

	middleware.LogActivity(c, "CREATE", "announcements", announcement.ID, fiber.Map{"roles": req.RecipientRoles})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Announcement created successfully",
		"announcement": announcement,
	})
}

// GetAnnouncements lists announcements addressed to the caller's role.
// Admins see everything.
func (anc *AnnouncementController) GetAnnouncements(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	query := database.DB.Preload("Sender").Order("created_at DESC")
	if claims.Role != "admin" {
		// recipient_roles is a JSON array of role strings
		query = query.Where("JSON_CONTAINS(recipient_roles, JSON_QUOTE(?))", claims.Role)
	}

	var announcements []models.Announcement
	if err := query.Find(&announcements).Error; err != nil {
		logrus.WithError(err).Error("Failed to fetch announcements")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch announcements"})
	}

	return c.JSON(fiber.Map{
		"announcements": announcements,
		"total":         len(announcements),
	})
}

// GetAnnouncement returns one announcement, visibility-scoped
func (anc *AnnouncementController) GetAnnouncement(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	var announcement models.Announcement
	if err := database.DB.Preload("Sender").First(&announcement, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Announcement not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch announcement"})
	}

	if claims.Role != "admin" && announcement.SenderID != claims.UserID {
		var roles []string
		_ = json.Unmarshal(announcement.RecipientRoles, &roles)
		visible := false
		for _, r := range roles {
			if r == claims.Role {
				visible = true
				break
			}
		}
		if !visible {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions"})
		}
	}

	return c.JSON(fiber.Map{"announcement": announcement})
}

// UpdateAnnouncement edits title/content. Only the sender or an admin.
func (anc *AnnouncementController) UpdateAnnouncement(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	var announcement models.Announcement
	if err := database.DB.First(&announcement, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Announcement not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch announcement"})
	}

	if claims.Role != "admin" && announcement.SenderID != claims.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only edit your own announcements"})
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Content != "" {
		updates["content"] = req.Content
	}
	if len(updates) > 0 {
		if err := database.DB.Model(&announcement).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update announcement"})
		}
	}

	middleware.LogActivity(c, "UPDATE", "announcements", announcement.ID, updates)

	return c.JSON(fiber.Map{"message": "Announcement updated successfully", "announcement": announcement})
}

// DeleteAnnouncement removes an announcement. Only the sender or admin.
func (anc *AnnouncementController) DeleteAnnouncement(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	var announcement models.Announcement
	if err := database.DB.First(&announcement, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Announcement not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch announcement"})
	}

	if claims.Role != "admin" && announcement.SenderID != claims.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only delete your own announcements"})
	}

	if err := database.DB.Delete(&announcement).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete announcement"})
	}

	middleware.LogActivity(c, "DELETE", "announcements", announcement.ID, nil)

	return c.JSON(fiber.Map{"message": "Announcement deleted successfully"})
}
