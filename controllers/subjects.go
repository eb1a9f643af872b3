package controllers

import (
	"alnooracademy_go/database"
	"alnooracademy_go/middleware"
	"alnooracademy_go/models"
	"alnooracademy_go/utils"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type SubjectController struct{}

type CreateSubjectRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Type        string `json:"type" validate:"required,oneof=quran academic"`
}

type UpdateSubjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateSubject adds a subject (admin only). Type is immutable after
// creation since schedules denormalize the derived department.
func (sbc *SubjectController) CreateSubject(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	var req CreateSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	createdBy := claims.UserID
	subject := models.Subject{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		CreatedByID: &createdBy,
	}
	if err := database.DB.Create(&subject).Error; err != nil {
		logrus.WithError(err).Error("Failed to create subject")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create subject"})
	}

	middleware.LogActivity(c, "CREATE", "subjects", subject.ID, fiber.Map{"name": subject.Name, "type": subject.Type})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Subject created successfully",
		"subject": subject,
	})
}

// GetSubjects lists subjects scoped by role: students see their
// enrollments, teachers their assignments, staff see everything.
func (sbc *SubjectController) GetSubjects(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	switch {
	case claims.Role == "student":
		var profile models.StudentProfile
		if err := database.DB.Preload("Subjects").Where("user_id = ?", claims.UserID).First(&profile).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch subjects"})
		}
		return c.JSON(fiber.Map{"subjects": profile.Subjects, "total": len(profile.Subjects)})
	case utils.IsTeacherRole(claims.Role):
		var profile models.TeacherProfile
		if err := database.DB.Preload("Subjects").Where("user_id = ?", claims.UserID).First(&profile).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch subjects"})
		}
		return c.JSON(fiber.Map{"subjects": profile.Subjects, "total": len(profile.Subjects)})
	}

	query := database.DB.Model(&models.Subject{})
	if t := c.Query("type"); t != "" {
		query = query.Where("type = ?", t)
	}
	// Supervisors only see their own department's subjects
	if utils.IsSupervisorRole(claims.Role) {
		if utils.RoleDepartment(claims.Role) == "quran" {
			query = query.Where("type = ?", "quran")
		} else {
			query = query.Where("type = ?", "academic")
		}
	}

	var subjects []models.Subject
	if err := query.Order("name").Find(&subjects).Error; err != nil {
		logrus.WithError(err).Error("Failed to fetch subjects")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch subjects"})
	}

	return c.JSON(fiber.Map{"subjects": subjects, "total": len(subjects)})
}

// GetSubject returns one subject
func (sbc *SubjectController) GetSubject(c *fiber.Ctx) error {
	var subject models.Subject
	if err := database.DB.First(&subject, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subject not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch subject"})
	}

	return c.JSON(fiber.Map{"subject": subject})
}

// UpdateSubject updates name/description (admin only)
func (sbc *SubjectController) UpdateSubject(c *fiber.Ctx) error {
	var subject models.Subject
	if err := database.DB.First(&subject, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subject not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch subject"})
	}

	var req UpdateSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&subject).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update subject"})
		}
		// Keep the denormalized name on schedules in sync
		if name, ok := updates["name"]; ok {
			if err := database.DB.Model(&models.Schedule{}).
				Where("subject_id = ?", subject.ID).
				Update("subject_name", name).Error; err != nil {
				logrus.WithError(err).Warn("Failed to sync subject name on schedules")
			}
		}
	}

	middleware.LogActivity(c, "UPDATE", "subjects", subject.ID, updates)

	return c.JSON(fiber.Map{"message": "Subject updated successfully", "subject": subject})
}

// DeleteSubject removes a subject that has no schedules (admin only)
func (sbc *SubjectController) DeleteSubject(c *fiber.Ctx) error {
	var subject models.Subject
	if err := database.DB.First(&subject, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subject not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch subject"})
	}

	var scheduleCount int64
	if err := database.DB.Model(&models.Schedule{}).Where("subject_id = ?", subject.ID).Count(&scheduleCount).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check subject usage"})
	}
	if scheduleCount > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Subject has schedules and cannot be deleted"})
	}

	if err := database.DB.Delete(&subject).Error; err != nil {
		logrus.WithError(err).Error("Failed to delete subject")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete subject"})
	}

	middleware.LogActivity(c, "DELETE", "subjects", subject.ID, nil)

	return c.JSON(fiber.Map{"message": "Subject deleted successfully"})
}
