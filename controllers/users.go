package controllers

import (
	"alnooracademy_go/database"
	"alnooracademy_go/middleware"
	"alnooracademy_go/models"
	"alnooracademy_go/storage"
	"alnooracademy_go/utils"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type UserController struct{}

type UpdateUserRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	Gender      string `json:"gender" validate:"omitempty,oneof=male female"`
	Active      *bool  `json:"active"`
}

type UpdatePermissionsRequest struct {
	Permissions models.JSON `json:"permissions" validate:"required"`
}

// GetUsers lists all users (admin only), optionally filtered by role
func (uc *UserController) GetUsers(c *fiber.Ctx) error {
	query := database.DB.Model(&models.User{})

	if role := c.Query("role"); role != "" {
		if !utils.IsValidRole(role) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid role"})
		}
		query = query.Where("role = ?", role)
	}
	if active := c.Query("active"); active != "" {
		query = query.Where("active = ?", active == "true")
	}

	var users []models.User
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		logrus.WithError(err).Error("Failed to fetch users")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch users"})
	}

	return c.JSON(fiber.Map{
		"users": users,
		"total": len(users),
	})
}

// GetUser returns a single user with its role profile
func (uc *UserController) GetUser(c *fiber.Ctx) error {
	var user models.User
	if err := database.DB.
		Preload("Student.Subjects").
		Preload("Teacher.Subjects").
		Preload("Supervisor").
		First(&user, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user"})
	}

	return c.JSON(fiber.Map{"user": user})
}

// UpdateUser updates basic account fields (admin only)
func (uc *UserController) UpdateUser(c *fiber.Ctx) error {
	var user models.User
	if err := database.DB.First(&user, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user"})
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.PhoneNumber != "" {
		updates["phone_number"] = req.PhoneNumber
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.Gender != "" {
		updates["gender"] = req.Gender
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&user).Updates(updates).Error; err != nil {
			logrus.WithError(err).Error("Failed to update user")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user"})
		}
	}

	middleware.LogActivity(c, "UPDATE", "users", user.ID, updates)

	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"user":    user,
	})
}

// DeactivateUser flips the active flag off instead of deleting the row
func (uc *UserController) DeactivateUser(c *fiber.Ctx) error {
	var user models.User
	if err := database.DB.First(&user, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user"})
	}

	if err := database.DB.Model(&user).Update("active", false).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate user"})
	}

	middleware.LogActivity(c, "UPDATE", "users", user.ID, fiber.Map{"active": false})

	return c.JSON(fiber.Map{"message": "User deactivated successfully"})
}

// DeleteUser soft-deletes a user account
func (uc *UserController) DeleteUser(c *fiber.Ctx) error {
	var user models.User
	if err := database.DB.First(&user, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user"})
	}

	if err := database.DB.Delete(&user).Error; err != nil {
		logrus.WithError(err).Error("Failed to delete user")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete user"})
	}

	middleware.LogActivity(c, "DELETE", "users", user.ID, nil)

	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

// UpdatePermissions replaces a user's permission set (admin only)
func (uc *UserController) UpdatePermissions(c *fiber.Ctx) error {
	var user models.User
	if err := database.DB.First(&user, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user"})
	}

	var req UpdatePermissionsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := database.DB.Model(&user).Update("permissions", req.Permissions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update permissions"})
	}

	middleware.LogActivity(c, "UPDATE", "users", user.ID, fiber.Map{"field": "permissions"})

	return c.JSON(fiber.Map{"message": "Permissions updated successfully"})
}

// UploadProfilePicture uploads the caller's profile picture to S3.
// Admins may pass ?user_id= to upload on behalf of someone else.
func (uc *UserController) UploadProfilePicture(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	targetID := claims.UserID
	if idParam := c.Query("user_id"); idParam != "" && claims.Role == "admin" {
		var target models.User
		if err := database.DB.First(&target, idParam).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		targetID = target.ID
	}

	fileHeader, err := c.FormFile("picture")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "picture file is required"})
	}

	storageService, err := storage.NewStorageService()
	if err != nil {
		logrus.WithError(err).Error("Failed to initialize storage service")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Storage service unavailable"})
	}

	var user models.User
	if err := database.DB.First(&user, targetID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user"})
	}

	key, err := storageService.UploadProfilePicture(fileHeader, targetID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	// Best effort cleanup of the previous picture
	if user.ProfilePicture != "" {
		if delErr := storageService.DeleteFile(user.ProfilePicture); delErr != nil {
			logrus.WithError(delErr).Warn("Failed to delete previous profile picture")
		}
	}

	if err := database.DB.Model(&user).Update("profile_picture", key).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save profile picture"})
	}

	middleware.LogActivity(c, "UPDATE", "users", user.ID, fiber.Map{"field": "profile_picture"})

	return c.JSON(fiber.Map{
		"message": "Profile picture uploaded successfully",
		"key":     key,
		"url":     storageService.GetFileURL(key),
	})
}
