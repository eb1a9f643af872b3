package controllers

import (
	"alnooracademy_go/database"
	"alnooracademy_go/middleware"
	"alnooracademy_go/models"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ClientController struct{}

type CreateClientRequest struct {
	Name         string     `json:"name" validate:"required"`
	Email        string     `json:"email" validate:"required,email"`
	PhoneNumber  string     `json:"phone_number" validate:"required"`
	Address      string     `json:"address"`
	IsTrialBased bool       `json:"is_trial_based"`
	TrialEndDate *time.Time `json:"trial_end_date"`
	Notes        string     `json:"notes"`
	StudentIDs   []uint     `json:"students"`
}

type UpdateClientRequest struct {
	Name         string     `json:"name"`
	PhoneNumber  string     `json:"phone_number"`
	Address      string     `json:"address"`
	IsTrialBased *bool      `json:"is_trial_based"`
	TrialEndDate *time.Time `json:"trial_end_date"`
	Notes        string     `json:"notes"`
	StudentIDs   []uint     `json:"students"`
}

func loadClientStudents(ids []uint) ([]models.User, *fiber.Error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var students []models.User
	if err := database.DB.Where("id IN ? AND role = ?", ids, "student").Find(&students).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch students")
	}
	if len(students) != len(ids) {
		return nil, fiber.NewError(fiber.StatusNotFound, "One or more students not found")
	}
	return students, nil
}

// CreateClient registers a parent/client record (admin only)
func (cc *ClientController) CreateClient(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	var req CreateClientRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	students, ferr := loadClientStudents(req.StudentIDs)
	if ferr != nil {
		return respondFiberError(c, ferr)
	}

	createdBy := claims.UserID
	client := models.Client{
		Name:         req.Name,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		Address:      req.Address,
		IsTrialBased: req.IsTrialBased,
		TrialEndDate: req.TrialEndDate,
		Notes:        req.Notes,
		CreatedByID:  &createdBy,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&client).Error; err != nil {
			return err
		}
		if len(students) > 0 {
			return tx.Model(&client).Association("Students").Append(students)
		}
		return nil
	})
	if err != nil {
		if isDuplicateKeyError(err) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A client with this email already exists"})
		}
		logrus.WithError(err).Error("Failed to create client")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create client"})
	}

	middleware.LogActivity(c, "CREATE", "clients", client.ID, nil)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Client created successfully",
		"client":  client,
	})
}

// GetClients lists clients with their linked students (admin only)
func (cc *ClientController) GetClients(c *fiber.Ctx) error {
	query := database.DB.Preload("Students")
	if trial := c.Query("trial"); trial != "" {
		query = query.Where("is_trial_based = ?", trial == "true")
	}

	var clients []models.Client
	if err := query.Order("name").Find(&clients).Error; err != nil {
		logrus.WithError(err).Error("Failed to fetch clients")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch clients"})
	}

	return c.JSON(fiber.Map{"clients": clients, "total": len(clients)})
}

// GetClient returns one client
func (cc *ClientController) GetClient(c *fiber.Ctx) error {
	var client models.Client
	if err := database.DB.Preload("Students").First(&client, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch client"})
	}

	return c.JSON(fiber.Map{"client": client})
}

// UpdateClient updates a client and optionally its student links
func (cc *ClientController) UpdateClient(c *fiber.Ctx) error {
	var client models.Client
	if err := database.DB.First(&client, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch client"})
	}

	var req UpdateClientRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
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
	if req.IsTrialBased != nil {
		updates["is_trial_based"] = *req.IsTrialBased
	}
	if req.TrialEndDate != nil {
		updates["trial_end_date"] = req.TrialEndDate
	}
	if req.Notes != "" {
		updates["notes"] = req.Notes
	}

	students, ferr := loadClientStudents(req.StudentIDs)
	if ferr != nil {
		return respondFiberError(c, ferr)
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&client).Updates(updates).Error; err != nil {
				return err
			}
		}
		if req.StudentIDs != nil {
			return tx.Model(&client).Association("Students").Replace(students)
		}
		return nil
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to update client")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update client"})
	}

	middleware.LogActivity(c, "UPDATE", "clients", client.ID, updates)

	return c.JSON(fiber.Map{"message": "Client updated successfully", "client": client})
}

// DeleteClient soft-deletes a client record
func (cc *ClientController) DeleteClient(c *fiber.Ctx) error {
	var client models.Client
	if err := database.DB.First(&client, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch client"})
	}

	if err := database.DB.Delete(&client).Error; err != nil {
		logrus.WithError(err).Error("Failed to delete client")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete client"})
	}

	middleware.LogActivity(c, "DELETE", "clients", client.ID, nil)

	return c.JSON(fiber.Map{"message": "Client deleted successfully"})
}
