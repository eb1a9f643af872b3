package controllers

import (
	"alnooracademy_go/database"
	"alnooracademy_go/middleware"
	"alnooracademy_go/models"
	"alnooracademy_go/services"
	"alnooracademy_go/utils"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PaymentController struct{}

type GenerateChallanRequest struct {
	StudentID uint   `json:"student" validate:"required"`
	Amount    int    `json:"amount" validate:"required,min=1"`
	Month     string `json:"month" validate:"required"` // YYYY-MM
	DueDate   string `json:"due_date" validate:"required"`
	Remarks   string `json:"remarks"`
}

type PayChallanRequest struct {
	Amount        int    `json:"amount" validate:"required,min=1"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=cash bank_transfer card online"`
	TransactionID string `json:"transaction_id"`
}

type GenerateSalaryInvoiceRequest struct {
	UserID      uint   `json:"user" validate:"required"`
	Month       string `json:"month" validate:"required"`
	BonusAmount int    `json:"bonus_amount" validate:"min=0"`
	BonusReason string `json:"bonus_reason"`
	Remarks     string `json:"remarks"`
}

// GenerateChallan issues a fee challan for a student (admin only)
func (pc *PaymentController) GenerateChallan(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	var req GenerateChallanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if _, err := time.Parse("2006-01", req.Month); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "month must be in YYYY-MM format"})
	}
	dueDate, err := parseClassDate(req.DueDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "due_date must be in YYYY-MM-DD format"})
	}

	var student models.User
	if err := database.DB.Where("role = ?", "student").First(&student, req.StudentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch student"})
	}

	// One challan per student per month
	var existing int64
	if err := database.DB.Model(&models.FeeChallan{}).
		Where("student_id = ? AND month = ?", student.ID, req.Month).
		Count(&existing).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check existing challans"})
	}
	if existing > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A challan for this student and month already exists"})
	}

	issuedBy := claims.UserID
	challan := models.FeeChallan{
		StudentID:  student.ID,
		Amount:     req.Amount,
		Month:      req.Month,
		DueDate:    dueDate,
		Status:     "pending",
		Remarks:    req.Remarks,
		IssuedByID: &issuedBy,
	}
	if err := database.DB.Create(&challan).Error; err != nil {
		logrus.WithError(err).Error("Failed to generate challan")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate challan"})
	}

	middleware.LogActivity(c, "CREATE", "challans", challan.ID, fiber.Map{"student": student.ID, "month": req.Month})
	go services.NotifyChallanIssued(&challan)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Challan generated successfully",
		"challan": challan,
	})
}

// GetChallans lists challans (admin), optionally by status or month
func (pc *PaymentController) GetChallans(c *fiber.Ctx) error {
	query := database.DB.Preload("Student").Preload("Payments")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if month := c.Query("month"); month != "" {
		query = query.Where("month = ?", month)
	}

	var challans []models.FeeChallan
	if err := query.Order("due_date DESC").Find(&challans).Error; err != nil {
		logrus.WithError(err).Error("Failed to fetch challans")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch challans"})
	}

	return c.JSON(fiber.Map{"challans": challans, "total": len(challans)})
}

// PayChallan records a payment against a challan and marks it paid.
// Settlement (partial payment balancing, refunds) is out of scope; the
// record keeps the raw amounts.
func (pc *PaymentController) PayChallan(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	var challan models.FeeChallan
	if err := database.DB.First(&challan, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Challan not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch challan"})
	}

	if challan.Status == "paid" {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Challan is already paid"})
	}

	var req PayChallanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	receivedBy := claims.UserID
	now := time.Now()
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		payment := models.ChallanPayment{
			FeeChallanID: challan.ID,
			Amount:       req.Amount,
			Method:       req.PaymentMethod,
			ReceivedByID: &receivedBy,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		return tx.Model(&challan).Updates(map[string]interface{}{
			"status":         "paid",
			"payment_date":   now,
			"payment_method": req.PaymentMethod,
			"transaction_id": req.TransactionID,
		}).Error
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to record challan payment")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record payment"})
	}

	middleware.LogActivity(c, "UPDATE", "challans", challan.ID, fiber.Map{"status": "paid", "amount": req.Amount})

	return c.JSON(fiber.Map{"message": "Payment recorded successfully", "challan": challan})
}

// GenerateSalaryInvoice issues a salary invoice for a teacher or
// supervisor (admin only). The base amount comes from the profile.
func (pc *PaymentController) GenerateSalaryInvoice(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	var req GenerateSalaryInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if _, err := time.Parse("2006-01", req.Month); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "month must be in YYYY-MM format"})
	}

	var user models.User
	if err := database.DB.Preload("Teacher").Preload("Supervisor").First(&user, req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user"})
	}

	var baseSalary int
	switch {
	case utils.IsTeacherRole(user.Role) && user.Teacher != nil:
		baseSalary = user.Teacher.Salary
	case utils.IsSupervisorRole(user.Role) && user.Supervisor != nil:
		baseSalary = user.Supervisor.Salary
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Salary invoices apply to teachers and supervisors only"})
	}

	var existing int64
	if err := database.DB.Model(&models.SalaryInvoice{}).
		Where("user_id = ? AND month = ?", user.ID, req.Month).
		Count(&existing).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check existing invoices"})
	}
	if existing > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "An invoice for this user and month already exists"})
	}

	processedBy := claims.UserID
	now := time.Now()
	invoice := models.SalaryInvoice{
		UserID:        user.ID,
		Role:          user.Role,
		Amount:        baseSalary,
		BonusAmount:   req.BonusAmount,
		BonusReason:   req.BonusReason,
		Month:         req.Month,
		Status:        "paid",
		PaymentDate:   &now,
		Remarks:       req.Remarks,
		ProcessedByID: &processedBy,
	}
	if req.BonusAmount > 0 {
		invoice.BonusApprovedBy = &processedBy
	}
	if err := database.DB.Create(&invoice).Error; err != nil {
		logrus.WithError(err).Error("Failed to generate salary invoice")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate salary invoice"})
	}

	middleware.LogActivity(c, "CREATE", "salaries", invoice.ID, fiber.Map{"user": user.ID, "month": req.Month})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Salary invoice generated successfully",
		"invoice": invoice,
	})
}

// GetSalaryInvoices lists salary invoices (admin), filterable by month
func (pc *PaymentController) GetSalaryInvoices(c *fiber.Ctx) error {
	query := database.DB.Preload("User")
	if month := c.Query("month"); month != "" {
		query = query.Where("month = ?", month)
	}
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var invoices []models.SalaryInvoice
	if err := query.Order("created_at DESC").Find(&invoices).Error; err != nil {
		logrus.WithError(err).Error("Failed to fetch salary invoices")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch salary invoices"})
	}

	return c.JSON(fiber.Map{"invoices": invoices, "total": len(invoices)})
}
