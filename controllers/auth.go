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

type AuthController struct{}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	Gender      string `json:"gender" validate:"omitempty,oneof=male female"`
	Role        string `json:"role" validate:"required"`

	// Teacher / supervisor fields
	Qualification string `json:"qualification"`
	Salary        int    `json:"salary"`

	// Student fields
	GuardianName    string `json:"guardian_name"`
	GuardianContact string `json:"guardian_contact"`
	Grade           string `json:"grade"`
	SubjectIDs      []uint `json:"subjects"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// Login authenticates a user by email and password
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var user models.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
		}
		logrus.WithError(err).Error("Login query failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	if !user.Active {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Account is deactivated. Please contact the administration."})
	}

	if err := utils.CheckPassword(req.Password, user.Password); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	token, err := middleware.GenerateToken(&user)
	if err != nil {
		logrus.WithError(err).Error("Token generation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate token"})
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user": fiber.Map{
			"id":         user.ID,
			"name":       user.Name,
			"email":      user.Email,
			"role":       user.Role,
			"department": utils.RoleDepartment(user.Role),
		},
	})
}

// Register creates a new user with a role profile. Admin only; the
// bootstrap endpoint below handles the very first admin.
func (ac *AuthController) Register(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if !utils.IsValidRole(req.Role) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid role"})
	}

	user, err := createUserWithProfile(&req, &claims.UserID)
	if err != nil {
		return respondFiberError(c, err)
	}

	middleware.LogActivity(c, "CREATE", "users", user.ID, fiber.Map{"role": user.Role})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    utils.ToUserShort(*user),
	})
}

// Bootstrap creates the first admin account. It only works while the
// users table has no admin.
func (ac *AuthController) Bootstrap(c *fiber.Ctx) error {
	var count int64
	if err := database.DB.Model(&models.User{}).Where("role = ?", "admin").Count(&count).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
	if count > 0 {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "An admin account already exists"})
	}

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	req.Role = "admin"
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user, err := createUserWithProfile(&req, nil)
	if err != nil {
		return respondFiberError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Admin account created",
		"user":    utils.ToUserShort(*user),
	})
}

// createUserWithProfile inserts the user row and its role profile in one
// transaction. Validation specific to each role happens here.
func createUserWithProfile(req *RegisterRequest, createdBy *uint) (*models.User, error) {
	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to hash password")
	}

	user := models.User{
		Name:        req.Name,
		Email:       req.Email,
		Password:    hashed,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Gender:      req.Gender,
		Role:        req.Role,
		Active:      true,
		CreatedByID: createdBy,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		switch {
		case req.Role == "student":
			if req.GuardianName == "" || req.GuardianContact == "" {
				return fiber.NewError(fiber.StatusBadRequest, "guardian_name and guardian_contact are required for students")
			}
			profile := models.StudentProfile{
				UserID:          user.ID,
				GuardianName:    req.GuardianName,
				GuardianContact: req.GuardianContact,
				Grade:           req.Grade,
			}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
			if len(req.SubjectIDs) > 0 {
				var subjects []models.Subject
				if err := tx.Where("id IN ?", req.SubjectIDs).Find(&subjects).Error; err != nil {
					return err
				}
				if len(subjects) != len(req.SubjectIDs) {
					return fiber.NewError(fiber.StatusNotFound, "One or more subjects not found")
				}
				if err := tx.Model(&profile).Association("Subjects").Append(subjects); err != nil {
					return err
				}
			}
		case utils.IsTeacherRole(req.Role):
			profile := models.TeacherProfile{
				UserID:        user.ID,
				Department:    utils.RoleDepartment(req.Role),
				Qualification: req.Qualification,
				Salary:        req.Salary,
			}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
		case utils.IsSupervisorRole(req.Role):
			profile := models.SupervisorProfile{
				UserID:     user.ID,
				Department: utils.RoleDepartment(req.Role),
				Salary:     req.Salary,
			}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return nil, fe
		}
		if isDuplicateKeyError(err) {
			return nil, fiber.NewError(fiber.StatusConflict, "A user with this email already exists")
		}
		logrus.WithError(err).Error("Failed to create user")
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to create user")
	}

	return &user, nil
}

// GetProfile returns the authenticated user with role-specific details
func (ac *AuthController) GetProfile(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	var user models.User
	query := database.DB
	switch {
	case claims.Role == "student":
		query = query.Preload("Student.Subjects").Preload("Student.AssignedTeachers")
	case utils.IsTeacherRole(claims.Role):
		query = query.Preload("Teacher.Subjects")
	case utils.IsSupervisorRole(claims.Role):
		query = query.Preload("Supervisor")
	}
	if err := query.First(&user, claims.UserID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	return c.JSON(fiber.Map{"user": user})
}

// ChangePassword updates the authenticated user's password
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var user models.User
	if err := database.DB.First(&user, claims.UserID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user"})
	}

	if err := utils.CheckPassword(req.CurrentPassword, user.Password); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Current password is incorrect"})
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	if err := database.DB.Model(&user).Update("password", hashed).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update password"})
	}

	middleware.LogActivity(c, "UPDATE", "users", user.ID, fiber.Map{"field": "password"})

	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}

// Logout blacklists the current token until it expires
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	tokenString, _ := c.Locals("token").(string)
	if tokenString != "" && claims.ExpiresAt != nil {
		if err := middleware.BlacklistToken(tokenString, claims.ExpiresAt.Time); err != nil {
			logrus.WithError(err).Warn("Failed to blacklist token")
		}
	}

	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}
