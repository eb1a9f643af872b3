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

type TeacherController struct{}

type UpdateTeacherRequest struct {
	Qualification string      `json:"qualification"`
	Salary        *int        `json:"salary"`
	Expertise     models.JSON `json:"expertise"`
	AvailableDays models.JSON `json:"available_days"`
	AvailableFrom string      `json:"available_from"`
	AvailableTo   string      `json:"available_to"`
}

type UpdateTeacherSubjectsRequest struct {
	SubjectIDs []uint `json:"subjects" validate:"required,min=1"`
}

type MarkAttendanceRequest struct {
	Date    string `json:"date" validate:"required"`
	Status  string `json:"status" validate:"required,oneof=present absent leave"`
	Remarks string `json:"remarks"`
}

// GetTeachers lists teachers; supervisors only see their department
func (tc *TeacherController) GetTeachers(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	query := database.DB.Preload("Teacher.Subjects").
		Where("role IN ?", []string{"teacher_quran", "teacher_subjects"})

	switch {
	case claims.Role == "admin":
		if dept := c.Query("department"); dept != "" {
			query = query.Where("role = ?", "teacher_"+dept)
		}
	case utils.IsSupervisorRole(claims.Role):
		query = query.Where("role = ?", "teacher_"+utils.RoleDepartment(claims.Role))
	default:
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions"})
	}

	var teachers []models.User
	if err := query.Order("name").Find(&teachers).Error; err != nil {
		logrus.WithError(err).Error("Failed to fetch teachers")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch teachers"})
	}

	return c.JSON(fiber.Map{
		"teachers": teachers,
		"total":    len(teachers),
	})
}

// GetTeacher returns a single teacher with profile and subjects
func (tc *TeacherController) GetTeacher(c *fiber.Ctx) error {
	var teacher models.User
	if err := database.DB.Preload("Teacher.Subjects").
		Where("role IN ?", []string{"teacher_quran", "teacher_subjects"}).
		First(&teacher, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Teacher not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch teacher"})
	}

	return c.JSON(fiber.Map{"teacher": teacher})
}

// UpdateTeacher updates employment fields (admin only)
func (tc *TeacherController) UpdateTeacher(c *fiber.Ctx) error {
	var teacher models.User
	if err := database.DB.Preload("Teacher").
		Where("role IN ?", []string{"teacher_quran", "teacher_subjects"}).
		First(&teacher, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Teacher not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch teacher"})
	}
	if teacher.Teacher == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Teacher profile not found"})
	}

	var req UpdateTeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.AvailableFrom != "" && !isValidTimeFormat(req.AvailableFrom) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "available_from must be in HH:MM format"})
	}
	if req.AvailableTo != "" && !isValidTimeFormat(req.AvailableTo) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "available_to must be in HH:MM format"})
	}

	updates := map[string]interface{}{}
	if req.Qualification != "" {
		updates["qualification"] = req.Qualification
	}
	if req.Salary != nil {
		updates["salary"] = *req.Salary
	}
	if !req.Expertise.IsNull() {
		updates["expertise"] = req.Expertise
	}
	if !req.AvailableDays.IsNull() {
		updates["available_days"] = req.AvailableDays
	}
	if req.AvailableFrom != "" {
		updates["available_from"] = req.AvailableFrom
	}
	if req.AvailableTo != "" {
		updates["available_to"] = req.AvailableTo
	}

	if len(updates) > 0 {
		if err := database.DB.Model(teacher.Teacher).Updates(updates).Error; err != nil {
			logrus.WithError(err).Error("Failed to update teacher")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update teacher"})
		}
	}

	middleware.LogActivity(c, "UPDATE", "teachers", teacher.ID, updates)

	return c.JSON(fiber.Map{"message": "Teacher updated successfully"})
}

// UpdateTeacherSubjects replaces the teacher's subject assignments.
// Every subject must belong to the teacher's department.
func (tc *TeacherController) UpdateTeacherSubjects(c *fiber.Ctx) error {
	var teacher models.User
	if err := database.DB.Preload("Teacher").
		Where("role IN ?", []string{"teacher_quran", "teacher_subjects"}).
		First(&teacher, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Teacher not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch teacher"})
	}
	if teacher.Teacher == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Teacher profile not found"})
	}

	var req UpdateTeacherSubjectsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var subjects []models.Subject
	if err := database.DB.Where("id IN ?", req.SubjectIDs).Find(&subjects).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch subjects"})
	}
	if len(subjects) != len(req.SubjectIDs) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "One or more subjects not found"})
	}

	department := utils.RoleDepartment(teacher.Role)
	for _, s := range subjects {
		if utils.SubjectDepartment(s.Type) != department {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Subject " + s.Name + " does not belong to the teacher's department",
			})
		}
	}

	if err := database.DB.Model(teacher.Teacher).Association("Subjects").Replace(subjects); err != nil {
		logrus.WithError(err).Error("Failed to update teacher subjects")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update teacher subjects"})
	}

	middleware.LogActivity(c, "UPDATE", "teachers", teacher.ID, fiber.Map{"subjects": req.SubjectIDs})

	return c.JSON(fiber.Map{"message": "Teacher subjects updated successfully"})
}

// GetTeacherSchedules lists a teacher's own schedules. Teachers hit this
// for themselves; admins and supervisors can pass any teacher id.
func (tc *TeacherController) GetTeacherSchedules(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	teacherID := claims.UserID
	if idParam := c.Params("id"); idParam != "" && claims.Role != "student" && !utils.IsTeacherRole(claims.Role) {
		var teacher models.User
		if err := database.DB.Where("role IN ?", []string{"teacher_quran", "teacher_subjects"}).
			First(&teacher, idParam).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Teacher not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch teacher"})
		}
		if utils.IsSupervisorRole(claims.Role) &&
			utils.RoleDepartment(teacher.Role) != utils.RoleDepartment(claims.Role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only view teachers of your own department"})
		}
		teacherID = teacher.ID
	}

	query := database.DB.Preload("Students").Preload("Lessons").Where("teacher_id = ?", teacherID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var schedules []models.Schedule
	if err := query.
		Order("FIELD(day, 'Monday','Tuesday','Wednesday','Thursday','Friday','Saturday','Sunday'), start_time").
		Find(&schedules).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch schedules"})
	}

	return c.JSON(fiber.Map{
		"schedules": utils.ToScheduleDTOs(schedules),
		"total":     len(schedules),
	})
}

// MarkAttendance records a teacher's day attendance (supervisor/admin)
func (tc *TeacherController) MarkAttendance(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	var teacher models.User
	if err := database.DB.Where("role IN ?", []string{"teacher_quran", "teacher_subjects"}).
		First(&teacher, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Teacher not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch teacher"})
	}

	if utils.IsSupervisorRole(claims.Role) &&
		utils.RoleDepartment(teacher.Role) != utils.RoleDepartment(claims.Role) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only manage teachers of your own department"})
	}

	var req MarkAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	date, err := parseClassDate(req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be in YYYY-MM-DD format"})
	}

	// One attendance row per teacher per day
	markedBy := claims.UserID
	var existing models.Attendance
	err = database.DB.Where("user_id = ? AND date = ? AND schedule_id IS NULL", teacher.ID, date).First(&existing).Error
	switch {
	case err == nil:
		existing.Status = req.Status
		existing.Remarks = req.Remarks
		existing.MarkedByID = &markedBy
		if err := database.DB.Save(&existing).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update attendance"})
		}
		return c.JSON(fiber.Map{"message": "Attendance updated", "attendance": existing})
	case errors.Is(err, gorm.ErrRecordNotFound):
		attendance := models.Attendance{
			UserID:     teacher.ID,
			Date:       date,
			Status:     req.Status,
			Remarks:    req.Remarks,
			MarkedByID: &markedBy,
		}
		if err := database.DB.Create(&attendance).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to mark attendance"})
		}
		middleware.LogActivity(c, "CREATE", "attendance", attendance.ID, fiber.Map{"teacher": teacher.ID, "date": req.Date})
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Attendance marked", "attendance": attendance})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check attendance"})
	}
}

// GetTeacherAttendance lists a teacher's attendance records
func (tc *TeacherController) GetTeacherAttendance(c *fiber.Ctx) error {
	var teacher models.User
	if err := database.DB.Where("role IN ?", []string{"teacher_quran", "teacher_subjects"}).
		First(&teacher, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Teacher not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch teacher"})
	}

	query := database.DB.Where("user_id = ? AND schedule_id IS NULL", teacher.ID)
	if month := c.Query("month"); month != "" {
		start, err := time.Parse("2006-01", month)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "month must be in YYYY-MM format"})
		}
		query = query.Where("date >= ? AND date < ?", start, start.AddDate(0, 1, 0))
	}

	var attendance []models.Attendance
	if err := query.Order("date DESC").Find(&attendance).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch attendance"})
	}

	return c.JSON(fiber.Map{
		"attendance": attendance,
		"total":      len(attendance),
	})
}

// GetTeacherSalaryHistory lists a teacher's salary invoices
func (tc *TeacherController) GetTeacherSalaryHistory(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	var teacher models.User
	if err := database.DB.Where("role IN ?", []string{"teacher_quran", "teacher_subjects"}).
		First(&teacher, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Teacher not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch teacher"})
	}

	if utils.IsTeacherRole(claims.Role) && claims.UserID != teacher.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only view your own salary history"})
	}

	var invoices []models.SalaryInvoice
	if err := database.DB.Where("user_id = ?", teacher.ID).Order("created_at DESC").Find(&invoices).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch salary history"})
	}

	return c.JSON(fiber.Map{
		"invoices": invoices,
		"total":    len(invoices),
	})
}
