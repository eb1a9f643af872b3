package controllers

import (
	"alnooracademy_go/database"
	"alnooracademy_go/middleware"
	"alnooracademy_go/models"
	"alnooracademy_go/utils"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type SupervisorController struct{}

// GetDepartmentOverview summarizes the supervisor's department: teacher
// and student counts plus today's schedule load.
func (svc *SupervisorController) GetDepartmentOverview(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}
	department := utils.RoleDepartment(claims.Role)

	var teacherCount int64
	if err := database.DB.Model(&models.User{}).
		Where("role = ? AND active = ?", "teacher_"+department, true).
		Count(&teacherCount).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build overview"})
	}

	studentIDs, err := departmentStudentIDs(department)
	if err != nil {
		logrus.WithError(err).Error("Failed to resolve department students")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build overview"})
	}

	today := time.Now().UTC()
	todayDate := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	var todayCount int64
	if err := database.DB.Model(&models.Schedule{}).
		Where("subject_type = ? AND class_date = ? AND status = ?", department, todayDate, "scheduled").
		Count(&todayCount).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build overview"})
	}

	return c.JSON(fiber.Map{
		"department":    department,
		"teacher_count": teacherCount,
		"student_count": len(studentIDs),
		"classes_today": todayCount,
	})
}

// GetDepartmentTeacherAttendance shows day attendance for all teachers
// of the supervisor's department, for one date (default today).
func (svc *SupervisorController) GetDepartmentTeacherAttendance(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}
	department := utils.RoleDepartment(claims.Role)

	date := time.Now().UTC()
	if d := c.Query("date"); d != "" {
		parsed, err := parseClassDate(d)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be in YYYY-MM-DD format"})
		}
		date = parsed
	} else {
		date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	}

	var teachers []models.User
	if err := database.DB.Where("role = ? AND active = ?", "teacher_"+department, true).
		Order("name").Find(&teachers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch teachers"})
	}

	teacherIDs := make([]uint, 0, len(teachers))
	for _, t := range teachers {
		teacherIDs = append(teacherIDs, t.ID)
	}

	var records []models.Attendance
	if len(teacherIDs) > 0 {
		if err := database.DB.
			Where("user_id IN ? AND date = ? AND schedule_id IS NULL", teacherIDs, date).
			Find(&records).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch attendance"})
		}
	}

	byTeacher := make(map[uint]models.Attendance, len(records))
	for _, r := range records {
		byTeacher[r.UserID] = r
	}

	type teacherAttendance struct {
		Teacher utils.UserShort    `json:"teacher"`
		Status  string             `json:"status"`
		Marked  bool               `json:"marked"`
		Record  *models.Attendance `json:"record,omitempty"`
	}

	out := make([]teacherAttendance, 0, len(teachers))
	for _, t := range teachers {
		entry := teacherAttendance{Teacher: utils.ToUserShort(t), Status: "unmarked"}
		if r, ok := byTeacher[t.ID]; ok {
			rec := r
			entry.Status = r.Status
			entry.Marked = true
			entry.Record = &rec
		}
		out = append(out, entry)
	}

	return c.JSON(fiber.Map{
		"date":       utils.FormatDateDMY(date),
		"attendance": out,
	})
}

// GetDepartmentClassStatus lists class history entries for the
// supervisor's department over an optional date range.
func (svc *SupervisorController) GetDepartmentClassStatus(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}
	department := utils.RoleDepartment(claims.Role)

	query := database.DB.Preload("Schedule").Preload("OriginalTeacher").
		Joins("JOIN schedules ON schedules.id = class_histories.schedule_id").
		Where("schedules.subject_type = ?", department)

	if from := c.Query("from"); from != "" {
		parsed, err := parseClassDate(from)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "from must be in YYYY-MM-DD format"})
		}
		query = query.Where("class_histories.date >= ?", parsed)
	}
	if to := c.Query("to"); to != "" {
		parsed, err := parseClassDate(to)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "to must be in YYYY-MM-DD format"})
		}
		query = query.Where("class_histories.date <= ?", parsed)
	}

	var history []models.ClassHistory
	if err := query.Order("class_histories.date DESC").Find(&history).Error; err != nil {
		logrus.WithError(err).Error("Failed to fetch class history")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch class history"})
	}

	return c.JSON(fiber.Map{
		"class_history": history,
		"total":         len(history),
	})
}
