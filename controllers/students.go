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

type StudentController struct{}

type UpdateStudentRequest struct {
	GuardianName    string     `json:"guardian_name"`
	GuardianContact string     `json:"guardian_contact"`
	Grade           string     `json:"grade"`
	IsTrialBased    *bool      `json:"is_trial_based"`
	TrialEndDate    *time.Time `json:"trial_end_date"`
}

type UpdateEnrollmentRequest struct {
	SubjectIDs []uint `json:"subjects" validate:"required,min=1"`
}

type AssignTeacherRequest struct {
	TeacherID   uint `json:"teacher" validate:"required"`
	SubjectID   uint `json:"subject" validate:"required"`
	IsTemporary bool `json:"is_temporary"`
}

// assignedStudentIDs returns the ids of students assigned to a teacher.
func assignedStudentIDs(teacherID uint) ([]uint, error) {
	var profileIDs []uint
	if err := database.DB.Model(&models.TeacherAssignment{}).
		Where("teacher_id = ?", teacherID).
		Distinct().
		Pluck("student_profile_id", &profileIDs).Error; err != nil {
		return nil, err
	}
	if len(profileIDs) == 0 {
		return []uint{}, nil
	}
	var userIDs []uint
	err := database.DB.Model(&models.StudentProfile{}).
		Where("id IN ?", profileIDs).
		Pluck("user_id", &userIDs).Error
	return userIDs, err
}

// departmentStudentIDs returns the ids of students enrolled in at least
// one subject of the given department.
func departmentStudentIDs(department string) ([]uint, error) {
	subjectType := "academic"
	if department == "quran" {
		subjectType = "quran"
	}
	var profileIDs []uint
	err := database.DB.Table("student_subjects").
		Select("DISTINCT student_subjects.student_profile_id").
		Joins("JOIN subjects ON subjects.id = student_subjects.subject_id").
		Where("subjects.type = ?", subjectType).
		Pluck("student_subjects.student_profile_id", &profileIDs).Error
	if err != nil {
		return nil, err
	}
	if len(profileIDs) == 0 {
		return []uint{}, nil
	}
	var userIDs []uint
	err = database.DB.Model(&models.StudentProfile{}).
		Where("id IN ?", profileIDs).
		Pluck("user_id", &userIDs).Error
	return userIDs, err
}

// GetStudents lists students scoped by the caller's role: admins see
// everyone, supervisors see students enrolled in their department's
// subjects, teachers see only their assignees.
func (stc *StudentController) GetStudents(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	query := database.DB.Preload("Student.Subjects").Where("role = ?", "student")

	switch {
	case claims.Role == "admin":
	case utils.IsSupervisorRole(claims.Role):
		ids, err := departmentStudentIDs(utils.RoleDepartment(claims.Role))
		if err != nil {
			logrus.WithError(err).Error("Failed to resolve department students")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch students"})
		}
		query = query.Where("id IN ?", ids)
	case utils.IsTeacherRole(claims.Role):
		ids, err := assignedStudentIDs(claims.UserID)
		if err != nil {
			logrus.WithError(err).Error("Failed to resolve assigned students")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch students"})
		}
		query = query.Where("id IN ?", ids)
	default:
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions"})
	}

	var students []models.User
	if err := query.Order("name").Find(&students).Error; err != nil {
		logrus.WithError(err).Error("Failed to fetch students")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch students"})
	}

	return c.JSON(fiber.Map{
		"students": students,
		"total":    len(students),
	})
}

// GetStudent returns one student. Teachers may only view students
// assigned to them.
func (stc *StudentController) GetStudent(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	var student models.User
	if err := database.DB.
		Preload("Student.Subjects").
		Preload("Student.AssignedTeachers.Teacher").
		Preload("Student.AssignedTeachers.Subject").
		Where("role = ?", "student").
		First(&student, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch student"})
	}

	if utils.IsTeacherRole(claims.Role) {
		ids, err := assignedStudentIDs(claims.UserID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch student"})
		}
		visible := false
		for _, id := range ids {
			if id == student.ID {
				visible = true
				break
			}
		}
		if !visible {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only view students assigned to you"})
		}
	}
	if claims.Role == "student" && claims.UserID != student.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions"})
	}

	return c.JSON(fiber.Map{"student": student})
}

// UpdateStudent updates profile fields. Admin only; trial flags are the
// sensitive part and stay behind this endpoint.
func (stc *StudentController) UpdateStudent(c *fiber.Ctx) error {
	var student models.User
	if err := database.DB.Preload("Student").Where("role = ?", "student").First(&student, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch student"})
	}
	if student.Student == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student profile not found"})
	}

	var req UpdateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.GuardianName != "" {
		updates["guardian_name"] = req.GuardianName
	}
	if req.GuardianContact != "" {
		updates["guardian_contact"] = req.GuardianContact
	}
	if req.Grade != "" {
		updates["grade"] = req.Grade
	}
	if req.IsTrialBased != nil {
		updates["is_trial_based"] = *req.IsTrialBased
	}
	if req.TrialEndDate != nil {
		updates["trial_end_date"] = req.TrialEndDate
	}

	if len(updates) > 0 {
		if err := database.DB.Model(student.Student).Updates(updates).Error; err != nil {
			logrus.WithError(err).Error("Failed to update student")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update student"})
		}
	}

	middleware.LogActivity(c, "UPDATE", "students", student.ID, updates)

	return c.JSON(fiber.Map{"message": "Student updated successfully"})
}

// UpdateEnrollment replaces the student's subject list (admin only)
func (stc *StudentController) UpdateEnrollment(c *fiber.Ctx) error {
	var student models.User
	if err := database.DB.Preload("Student").Where("role = ?", "student").First(&student, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch student"})
	}
	if student.Student == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student profile not found"})
	}

	var req UpdateEnrollmentRequest
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

	if err := database.DB.Model(student.Student).Association("Subjects").Replace(subjects); err != nil {
		logrus.WithError(err).Error("Failed to update enrollment")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update enrollment"})
	}

	middleware.LogActivity(c, "UPDATE", "students", student.ID, fiber.Map{"subjects": req.SubjectIDs})

	return c.JSON(fiber.Map{"message": "Enrollment updated successfully"})
}

// AssignTeacher creates a teacher assignment for a student
func (stc *StudentController) AssignTeacher(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	var student models.User
	if err := database.DB.Preload("Student.Subjects").Where("role = ?", "student").First(&student, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch student"})
	}
	if student.Student == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student profile not found"})
	}

	var req AssignTeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var subject models.Subject
	if err := database.DB.First(&subject, req.SubjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subject not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch subject"})
	}

	// Supervisors may only assign within their own department
	if utils.IsSupervisorRole(claims.Role) &&
		utils.SubjectDepartment(subject.Type) != utils.RoleDepartment(claims.Role) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only manage assignments for your own department"})
	}

	var teacherProfile models.TeacherProfile
	if err := database.DB.Preload("Subjects").Where("user_id = ?", req.TeacherID).First(&teacherProfile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Teacher not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch teacher"})
	}

	assigned := false
	for _, s := range teacherProfile.Subjects {
		if s.ID == subject.ID {
			assigned = true
			break
		}
	}
	if !assigned {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Teacher is not assigned to this subject"})
	}

	enrolled := false
	for _, s := range student.Student.Subjects {
		if s.ID == subject.ID {
			enrolled = true
			break
		}
	}
	if !enrolled {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Student is not enrolled in this subject"})
	}

	assignedBy := claims.UserID
	assignment := models.TeacherAssignment{
		StudentProfileID: student.Student.ID,
		TeacherID:        req.TeacherID,
		SubjectID:        req.SubjectID,
		IsTemporary:      req.IsTemporary,
		AssignedByID:     &assignedBy,
	}
	if err := database.DB.Create(&assignment).Error; err != nil {
		logrus.WithError(err).Error("Failed to assign teacher")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to assign teacher"})
	}

	middleware.LogActivity(c, "CREATE", "teacher_assignments", assignment.ID, fiber.Map{
		"student": student.ID,
		"teacher": req.TeacherID,
		"subject": req.SubjectID,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Teacher assigned successfully",
		"assignment": assignment,
	})
}

// GetStudentAttendance lists a student's attendance with an optional
// from/to date range (YYYY-MM-DD).
func (stc *StudentController) GetStudentAttendance(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	var student models.User
	if err := database.DB.Where("role = ?", "student").First(&student, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch student"})
	}

	if claims.Role == "student" && claims.UserID != student.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions"})
	}

	query := database.DB.Where("user_id = ?", student.ID)
	if from := c.Query("from"); from != "" {
		parsed, err := parseClassDate(from)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "from must be in YYYY-MM-DD format"})
		}
		query = query.Where("date >= ?", parsed)
	}
	if to := c.Query("to"); to != "" {
		parsed, err := parseClassDate(to)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "to must be in YYYY-MM-DD format"})
		}
		query = query.Where("date <= ?", parsed)
	}

	var attendance []models.Attendance
	if err := query.Order("date DESC").Find(&attendance).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch attendance"})
	}

	present := 0
	for _, a := range attendance {
		if a.Status == "present" {
			present++
		}
	}

	return c.JSON(fiber.Map{
		"attendance":    attendance,
		"total":         len(attendance),
		"present_count": present,
	})
}

// GetStudentFees lists a student's fee challans
func (stc *StudentController) GetStudentFees(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	var student models.User
	if err := database.DB.Where("role = ?", "student").First(&student, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch student"})
	}

	if claims.Role == "student" && claims.UserID != student.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions"})
	}

	var challans []models.FeeChallan
	if err := database.DB.Preload("Payments").Where("student_id = ?", student.ID).
		Order("due_date DESC").Find(&challans).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch fee history"})
	}

	return c.JSON(fiber.Map{
		"challans": challans,
		"total":    len(challans),
	})
}
