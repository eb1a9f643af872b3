package controllers

import (
	"alnooracademy_go/database"
	"alnooracademy_go/middleware"
	"alnooracademy_go/models"
	"alnooracademy_go/services"
	"alnooracademy_go/utils"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var validate = validator.New()

type ScheduleController struct{}

type CreateScheduleRequest struct {
	Students    []uint `json:"students" validate:"required,min=1,dive,min=1"`
	TeacherID   uint   `json:"teacher" validate:"required"`
	SubjectID   uint   `json:"subject" validate:"required"`
	ClassDate   string `json:"class_date" validate:"required"` // YYYY-MM-DD
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
	IsRecurring bool   `json:"is_recurring"`
	Recurrence  string `json:"recurrence_pattern" validate:"omitempty,oneof=daily weekly monthly"`
}

type UpdateScheduleRequest struct {
	Students  []uint `json:"students" validate:"required,min=1,dive,min=1"`
	TeacherID uint   `json:"teacher" validate:"required"`
	SubjectID uint   `json:"subject" validate:"required"`
	ClassDate string `json:"class_date" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Status    string `json:"status" validate:"omitempty,oneof=scheduled completed cancelled rescheduled"`
}

type AddLessonRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Remarks     string `json:"remarks"`
}

type SubstituteTeacherRequest struct {
	ReplacementTeacherID uint   `json:"replacement_teacher" validate:"required"`
	Date                 string `json:"date" validate:"required"`
	Reason               string `json:"reason" validate:"required"`
}

var timeFormatRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// isValidTimeFormat reports whether s is a zero-padded 24-hour "HH:MM".
func isValidTimeFormat(s string) bool {
	return timeFormatRe.MatchString(s)
}

// timesOverlap reports whether [existingStart, existingEnd) intersects
// [newStart, newEnd). Zero-padded "HH:MM" strings compare correctly as
// plain strings.
func timesOverlap(existingStart, existingEnd, newStart, newEnd string) bool {
	return existingStart < newEnd && existingEnd > newStart
}

// sameStudentSet reports whether a and b contain exactly the same ids,
// in any order.
func sameStudentSet(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]uint(nil), a...)
	bs := append([]uint(nil), b...)
	sort.Slice(as, func(i, j int) bool { return as[i] < as[j] })
	sort.Slice(bs, func(i, j int) bool { return bs[i] < bs[j] })
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// parseClassDate parses a YYYY-MM-DD date and normalizes it to midnight
// UTC so equality comparisons work across writes.
func parseClassDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// validateSlot checks the date and time fields of a schedule payload.
func validateSlot(classDate, startTime, endTime string) (time.Time, *fiber.Error) {
	date, err := parseClassDate(classDate)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "class_date must be in YYYY-MM-DD format")
	}
	if !isValidTimeFormat(startTime) || !isValidTimeFormat(endTime) {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "start_time and end_time must be in HH:MM format")
	}
	if startTime >= endTime {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "start_time must be before end_time")
	}
	return date, nil
}

// isDuplicateKeyError matches MySQL unique index violations. The unique
// index on (teacher, class_date, start, end) backs the in-process guard
// when multiple instances share one database.
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}

func scheduleIDsForStudents(studentIDs []uint) *gorm.DB {
	return database.DB.Table("schedule_students").
		Select("schedule_id").
		Where("user_id IN ?", studentIDs)
}

// slotRequest carries the fields of a schedule write that the conflict
// checks compare against persisted rows on the same calendar date.
type slotRequest struct {
	TeacherID uint
	SubjectID uint
	Students  []uint
	StartTime string
	EndTime   string
	ExcludeID uint // record under update, never conflicts with itself
}

// classifySlotConflict applies the duplicate and overlap rules to rows
// already fetched for the requested date. teacherRows are the teacher's
// schedules with students preloaded, studentRows the ones any requested
// student appears in. An exact duplicate means the same subject, times
// and student set; anything else intersecting the slot is reported as a
// double-booking. Cancelled rows do not block a slot.
func classifySlotConflict(teacherRows, studentRows []models.Schedule, req slotRequest) *fiber.Error {
	for _, s := range teacherRows {
		if s.ID == req.ExcludeID || s.Status == "cancelled" {
			continue
		}
		if s.SubjectID != req.SubjectID || s.StartTime != req.StartTime || s.EndTime != req.EndTime {
			continue
		}
		existingIDs := make([]uint, 0, len(s.Students))
		for _, st := range s.Students {
			existingIDs = append(existingIDs, st.ID)
		}
		if sameStudentSet(existingIDs, req.Students) {
			return fiber.NewError(fiber.StatusConflict, "An identical schedule already exists for this teacher, subject, time and student group")
		}
	}

	for _, s := range teacherRows {
		if s.ID == req.ExcludeID || s.Status == "cancelled" {
			continue
		}
		if timesOverlap(s.StartTime, s.EndTime, req.StartTime, req.EndTime) {
			return fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("Teacher already has a class from %s to %s on this date", s.StartTime, s.EndTime))
		}
	}

	for _, s := range studentRows {
		if s.ID == req.ExcludeID || s.Status == "cancelled" {
			continue
		}
		if timesOverlap(s.StartTime, s.EndTime, req.StartTime, req.EndTime) {
			return fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("One or more students already have a class from %s to %s on this date", s.StartTime, s.EndTime))
		}
	}

	return nil
}

// checkScheduleConflicts fetches the day's schedules for the teacher and
// for the requested students, then classifies the slot against them.
func checkScheduleConflicts(req slotRequest, classDate time.Time) *fiber.Error {
	var teacherRows []models.Schedule
	if err := database.DB.Preload("Students").
		Where("class_date = ? AND teacher_id = ?", classDate, req.TeacherID).
		Find(&teacherRows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to check teacher availability")
	}

	var studentRows []models.Schedule
	if err := database.DB.
		Where("class_date = ? AND id IN (?)", classDate, scheduleIDsForStudents(req.Students)).
		Find(&studentRows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to check student availability")
	}

	return classifySlotConflict(teacherRows, studentRows, req)
}

func respondFiberError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	logrus.WithError(err).Error("Unexpected error in schedule handler")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}

func guardKeys(teacherID uint, studentIDs []uint, date time.Time) []string {
	keys := make([]string, 0, len(studentIDs)+1)
	keys = append(keys, services.TeacherSlotKey(teacherID, date))
	for _, id := range studentIDs {
		keys = append(keys, services.StudentSlotKey(id, date))
	}
	return keys
}

// CreateSchedule books a class. Supervisors only; the subject must
// belong to the requester's department, the teacher must be assigned to
// the subject, every student must be enrolled in it, and neither the
// teacher nor any student may already be booked in an overlapping slot
// on the same date.
func (sc *ScheduleController) CreateSchedule(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}
	if !utils.IsSupervisorRole(claims.Role) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only supervisors can create schedules"})
	}
	department := utils.RoleDepartment(claims.Role)

	var req CreateScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	classDate, slotErr := validateSlot(req.ClassDate, req.StartTime, req.EndTime)
	if slotErr != nil {
		return respondFiberError(c, slotErr)
	}

	participants, err := services.ResolveScheduleParticipants(database.DB, department, req.TeacherID, req.SubjectID, req.Students)
	if err != nil {
		return respondFiberError(c, err)
	}

	// Serialize the check-then-insert section per participant+date
	release := services.ScheduleGuard().Acquire(guardKeys(req.TeacherID, req.Students, classDate))
	defer release()

	slot := slotRequest{
		TeacherID: req.TeacherID,
		SubjectID: req.SubjectID,
		Students:  req.Students,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if conflictErr := checkScheduleConflicts(slot, classDate); conflictErr != nil {
		return respondFiberError(c, conflictErr)
	}

	namesJSON, _ := json.Marshal(participants.StudentNames)
	createdBy := claims.UserID
	schedule := models.Schedule{
		StudentNames: namesJSON,
		TeacherID:    participants.Teacher.ID,
		TeacherName:  participants.Teacher.Name,
		SubjectID:    participants.Subject.ID,
		SubjectName:  participants.Subject.Name,
		SubjectType:  participants.Department(),
		Day:          classDate.Weekday().String(),
		ClassDate:    classDate,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Status:       "scheduled",
		IsRecurring:  req.IsRecurring,
		Recurrence:   req.Recurrence,
		CreatedByID:  &createdBy,
		CreatedRole:  claims.Role,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&schedule).Error; err != nil {
			return err
		}
		return tx.Model(&schedule).Association("Students").Append(toUserRefs(req.Students))
	})
	if err != nil {
		if isDuplicateKeyError(err) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "An identical schedule already exists for this teacher and time"})
		}
		logrus.WithError(err).Error("Failed to create schedule")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create schedule"})
	}

	middleware.LogActivity(c, "CREATE", "schedules", schedule.ID, fiber.Map{
		"teacher": schedule.TeacherID,
		"subject": schedule.SubjectID,
		"date":    req.ClassDate,
	})
	// The goroutine gets its own copy; the reload below rewrites the
	// local struct while the notification send may still be running.
	go services.NotifyScheduleCreated(schedule, req.Students)

	if err := database.DB.Preload("Students").Preload("Lessons").First(&schedule, schedule.ID).Error; err != nil {
		logrus.WithError(err).Warn("Failed to reload schedule after create")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Schedule created successfully",
		"schedule": utils.ToScheduleDTO(schedule),
	})
}

func toUserRefs(ids []uint) []models.User {
	refs := make([]models.User, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, models.User{BaseModel: models.BaseModel{ID: id}})
	}
	return refs
}

// GetSchedules lists schedules. Supervisors see their department only,
// ordered by weekday then start time; admins see everything and may
// filter by department.
func (sc *ScheduleController) GetSchedules(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	query := database.DB.Model(&models.Schedule{}).Preload("Students").Preload("Lessons")

	switch {
	case utils.IsSupervisorRole(claims.Role):
		query = query.Where("subject_type = ?", utils.RoleDepartment(claims.Role))
	case claims.Role == "admin":
		if dept := c.Query("department"); dept != "" {
			query = query.Where("subject_type = ?", dept)
		}
	default:
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions"})
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if date := c.Query("date"); date != "" {
		parsed, err := parseClassDate(date)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be in YYYY-MM-DD format"})
		}
		query = query.Where("class_date = ?", parsed)
	}

	var schedules []models.Schedule
	if err := query.
		Order("FIELD(day, 'Monday','Tuesday','Wednesday','Thursday','Friday','Saturday','Sunday'), start_time").
		Find(&schedules).Error; err != nil {
		logrus.WithError(err).Error("Failed to fetch schedules")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch schedules"})
	}

	scheduledCount := 0
	for _, s := range schedules {
		if s.Status == "scheduled" {
			scheduledCount++
		}
	}

	return c.JSON(fiber.Map{
		"schedules":       utils.ToScheduleDTOs(schedules),
		"total":           len(schedules),
		"scheduled_count": scheduledCount,
	})
}

// GetSchedule returns a single schedule by id, department-scoped for
// supervisors.
func (sc *ScheduleController) GetSchedule(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	var schedule models.Schedule
	if err := database.DB.Preload("Students").Preload("Lessons").First(&schedule, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Schedule not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch schedule"})
	}

	if utils.IsSupervisorRole(claims.Role) && schedule.SubjectType != utils.RoleDepartment(claims.Role) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only view schedules for your own department"})
	}

	return c.JSON(fiber.Map{"schedule": utils.ToScheduleDTO(schedule)})
}

// UpdateSchedule re-validates the full slot, excluding the schedule
// itself from the duplicate and overlap checks.
func (sc *ScheduleController) UpdateSchedule(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}
	if !utils.IsSupervisorRole(claims.Role) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only supervisors can update schedules"})
	}
	department := utils.RoleDepartment(claims.Role)

	var schedule models.Schedule
	if err := database.DB.First(&schedule, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Schedule not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch schedule"})
	}

	if schedule.SubjectType != department {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only manage schedules for your own department"})
	}

	var req UpdateScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	classDate, slotErr := validateSlot(req.ClassDate, req.StartTime, req.EndTime)
	if slotErr != nil {
		return respondFiberError(c, slotErr)
	}

	participants, err := services.ResolveScheduleParticipants(database.DB, department, req.TeacherID, req.SubjectID, req.Students)
	if err != nil {
		return respondFiberError(c, err)
	}

	release := services.ScheduleGuard().Acquire(guardKeys(req.TeacherID, req.Students, classDate))
	defer release()

	slot := slotRequest{
		TeacherID: req.TeacherID,
		SubjectID: req.SubjectID,
		Students:  req.Students,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		ExcludeID: schedule.ID,
	}
	if conflictErr := checkScheduleConflicts(slot, classDate); conflictErr != nil {
		return respondFiberError(c, conflictErr)
	}

	namesJSON, _ := json.Marshal(participants.StudentNames)
	updatedBy := claims.UserID
	schedule.StudentNames = namesJSON
	schedule.TeacherID = participants.Teacher.ID
	schedule.TeacherName = participants.Teacher.Name
	schedule.SubjectID = participants.Subject.ID
	schedule.SubjectName = participants.Subject.Name
	schedule.SubjectType = participants.Department()
	schedule.Day = classDate.Weekday().String()
	schedule.ClassDate = classDate
	schedule.StartTime = req.StartTime
	schedule.EndTime = req.EndTime
	schedule.UpdatedByID = &updatedBy
	if req.Status != "" {
		schedule.Status = req.Status
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&schedule).Error; err != nil {
			return err
		}
		return tx.Model(&schedule).Association("Students").Replace(toUserRefs(req.Students))
	})
	if err != nil {
		if isDuplicateKeyError(err) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "An identical schedule already exists for this teacher and time"})
		}
		logrus.WithError(err).Error("Failed to update schedule")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update schedule"})
	}

	middleware.LogActivity(c, "UPDATE", "schedules", schedule.ID, nil)

	if err := database.DB.Preload("Students").Preload("Lessons").First(&schedule, schedule.ID).Error; err != nil {
		logrus.WithError(err).Warn("Failed to reload schedule after update")
	}

	return c.JSON(fiber.Map{
		"message":  "Schedule updated successfully",
		"schedule": utils.ToScheduleDTO(schedule),
	})
}

// DeleteSchedule removes a schedule. Supervisors only, own department.
func (sc *ScheduleController) DeleteSchedule(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}
	if !utils.IsSupervisorRole(claims.Role) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only supervisors can delete schedules"})
	}

	var schedule models.Schedule
	if err := database.DB.First(&schedule, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Schedule not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch schedule"})
	}

	if schedule.SubjectType != utils.RoleDepartment(claims.Role) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only manage schedules for your own department"})
	}

	changedBy := claims.UserID
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		history := models.ClassHistory{
			ScheduleID:        schedule.ID,
			Date:              schedule.ClassDate,
			OriginalTeacherID: schedule.TeacherID,
			Status:            "cancelled",
			Reason:            "Schedule deleted by supervisor",
			ChangedByID:       &changedBy,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}
		// Hard delete so the slot's unique index entry is freed for
		// rebooking; the ClassHistory row keeps the audit trail.
		return tx.Unscoped().Delete(&schedule).Error
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to delete schedule")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete schedule"})
	}

	middleware.LogActivity(c, "DELETE", "schedules", schedule.ID, nil)

	return c.JSON(fiber.Map{"message": "Schedule deleted successfully"})
}

// SubstituteTeacher records a one-off teacher replacement for a session
// without rewriting the schedule itself.
func (sc *ScheduleController) SubstituteTeacher(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}
	if !utils.IsSupervisorRole(claims.Role) && claims.Role != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions"})
	}

	var schedule models.Schedule
	if err := database.DB.First(&schedule, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Schedule not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch schedule"})
	}

	if utils.IsSupervisorRole(claims.Role) && schedule.SubjectType != utils.RoleDepartment(claims.Role) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only manage schedules for your own department"})
	}

	var req SubstituteTeacherRequest
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

	var replacement models.User
	if err := database.DB.Where("id = ? AND role IN ?", req.ReplacementTeacherID, []string{"teacher_quran", "teacher_subjects"}).
		First(&replacement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Replacement teacher not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch replacement teacher"})
	}

	changedBy := claims.UserID
	history := models.ClassHistory{
		ScheduleID:           schedule.ID,
		Date:                 date,
		OriginalTeacherID:    schedule.TeacherID,
		ReplacementTeacherID: &replacement.ID,
		Status:               "teacher-changed",
		Reason:               req.Reason,
		ChangedByID:          &changedBy,
	}
	if err := database.DB.Create(&history).Error; err != nil {
		logrus.WithError(err).Error("Failed to record teacher substitution")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record teacher substitution"})
	}

	middleware.LogActivity(c, "UPDATE", "schedules", schedule.ID, fiber.Map{
		"substitution": replacement.ID,
		"date":         req.Date,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":       "Teacher substitution recorded",
		"class_history": history,
	})
}

// AddLesson attaches a lesson progress record to a schedule. The
// schedule's own teacher or a same-department supervisor may add one.
func (sc *ScheduleController) AddLesson(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return respondFiberError(c, err)
	}

	var schedule models.Schedule
	if err := database.DB.First(&schedule, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Schedule not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch schedule"})
	}

	switch {
	case utils.IsTeacherRole(claims.Role):
		if schedule.TeacherID != claims.UserID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only add lessons to your own schedules"})
		}
	case utils.IsSupervisorRole(claims.Role):
		if schedule.SubjectType != utils.RoleDepartment(claims.Role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only manage schedules for your own department"})
		}
	case claims.Role == "admin":
	default:
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions"})
	}

	var req AddLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	addedBy := claims.UserID
	lesson := models.Lesson{
		ScheduleID:  schedule.ID,
		Title:       req.Title,
		Description: req.Description,
		Remarks:     req.Remarks,
		Status:      "pending",
		AddedByID:   &addedBy,
	}
	if err := database.DB.Create(&lesson).Error; err != nil {
		logrus.WithError(err).Error("Failed to add lesson")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to add lesson"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Lesson added successfully",
		"lesson":  lesson,
	})
}
