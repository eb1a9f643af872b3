package services

import (
	"alnooracademy_go/models"
	"alnooracademy_go/utils"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ScheduleParticipants is the validated participant set for a schedule
// write, with display names resolved for denormalization.
type ScheduleParticipants struct {
	Teacher        models.User
	TeacherProfile models.TeacherProfile
	Subject        models.Subject
	Students       []models.User
	StudentNames   []string
}

// Department returns the department the subject belongs to.
func (p *ScheduleParticipants) Department() string {
	return utils.SubjectDepartment(p.Subject.Type)
}

// ResolveScheduleParticipants loads and validates the teacher, subject
// and students of a schedule request for a supervisor in the given
// department. It returns the first violated rule as a *fiber.Error:
//
//	404 - teacher, subject or any student does not exist
//	403 - the subject belongs to the other department
//	400 - teacher not assigned to the subject, or a student not enrolled
//
// Rule order is fixed: teacher existence, subject existence, department,
// teacher assignment, student existence, then enrollment.
func ResolveScheduleParticipants(db *gorm.DB, department string, teacherID, subjectID uint, studentIDs []uint) (*ScheduleParticipants, error) {
	if len(studentIDs) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "At least one student is required")
	}

	var teacher models.User
	if err := db.Where("id = ? AND role IN ?", teacherID, []string{"teacher_quran", "teacher_subjects"}).First(&teacher).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Teacher not found")
		}
		return nil, err
	}

	var teacherProfile models.TeacherProfile
	if err := db.Preload("Subjects").Where("user_id = ?", teacher.ID).First(&teacherProfile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Teacher not found")
		}
		return nil, err
	}

	var subject models.Subject
	if err := db.First(&subject, subjectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Subject not found")
		}
		return nil, err
	}

	var students []models.User
	if err := db.Preload("Student.Subjects").Where("id IN ? AND role = ?", studentIDs, "student").Find(&students).Error; err != nil {
		return nil, err
	}

	if ruleErr := participantRuleError(department, subject, teacherProfile, teacher.Name, students, len(studentIDs)); ruleErr != nil {
		return nil, ruleErr
	}

	names := make([]string, 0, len(students))
	for _, s := range students {
		names = append(names, s.Name)
	}

	return &ScheduleParticipants{
		Teacher:        teacher,
		TeacherProfile: teacherProfile,
		Subject:        subject,
		Students:       students,
		StudentNames:   names,
	}, nil
}

// participantRuleError applies the eligibility rules to the loaded
// participants, in order: department of the subject, teacher assignment,
// student existence (a count mismatch means an unknown or duplicate id),
// then enrollment. Returns nil when every rule holds.
func participantRuleError(department string, subject models.Subject, profile models.TeacherProfile, teacherName string, students []models.User, requested int) *fiber.Error {
	if utils.SubjectDepartment(subject.Type) != department {
		return fiber.NewError(fiber.StatusForbidden, "You can only manage schedules for your own department")
	}
	if !TeacherAssignedToSubject(profile, subject.ID) {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Teacher %s is not assigned to subject %s", teacherName, subject.Name))
	}
	if len(students) != requested {
		return fiber.NewError(fiber.StatusNotFound, "One or more students not found")
	}
	if missing := MissingEnrollments(students, subject.ID); len(missing) > 0 {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Student %s is not enrolled in subject %s", missing[0], subject.Name))
	}
	return nil
}

// TeacherAssignedToSubject reports whether the subject appears in the
// teacher's assignment list.
func TeacherAssignedToSubject(profile models.TeacherProfile, subjectID uint) bool {
	for _, s := range profile.Subjects {
		if s.ID == subjectID {
			return true
		}
	}
	return false
}

// MissingEnrollments returns the names of students (in input order) that
// are not enrolled in the subject. Students without a profile row count
// as not enrolled.
func MissingEnrollments(students []models.User, subjectID uint) []string {
	var missing []string
	for _, u := range students {
		enrolled := false
		if u.Student != nil {
			for _, s := range u.Student.Subjects {
				if s.ID == subjectID {
					enrolled = true
					break
				}
			}
		}
		if !enrolled {
			missing = append(missing, u.Name)
		}
	}
	return missing
}
