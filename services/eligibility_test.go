package services

import (
	"alnooracademy_go/models"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func subjectWithID(id uint) models.Subject {
	return models.Subject{BaseModel: models.BaseModel{ID: id}}
}

func TestTeacherAssignedToSubject(t *testing.T) {
	profile := models.TeacherProfile{
		Subjects: []models.Subject{subjectWithID(1), subjectWithID(3), subjectWithID(9)},
	}

	tests := []struct {
		name      string
		subjectID uint
		assigned  bool
	}{
		{name: "first subject", subjectID: 1, assigned: true},
		{name: "last subject", subjectID: 9, assigned: true},
		{name: "not assigned", subjectID: 2, assigned: false},
		{name: "zero id", subjectID: 0, assigned: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := TeacherAssignedToSubject(profile, tc.subjectID); got != tc.assigned {
				t.Fatalf("TeacherAssignedToSubject(%d) = %v, want %v", tc.subjectID, got, tc.assigned)
			}
		})
	}

	t.Run("empty subject list", func(t *testing.T) {
		if TeacherAssignedToSubject(models.TeacherProfile{}, 1) {
			t.Fatal("expected no assignment on empty profile")
		}
	})
}

func typedSubject(id uint, subjectType string) models.Subject {
	return models.Subject{BaseModel: models.BaseModel{ID: id}, Type: subjectType}
}

// The first violated rule wins: department, teacher assignment, student
// existence, then enrollment.
func TestParticipantRuleErrorPrecedence(t *testing.T) {
	quranSubject := typedSubject(2, "quran")
	academicSubject := typedSubject(2, "academic")
	assigned := models.TeacherProfile{Subjects: []models.Subject{subjectWithID(2)}}
	unassigned := models.TeacherProfile{Subjects: []models.Subject{subjectWithID(7)}}

	tests := []struct {
		name      string
		subject   models.Subject
		profile   models.TeacherProfile
		students  []models.User
		requested int
		wantCode  int
		wantMsg   string
	}{
		{
			name:      "wrong department wins over every other violation",
			subject:   academicSubject,
			profile:   unassigned,
			students:  nil,
			requested: 2,
			wantCode:  fiber.StatusForbidden,
			wantMsg:   "own department",
		},
		{
			name:      "unassigned teacher wins over missing students",
			subject:   quranSubject,
			profile:   unassigned,
			students:  nil,
			requested: 2,
			wantCode:  fiber.StatusBadRequest,
			wantMsg:   "not assigned",
		},
		{
			name:      "missing student wins over enrollment",
			subject:   quranSubject,
			profile:   assigned,
			students:  []models.User{studentWithSubjects("Ahmed", 7)},
			requested: 2,
			wantCode:  fiber.StatusNotFound,
			wantMsg:   "not found",
		},
		{
			name:      "duplicate ids count as missing",
			subject:   quranSubject,
			profile:   assigned,
			students:  []models.User{studentWithSubjects("Ahmed", 2)},
			requested: 2,
			wantCode:  fiber.StatusNotFound,
			wantMsg:   "not found",
		},
		{
			name:      "unenrolled student",
			subject:   quranSubject,
			profile:   assigned,
			students:  []models.User{studentWithSubjects("Ahmed", 2), studentWithSubjects("Zainab", 7)},
			requested: 2,
			wantCode:  fiber.StatusBadRequest,
			wantMsg:   "not enrolled",
		},
		{
			name:      "all rules hold",
			subject:   quranSubject,
			profile:   assigned,
			students:  []models.User{studentWithSubjects("Ahmed", 2), studentWithSubjects("Zainab", 2)},
			requested: 2,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := participantRuleError("quran", tc.subject, tc.profile, "Imran", tc.students, tc.requested)
			if tc.wantCode == 0 {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			if err.Code != tc.wantCode {
				t.Fatalf("expected status %d, got %d (%s)", tc.wantCode, err.Code, err.Message)
			}
			if !strings.Contains(err.Message, tc.wantMsg) {
				t.Fatalf("expected message containing %q, got %q", tc.wantMsg, err.Message)
			}
		})
	}
}

func studentWithSubjects(name string, subjectIDs ...uint) models.User {
	subjects := make([]models.Subject, 0, len(subjectIDs))
	for _, id := range subjectIDs {
		subjects = append(subjects, subjectWithID(id))
	}
	return models.User{
		Name:    name,
		Student: &models.StudentProfile{Subjects: subjects},
	}
}

func TestMissingEnrollments(t *testing.T) {
	tests := []struct {
		name      string
		students  []models.User
		subjectID uint
		missing   []string
	}{
		{
			name:      "all enrolled",
			students:  []models.User{studentWithSubjects("Ahmed", 1, 2), studentWithSubjects("Zainab", 2)},
			subjectID: 2,
			missing:   nil,
		},
		{
			name:      "one missing",
			students:  []models.User{studentWithSubjects("Ahmed", 1), studentWithSubjects("Zainab", 2)},
			subjectID: 2,
			missing:   []string{"Ahmed"},
		},
		{
			name:      "all missing",
			students:  []models.User{studentWithSubjects("Ahmed", 1), studentWithSubjects("Zainab", 3)},
			subjectID: 2,
			missing:   []string{"Ahmed", "Zainab"},
		},
		{
			name:      "no profile counts as missing",
			students:  []models.User{{Name: "Bilal"}},
			subjectID: 2,
			missing:   []string{"Bilal"},
		},
		{
			name:      "no students",
			students:  nil,
			subjectID: 2,
			missing:   nil,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := MissingEnrollments(tc.students, tc.subjectID)
			if len(got) != len(tc.missing) {
				t.Fatalf("MissingEnrollments = %v, want %v", got, tc.missing)
			}
			for i := range got {
				if got[i] != tc.missing[i] {
					t.Fatalf("MissingEnrollments = %v, want %v", got, tc.missing)
				}
			}
		})
	}
}
