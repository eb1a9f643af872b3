package controllers

import (
	"strings"
	"testing"
	"time"

	"alnooracademy_go/models"

	"github.com/gofiber/fiber/v2"
)

func TestIsValidTimeFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{name: "morning", input: "08:30", valid: true},
		{name: "midnight", input: "00:00", valid: true},
		{name: "last minute", input: "23:59", valid: true},
		{name: "hour out of range", input: "24:00", valid: false},
		{name: "minute out of range", input: "12:60", valid: false},
		{name: "not zero padded", input: "8:30", valid: false},
		{name: "with seconds", input: "08:30:00", valid: false},
		{name: "empty", input: "", valid: false},
		{name: "garbage", input: "noon", valid: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := isValidTimeFormat(tc.input); got != tc.valid {
				t.Fatalf("isValidTimeFormat(%q) = %v, want %v", tc.input, got, tc.valid)
			}
		})
	}
}

func TestTimesOverlap(t *testing.T) {
	tests := []struct {
		name                       string
		existStart, existEnd       string
		newStart, newEnd           string
		overlap                    bool
	}{
		{name: "identical slots", existStart: "09:00", existEnd: "10:00", newStart: "09:00", newEnd: "10:00", overlap: true},
		{name: "new starts inside existing", existStart: "09:00", existEnd: "10:00", newStart: "09:30", newEnd: "10:30", overlap: true},
		{name: "new ends inside existing", existStart: "09:00", existEnd: "10:00", newStart: "08:30", newEnd: "09:30", overlap: true},
		{name: "new contains existing", existStart: "09:00", existEnd: "10:00", newStart: "08:00", newEnd: "11:00", overlap: true},
		{name: "existing contains new", existStart: "08:00", existEnd: "11:00", newStart: "09:00", newEnd: "10:00", overlap: true},
		{name: "back to back before", existStart: "09:00", existEnd: "10:00", newStart: "08:00", newEnd: "09:00", overlap: false},
		{name: "back to back after", existStart: "09:00", existEnd: "10:00", newStart: "10:00", newEnd: "11:00", overlap: false},
		{name: "fully before", existStart: "09:00", existEnd: "10:00", newStart: "06:00", newEnd: "07:00", overlap: false},
		{name: "fully after", existStart: "09:00", existEnd: "10:00", newStart: "14:00", newEnd: "15:00", overlap: false},
		{name: "one minute overlap", existStart: "09:00", existEnd: "10:01", newStart: "10:00", newEnd: "11:00", overlap: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := timesOverlap(tc.existStart, tc.existEnd, tc.newStart, tc.newEnd)
			if got != tc.overlap {
				t.Fatalf("timesOverlap(%s-%s vs %s-%s) = %v, want %v",
					tc.existStart, tc.existEnd, tc.newStart, tc.newEnd, got, tc.overlap)
			}
		})
	}
}

func TestSameStudentSet(t *testing.T) {
	tests := []struct {
		name string
		a, b []uint
		same bool
	}{
		{name: "identical", a: []uint{1, 2, 3}, b: []uint{1, 2, 3}, same: true},
		{name: "different order", a: []uint{3, 1, 2}, b: []uint{1, 2, 3}, same: true},
		{name: "subset", a: []uint{1, 2}, b: []uint{1, 2, 3}, same: false},
		{name: "disjoint", a: []uint{4, 5}, b: []uint{1, 2}, same: false},
		{name: "single match", a: []uint{7}, b: []uint{7}, same: true},
		{name: "single mismatch", a: []uint{7}, b: []uint{8}, same: false},
		{name: "both empty", a: nil, b: nil, same: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := sameStudentSet(tc.a, tc.b); got != tc.same {
				t.Fatalf("sameStudentSet(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.same)
			}
		})
	}

	// inputs must not be reordered
	a := []uint{3, 1, 2}
	b := []uint{2, 3, 1}
	sameStudentSet(a, b)
	if a[0] != 3 || b[0] != 2 {
		t.Fatalf("sameStudentSet mutated its inputs: %v %v", a, b)
	}
}

func TestValidateSlot(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		start     string
		end       string
		wantError bool
	}{
		{name: "valid slot", date: "2026-09-01", start: "09:00", end: "10:00", wantError: false},
		{name: "start equals end", date: "2026-09-01", start: "09:00", end: "09:00", wantError: true},
		{name: "start after end", date: "2026-09-01", start: "11:00", end: "10:00", wantError: true},
		{name: "bad date", date: "01-09-2026", start: "09:00", end: "10:00", wantError: true},
		{name: "bad start time", date: "2026-09-01", start: "9am", end: "10:00", wantError: true},
		{name: "bad end time", date: "2026-09-01", start: "09:00", end: "25:00", wantError: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			date, err := validateSlot(tc.date, tc.start, tc.end)
			if tc.wantError {
				if err == nil {
					t.Fatalf("expected error for %s %s-%s", tc.date, tc.start, tc.end)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if date.Hour() != 0 || date.Minute() != 0 || date.Location() != time.UTC {
				t.Fatalf("expected date normalized to midnight UTC, got %v", date)
			}
		})
	}
}

func scheduleRow(id, subjectID uint, start, end, status string, studentIDs ...uint) models.Schedule {
	students := make([]models.User, 0, len(studentIDs))
	for _, sid := range studentIDs {
		students = append(students, models.User{BaseModel: models.BaseModel{ID: sid}})
	}
	return models.Schedule{
		BaseModel: models.BaseModel{ID: id},
		Students:  students,
		SubjectID: subjectID,
		StartTime: start,
		EndTime:   end,
		Status:    status,
	}
}

func TestClassifySlotConflict(t *testing.T) {
	req := slotRequest{
		TeacherID: 1,
		SubjectID: 10,
		Students:  []uint{21, 22},
		StartTime: "09:00",
		EndTime:   "10:00",
	}

	tests := []struct {
		name        string
		teacherRows []models.Schedule
		studentRows []models.Schedule
		req         slotRequest
		wantMsg     string // empty means no conflict
	}{
		{
			name: "free slot",
			req:  req,
		},
		{
			name:        "identical booking",
			teacherRows: []models.Schedule{scheduleRow(5, 10, "09:00", "10:00", "scheduled", 21, 22)},
			req:         req,
			wantMsg:     "identical schedule",
		},
		{
			name:        "identical booking with students in other order",
			teacherRows: []models.Schedule{scheduleRow(5, 10, "09:00", "10:00", "scheduled", 22, 21)},
			req:         req,
			wantMsg:     "identical schedule",
		},
		{
			name:        "same slot but different subject is a teacher clash",
			teacherRows: []models.Schedule{scheduleRow(5, 99, "09:00", "10:00", "scheduled", 21, 22)},
			req:         req,
			wantMsg:     "Teacher already has a class",
		},
		{
			name:        "same slot but different students is a teacher clash",
			teacherRows: []models.Schedule{scheduleRow(5, 10, "09:00", "10:00", "scheduled", 21, 23)},
			req:         req,
			wantMsg:     "Teacher already has a class",
		},
		{
			name:        "teacher overlap",
			teacherRows: []models.Schedule{scheduleRow(5, 10, "09:30", "11:00", "scheduled", 30)},
			req:         req,
			wantMsg:     "Teacher already has a class",
		},
		{
			name:        "student overlap",
			studentRows: []models.Schedule{scheduleRow(6, 12, "08:00", "09:30", "scheduled", 21)},
			req:         req,
			wantMsg:     "students already have a class",
		},
		{
			name:        "cancelled row does not block the slot",
			teacherRows: []models.Schedule{scheduleRow(5, 10, "09:00", "10:00", "cancelled", 21, 22)},
			studentRows: []models.Schedule{scheduleRow(6, 12, "09:00", "10:00", "cancelled", 21)},
			req:         req,
		},
		{
			name:        "back to back slots do not conflict",
			teacherRows: []models.Schedule{scheduleRow(5, 10, "08:00", "09:00", "scheduled", 21)},
			studentRows: []models.Schedule{scheduleRow(6, 12, "10:00", "11:00", "scheduled", 22)},
			req:         req,
		},
		{
			name:        "update does not conflict with itself",
			teacherRows: []models.Schedule{scheduleRow(5, 10, "09:00", "10:00", "scheduled", 21, 22)},
			studentRows: []models.Schedule{scheduleRow(5, 10, "09:00", "10:00", "scheduled", 21, 22)},
			req: slotRequest{
				TeacherID: 1, SubjectID: 10, Students: []uint{21, 22},
				StartTime: "09:00", EndTime: "10:00", ExcludeID: 5,
			},
		},
		{
			name: "update still conflicts with other rows",
			teacherRows: []models.Schedule{
				scheduleRow(5, 10, "09:00", "10:00", "scheduled", 21, 22),
				scheduleRow(7, 10, "09:30", "10:30", "scheduled", 40),
			},
			req: slotRequest{
				TeacherID: 1, SubjectID: 10, Students: []uint{21, 22},
				StartTime: "09:00", EndTime: "10:00", ExcludeID: 5,
			},
			wantMsg: "Teacher already has a class",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := classifySlotConflict(tc.teacherRows, tc.studentRows, tc.req)
			if tc.wantMsg == "" {
				if err != nil {
					t.Fatalf("expected no conflict, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected a conflict")
			}
			if err.Code != fiber.StatusConflict {
				t.Fatalf("expected status 409, got %d", err.Code)
			}
			if !strings.Contains(err.Message, tc.wantMsg) {
				t.Fatalf("expected message containing %q, got %q", tc.wantMsg, err.Message)
			}
		})
	}
}

func TestParseClassDateNormalizes(t *testing.T) {
	date, err := parseClassDate("2026-03-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if !date.Equal(want) {
		t.Fatalf("expected %v, got %v", want, date)
	}
	if date.Weekday() != time.Sunday {
		t.Fatalf("expected Sunday, got %s", date.Weekday())
	}
}
