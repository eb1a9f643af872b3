package services

import (
	"alnooracademy_go/models"
	"strings"
	"testing"
	"time"
)

func TestScheduleCreatedNotifications(t *testing.T) {
	schedule := models.Schedule{
		TeacherID:   4,
		TeacherName: "Imran",
		SubjectName: "Tajweed",
		ClassDate:   time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		StartTime:   "09:00",
		EndTime:     "10:00",
	}

	got := scheduleCreatedNotifications(schedule, []uint{11, 12})
	if len(got) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(got))
	}

	teacher := got[0]
	if teacher.UserID != 4 {
		t.Fatalf("expected teacher notification for user 4, got %d", teacher.UserID)
	}
	for _, want := range []string{"Tajweed", "07-09-2026", "09:00", "10:00"} {
		if !strings.Contains(teacher.Message, want) {
			t.Fatalf("teacher message %q missing %q", teacher.Message, want)
		}
	}

	for i, userID := range []uint{11, 12} {
		n := got[i+1]
		if n.UserID != userID {
			t.Fatalf("expected student notification for user %d, got %d", userID, n.UserID)
		}
		if !strings.Contains(n.Message, "Imran") {
			t.Fatalf("student message %q missing teacher name", n.Message)
		}
	}

	for _, n := range got {
		if n.Type != "info" {
			t.Fatalf("expected type info, got %q", n.Type)
		}
		if n.TitleUr == "" || n.MessageUr == "" {
			t.Fatal("expected both languages to be filled in")
		}
	}
}
