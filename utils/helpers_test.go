package utils

import (
	"testing"
	"time"
)

func TestRoleDepartment(t *testing.T) {
	tests := []struct {
		role       string
		department string
	}{
		{role: "supervisor_quran", department: "quran"},
		{role: "teacher_quran", department: "quran"},
		{role: "supervisor_subjects", department: "subjects"},
		{role: "teacher_subjects", department: "subjects"},
		{role: "admin", department: ""},
		{role: "student", department: ""},
		{role: "", department: ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.role, func(t *testing.T) {
			if got := RoleDepartment(tc.role); got != tc.department {
				t.Fatalf("RoleDepartment(%q) = %q, want %q", tc.role, got, tc.department)
			}
		})
	}
}

func TestSubjectDepartment(t *testing.T) {
	if got := SubjectDepartment("quran"); got != "quran" {
		t.Fatalf("SubjectDepartment(quran) = %q", got)
	}
	if got := SubjectDepartment("academic"); got != "subjects" {
		t.Fatalf("SubjectDepartment(academic) = %q", got)
	}
}

func TestRolePredicates(t *testing.T) {
	tests := []struct {
		role       string
		valid      bool
		supervisor bool
		teacher    bool
	}{
		{role: "student", valid: true},
		{role: "teacher_quran", valid: true, teacher: true},
		{role: "teacher_subjects", valid: true, teacher: true},
		{role: "supervisor_quran", valid: true, supervisor: true},
		{role: "supervisor_subjects", valid: true, supervisor: true},
		{role: "admin", valid: true},
		{role: "teacher", valid: false},
		{role: "supervisor", valid: false},
		{role: "", valid: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.role, func(t *testing.T) {
			if got := IsValidRole(tc.role); got != tc.valid {
				t.Fatalf("IsValidRole(%q) = %v, want %v", tc.role, got, tc.valid)
			}
			if got := IsSupervisorRole(tc.role); got != tc.supervisor {
				t.Fatalf("IsSupervisorRole(%q) = %v, want %v", tc.role, got, tc.supervisor)
			}
			if got := IsTeacherRole(tc.role); got != tc.teacher {
				t.Fatalf("IsTeacherRole(%q) = %v, want %v", tc.role, got, tc.teacher)
			}
		})
	}
}

func TestIsValidScheduleStatus(t *testing.T) {
	for _, status := range []string{"scheduled", "completed", "cancelled", "rescheduled"} {
		if !IsValidScheduleStatus(status) {
			t.Fatalf("expected %q to be valid", status)
		}
	}
	for _, status := range []string{"done", "active", ""} {
		if IsValidScheduleStatus(status) {
			t.Fatalf("expected %q to be invalid", status)
		}
	}
}

func TestFormatDateDMY(t *testing.T) {
	date := time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)
	if got := FormatDateDMY(date); got != "05-03-2026" {
		t.Fatalf("FormatDateDMY = %q, want 05-03-2026", got)
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash must not equal the plaintext")
	}
	if err := CheckPassword("s3cret-pass", hash); err != nil {
		t.Fatalf("CheckPassword rejected correct password: %v", err)
	}
	if err := CheckPassword("wrong-pass", hash); err == nil {
		t.Fatal("CheckPassword accepted wrong password")
	}
}

func TestIsValidFileExtension(t *testing.T) {
	allowed := []string{"jpg", "jpeg", "png"}

	tests := []struct {
		name     string
		filename string
		valid    bool
	}{
		{name: "jpg", filename: "photo.jpg", valid: true},
		{name: "uppercase ext", filename: "photo.PNG", valid: true},
		{name: "double extension", filename: "archive.tar.png", valid: true},
		{name: "not allowed", filename: "script.exe", valid: false},
		{name: "no extension", filename: "photo", valid: false},
		{name: "empty", filename: "", valid: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := IsValidFileExtension(tc.filename, allowed); got != tc.valid {
				t.Fatalf("IsValidFileExtension(%q) = %v, want %v", tc.filename, got, tc.valid)
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello\x00world  "); got != "helloworld" {
		t.Fatalf("SanitizeString = %q", got)
	}
}

func TestGenerateRandomString(t *testing.T) {
	a, err := GenerateRandomString(16)
	if err != nil {
		t.Fatalf("GenerateRandomString failed: %v", err)
	}
	if len(a) != 16 {
		t.Fatalf("expected length 16, got %d", len(a))
	}
	b, err := GenerateRandomString(16)
	if err != nil {
		t.Fatalf("GenerateRandomString failed: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct random strings")
	}
}
