package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// CheckPassword compares a password with its hash
func CheckPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateRandomString generates a random string of specified length
func GenerateRandomString(length int) (string, error) {
	bytes := make([]byte, length/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// IsValidRole checks if a role is valid
func IsValidRole(role string) bool {
	validRoles := []string{
		"student",
		"teacher_quran", "teacher_subjects",
		"supervisor_quran", "supervisor_subjects",
		"admin",
	}
	for _, validRole := range validRoles {
		if role == validRole {
			return true
		}
	}
	return false
}

// IsSupervisorRole reports whether role is one of the two supervisor roles.
func IsSupervisorRole(role string) bool {
	return role == "supervisor_quran" || role == "supervisor_subjects"
}

// IsTeacherRole reports whether role is one of the two teacher roles.
func IsTeacherRole(role string) bool {
	return role == "teacher_quran" || role == "teacher_subjects"
}

// RoleDepartment returns the department a supervisor or teacher role
// operates in ("quran" or "subjects"), or "" for roles without one.
func RoleDepartment(role string) string {
	switch role {
	case "supervisor_quran", "teacher_quran":
		return "quran"
	case "supervisor_subjects", "teacher_subjects":
		return "subjects"
	}
	return ""
}

// SubjectDepartment maps a subject type to its department. The subject's
// structured type field is the canonical source; subject names are never
// inspected.
func SubjectDepartment(subjectType string) string {
	if subjectType == "quran" {
		return "quran"
	}
	return "subjects"
}

// IsValidScheduleStatus checks if a schedule status is valid
func IsValidScheduleStatus(status string) bool {
	validStatuses := []string{"scheduled", "completed", "cancelled", "rescheduled"}
	for _, validStatus := range validStatuses {
		if status == validStatus {
			return true
		}
	}
	return false
}

// FormatDateDMY formats a date as DD-MM-YYYY for API responses.
func FormatDateDMY(t time.Time) string {
	return t.Format("02-01-2006")
}

// IsValidFileExtension checks if file extension is allowed
func IsValidFileExtension(filename string, allowedExtensions []string) bool {
	if filename == "" {
		return false
	}

	parts := strings.Split(filename, ".")
	if len(parts) < 2 {
		return false
	}

	ext := strings.ToLower(parts[len(parts)-1])

	for _, allowedExt := range allowedExtensions {
		if ext == strings.ToLower(allowedExt) {
			return true
		}
	}
	return false
}

// SanitizeString removes dangerous characters from string
func SanitizeString(input string) string {
	// Remove null bytes and control characters
	input = strings.ReplaceAll(input, "\x00", "")

	// Trim whitespace
	input = strings.TrimSpace(input)

	return input
}
