package utils

import (
	"encoding/json"
	"time"

	"alnooracademy_go/models"
)

// Compact representations used across APIs
type UserShort struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

func ToUserShort(u models.User) UserShort {
	return UserShort{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// ScheduleDTO is the API shape of a schedule. Class dates render as
// DD-MM-YYYY; times stay as stored ("HH:MM").
type ScheduleDTO struct {
	ID           uint        `json:"id"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Students     []uint      `json:"students"`
	StudentNames []string    `json:"student_names"`
	TeacherID    uint        `json:"teacher"`
	TeacherName  string      `json:"teacher_name"`
	SubjectID    uint        `json:"subject"`
	SubjectName  string      `json:"subject_name"`
	SubjectType  string      `json:"subject_type"`
	Day          string      `json:"day"`
	ClassDate    string      `json:"class_date"`
	StartTime    string      `json:"start_time"`
	EndTime      string      `json:"end_time"`
	Status       string      `json:"status"`
	IsRecurring  bool        `json:"is_recurring"`
	Recurrence   string      `json:"recurrence_pattern,omitempty"`
	CreatedByID  *uint       `json:"created_by,omitempty"`
	CreatedRole  string      `json:"created_by_role,omitempty"`
	UpdatedByID  *uint       `json:"updated_by,omitempty"`
	Lessons      []LessonDTO `json:"lessons,omitempty"`
}

type LessonDTO struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	Remarks     string `json:"remarks,omitempty"`
	AddedByID   *uint  `json:"added_by,omitempty"`
}

// ToScheduleDTO maps a models.Schedule to the API shape. Assumes the
// caller preloaded Students and Lessons when those should appear.
func ToScheduleDTO(s models.Schedule) ScheduleDTO {
	studentIDs := make([]uint, 0, len(s.Students))
	for _, st := range s.Students {
		studentIDs = append(studentIDs, st.ID)
	}

	var names []string
	if !s.StudentNames.IsNull() {
		_ = json.Unmarshal(s.StudentNames, &names)
	}
	if names == nil {
		names = make([]string, 0, len(s.Students))
		for _, st := range s.Students {
			names = append(names, st.Name)
		}
	}

	lessons := make([]LessonDTO, 0, len(s.Lessons))
	for _, l := range s.Lessons {
		lessons = append(lessons, LessonDTO{
			ID:          l.ID,
			Title:       l.Title,
			Description: l.Description,
			Status:      l.Status,
			Remarks:     l.Remarks,
			AddedByID:   l.AddedByID,
		})
	}

	return ScheduleDTO{
		ID:           s.ID,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		Students:     studentIDs,
		StudentNames: names,
		TeacherID:    s.TeacherID,
		TeacherName:  s.TeacherName,
		SubjectID:    s.SubjectID,
		SubjectName:  s.SubjectName,
		SubjectType:  s.SubjectType,
		Day:          s.Day,
		ClassDate:    FormatDateDMY(s.ClassDate),
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		Status:       s.Status,
		IsRecurring:  s.IsRecurring,
		Recurrence:   s.Recurrence,
		CreatedByID:  s.CreatedByID,
		CreatedRole:  s.CreatedRole,
		UpdatedByID:  s.UpdatedByID,
		Lessons:      lessons,
	}
}

// ToScheduleDTOs maps a slice preserving order.
func ToScheduleDTOs(schedules []models.Schedule) []ScheduleDTO {
	out := make([]ScheduleDTO, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, ToScheduleDTO(s))
	}
	return out
}

type NotificationDTO struct {
	ID        uint       `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UserID    uint       `json:"user_id"`
	Title     string     `json:"title"`
	TitleUr   string     `json:"title_ur,omitempty"`
	Message   string     `json:"message"`
	MessageUr string     `json:"message_ur,omitempty"`
	Type      string     `json:"type"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	User      UserShort  `json:"user"`
}

// ToNotificationDTO maps a models.Notification to the compact DTO.
// Assumes the caller preloaded User when possible.
func ToNotificationDTO(n models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		CreatedAt: n.CreatedAt,
		UserID:    n.UserID,
		Title:     n.Title,
		TitleUr:   n.TitleUr,
		Message:   n.Message,
		MessageUr: n.MessageUr,
		Type:      n.Type,
		Read:      n.Read,
		ReadAt:    n.ReadAt,
		User:      ToUserShort(n.User),
	}
}
