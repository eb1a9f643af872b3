package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// User model. Role decides which profile row (Student/Teacher/Supervisor)
// belongs to the account; admins have no profile row.
type User struct {
	BaseModel
	Name           string `json:"name" gorm:"size:200;not null"`
	Email          string `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Password       string `json:"-" gorm:"size:255;not null"`
	PhoneNumber    string `json:"phone_number" gorm:"size:20"`
	Address        string `json:"address" gorm:"size:500"`
	ProfilePicture string `json:"profile_picture" gorm:"size:500"`
	Gender         string `json:"gender" gorm:"size:10;type:enum('male','female')"`
	Role           string `json:"role" gorm:"size:50;not null;type:enum('student','teacher_quran','teacher_subjects','supervisor_quran','supervisor_subjects','admin')"`
	Active         bool   `json:"active" gorm:"default:true"`
	Permissions    JSON   `json:"permissions" gorm:"type:json"`
	CreatedByID    *uint  `json:"created_by"`

	// Relationships
	Student    *StudentProfile    `json:"student,omitempty" gorm:"foreignKey:UserID"`
	Teacher    *TeacherProfile    `json:"teacher,omitempty" gorm:"foreignKey:UserID"`
	Supervisor *SupervisorProfile `json:"supervisor,omitempty" gorm:"foreignKey:UserID"`
}

// StudentProfile holds enrollment data for users with the student role.
// The subject list drives schedule eligibility: a student may only be
// booked for a class in a subject they are enrolled in.
type StudentProfile struct {
	BaseModel
	UserID          uint       `json:"user_id" gorm:"uniqueIndex;not null"`
	GuardianName    string     `json:"guardian_name" gorm:"size:200;not null"`
	GuardianContact string     `json:"guardian_contact" gorm:"size:20;not null"`
	DateOfBirth     *time.Time `json:"date_of_birth"`
	Grade           string     `json:"grade" gorm:"size:50"`
	EnrollmentDate  time.Time  `json:"enrollment_date" gorm:"autoCreateTime"`
	IsTrialBased    bool       `json:"is_trial_based" gorm:"default:false"`
	TrialEndDate    *time.Time `json:"trial_end_date"`

	// Relationships
	User             User                `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Subjects         []Subject           `json:"subjects,omitempty" gorm:"many2many:student_subjects"`
	AssignedTeachers []TeacherAssignment `json:"assigned_teachers,omitempty" gorm:"foreignKey:StudentProfileID"`
}

// TeacherAssignment pairs a student with a teacher for one subject.
type TeacherAssignment struct {
	BaseModel
	StudentProfileID uint       `json:"student_profile_id" gorm:"not null;index"`
	TeacherID        uint       `json:"teacher_id" gorm:"not null;index"`
	SubjectID        uint       `json:"subject_id" gorm:"not null"`
	IsTemporary      bool       `json:"is_temporary" gorm:"default:false"`
	StartDate        time.Time  `json:"start_date" gorm:"autoCreateTime"`
	EndDate          *time.Time `json:"end_date"`
	AssignedByID     *uint      `json:"assigned_by"`

	// Relationships
	Teacher User    `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
	Subject Subject `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
}

// TeacherProfile holds employment data for users with a teacher role.
// The subject list defines which subjects the teacher may be booked for.
type TeacherProfile struct {
	BaseModel
	UserID        uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	Department    string    `json:"department" gorm:"size:20;not null;type:enum('quran','subjects')"`
	Qualification string    `json:"qualification" gorm:"size:255"`
	JoiningDate   time.Time `json:"joining_date" gorm:"autoCreateTime"`
	Expertise     JSON      `json:"expertise" gorm:"type:json"`
	Salary        int       `json:"salary" gorm:"not null"`
	AvailableDays JSON      `json:"available_days" gorm:"type:json"`
	AvailableFrom string    `json:"available_from" gorm:"size:5"` // "HH:MM"
	AvailableTo   string    `json:"available_to" gorm:"size:5"`   // "HH:MM"

	// Relationships
	User     User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Subjects []Subject `json:"subjects,omitempty" gorm:"many2many:teacher_subjects"`
}

// SupervisorProfile holds employment data for supervisor users. The
// department scopes every schedule operation the supervisor may perform.
type SupervisorProfile struct {
	BaseModel
	UserID      uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	Department  string    `json:"department" gorm:"size:20;not null;type:enum('quran','subjects')"`
	JoiningDate time.Time `json:"joining_date" gorm:"autoCreateTime"`
	Salary      int       `json:"salary" gorm:"not null"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Subject model. Type is the canonical department source: "quran" maps to
// the quran department, "academic" to the subjects department.
type Subject struct {
	BaseModel
	Name        string `json:"name" gorm:"size:255;not null"`
	Description string `json:"description" gorm:"type:text"`
	Type        string `json:"type" gorm:"size:20;not null;type:enum('quran','academic')"`
	CreatedByID *uint  `json:"created_by"`
}

// Schedule model - a booked class session. Teacher/subject/student names
// are denormalized at write time so list views need no joins.
//
// The composite unique index on (teacher, class_date, start/end time) is
// the storage-level guard against two identical slots racing past the
// application-level conflict checks.
type Schedule struct {
	BaseModel
	Students     []User    `json:"students_detail,omitempty" gorm:"many2many:schedule_students"`
	StudentNames JSON      `json:"student_names" gorm:"type:json"`
	TeacherID    uint      `json:"teacher" gorm:"not null;index;uniqueIndex:idx_teacher_slot"`
	TeacherName  string    `json:"teacher_name" gorm:"size:200"`
	SubjectID    uint      `json:"subject" gorm:"not null"`
	SubjectName  string    `json:"subject_name" gorm:"size:255"`
	SubjectType  string    `json:"subject_type" gorm:"size:20;index"` // department: quran or subjects
	Day          string    `json:"day" gorm:"size:20;not null;type:enum('Monday','Tuesday','Wednesday','Thursday','Friday','Saturday','Sunday')"`
	ClassDate    time.Time `json:"class_date" gorm:"not null;index;uniqueIndex:idx_teacher_slot"`
	StartTime    string    `json:"start_time" gorm:"size:5;not null;uniqueIndex:idx_teacher_slot"` // "HH:MM"
	EndTime      string    `json:"end_time" gorm:"size:5;not null;uniqueIndex:idx_teacher_slot"`   // "HH:MM"
	Status       string    `json:"status" gorm:"size:50;default:'scheduled';type:enum('scheduled','completed','cancelled','rescheduled')"`
	IsRecurring  bool      `json:"is_recurring" gorm:"default:false"`
	Recurrence   string    `json:"recurrence_pattern" gorm:"size:50"`
	CreatedByID  *uint     `json:"created_by"`
	CreatedRole  string    `json:"created_by_role" gorm:"size:50"`
	UpdatedByID  *uint     `json:"updated_by"`

	// Relationships
	Teacher User     `json:"teacher_detail,omitempty" gorm:"foreignKey:TeacherID"`
	Subject Subject  `json:"subject_detail,omitempty" gorm:"foreignKey:SubjectID"`
	Lessons []Lesson `json:"lessons,omitempty" gorm:"foreignKey:ScheduleID"`
}

// Lesson is a progress record embedded in a schedule.
type Lesson struct {
	BaseModel
	ScheduleID  uint   `json:"schedule_id" gorm:"not null;index"`
	Title       string `json:"title" gorm:"size:255;not null"`
	Description string `json:"description" gorm:"type:text"`
	Status      string `json:"status" gorm:"size:50;default:'pending';type:enum('pending','in-progress','completed')"`
	Remarks     string `json:"remarks" gorm:"type:text"`
	AddedByID   *uint  `json:"added_by"`
}

// Attendance covers both students and teachers; ScheduleID is set for
// student class attendance and nil for teacher day attendance.
type Attendance struct {
	BaseModel
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	ScheduleID *uint     `json:"schedule_id"`
	Date       time.Time `json:"date" gorm:"not null"`
	Status     string    `json:"status" gorm:"size:20;not null;type:enum('present','absent','leave')"`
	MarkedByID *uint     `json:"marked_by"`
	Remarks    string    `json:"remarks" gorm:"size:500"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// ClassHistory tracks what actually happened to a scheduled session:
// teacher replacements, cancellations and per-session attendance.
type ClassHistory struct {
	BaseModel
	ScheduleID           uint      `json:"schedule" gorm:"not null;index"`
	Date                 time.Time `json:"date" gorm:"not null"`
	OriginalTeacherID    uint      `json:"original_teacher" gorm:"not null"`
	ReplacementTeacherID *uint     `json:"replacement_teacher"`
	Status               string    `json:"status" gorm:"size:50;default:'as-scheduled';type:enum('as-scheduled','teacher-changed','cancelled','rescheduled')"`
	Reason               string    `json:"reason" gorm:"size:500"`
	ChangedByID          *uint     `json:"changed_by"`
	TeacherStatus        string    `json:"teacher_status" gorm:"size:20;default:'present';type:enum('present','absent','leave')"`
	StudentStatus        string    `json:"student_status" gorm:"size:20;default:'present';type:enum('present','absent','leave')"`
	LessonTitle          string    `json:"lesson_title" gorm:"size:255"`
	LessonNotes          string    `json:"lesson_notes" gorm:"type:text"`

	// Relationships
	Schedule        Schedule `json:"schedule_detail,omitempty" gorm:"foreignKey:ScheduleID"`
	OriginalTeacher User     `json:"original_teacher_detail,omitempty" gorm:"foreignKey:OriginalTeacherID"`
}

// Announcement model
type Announcement struct {
	BaseModel
	Title          string `json:"title" gorm:"size:255;not null"`
	Content        string `json:"content" gorm:"type:text;not null"`
	SenderID       uint   `json:"sender" gorm:"not null"`
	SenderRole     string `json:"sender_role" gorm:"size:50;not null"`
	RecipientRoles JSON   `json:"recipient_roles" gorm:"type:json"`

	// Relationships
	Sender User `json:"sender_detail,omitempty" gorm:"foreignKey:SenderID"`
}

// FeeChallan model
type FeeChallan struct {
	BaseModel
	StudentID     uint       `json:"student" gorm:"not null;index"`
	Amount        int        `json:"amount" gorm:"not null"`
	Month         string     `json:"month" gorm:"size:20"`
	IssueDate     time.Time  `json:"issue_date" gorm:"autoCreateTime"`
	DueDate       time.Time  `json:"due_date" gorm:"not null"`
	Status        string     `json:"status" gorm:"size:20;default:'pending';type:enum('paid','pending','overdue')"`
	PaymentDate   *time.Time `json:"payment_date"`
	PaymentMethod string     `json:"payment_method" gorm:"size:50"`
	TransactionID string     `json:"transaction_id" gorm:"size:100"`
	Remarks       string     `json:"remarks" gorm:"size:500"`
	IssuedByID    *uint      `json:"issued_by"`

	// Relationships
	Student  User             `json:"student_detail,omitempty" gorm:"foreignKey:StudentID"`
	Payments []ChallanPayment `json:"payment_history,omitempty" gorm:"foreignKey:FeeChallanID"`
}

// ChallanPayment is one received payment against a challan.
type ChallanPayment struct {
	BaseModel
	FeeChallanID uint      `json:"fee_challan_id" gorm:"not null;index"`
	Amount       int       `json:"amount" gorm:"not null"`
	Date         time.Time `json:"date" gorm:"autoCreateTime"`
	Method       string    `json:"method" gorm:"size:50"`
	ReceivedByID *uint     `json:"received_by"`
}

// SalaryInvoice model
type SalaryInvoice struct {
	BaseModel
	UserID          uint       `json:"user" gorm:"not null;index"`
	Role            string     `json:"role" gorm:"size:50;not null;type:enum('teacher_quran','teacher_subjects','supervisor_quran','supervisor_subjects')"`
	Amount          int        `json:"amount" gorm:"not null"`
	BonusAmount     int        `json:"bonus_amount" gorm:"default:0"`
	BonusReason     string     `json:"bonus_reason" gorm:"size:255"`
	BonusApprovedBy *uint      `json:"bonus_approved_by"`
	Month           string     `json:"month" gorm:"size:20;not null"`
	Status          string     `json:"status" gorm:"size:20;default:'paid';type:enum('paid','pending')"`
	PaymentDate     *time.Time `json:"payment_date"`
	Remarks         string     `json:"remarks" gorm:"size:500"`
	ProcessedByID   *uint      `json:"processed_by"`

	// Relationships
	User User `json:"user_detail,omitempty" gorm:"foreignKey:UserID"`
}

// Client model - parents/guardians who pay for one or more students.
type Client struct {
	BaseModel
	Name         string     `json:"name" gorm:"size:200;not null"`
	Email        string     `json:"email" gorm:"size:255;not null;uniqueIndex"`
	PhoneNumber  string     `json:"phone_number" gorm:"size:20;not null"`
	Address      string     `json:"address" gorm:"size:500"`
	IsTrialBased bool       `json:"is_trial_based" gorm:"default:false"`
	TrialEndDate *time.Time `json:"trial_end_date"`
	Notes        string     `json:"notes" gorm:"type:text"`
	CreatedByID  *uint      `json:"created_by"`

	// Relationships
	Students []User `json:"students,omitempty" gorm:"many2many:client_students"`
}

// Log model for activity tracking
type ActivityLog struct {
	BaseModel
	UserID     uint   `json:"user_id"`
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Notification model
type Notification struct {
	BaseModel
	UserID    uint       `json:"user_id" gorm:"not null"`
	Title     string     `json:"title" gorm:"size:255;not null"`
	TitleUr   string     `json:"title_ur" gorm:"size:255"`
	Message   string     `json:"message" gorm:"type:text;not null"`
	MessageUr string     `json:"message_ur" gorm:"type:text"`
	Type      string     `json:"type" gorm:"size:50;not null;type:enum('info','warning','error','success')"`
	Read      bool       `json:"read" gorm:"default:false"`
	ReadAt    *time.Time `json:"read_at"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// LogArchive model for tracking archived logs
type LogArchive struct {
	BaseModel
	FileName    string    `json:"file_name" gorm:"size:255;not null"`
	S3Key       string    `json:"s3_key" gorm:"size:500;not null"`
	StartDate   time.Time `json:"start_date" gorm:"not null"`
	EndDate     time.Time `json:"end_date" gorm:"not null"`
	RecordCount int       `json:"record_count" gorm:"not null"`
	FileSize    int64     `json:"file_size" gorm:"not null"`
	Status      string    `json:"status" gorm:"size:50;not null;default:'pending';type:enum('pending','completed','failed')"`
	Error       string    `json:"error" gorm:"type:text"`
}
