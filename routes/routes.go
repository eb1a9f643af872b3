package routes

import (
	"alnooracademy_go/controllers"
	"alnooracademy_go/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App) {
	// Initialize controllers
	authController := &controllers.AuthController{}
	userController := &controllers.UserController{}
	studentController := &controllers.StudentController{}
	teacherController := &controllers.TeacherController{}
	supervisorController := &controllers.SupervisorController{}
	subjectController := &controllers.SubjectController{}
	scheduleController := &controllers.ScheduleController{}
	announcementController := &controllers.AnnouncementController{}
	paymentController := &controllers.PaymentController{}
	clientController := &controllers.ClientController{}
	notificationController := &controllers.NotificationController{}
	reportController := &controllers.ReportController{}
	logController := &controllers.LogController{}
	wsController := &controllers.WebSocketController{}
	healthController := &controllers.HealthController{}

	// API group
	api := app.Group("/api")

	// Health check (public)
	api.Get("/health", healthController.Check)

	// Authentication routes (no middleware)
	auth := api.Group("/auth")
	auth.Post("/login", authController.Login)
	auth.Post("/bootstrap", authController.Bootstrap)

	// WebSocket endpoint (token via query parameter)
	app.Get("/ws", wsController.UpgradeGuard, wsController.Handle())

	// Protected routes (require authentication)
	protected := api.Group("/", middleware.JWTMiddleware())

	// Profile routes (authenticated users)
	protected.Get("/auth/me", authController.GetProfile)
	protected.Put("/auth/password", authController.ChangePassword)
	protected.Post("/auth/logout", authController.Logout)

	// User management routes (admin)
	users := protected.Group("/users")
	users.Get("/", middleware.RequireAdmin(), userController.GetUsers)
	users.Post("/", middleware.RequireAdmin(), authController.Register)
	users.Get("/:id", middleware.RequireAdmin(), userController.GetUser)
	users.Put("/:id", middleware.RequireAdmin(), userController.UpdateUser)
	users.Delete("/:id", middleware.RequireAdmin(), userController.DeleteUser)
	users.Patch("/:id/deactivate", middleware.RequireAdmin(), userController.DeactivateUser)
	users.Put("/:id/permissions", middleware.RequireAdmin(), userController.UpdatePermissions)
	users.Post("/profile-picture", userController.UploadProfilePicture)

	// Student routes
	students := protected.Group("/students")
	students.Get("/", middleware.RequireStaff(), studentController.GetStudents)
	students.Get("/:id", studentController.GetStudent)
	students.Put("/:id", middleware.RequireAdmin(), studentController.UpdateStudent)
	students.Put("/:id/subjects", middleware.RequireAdmin(), studentController.UpdateEnrollment)
	students.Post("/:id/teachers", middleware.RequireSupervisorOrAdmin(), studentController.AssignTeacher)
	students.Get("/:id/attendance", studentController.GetStudentAttendance)
	students.Get("/:id/fees", studentController.GetStudentFees)

	// Teacher routes
	teachers := protected.Group("/teachers")
	teachers.Get("/", middleware.RequireSupervisorOrAdmin(), teacherController.GetTeachers)
	teachers.Get("/my/schedules", middleware.RequireTeacher(), teacherController.GetTeacherSchedules)
	teachers.Get("/:id", middleware.RequireStaff(), teacherController.GetTeacher)
	teachers.Put("/:id", middleware.RequireAdmin(), teacherController.UpdateTeacher)
	teachers.Put("/:id/subjects", middleware.RequireAdmin(), teacherController.UpdateTeacherSubjects)
	teachers.Get("/:id/schedules", middleware.RequireSupervisorOrAdmin(), teacherController.GetTeacherSchedules)
	teachers.Post("/:id/attendance", middleware.RequireSupervisorOrAdmin(), teacherController.MarkAttendance)
	teachers.Get("/:id/attendance", middleware.RequireSupervisorOrAdmin(), teacherController.GetTeacherAttendance)
	teachers.Get("/:id/salary", teacherController.GetTeacherSalaryHistory)

	// Supervisor dashboard routes
	supervisor := protected.Group("/supervisor", middleware.RequireSupervisor())
	supervisor.Get("/overview", supervisorController.GetDepartmentOverview)
	supervisor.Get("/teacher-attendance", supervisorController.GetDepartmentTeacherAttendance)
	supervisor.Get("/class-status", supervisorController.GetDepartmentClassStatus)

	// Subject routes
	subjects := protected.Group("/subjects")
	subjects.Get("/", subjectController.GetSubjects)
	subjects.Post("/", middleware.RequireAdmin(), subjectController.CreateSubject)
	subjects.Get("/:id", subjectController.GetSubject)
	subjects.Put("/:id", middleware.RequireAdmin(), subjectController.UpdateSubject)
	subjects.Delete("/:id", middleware.RequireAdmin(), subjectController.DeleteSubject)

	// Schedule routes (supervisors manage, staff read)
	schedules := protected.Group("/schedules")
	schedules.Get("/", middleware.RequireSupervisorOrAdmin(), scheduleController.GetSchedules)
	schedules.Post("/", middleware.RequireSupervisor(), scheduleController.CreateSchedule)
	schedules.Get("/:id", middleware.RequireStaff(), scheduleController.GetSchedule)
	schedules.Put("/:id", middleware.RequireSupervisor(), scheduleController.UpdateSchedule)
	schedules.Delete("/:id", middleware.RequireSupervisor(), scheduleController.DeleteSchedule)
	schedules.Post("/:id/substitute", middleware.RequireSupervisorOrAdmin(), scheduleController.SubstituteTeacher)
	schedules.Post("/:id/lessons", middleware.RequireStaff(), scheduleController.AddLesson)

	// Announcement routes
	announcements := protected.Group("/announcements")
	announcements.Get("/", announcementController.GetAnnouncements)
	announcements.Post("/", middleware.RequireStaff(), announcementController.CreateAnnouncement)
	announcements.Get("/:id", announcementController.GetAnnouncement)
	announcements.Put("/:id", middleware.RequireStaff(), announcementController.UpdateAnnouncement)
	announcements.Delete("/:id", middleware.RequireStaff(), announcementController.DeleteAnnouncement)

	// Payment routes
	payments := protected.Group("/payments")
	payments.Post("/challans", middleware.RequireAdmin(), paymentController.GenerateChallan)
	payments.Get("/challans", middleware.RequireAdmin(), paymentController.GetChallans)
	payments.Post("/challans/:id/pay", middleware.RequireAdmin(), paymentController.PayChallan)
	payments.Post("/salaries", middleware.RequireAdmin(), paymentController.GenerateSalaryInvoice)
	payments.Get("/salaries", middleware.RequireAdmin(), paymentController.GetSalaryInvoices)

	// Client routes (admin)
	clients := protected.Group("/clients", middleware.RequireAdmin())
	clients.Post("/", clientController.CreateClient)
	clients.Get("/", clientController.GetClients)
	clients.Get("/:id", clientController.GetClient)
	clients.Put("/:id", clientController.UpdateClient)
	clients.Delete("/:id", clientController.DeleteClient)

	// Notification routes
	notifications := protected.Group("/notifications")
	notifications.Get("/", notificationController.GetNotifications)
	notifications.Get("/unread-count", notificationController.GetUnreadCount)
	notifications.Patch("/:id/read", notificationController.MarkAsRead)
	notifications.Patch("/read-all", notificationController.MarkAllAsRead)

	// Report routes (admin)
	reports := protected.Group("/reports", middleware.RequireAdmin())
	reports.Get("/schedules", reportController.ExportSchedules)
	reports.Get("/challans", reportController.ExportChallans)

	// Activity log routes (admin)
	logs := protected.Group("/logs", middleware.RequireAdmin())
	logs.Get("/", logController.GetActivityLogs)
	logs.Get("/archives", logController.GetLogArchives)
}
