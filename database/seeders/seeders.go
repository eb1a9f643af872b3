package seeders

import (
	"alnooracademy_go/database"
	"alnooracademy_go/models"
	"alnooracademy_go/utils"
	"log"
)

// SeedDemoData populates a fresh database with a workable demo set:
// one admin, a supervisor and teacher per department, a few subjects
// and enrolled students. Safe to re-run; it skips when users exist.
func SeedDemoData() {
	var count int64
	if err := database.DB.Model(&models.User{}).Count(&count).Error; err != nil {
		log.Printf("Seeder: failed to check users table: %v", err)
		return
	}
	if count > 0 {
		log.Println("Seeder: users present, skipping demo data")
		return
	}

	password, err := utils.HashPassword("changeme123")
	if err != nil {
		log.Printf("Seeder: failed to hash password: %v", err)
		return
	}

	admin := models.User{Name: "Site Admin", Email: "admin@alnoor.example", Password: password, Role: "admin", Active: true}
	if err := database.DB.Create(&admin).Error; err != nil {
		log.Printf("Seeder: failed to create admin: %v", err)
		return
	}

	subjects := []models.Subject{
		{Name: "Nazra Quran", Type: "quran", CreatedByID: &admin.ID},
		{Name: "Hifz Program", Type: "quran", CreatedByID: &admin.ID},
		{Name: "Mathematics", Type: "academic", CreatedByID: &admin.ID},
		{Name: "English", Type: "academic", CreatedByID: &admin.ID},
	}
	if err := database.DB.Create(&subjects).Error; err != nil {
		log.Printf("Seeder: failed to create subjects: %v", err)
		return
	}

	type staffSeed struct {
		name  string
		email string
		role  string
	}
	staff := []staffSeed{
		{"Qari Abdullah", "abdullah@alnoor.example", "teacher_quran"},
		{"Ms. Fatima Khan", "fatima@alnoor.example", "teacher_subjects"},
		{"Hafiz Usman", "usman@alnoor.example", "supervisor_quran"},
		{"Mr. Imran Ali", "imran@alnoor.example", "supervisor_subjects"},
	}

	teacherProfiles := map[string]*models.TeacherProfile{}
	for _, s := range staff {
		user := models.User{Name: s.name, Email: s.email, Password: password, Role: s.role, Active: true, CreatedByID: &admin.ID}
		if err := database.DB.Create(&user).Error; err != nil {
			log.Printf("Seeder: failed to create %s: %v", s.email, err)
			return
		}
		department := utils.RoleDepartment(s.role)
		if utils.IsTeacherRole(s.role) {
			profile := models.TeacherProfile{UserID: user.ID, Department: department, Salary: 40000}
			if err := database.DB.Create(&profile).Error; err != nil {
				log.Printf("Seeder: failed to create teacher profile: %v", err)
				return
			}
			teacherProfiles[department] = &profile
		} else {
			profile := models.SupervisorProfile{UserID: user.ID, Department: department, Salary: 55000}
			if err := database.DB.Create(&profile).Error; err != nil {
				log.Printf("Seeder: failed to create supervisor profile: %v", err)
				return
			}
		}
	}

	// Assign subjects to teachers by department
	for _, subject := range subjects {
		department := utils.SubjectDepartment(subject.Type)
		profile, ok := teacherProfiles[department]
		if !ok {
			continue
		}
		if err := database.DB.Model(profile).Association("Subjects").Append(&subject); err != nil {
			log.Printf("Seeder: failed to assign subject: %v", err)
			return
		}
	}

	students := []struct {
		name     string
		email    string
		guardian string
		subjects []int // indexes into subjects above
	}{
		{"Ahmed Raza", "ahmed@alnoor.example", "Mr. Raza", []int{0, 2}},
		{"Zainab Bibi", "zainab@alnoor.example", "Mrs. Bibi", []int{1}},
		{"Bilal Ahmed", "bilal@alnoor.example", "Mr. Ahmed", []int{2, 3}},
	}
	for _, s := range students {
		user := models.User{Name: s.name, Email: s.email, Password: password, Role: "student", Active: true, CreatedByID: &admin.ID}
		if err := database.DB.Create(&user).Error; err != nil {
			log.Printf("Seeder: failed to create student %s: %v", s.email, err)
			return
		}
		profile := models.StudentProfile{UserID: user.ID, GuardianName: s.guardian, GuardianContact: "0300-0000000"}
		if err := database.DB.Create(&profile).Error; err != nil {
			log.Printf("Seeder: failed to create student profile: %v", err)
			return
		}
		for _, idx := range s.subjects {
			if err := database.DB.Model(&profile).Association("Subjects").Append(&subjects[idx]); err != nil {
				log.Printf("Seeder: failed to enroll student: %v", err)
				return
			}
		}
	}

	log.Println("Seeder: demo data created")
}
