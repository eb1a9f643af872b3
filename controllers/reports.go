package controllers

import (
	"alnooracademy_go/database"
	"alnooracademy_go/models"
	"alnooracademy_go/utils"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

type ReportController struct{}

// ExportSchedules writes the schedules of a department (or all, for
// admins without a filter) to an XLSX workbook.
func (rc *ReportController) ExportSchedules(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Schedule{})
	department := c.Query("department")
	if department != "" {
		query = query.Where("subject_type = ?", department)
	}
	if from := c.Query("from"); from != "" {
		parsed, err := parseClassDate(from)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "from must be in YYYY-MM-DD format"})
		}
		query = query.Where("class_date >= ?", parsed)
	}
	if to := c.Query("to"); to != "" {
		parsed, err := parseClassDate(to)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "to must be in YYYY-MM-DD format"})
		}
		query = query.Where("class_date <= ?", parsed)
	}

	var schedules []models.Schedule
	if err := query.Order("class_date, start_time").Find(&schedules).Error; err != nil {
		logrus.WithError(err).Error("Failed to fetch schedules for export")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch schedules"})
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close workbook")
		}
	}()

	sheet := "Schedules"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Date", "Day", "Start", "End", "Teacher", "Subject", "Department", "Students", "Status"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for row, s := range schedules {
		var names []string
		if !s.StudentNames.IsNull() {
			_ = json.Unmarshal(s.StudentNames, &names)
		}
		values := []interface{}{
			s.ID,
			utils.FormatDateDMY(s.ClassDate),
			s.Day,
			s.StartTime,
			s.EndTime,
			s.TeacherName,
			s.SubjectName,
			s.SubjectType,
			strings.Join(names, ", "),
			s.Status,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		logrus.WithError(err).Error("Failed to build schedules workbook")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build report"})
	}

	fileName := fmt.Sprintf("schedules-%s.xlsx", time.Now().Format("20060102"))
	if department != "" {
		fileName = fmt.Sprintf("schedules-%s-%s.xlsx", department, time.Now().Format("20060102"))
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, fileName))
	return c.SendStream(buf)
}

// ExportChallans writes a month's fee challans to an XLSX workbook.
func (rc *ReportController) ExportChallans(c *fiber.Ctx) error {
	month := c.Query("month")
	if month == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "month query parameter is required (YYYY-MM)"})
	}
	if _, err := time.Parse("2006-01", month); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "month must be in YYYY-MM format"})
	}

	var challans []models.FeeChallan
	if err := database.DB.Preload("Student").Where("month = ?", month).
		Order("due_date").Find(&challans).Error; err != nil {
		logrus.WithError(err).Error("Failed to fetch challans for export")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch challans"})
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close workbook")
		}
	}()

	sheet := "Challans"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Student", "Amount", "Month", "Due Date", "Status", "Payment Date", "Method"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	totalAmount := 0
	paidAmount := 0
	for row, ch := range challans {
		paymentDate := ""
		if ch.PaymentDate != nil {
			paymentDate = utils.FormatDateDMY(*ch.PaymentDate)
		}
		values := []interface{}{
			ch.ID,
			ch.Student.Name,
			ch.Amount,
			ch.Month,
			utils.FormatDateDMY(ch.DueDate),
			ch.Status,
			paymentDate,
			ch.PaymentMethod,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
		totalAmount += ch.Amount
		if ch.Status == "paid" {
			paidAmount += ch.Amount
		}
	}

	summaryRow := len(challans) + 3
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow), "Total")
	_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", summaryRow), totalAmount)
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow+1), "Collected")
	_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", summaryRow+1), paidAmount)

	buf, err := f.WriteToBuffer()
	if err != nil {
		logrus.WithError(err).Error("Failed to build challans workbook")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build report"})
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="challans-%s.xlsx"`, month))
	return c.SendStream(buf)
}
