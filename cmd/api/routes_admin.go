package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"classtrack/internal/account"
	"classtrack/internal/attendance"
	"classtrack/internal/auth"
	"classtrack/internal/content"
	"classtrack/internal/export"
	"classtrack/internal/grade"
	"classtrack/internal/payment"
	"classtrack/internal/scan"
)

// writeErr maps domain errors onto HTTP statuses; anything unrecognized
// is a 500 so no failure leaves a handler unreported.
func writeErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, account.ErrStudentNotFound),
		errors.Is(err, account.ErrNotFound),
		errors.Is(err, attendance.ErrRecordNotFound),
		errors.Is(err, payment.ErrPaymentNotFound),
		errors.Is(err, grade.ErrGradeNotFound),
		errors.Is(err, content.ErrContentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, account.ErrUnknownStudentCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, attendance.ErrCheckInBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func intQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func registerAdminRoutes(r *gin.Engine, svc *services) {
	admin := r.Group("/v1",
		auth.Bearer(svc.cfg.JWTSigningKey, svc.cfg.JWTIssuer),
		auth.RequireRole(string(account.RoleAdmin)))

	// Students.
	admin.POST("/students", func(c *gin.Context) {
		var req struct {
			Name        string `json:"name" binding:"required"`
			Phone       string `json:"phone" binding:"required"`
			ParentPhone string `json:"parent_phone"`
			Group       string `json:"group"`
			Grade       string `json:"grade" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		created, err := svc.accounts.CreateStudent(c.Request.Context(), req.Name, req.Phone, req.ParentPhone, req.Group, account.GradeTier(req.Grade))
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	})

	admin.GET("/students", func(c *gin.Context) {
		students, err := svc.accounts.ListStudents(c.Request.Context())
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"students": students})
	})

	admin.PUT("/students/:id", func(c *gin.Context) {
		var req struct {
			Name        string `json:"name" binding:"required"`
			Phone       string `json:"phone" binding:"required"`
			Password    string `json:"password"`
			ParentPhone string `json:"parent_phone"`
			Group       string `json:"group"`
			Grade       string `json:"grade" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		st, err := svc.accounts.UpdateStudent(c.Request.Context(), c.Param("id"), req.Name, req.Phone, req.Password, req.ParentPhone, req.Group, account.GradeTier(req.Grade))
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, st)
	})

	admin.DELETE("/students/:id", func(c *gin.Context) {
		if err := svc.accounts.DeleteStudent(c.Request.Context(), c.Param("id")); err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	})

	admin.GET("/students/:id/qr.png", func(c *gin.Context) {
		st, err := svc.accounts.GetStudent(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeErr(c, err)
			return
		}
		png, err := scan.CodePNG(st.Code, intQuery(c, "size", 256))
		if err != nil {
			writeErr(c, err)
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	})

	// Parents.
	admin.POST("/parents", func(c *gin.Context) {
		var req struct {
			Phone       string `json:"phone" binding:"required"`
			StudentCode string `json:"student_code" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		created, err := svc.accounts.CreateParent(c.Request.Context(), req.Phone, req.StudentCode)
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	})

	admin.GET("/parents", func(c *gin.Context) {
		parents, err := svc.accounts.ListParents(c.Request.Context())
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"parents": parents})
	})

	admin.PUT("/parents/:id", func(c *gin.Context) {
		var req struct {
			Phone       string `json:"phone" binding:"required"`
			StudentCode string `json:"student_code" binding:"required"`
			Password    string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p, err := svc.accounts.UpdateParent(c.Request.Context(), c.Param("id"), req.Phone, req.StudentCode, req.Password)
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	})

	admin.DELETE("/parents/:id", func(c *gin.Context) {
		if err := svc.accounts.DeleteParent(c.Request.Context(), c.Param("id")); err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	})

	// Check-in: manual submit and camera scan sessions share one
	// orchestrator, so a manual code gets the same ordinal and payment
	// treatment as a scanned one.
	admin.POST("/checkins", func(c *gin.Context) {
		var req struct {
			Code string `json:"code" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		outcome, err := svc.attendance.CheckIn(c.Request.Context(), req.Code)
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, outcome)
	})

	registerScanRoutes(admin, svc)

	// Attendance.
	admin.GET("/attendance", func(c *gin.Context) {
		records, err := svc.attRepo.ListRecords(c.Request.Context(), c.Query("student_id"), intQuery(c, "limit", 50), intQuery(c, "offset", 0))
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"records": records})
	})

	admin.POST("/attendance", func(c *gin.Context) {
		var req struct {
			StudentID string `json:"student_id" binding:"required"`
			Status    string `json:"status"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		st, err := svc.accounts.GetStudent(c.Request.Context(), req.StudentID)
		if err != nil {
			writeErr(c, err)
			return
		}
		status := attendance.Status(req.Status)
		if status == "" {
			status = attendance.StatusPresent
		}
		rec, err := svc.attendance.Mark(c.Request.Context(), st.ID, st.Name, status)
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, rec)
	})

	admin.DELETE("/attendance/:id", func(c *gin.Context) {
		if err := svc.attRepo.DeleteRecord(c.Request.Context(), c.Param("id")); err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	})

	// Grades.
	admin.POST("/grades", func(c *gin.Context) {
		var req struct {
			StudentID  string  `json:"student_id" binding:"required"`
			ExamName   string  `json:"exam_name" binding:"required"`
			Score      float64 `json:"score"`
			TotalScore float64 `json:"total_score"`
			Lesson     int     `json:"lesson_number"`
			Group      string  `json:"group"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		st, err := svc.accounts.GetStudent(c.Request.Context(), req.StudentID)
		if err != nil {
			writeErr(c, err)
			return
		}
		g, err := svc.grades.Insert(c.Request.Context(), grade.Grade{
			StudentID:   st.ID,
			StudentName: st.Name,
			ExamName:    req.ExamName,
			Score:       req.Score,
			TotalScore:  req.TotalScore,
			Lesson:      req.Lesson,
			Group:       req.Group,
		})
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, g)
	})

	admin.PUT("/grades/:id", func(c *gin.Context) {
		var req struct {
			ExamName   string  `json:"exam_name" binding:"required"`
			Score      float64 `json:"score"`
			TotalScore float64 `json:"total_score"`
			Lesson     int     `json:"lesson_number"`
			Group      string  `json:"group"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := svc.grades.Update(c.Request.Context(), c.Param("id"), req.ExamName, req.Score, req.TotalScore, req.Lesson, req.Group); err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "updated"})
	})

	admin.DELETE("/grades/:id", func(c *gin.Context) {
		if err := svc.grades.Delete(c.Request.Context(), c.Param("id")); err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	})

	admin.GET("/grades", func(c *gin.Context) {
		grades, err := svc.grades.List(c.Request.Context(), c.Query("student_id"))
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"grades": grades})
	})

	// Videos and books.
	admin.POST("/videos", func(c *gin.Context) {
		var req struct {
			Title     string `json:"title" binding:"required"`
			URL       string `json:"url" binding:"required"`
			Grade     string `json:"grade" binding:"required"`
			IsYouTube bool   `json:"is_youtube"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		v, err := svc.contents.InsertVideo(c.Request.Context(), content.Video{
			Title: req.Title, URL: req.URL, Grade: req.Grade, IsYouTube: req.IsYouTube,
		})
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, v)
	})

	admin.PUT("/videos/:id", func(c *gin.Context) {
		var req struct {
			Title     string `json:"title" binding:"required"`
			URL       string `json:"url" binding:"required"`
			Grade     string `json:"grade" binding:"required"`
			IsYouTube bool   `json:"is_youtube"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		err := svc.contents.UpdateVideo(c.Request.Context(), content.Video{
			ID: c.Param("id"), Title: req.Title, URL: req.URL, Grade: req.Grade, IsYouTube: req.IsYouTube,
		})
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "updated"})
	})

	admin.DELETE("/videos/:id", func(c *gin.Context) {
		if err := svc.contents.DeleteVideo(c.Request.Context(), c.Param("id")); err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	})

	admin.POST("/books", func(c *gin.Context) {
		var req struct {
			Title string `json:"title" binding:"required"`
			URL   string `json:"url" binding:"required"`
			Grade string `json:"grade" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		b, err := svc.contents.InsertBook(c.Request.Context(), content.Book{
			Title: req.Title, URL: req.URL, Grade: req.Grade,
		})
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, b)
	})

	admin.DELETE("/books/:id", func(c *gin.Context) {
		if err := svc.contents.DeleteBook(c.Request.Context(), c.Param("id")); err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	})

	// Payments.
	admin.POST("/payments", func(c *gin.Context) {
		var req struct {
			StudentID string `json:"student_id" binding:"required"`
			Months    []int  `json:"months"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		st, err := svc.accounts.GetStudent(c.Request.Context(), req.StudentID)
		if err != nil {
			writeErr(c, err)
			return
		}
		p, err := svc.payments.InsertPayment(c.Request.Context(), payment.Payment{
			StudentID:   st.ID,
			StudentName: st.Name,
			StudentCode: st.Code,
			Group:       st.Group,
			Months:      req.Months,
		})
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	})

	admin.POST("/payments/:id/months", func(c *gin.Context) {
		var req struct {
			Month int `json:"month" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := svc.payments.AddPaidMonth(c.Request.Context(), c.Param("id"), req.Month); err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"status": "added"})
	})

	admin.DELETE("/payments/:id/months/:month", func(c *gin.Context) {
		month, err := strconv.Atoi(c.Param("month"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "month must be an integer"})
			return
		}
		if err := svc.payments.RemovePaidMonth(c.Request.Context(), c.Param("id"), month); err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "removed"})
	})

	admin.DELETE("/payments/:id", func(c *gin.Context) {
		if err := svc.payments.DeletePayment(c.Request.Context(), c.Param("id")); err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	})

	admin.GET("/payments", func(c *gin.Context) {
		var (
			payments []payment.Payment
			err      error
		)
		if studentID := c.Query("student_id"); studentID != "" {
			payments, err = svc.payments.ListByStudent(c.Request.Context(), studentID)
		} else {
			payments, err = svc.payments.ListAll(c.Request.Context())
		}
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"payments": payments})
	})

	// Exports.
	admin.GET("/exports/attendance.xlsx", func(c *gin.Context) {
		records, err := svc.attRepo.ListRecords(c.Request.Context(), c.Query("student_id"), intQuery(c, "limit", 10000), 0)
		if err != nil {
			writeErr(c, err)
			return
		}
		f, err := export.AttendanceWorkbook(records)
		if err != nil {
			writeErr(c, err)
			return
		}
		fileName := fmt.Sprintf("attendance_%s.xlsx", time.Now().Format("20060102_150405"))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename="+fileName)
		if err := f.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write workbook"})
		}
	})

	admin.GET("/exports/payments.xlsx", func(c *gin.Context) {
		payments, err := svc.payments.ListAll(c.Request.Context())
		if err != nil {
			writeErr(c, err)
			return
		}
		f, err := export.PaymentsWorkbook(payments)
		if err != nil {
			writeErr(c, err)
			return
		}
		fileName := fmt.Sprintf("payments_%s.xlsx", time.Now().Format("20060102_150405"))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename="+fileName)
		if err := f.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write workbook"})
		}
	})
}
