package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"attendance-backend/checkin"
	"attendance-backend/models"
	"attendance-backend/store"
)

type ExportHandler struct {
	lifecycle   *checkin.Lifecycle
	attendances *store.AttendanceStore
	students    *store.StudentStore
	admins      *store.AdminStore
	log         *zap.Logger
}

func NewExportHandler(lifecycle *checkin.Lifecycle, attendances *store.AttendanceStore, students *store.StudentStore, admins *store.AdminStore, log *zap.Logger) *ExportHandler {
	return &ExportHandler{
		lifecycle:   lifecycle,
		attendances: attendances,
		students:    students,
		admins:      admins,
		log:         log,
	}
}

// ExportRoster serves one session's roster as CSV, joined with student
// profiles where they exist. Admin only.
func (h *ExportHandler) ExportRoster(c *gin.Context) {
	adminWallet := c.Query("adminWallet")
	if adminWallet == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "adminWallet is required"})
		return
	}

	isAdmin, err := h.admins.IsAdmin(c, adminWallet)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !isAdmin {
		respondError(c, h.log, checkin.ErrNotAuthorized)
		return
	}

	session, err := h.lifecycle.Resolve(c, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	attendances, err := h.attendances.ListBySession(c, session.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	wallets := make([]string, len(attendances))
	for i, att := range attendances {
		wallets[i] = att.WalletAddress
	}

	students, err := h.students.GetByWallets(c, wallets)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	csv := buildRosterCSV(session, attendances, students)

	filename := fmt.Sprintf("session-%d-attendance.csv", session.SessionNumber)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csv))
}

// buildRosterCSV renders the roster with every cell double-quote wrapped and
// internal quotes doubled.
func buildRosterCSV(session *models.Session, attendances []models.Attendance, students map[string]models.Student) string {
	rows := [][]string{{
		"sessionNumber",
		"sessionDate",
		"walletAddress",
		"studentName",
		"studentId",
		"email",
		"tokenId",
		"timestamp",
	}}

	for _, att := range attendances {
		var name, studentID, email string
		if student, ok := students[strings.ToLower(att.WalletAddress)]; ok {
			name = student.Name
			if student.StudentID != nil {
				studentID = *student.StudentID
			}
			if student.Email != nil {
				email = *student.Email
			}
		}

		rows = append(rows, []string{
			strconv.Itoa(session.SessionNumber),
			session.Date,
			att.WalletAddress,
			name,
			studentID,
			email,
			att.TokenID,
			att.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		})
	}

	lines := make([]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
		}
		lines[i] = strings.Join(cells, ",")
	}

	return strings.Join(lines, "\n")
}
