package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"attendance-backend/models"
	"attendance-backend/store"
)

type StudentHandler struct {
	students *store.StudentStore
	log      *zap.Logger
}

func NewStudentHandler(students *store.StudentStore, log *zap.Logger) *StudentHandler {
	return &StudentHandler{students: students, log: log}
}

// UpsertStudent creates or updates the profile for a wallet.
func (h *StudentHandler) UpsertStudent(c *gin.Context) {
	var req models.UpsertStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	student := &models.Student{
		WalletAddress: req.WalletAddress,
		Name:          req.Name,
	}
	if req.StudentID != "" {
		student.StudentID = &req.StudentID
	}
	if req.Email != "" {
		student.Email = &req.Email
	}

	if err := h.students.Upsert(c, student); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, student)
}

func (h *StudentHandler) GetStudent(c *gin.Context) {
	student, err := h.students.GetByWallet(c, c.Param("walletAddress"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, student)
}
