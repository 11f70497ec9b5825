package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"attendance-backend/models"
	"attendance-backend/store"
)

// CheckInService is the coordinator surface the handler needs.
type CheckInService interface {
	CheckIn(ctx context.Context, wallet, sessionRef, adminWallet string) (*models.Attendance, error)
}

type AttendanceHandler struct {
	coordinator CheckInService
	attendances *store.AttendanceStore
	log         *zap.Logger
}

func NewAttendanceHandler(coordinator CheckInService, attendances *store.AttendanceStore, log *zap.Logger) *AttendanceHandler {
	return &AttendanceHandler{coordinator: coordinator, attendances: attendances, log: log}
}

// CheckIn performs an attendance check-in, minting the credential token and
// recording the result. adminWallet, when present, requests the override
// path.
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	var req models.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attendance, err := h.coordinator.CheckIn(c, req.WalletAddress, req.SessionID, req.AdminWallet)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, attendance)
}

// GetAttendances returns check-in history with session details, optionally
// filtered by wallet address.
func (h *AttendanceHandler) GetAttendances(c *gin.Context) {
	attendances, err := h.attendances.List(c, c.Query("walletAddress"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, attendances)
}
