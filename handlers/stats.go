package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"attendance-backend/checkin"
	"attendance-backend/models"
	"attendance-backend/store"
)

type StatsHandler struct {
	sessions    *store.SessionStore
	attendances *store.AttendanceStore
	lifecycle   *checkin.Lifecycle
	log         *zap.Logger
}

func NewStatsHandler(sessions *store.SessionStore, attendances *store.AttendanceStore, lifecycle *checkin.Lifecycle, log *zap.Logger) *StatsHandler {
	return &StatsHandler{sessions: sessions, attendances: attendances, lifecycle: lifecycle, log: log}
}

// GetStats returns aggregate counts. Expired sessions are reconciled first so
// the active count is never stale.
func (h *StatsHandler) GetStats(c *gin.Context) {
	if _, err := h.lifecycle.ReconcileAll(c); err != nil {
		respondError(c, h.log, err)
		return
	}

	totalSessions, err := h.sessions.Count(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	totalAttendances, err := h.attendances.Count(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	totalStudents, err := h.attendances.DistinctWalletCount(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	activeSessions, err := h.sessions.ActiveCount(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	maxNumber, err := h.sessions.MaxSessionNumber(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, models.SessionStats{
		TotalSessions:    totalSessions,
		TotalAttendances: totalAttendances,
		TotalStudents:    totalStudents,
		ActiveSessions:   activeSessions,
		SuggestedNext:    maxNumber + 1,
	})
}
