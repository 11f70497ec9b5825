package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"attendance-backend/checkin"
	"attendance-backend/models"
	"attendance-backend/store"
)

type SessionHandler struct {
	sessions  *store.SessionStore
	lifecycle *checkin.Lifecycle
	log       *zap.Logger
}

func NewSessionHandler(sessions *store.SessionStore, lifecycle *checkin.Lifecycle, log *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, lifecycle: lifecycle, log: log}
}

func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	capacity := req.Capacity
	if capacity <= 0 {
		capacity = 50
	}

	accessCode := req.AccessCode
	if accessCode == "" {
		accessCode = generateAccessCode()
	}

	session := &models.Session{
		SessionNumber: req.SessionNumber,
		Date:          req.Date,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		IsActive:      true,
		Capacity:      capacity,
		AccessCode:    accessCode,
	}
	if req.QRCode != "" {
		session.QRCode = &req.QRCode
	}

	if err := h.sessions.Create(c, session); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("created session",
		zap.Int("session_number", session.SessionNumber),
		zap.Int64("session_id", session.ID))

	c.JSON(http.StatusCreated, session)
}

// GetSessions lists all sessions with attendee counts. Expired sessions are
// deactivated in bulk first so the list never shows a stale active flag.
func (h *SessionHandler) GetSessions(c *gin.Context) {
	if _, err := h.lifecycle.ReconcileAll(c); err != nil {
		respondError(c, h.log, err)
		return
	}

	sessions, err := h.sessions.List(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// GetSession resolves a session by internal id, session number or access
// code.
func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.lifecycle.Resolve(c, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// UpdateSession applies a partial patch, e.g. {"isActive": false} to end a
// session early. The same polymorphic addressing as GetSession applies.
func (h *SessionHandler) UpdateSession(c *gin.Context) {
	session, err := h.lifecycle.Resolve(c, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.sessions.Update(c, session.ID, patch)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteSession removes a session; its attendance rows cascade.
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	session, err := h.lifecycle.Resolve(c, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := h.sessions.Delete(c, session.ID); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("deleted session", zap.Int64("session_id", session.ID))
	c.JSON(http.StatusOK, gin.H{"message": "Session deleted successfully"})
}

// generateAccessCode returns an unguessable session entry code.
func generateAccessCode() string {
	buf := make([]byte, 6)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}
