package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"attendance-backend/models"
	"attendance-backend/store"
)

type AdminHandler struct {
	admins *store.AdminStore
	log    *zap.Logger
}

func NewAdminHandler(admins *store.AdminStore, log *zap.Logger) *AdminHandler {
	return &AdminHandler{admins: admins, log: log}
}

func (h *AdminHandler) AddAdmin(c *gin.Context) {
	var req models.AddAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.admins.Add(c, req.WalletAddress); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("registered admin", zap.String("wallet_address", strings.ToLower(req.WalletAddress)))
	c.JSON(http.StatusCreated, gin.H{"walletAddress": strings.ToLower(req.WalletAddress)})
}

func (h *AdminHandler) GetAdmins(c *gin.Context) {
	admins, err := h.admins.List(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, admins)
}
