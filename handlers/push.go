package handlers

import (
	"net/http"

	pushRepo "yogatrack/database/repository/push"
	"yogatrack/middleware"
	"yogatrack/models"
	"yogatrack/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PushHandler exposes Web Push registration endpoints.
type PushHandler struct {
	Subs           pushRepo.Repository
	VAPIDPublicKey string
}

// NewPushHandler creates a new PushHandler instance.
func NewPushHandler(subs pushRepo.Repository, vapidPublicKey string) *PushHandler {
	return &PushHandler{Subs: subs, VAPIDPublicKey: vapidPublicKey}
}

// GetVAPIDKeyHandler returns the public VAPID key browsers subscribe with.
func (h *PushHandler) GetVAPIDKeyHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"publicKey": h.VAPIDPublicKey})
}

// SubscribePushHandler saves a push subscription for the authenticated user.
func (h *PushHandler) SubscribePushHandler(c *gin.Context) {
	var req struct {
		Endpoint string `json:"endpoint" binding:"required"`
		Keys     struct {
			P256dh string `json:"p256dh" binding:"required"`
			Auth   string `json:"auth" binding:"required"`
		} `json:"keys" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid subscription payload", err.Error())
		return
	}

	sub := models.PushSubscription{
		ID:       uuid.NewString(),
		UserID:   middleware.AuthedUserID(c),
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	}
	if err := h.Subs.Save(c.Request.Context(), &sub); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to save subscription", err.Error())
		return
	}
	c.Status(http.StatusOK)
}

// UnsubscribePushHandler removes a subscription by endpoint.
func (h *PushHandler) UnsubscribePushHandler(c *gin.Context) {
	var req struct {
		Endpoint string `json:"endpoint" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload", err.Error())
		return
	}

	if err := h.Subs.DeleteByEndpoint(c.Request.Context(), req.Endpoint); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to delete subscription", err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}
