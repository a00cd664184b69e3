package handlers

import (
	"net/http"

	reminderRepo "yogatrack/database/repository/reminder"
	"yogatrack/middleware"
	"yogatrack/models"
	"yogatrack/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReminderHandler exposes reminder management endpoints.
type ReminderHandler struct {
	Reminders reminderRepo.Repository
}

// NewReminderHandler creates a new ReminderHandler instance.
func NewReminderHandler(reminders reminderRepo.Repository) *ReminderHandler {
	return &ReminderHandler{Reminders: reminders}
}

type reminderRequest struct {
	TimeOfDay                 string   `json:"timeOfDay" binding:"required"`
	Days                      []string `json:"days" binding:"required"`
	Enabled                   *bool    `json:"enabled"`
	Message                   string   `json:"message"`
	EmailNotificationsEnabled bool     `json:"emailNotificationsEnabled"`
}

// CreateReminderHandler creates a reminder owned by the authenticated user.
func (h *ReminderHandler) CreateReminderHandler(c *gin.Context) {
	var req reminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid reminder payload", err.Error())
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	reminder := models.Reminder{
		ID:                        uuid.NewString(),
		UserID:                    middleware.AuthedUserID(c),
		TimeOfDay:                 req.TimeOfDay,
		Days:                      req.Days,
		Enabled:                   enabled,
		Message:                   req.Message,
		EmailNotificationsEnabled: req.EmailNotificationsEnabled,
	}
	if err := reminder.Validate(); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid reminder", err.Error())
		return
	}

	if err := h.Reminders.Create(c.Request.Context(), &reminder); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to create reminder", err.Error())
		return
	}
	c.JSON(http.StatusCreated, reminder)
}

// ListRemindersHandler lists the authenticated user's reminders.
func (h *ReminderHandler) ListRemindersHandler(c *gin.Context) {
	reminders, err := h.Reminders.ListByUser(c.Request.Context(), middleware.AuthedUserID(c))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list reminders", err.Error())
		return
	}
	c.JSON(http.StatusOK, reminders)
}

// UpdateReminderHandler updates schedule, message and flags of an owned
// reminder. lastSent is not editable through this surface.
func (h *ReminderHandler) UpdateReminderHandler(c *gin.Context) {
	id := c.Param("id")
	existing, err := h.Reminders.GetByID(c.Request.Context(), id)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "reminder not found", err.Error())
		return
	}
	if existing.UserID != middleware.AuthedUserID(c) {
		utils.JSONError(c, http.StatusForbidden, "not your reminder", "")
		return
	}

	var req reminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid reminder payload", err.Error())
		return
	}

	existing.TimeOfDay = req.TimeOfDay
	existing.Days = req.Days
	existing.Message = req.Message
	existing.EmailNotificationsEnabled = req.EmailNotificationsEnabled
	if req.Enabled != nil {
		existing.Enabled = *req.Enabled
	}
	if err := existing.Validate(); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid reminder", err.Error())
		return
	}

	if err := h.Reminders.Update(c.Request.Context(), existing); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to update reminder", err.Error())
		return
	}
	c.JSON(http.StatusOK, existing)
}

// DeleteReminderHandler removes an owned reminder.
func (h *ReminderHandler) DeleteReminderHandler(c *gin.Context) {
	id := c.Param("id")
	existing, err := h.Reminders.GetByID(c.Request.Context(), id)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "reminder not found", err.Error())
		return
	}
	if existing.UserID != middleware.AuthedUserID(c) {
		utils.JSONError(c, http.StatusForbidden, "not your reminder", "")
		return
	}

	if err := h.Reminders.Delete(c.Request.Context(), id); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to delete reminder", err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}
