package handlers

import (
	userRepo "yogatrack/database/repository/user"

	"github.com/gin-gonic/gin"
)

// HandlerBundle aggregates the handler funcs the route registration wires
// up, plus the repositories middleware needs.
type HandlerBundle struct {
	UserRepo userRepo.Repository

	// Reminder endpoints.
	CreateReminderHandler gin.HandlerFunc
	ListRemindersHandler  gin.HandlerFunc
	UpdateReminderHandler gin.HandlerFunc
	DeleteReminderHandler gin.HandlerFunc

	// Push endpoints.
	GetVAPIDKeyHandler     gin.HandlerFunc
	SubscribePushHandler   gin.HandlerFunc
	UnsubscribePushHandler gin.HandlerFunc

	// Pose image endpoints.
	UploadImageHandler gin.HandlerFunc
	ListImagesHandler  gin.HandlerFunc
}
