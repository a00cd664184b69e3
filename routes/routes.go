package routes

import (
	"net/http"
	"time"

	"yogatrack/handlers"
	"yogatrack/middleware"
	"yogatrack/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterReminderRoutes registers reminder management endpoints.
func RegisterReminderRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/reminders")
	{
		api.Use(middleware.JWTAuthUserMiddleware(hb.UserRepo))
		api.POST("", hb.CreateReminderHandler)
		api.GET("", hb.ListRemindersHandler)
		api.PUT("/:id", hb.UpdateReminderHandler)
		api.DELETE("/:id", hb.DeleteReminderHandler)
	}
}

// RegisterPushRoutes registers Web Push subscription endpoints. The public
// VAPID key is unauthenticated; subscription management is not.
func RegisterPushRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/push")
	{
		api.GET("/vapid-key", hb.GetVAPIDKeyHandler)

		protected := api.Group("")
		protected.Use(middleware.JWTAuthUserMiddleware(hb.UserRepo))
		protected.POST("/subscribe", hb.SubscribePushHandler)
		protected.POST("/unsubscribe", hb.UnsubscribePushHandler)
	}
}

// RegisterMediaRoutes registers pose image endpoints.
func RegisterMediaRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/images")
	{
		api.Use(middleware.JWTAuthUserMiddleware(hb.UserRepo))
		api.POST("/upload", hb.UploadImageHandler)
		api.GET("", hb.ListImagesHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "health": utils.GetHealthStatus()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes sets up CORS and all route groups.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterReminderRoutes(r, hb)
	RegisterPushRoutes(r, hb)
	RegisterMediaRoutes(r, hb)
}
