package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yogatrack/config"
	"yogatrack/cron"
	"yogatrack/database"
	poseimageRepo "yogatrack/database/repository/poseimage"
	pushRepo "yogatrack/database/repository/push"
	reminderRepo "yogatrack/database/repository/reminder"
	userRepo "yogatrack/database/repository/user"
	"yogatrack/handlers"
	"yogatrack/middleware"
	"yogatrack/routes"
	"yogatrack/services/dispatch"
	"yogatrack/services/media"
	"yogatrack/services/scheduler"
	"yogatrack/services/storage"
	"yogatrack/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitLockClient()

	cloudStorage, err := utils.Cloudinary()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize cloud storage: %v", err)
	}
	localStore, err := storage.NewDiskStore(config.AppConfig.LocalMediaDir, config.AppConfig.LocalMediaCapacity)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize local media store: %v", err)
	}

	vapidPrivate, vapidPublic := utils.EnsureVAPIDKeys()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	reminders := reminderRepo.NewMongoReminderRepo()
	users := userRepo.NewMongoUserRepo()
	subs := pushRepo.NewMongoPushRepo()
	images := poseimageRepo.NewMongoPoseImageRepo()

	// services.
	locker := utils.NewRedisLocker(utils.GetLockClient(), "yogatrack:")

	schedulerService := &scheduler.DefaultScheduler{
		Reminders: reminders,
		Users:     users,
		PageSize:  config.AppConfig.SchedulerPageSize,
	}

	dispatcherService := &dispatch.DefaultDispatcher{
		Reminders: reminders,
		Subs:      subs,
		Push: &dispatch.WebPushSender{
			PublicKey:  vapidPublic,
			PrivateKey: vapidPrivate,
			Subscriber: config.AppConfig.VAPIDSubscriber,
			TTL:        3600,
		},
		Email: dispatch.NewSMTPEmailSender(
			config.AppConfig.SMTPHost,
			config.AppConfig.SMTPPort,
			config.AppConfig.SMTPUser,
			config.AppConfig.SMTPPass,
			config.AppConfig.SMTPFrom,
		),
		Locks: locker,
	}

	retention := media.DropLocalCopy
	if config.AppConfig.MediaRetainLocal {
		retention = media.RetainLocalCopy
	}
	mediaService := &media.DefaultCoordinator{
		Images: images,
		Cloud:  cloudStorage,
		Local:  localStore,
		Locks:  locker,
	}

	// Background worker and schedules.
	deps := cron.Deps{
		Scheduler:  schedulerService,
		Dispatcher: dispatcherService,
		Media:      mediaService,
		Reminders:  reminders,
		Users:      users,
		Subs:       subs,
		Images:     images,
		Retention:  retention,
	}
	cron.InitWorker(deps)
	schedules, err := cron.StartSchedules(deps)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to start schedules: %v", err)
	}

	// handlers.
	reminderHandler := handlers.NewReminderHandler(reminders)
	pushHandler := handlers.NewPushHandler(subs, vapidPublic)
	imageHandler := handlers.NewImageHandler(mediaService, images)

	handlerBundle := &handlers.HandlerBundle{
		UserRepo: users,

		CreateReminderHandler: reminderHandler.CreateReminderHandler,
		ListRemindersHandler:  reminderHandler.ListRemindersHandler,
		UpdateReminderHandler: reminderHandler.UpdateReminderHandler,
		DeleteReminderHandler: reminderHandler.DeleteReminderHandler,

		GetVAPIDKeyHandler:     pushHandler.GetVAPIDKeyHandler,
		SubscribePushHandler:   pushHandler.SubscribePushHandler,
		UnsubscribePushHandler: pushHandler.UnsubscribePushHandler,

		UploadImageHandler: imageHandler.UploadImageHandler,
		ListImagesHandler:  imageHandler.ListImagesHandler,
	}

	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor([]*redis.Client{utils.GetCacheClient(), utils.GetLockClient()}, database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	schedules.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
