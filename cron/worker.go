package cron

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"yogatrack/config"
	poseimageRepo "yogatrack/database/repository/poseimage"
	pushRepo "yogatrack/database/repository/push"
	reminderRepo "yogatrack/database/repository/reminder"
	userRepo "yogatrack/database/repository/user"
	"yogatrack/models"
	"yogatrack/services/dispatch"
	"yogatrack/services/media"
	"yogatrack/services/scheduler"
	"yogatrack/services/tasks"

	"github.com/hibiken/asynq"
	cronlib "github.com/robfig/cron/v3"
)

// Deps bundles everything the background runner needs.
type Deps struct {
	Scheduler  scheduler.Service
	Dispatcher dispatch.Service
	Media      media.Service
	Reminders  reminderRepo.Repository
	Users      userRepo.Repository
	Subs       pushRepo.Repository
	Images     poseimageRepo.Repository
	Retention  media.Retention
}

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitWorker runs the async worker in background. Concurrency bounds how
// many deliveries and reconciliations run at once.
func InitWorker(deps Deps) {
	srv := asynq.NewServer(
		redisOpts(),
		asynq.Config{
			Concurrency: config.AppConfig.DispatchConcurrency,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeDeliverReminder, handleDeliverTask(deps))
	mux.HandleFunc(tasks.TypeReconcileImage, handleReconcileTask(deps))

	// Start async worker with retry logic.
	go func() {
		log.Println("[Worker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[Worker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[Worker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleDeliverTask(deps Deps) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.DeliverPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[DeliverHandler] Invalid payload: %v", err)
			return err
		}

		user, err := deps.Users.GetByID(ctx, p.UserID)
		if err != nil {
			if errors.Is(err, userRepo.ErrNotFound) {
				log.Printf("[DeliverHandler] Owner %s gone, dropping occurrence %s", p.UserID, p.ReminderID)
				return nil
			}
			return err
		}
		reminder, err := deps.Reminders.GetByID(ctx, p.ReminderID)
		if err != nil {
			log.Printf("[DeliverHandler] Reminder %s gone, dropping occurrence", p.ReminderID)
			return nil
		}

		due := models.DueReminder{
			Reminder:       *reminder,
			User:           *user,
			Occurrence:     models.OccurrenceKey{ReminderID: p.ReminderID, LocalDate: p.LocalDate},
			OccurrenceTime: p.OccurrenceTime,
		}

		result, err := deps.Dispatcher.Deliver(ctx, due)
		if err != nil {
			if errors.Is(err, dispatch.ErrOccurrenceBusy) {
				return nil
			}
			log.Printf("[DeliverHandler] Delivery failed for %s: %v", due.Occurrence, err)
			return err
		}

		// The dispatcher surfaces dead endpoints; deleting them is ours.
		for _, endpoint := range result.DeadEndpoints {
			if err := deps.Subs.DeleteByEndpoint(ctx, endpoint); err != nil {
				log.Printf("[DeliverHandler] Failed to delete dead subscription: %v", err)
			}
		}
		return nil
	}
}

func handleReconcileTask(deps Deps) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.ReconcilePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReconcileHandler] Invalid payload: %v", err)
			return err
		}

		img, err := deps.Images.GetByID(ctx, p.ImageID)
		if err != nil {
			log.Printf("[ReconcileHandler] Image %s gone, dropping", p.ImageID)
			return nil
		}

		if _, err := deps.Media.Reconcile(ctx, *img, deps.Retention); err != nil {
			switch {
			case errors.Is(err, media.ErrReconcileBusy):
				return nil
			case media.IsIntegrity(err):
				// Reported, not retried: retrying cannot repair a record
				// with no valid storage reference.
				log.Printf("[ReconcileHandler] %v", err)
				return nil
			default:
				log.Printf("[ReconcileHandler] Reconcile failed for %s: %v", p.ImageID, err)
				return err
			}
		}
		return nil
	}
}

// StartSchedules runs the periodic tick and reconciliation sweep. Each due
// reminder and each LOCAL image is enqueued as a task; the worker above
// provides the bounded concurrency.
func StartSchedules(deps Deps) (*cronlib.Cron, error) {
	client := asynq.NewClient(redisOpts())

	c := cronlib.New()

	_, err := c.AddFunc(config.AppConfig.TickSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		err := deps.Scheduler.Tick(ctx, time.Now(), func(due models.DueReminder) error {
			task, opts, err := tasks.NewDeliverTask(due)
			if err != nil {
				return err
			}
			if _, err := client.Enqueue(task, opts...); err != nil {
				return err
			}
			return nil
		})
		if err != nil {
			log.Printf("[Tick] Tick failed: %v", err)
		}
	})
	if err != nil {
		return nil, err
	}

	_, err = c.AddFunc(config.AppConfig.ReconcileSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		images, err := deps.Images.ListLocal(ctx, 100)
		if err != nil {
			log.Printf("[ReconcileSweep] Listing local images failed: %v", err)
			return
		}
		for _, img := range images {
			task, opts, err := tasks.NewReconcileTask(img.ID)
			if err != nil {
				log.Printf("[ReconcileSweep] Failed to build task for %s: %v", img.ID, err)
				continue
			}
			if _, err := client.Enqueue(task, opts...); err != nil {
				log.Printf("[ReconcileSweep] Failed to enqueue %s: %v", img.ID, err)
			}
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
