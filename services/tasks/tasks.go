package tasks

import (
	"encoding/json"
	"time"

	"yogatrack/models"

	"github.com/hibiken/asynq"
)

const (
	TypeDeliverReminder = "reminder:deliver"
	TypeReconcileImage  = "media:reconcile"
)

// DeliverPayload carries one due occurrence to the worker. The reminder and
// user are re-read fresh at delivery time; only identities and the
// occurrence travel through the queue.
type DeliverPayload struct {
	ReminderID     string    `json:"reminderId"`
	UserID         string    `json:"userId"`
	LocalDate      string    `json:"localDate"`
	OccurrenceTime time.Time `json:"occurrenceTime"`
}

// NewDeliverTask builds the delivery task for a due reminder. MaxRetry is
// zero: retry is the next scheduler tick re-evaluating due-ness, not the
// queue re-running a stale payload.
func NewDeliverTask(due models.DueReminder) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(DeliverPayload{
		ReminderID:     due.Reminder.ID,
		UserID:         due.User.ID,
		LocalDate:      due.Occurrence.LocalDate,
		OccurrenceTime: due.OccurrenceTime,
	})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeDeliverReminder, b)
	opts := []asynq.Option{asynq.MaxRetry(0)}
	return task, opts, nil
}

// ReconcilePayload identifies one LOCAL image to promote.
type ReconcilePayload struct {
	ImageID string `json:"imageId"`
}

// NewReconcileTask builds the reconciliation task for one pose image.
// MaxRetry is zero for the same reason as delivery: the periodic sweep
// re-enqueues anything still LOCAL.
func NewReconcileTask(imageID string) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(ReconcilePayload{ImageID: imageID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeReconcileImage, b)
	opts := []asynq.Option{asynq.MaxRetry(0)}
	return task, opts, nil
}
