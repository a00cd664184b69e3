package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pushRepo "yogatrack/database/repository/push"
	reminderRepo "yogatrack/database/repository/reminder"
	"yogatrack/models"
	"yogatrack/services/scheduler"
	"yogatrack/utils"

	"go.uber.org/zap"
)

const defaultLockTTL = 2 * time.Minute

// DefaultDispatcher is the production Service implementation. Channel
// attempts are isolated from each other; the lastSent compare-and-set is
// the single commit point for an occurrence.
type DefaultDispatcher struct {
	Reminders reminderRepo.Repository
	Subs      pushRepo.Repository
	Push      PushSender
	Email     EmailSender
	Locks     utils.Locker
	LockTTL   time.Duration
}

type pushPayload struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	ReminderID string `json:"reminderId"`
	Tag        string `json:"tag"`
}

// Deliver attempts every enabled channel for the occurrence and commits
// lastSent per the commit rule: at least one success or permanent failure
// marks the occurrence handled; an all-retryable round leaves it pending
// for the next tick.
func (d *DefaultDispatcher) Deliver(ctx context.Context, due models.DueReminder) (*models.DeliveryResult, error) {
	logger := utils.GetLogger()
	occ := due.Occurrence

	ttl := d.LockTTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	acquired, err := d.Locks.Acquire(ctx, "dispatch:"+occ.String(), ttl)
	if err != nil {
		return nil, fmt.Errorf("deliver %s: %w", occ, err)
	}
	if !acquired {
		return nil, ErrOccurrenceBusy
	}
	defer d.Locks.Release(ctx, "dispatch:"+occ.String())

	// Re-read the reminder under the lock: the due computation may be stale
	// by the time a queued delivery runs.
	fresh, err := d.Reminders.GetByID(ctx, due.Reminder.ID)
	if err != nil {
		return nil, fmt.Errorf("deliver %s: %w", occ, err)
	}
	loc, err := time.LoadLocation(due.User.Tz)
	if err != nil {
		return nil, fmt.Errorf("deliver %s: invalid owner tz %q: %w", occ, due.User.Tz, err)
	}
	if !fresh.Enabled || (fresh.LastSent != nil && scheduler.LocalDate(*fresh.LastSent, loc) == occ.LocalDate) {
		return &models.DeliveryResult{Occurrence: occ}, nil
	}

	result := &models.DeliveryResult{Occurrence: occ}

	if outcome, dead, attempted := d.attemptPush(ctx, fresh, due.User); attempted {
		result.Outcomes = append(result.Outcomes, outcome)
		result.DeadEndpoints = dead
	}
	if outcome, attempted := d.attemptEmail(ctx, fresh, due.User); attempted {
		result.Outcomes = append(result.Outcomes, outcome)
	}

	for _, o := range result.Outcomes {
		status := o.Failure
		if o.OK {
			status = "ok"
		}
		utils.DeliveriesTotal.WithLabelValues(o.Channel, status).Inc()
	}

	if !shouldCommit(result.Outcomes) {
		logger.Info("occurrence left pending for retry",
			zap.String("occurrence", occ.String()))
		return result, nil
	}

	committed, err := d.Reminders.CommitLastSent(ctx, fresh.ID, fresh.LastSent, due.OccurrenceTime)
	if err != nil {
		return result, fmt.Errorf("deliver %s: commit: %w", occ, err)
	}
	result.Committed = committed
	if committed {
		utils.OccurrencesCommitted.Inc()
	} else {
		logger.Warn("lastSent commit lost the race",
			zap.String("occurrence", occ.String()))
	}
	return result, nil
}

// shouldCommit applies the commit rule. An empty outcome set means the user
// has no enabled channel at all; the occurrence is marked handled so it is
// not re-enqueued every tick until midnight.
func shouldCommit(outcomes []models.ChannelOutcome) bool {
	if len(outcomes) == 0 {
		return true
	}
	for _, o := range outcomes {
		if o.OK || o.Failure == models.FailurePermanent {
			return true
		}
	}
	return false
}

// attemptPush fans the payload out to every subscription the user holds.
// The channel outcome is a success if any subscription accepted the
// message; dead endpoints are surfaced for the caller to delete.
func (d *DefaultDispatcher) attemptPush(ctx context.Context, r *models.Reminder, user models.UserData) (models.ChannelOutcome, []string, bool) {
	outcome := models.ChannelOutcome{Channel: models.ChannelPush}

	subs, err := d.Subs.ListByUser(ctx, user.ID)
	if err != nil {
		outcome.Failure = models.FailureRetryable
		outcome.Detail = err.Error()
		return outcome, nil, true
	}
	if len(subs) == 0 {
		return outcome, nil, false
	}

	payload, err := json.Marshal(pushPayload{
		Title:      "Yoga practice reminder",
		Body:       r.Message,
		ReminderID: r.ID,
		Tag:        "yogatrack-reminder",
	})
	if err != nil {
		outcome.Failure = models.FailurePermanent
		outcome.Detail = err.Error()
		return outcome, nil, true
	}

	var dead []string
	anyOK := false
	anyPermanent := false
	detail := ""
	for _, sub := range subs {
		err := d.Push.Send(ctx, sub, payload)
		if err == nil {
			anyOK = true
			continue
		}
		var deadErr *DeadSubscriptionError
		if errors.As(err, &deadErr) {
			dead = append(dead, deadErr.Endpoint)
			anyPermanent = true
		} else if !IsRetryable(err) {
			anyPermanent = true
		}
		if detail == "" {
			detail = err.Error()
		}
	}

	switch {
	case anyOK:
		outcome.OK = true
	case anyPermanent:
		outcome.Failure = models.FailurePermanent
		outcome.Detail = detail
	default:
		outcome.Failure = models.FailureRetryable
		outcome.Detail = detail
	}
	return outcome, dead, true
}

// attemptEmail sends the reminder email when the channel is enabled.
func (d *DefaultDispatcher) attemptEmail(ctx context.Context, r *models.Reminder, user models.UserData) (models.ChannelOutcome, bool) {
	outcome := models.ChannelOutcome{Channel: models.ChannelEmail}

	if !r.EmailNotificationsEnabled || user.Email == "" {
		return outcome, false
	}

	err := d.Email.Send(ctx, user.Email, "Yoga practice reminder", r.Message)
	if err == nil {
		outcome.OK = true
		return outcome, true
	}
	if IsRetryable(err) {
		outcome.Failure = models.FailureRetryable
	} else {
		outcome.Failure = models.FailurePermanent
	}
	outcome.Detail = err.Error()
	return outcome, true
}
