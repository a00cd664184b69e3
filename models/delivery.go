package models

import "time"

// OccurrenceKey identifies one calendar-day instance of a recurring
// reminder, in the owner's time zone. It is the unit of delivery
// deduplication: a reminder fires at most once per key.
type OccurrenceKey struct {
	ReminderID string `json:"reminderId"`
	LocalDate  string `json:"localDate"` // "2006-01-02" in the owner's tz
}

func (k OccurrenceKey) String() string {
	return k.ReminderID + ":" + k.LocalDate
}

// DueReminder is one reminder the scheduler found due, with its owner and
// the occurrence it is due for.
type DueReminder struct {
	Reminder       Reminder
	User           UserData
	Occurrence     OccurrenceKey
	OccurrenceTime time.Time
}

// Delivery channels.
const (
	ChannelPush  = "push"
	ChannelEmail = "email"
)

// Failure classes for a channel attempt.
const (
	FailureNone      = ""
	FailureRetryable = "retryable"
	FailurePermanent = "permanent"
)

// ChannelOutcome records the result of one channel attempt for one
// occurrence.
type ChannelOutcome struct {
	Channel string `json:"channel"`
	OK      bool   `json:"ok"`
	Failure string `json:"failure,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// DeliveryResult is what the dispatcher returns for one due reminder.
// Committed is true once lastSent was persisted for the occurrence;
// DeadEndpoints lists push endpoints the push service reported gone, for the
// caller to delete.
type DeliveryResult struct {
	Occurrence    OccurrenceKey    `json:"occurrence"`
	Outcomes      []ChannelOutcome `json:"outcomes"`
	Committed     bool             `json:"committed"`
	DeadEndpoints []string         `json:"deadEndpoints,omitempty"`
}
