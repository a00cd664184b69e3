package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"yogatrack/models"
)

// fakeReminders is an in-memory reminder store with compare-and-set
// semantics on lastSent.
type fakeReminders struct {
	mu        sync.Mutex
	reminders map[string]*models.Reminder
	commits   int
}

func newFakeReminders(reminders ...models.Reminder) *fakeReminders {
	f := &fakeReminders{reminders: map[string]*models.Reminder{}}
	for i := range reminders {
		r := reminders[i]
		f.reminders[r.ID] = &r
	}
	return f
}

func (f *fakeReminders) Create(ctx context.Context, r *models.Reminder) error { return nil }
func (f *fakeReminders) Update(ctx context.Context, r *models.Reminder) error { return nil }
func (f *fakeReminders) Delete(ctx context.Context, id string) error          { return nil }
func (f *fakeReminders) ListByUser(ctx context.Context, userID string) ([]models.Reminder, error) {
	return nil, nil
}
func (f *fakeReminders) ListEnabled(ctx context.Context, afterID string, limit int) ([]models.Reminder, string, error) {
	return nil, "", nil
}

func (f *fakeReminders) GetByID(ctx context.Context, id string) (*models.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reminders[id]
	if !ok {
		return nil, fmt.Errorf("reminder with id %s not found", id)
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReminders) CommitLastSent(ctx context.Context, id string, prev *time.Time, next time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reminders[id]
	if !ok {
		return false, nil
	}
	switch {
	case prev == nil && r.LastSent != nil:
		return false, nil
	case prev != nil && (r.LastSent == nil || !r.LastSent.Equal(*prev)):
		return false, nil
	}
	r.LastSent = &next
	f.commits++
	return true, nil
}

// fakeSubs is an in-memory subscription store.
type fakeSubs struct {
	mu      sync.Mutex
	subs    []models.PushSubscription
	listErr error
}

func (f *fakeSubs) Save(ctx context.Context, sub *models.PushSubscription) error { return nil }
func (f *fakeSubs) ListByUser(ctx context.Context, userID string) ([]models.PushSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.PushSubscription
	for _, s := range f.subs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}
func (f *fakeSubs) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.subs[:0]
	for _, s := range f.subs {
		if s.Endpoint != endpoint {
			kept = append(kept, s)
		}
	}
	f.subs = kept
	return nil
}

// fakePush records sends and returns a configured error per endpoint.
type fakePush struct {
	mu    sync.Mutex
	errs  map[string]error
	sends []string
}

func (f *fakePush) Send(ctx context.Context, sub models.PushSubscription, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, sub.Endpoint)
	return f.errs[sub.Endpoint]
}

func (f *fakePush) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sends)
}

// fakeEmail records sends and returns a configured error.
type fakeEmail struct {
	mu    sync.Mutex
	err   error
	sends []string
}

func (f *fakeEmail) Send(ctx context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, to)
	return f.err
}

func (f *fakeEmail) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sends)
}

// memLocker is an in-process Locker.
type memLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMemLocker() *memLocker { return &memLocker{held: map[string]bool{}} }

func (l *memLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *memLocker) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

func testDue(r models.Reminder, user models.UserData) models.DueReminder {
	occTime := time.Date(2026, 1, 7, 7, 0, 0, 0, time.UTC)
	return models.DueReminder{
		Reminder:       r,
		User:           user,
		Occurrence:     models.OccurrenceKey{ReminderID: r.ID, LocalDate: "2026-01-07"},
		OccurrenceTime: occTime,
	}
}

func baseReminder() models.Reminder {
	return models.Reminder{
		ID:                        "rem-1",
		UserID:                    "user-1",
		TimeOfDay:                 "07:00",
		Days:                      []string{models.DayWed},
		Enabled:                   true,
		Message:                   "time to practice",
		EmailNotificationsEnabled: true,
	}
}

func baseUser() models.UserData {
	return models.UserData{ID: "user-1", Email: "yogi@example.com", Tz: "UTC"}
}

func newDispatcher(reminders *fakeReminders, subs *fakeSubs, push *fakePush, email *fakeEmail) *DefaultDispatcher {
	return &DefaultDispatcher{
		Reminders: reminders,
		Subs:      subs,
		Push:      push,
		Email:     email,
		Locks:     newMemLocker(),
	}
}

func outcomeFor(t *testing.T, result *models.DeliveryResult, channel string) models.ChannelOutcome {
	t.Helper()
	for _, o := range result.Outcomes {
		if o.Channel == channel {
			return o
		}
	}
	t.Fatalf("no outcome recorded for channel %s", channel)
	return models.ChannelOutcome{}
}

func TestDeliverCommitsOnSuccess(t *testing.T) {
	r := baseReminder()
	reminders := newFakeReminders(r)
	subs := &fakeSubs{subs: []models.PushSubscription{
		{ID: "sub-1", UserID: "user-1", Endpoint: "https://push/1"},
	}}
	push := &fakePush{errs: map[string]error{}}
	email := &fakeEmail{}

	d := newDispatcher(reminders, subs, push, email)
	result, err := d.Deliver(context.Background(), testDue(r, baseUser()))
	if err != nil {
		t.Fatalf("Deliver returned error: %v", err)
	}

	if !result.Committed {
		t.Error("expected occurrence to be committed")
	}
	if !outcomeFor(t, result, models.ChannelPush).OK {
		t.Error("push outcome not OK")
	}
	if !outcomeFor(t, result, models.ChannelEmail).OK {
		t.Error("email outcome not OK")
	}
	stored, _ := reminders.GetByID(context.Background(), r.ID)
	if stored.LastSent == nil || !stored.LastSent.Equal(time.Date(2026, 1, 7, 7, 0, 0, 0, time.UTC)) {
		t.Errorf("lastSent = %v, want the occurrence time", stored.LastSent)
	}
}

func TestDeliverAllRetryableLeavesPending(t *testing.T) {
	r := baseReminder()
	reminders := newFakeReminders(r)
	subs := &fakeSubs{subs: []models.PushSubscription{
		{ID: "sub-1", UserID: "user-1", Endpoint: "https://push/1"},
	}}
	push := &fakePush{errs: map[string]error{
		"https://push/1": &RetryableError{Err: errors.New("503 from push service")},
	}}
	email := &fakeEmail{err: &RetryableError{Err: errors.New("smtp timeout")}}

	d := newDispatcher(reminders, subs, push, email)
	result, err := d.Deliver(context.Background(), testDue(r, baseUser()))
	if err != nil {
		t.Fatalf("Deliver returned error: %v", err)
	}

	if result.Committed {
		t.Error("all-retryable round must not commit")
	}
	stored, _ := reminders.GetByID(context.Background(), r.ID)
	if stored.LastSent != nil {
		t.Errorf("lastSent = %v, want nil so the next tick retries", stored.LastSent)
	}

	// The next tick re-delivers the same occurrence; this time it works.
	push.errs = map[string]error{}
	email.err = nil
	result, err = d.Deliver(context.Background(), testDue(r, baseUser()))
	if err != nil {
		t.Fatalf("retry Deliver returned error: %v", err)
	}
	if !result.Committed {
		t.Error("retry delivery did not commit")
	}
}

func TestDeliverPermanentFailureStillCommits(t *testing.T) {
	r := baseReminder()
	r.EmailNotificationsEnabled = false
	reminders := newFakeReminders(r)
	subs := &fakeSubs{subs: []models.PushSubscription{
		{ID: "sub-1", UserID: "user-1", Endpoint: "https://push/1"},
	}}
	push := &fakePush{errs: map[string]error{
		"https://push/1": &PermanentError{Err: errors.New("413 payload too large")},
	}}

	d := newDispatcher(reminders, subs, push, &fakeEmail{})
	result, err := d.Deliver(context.Background(), testDue(r, baseUser()))
	if err != nil {
		t.Fatalf("Deliver returned error: %v", err)
	}

	if !result.Committed {
		t.Error("permanent failure must still mark the occurrence handled")
	}
	if o := outcomeFor(t, result, models.ChannelPush); o.OK || o.Failure != models.FailurePermanent {
		t.Errorf("push outcome = %+v, want permanent failure", o)
	}
}

func TestDeliverDeadSubscriptionIsSurfacedAndIsolated(t *testing.T) {
	r := baseReminder()
	reminders := newFakeReminders(r)
	subs := &fakeSubs{subs: []models.PushSubscription{
		{ID: "sub-1", UserID: "user-1", Endpoint: "https://push/dead"},
	}}
	push := &fakePush{errs: map[string]error{
		"https://push/dead": &DeadSubscriptionError{Endpoint: "https://push/dead", Err: errors.New("410 gone")},
	}}
	email := &fakeEmail{}

	d := newDispatcher(reminders, subs, push, email)
	result, err := d.Deliver(context.Background(), testDue(r, baseUser()))
	if err != nil {
		t.Fatalf("Deliver returned error: %v", err)
	}

	if len(result.DeadEndpoints) != 1 || result.DeadEndpoints[0] != "https://push/dead" {
		t.Errorf("dead endpoints = %v, want the gone endpoint", result.DeadEndpoints)
	}
	// The push failure must not suppress the email attempt.
	if email.sendCount() != 1 {
		t.Errorf("email attempted %d times, want 1", email.sendCount())
	}
	if !result.Committed {
		t.Error("dead subscription is permanent; occurrence must commit")
	}
}

func TestDeliverMixedSubscriptions(t *testing.T) {
	r := baseReminder()
	r.EmailNotificationsEnabled = false
	reminders := newFakeReminders(r)
	subs := &fakeSubs{subs: []models.PushSubscription{
		{ID: "sub-1", UserID: "user-1", Endpoint: "https://push/dead"},
		{ID: "sub-2", UserID: "user-1", Endpoint: "https://push/ok"},
	}}
	push := &fakePush{errs: map[string]error{
		"https://push/dead": &DeadSubscriptionError{Endpoint: "https://push/dead", Err: errors.New("404")},
	}}

	d := newDispatcher(reminders, subs, push, &fakeEmail{})
	result, err := d.Deliver(context.Background(), testDue(r, baseUser()))
	if err != nil {
		t.Fatalf("Deliver returned error: %v", err)
	}

	if o := outcomeFor(t, result, models.ChannelPush); !o.OK {
		t.Errorf("push outcome = %+v, want OK when any subscription accepted", o)
	}
	if len(result.DeadEndpoints) != 1 {
		t.Errorf("dead endpoints = %v, want the 404 endpoint only", result.DeadEndpoints)
	}
}

func TestDeliverSkipsAlreadyHandledOccurrence(t *testing.T) {
	r := baseReminder()
	sent := time.Date(2026, 1, 7, 7, 0, 0, 0, time.UTC)
	r.LastSent = &sent
	reminders := newFakeReminders(r)
	push := &fakePush{errs: map[string]error{}}
	email := &fakeEmail{}
	subs := &fakeSubs{subs: []models.PushSubscription{
		{ID: "sub-1", UserID: "user-1", Endpoint: "https://push/1"},
	}}

	d := newDispatcher(reminders, subs, push, email)
	result, err := d.Deliver(context.Background(), testDue(r, baseUser()))
	if err != nil {
		t.Fatalf("Deliver returned error: %v", err)
	}

	if push.sendCount() != 0 || email.sendCount() != 0 {
		t.Error("already-handled occurrence produced channel sends")
	}
	if result.Committed {
		t.Error("skip must not report a fresh commit")
	}
}

func TestDeliverNoEnabledChannelsCommits(t *testing.T) {
	r := baseReminder()
	r.EmailNotificationsEnabled = false
	reminders := newFakeReminders(r)

	d := newDispatcher(reminders, &fakeSubs{}, &fakePush{}, &fakeEmail{})
	result, err := d.Deliver(context.Background(), testDue(r, baseUser()))
	if err != nil {
		t.Fatalf("Deliver returned error: %v", err)
	}

	if len(result.Outcomes) != 0 {
		t.Errorf("outcomes = %v, want none", result.Outcomes)
	}
	if !result.Committed {
		t.Error("channel-less occurrence must commit so it is not re-enqueued all day")
	}
}

func TestDeliverBusyOccurrence(t *testing.T) {
	r := baseReminder()
	reminders := newFakeReminders(r)
	push := &fakePush{errs: map[string]error{}}
	locker := newMemLocker()

	d := &DefaultDispatcher{
		Reminders: reminders,
		Subs:      &fakeSubs{},
		Push:      push,
		Email:     &fakeEmail{},
		Locks:     locker,
	}

	due := testDue(r, baseUser())
	locker.Acquire(context.Background(), "dispatch:"+due.Occurrence.String(), time.Minute)

	if _, err := d.Deliver(context.Background(), due); !errors.Is(err, ErrOccurrenceBusy) {
		t.Fatalf("Deliver error = %v, want ErrOccurrenceBusy", err)
	}
	if push.sendCount() != 0 {
		t.Error("busy occurrence produced channel sends")
	}
}

func TestDeliverAtMostOnceUnderConcurrency(t *testing.T) {
	r := baseReminder()
	r.EmailNotificationsEnabled = false
	reminders := newFakeReminders(r)
	subs := &fakeSubs{subs: []models.PushSubscription{
		{ID: "sub-1", UserID: "user-1", Endpoint: "https://push/1"},
	}}
	push := &fakePush{errs: map[string]error{}}
	d := newDispatcher(reminders, subs, push, &fakeEmail{})

	due := testDue(r, baseUser())

	const runs = 16
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Overlapping tick invocations racing the same occurrence.
			d.Deliver(context.Background(), due)
		}()
	}
	wg.Wait()

	if reminders.commits != 1 {
		t.Errorf("lastSent committed %d times, want exactly 1", reminders.commits)
	}
	if push.sendCount() > 1 {
		t.Errorf("push sent %d times for one occurrence, want at most 1", push.sendCount())
	}

	// Later runs (e.g. a fresh tick) observe the commit and stay silent.
	result, err := d.Deliver(context.Background(), due)
	if err != nil {
		t.Fatalf("post-commit Deliver returned error: %v", err)
	}
	if result.Committed || len(result.Outcomes) != 0 {
		t.Errorf("post-commit delivery = %+v, want silent skip", result)
	}
}
