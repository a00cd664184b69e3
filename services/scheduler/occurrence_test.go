package scheduler

import (
	"testing"
	"time"

	"yogatrack/models"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("failed to load location %s: %v", name, err)
	}
	return loc
}

func TestIsDue(t *testing.T) {
	ny := mustLoc(t, "America/New_York")

	// Wed 2026-01-07 in New York.
	wed0659 := time.Date(2026, 1, 7, 6, 59, 0, 0, ny)
	wed0701 := time.Date(2026, 1, 7, 7, 1, 0, 0, ny)
	wed0901 := time.Date(2026, 1, 7, 9, 1, 0, 0, ny)
	thu0701 := time.Date(2026, 1, 8, 7, 1, 0, 0, ny)
	wedOcc := time.Date(2026, 1, 7, 7, 0, 0, 0, ny)

	base := models.Reminder{
		ID:        "rem-1",
		UserID:    "user-1",
		TimeOfDay: "07:00",
		Days:      []string{models.DayWed},
		Enabled:   true,
		Message:   "morning flow",
	}

	tests := []struct {
		name     string
		mutate   func(r *models.Reminder)
		now      time.Time
		wantDue  bool
		wantDate string
	}{
		{
			name:     "due just past scheduled time",
			now:      wed0701,
			wantDue:  true,
			wantDate: "2026-01-07",
		},
		{
			name:    "not due before scheduled time",
			now:     wed0659,
			wantDue: false,
		},
		{
			name:    "not due on a day outside the set",
			now:     thu0701,
			wantDue: false,
		},
		{
			name:     "fires late after missed ticks",
			now:      wed0901,
			wantDue:  true,
			wantDate: "2026-01-07",
		},
		{
			name:    "disabled reminder never due",
			mutate:  func(r *models.Reminder) { r.Enabled = false },
			now:     wed0701,
			wantDue: false,
		},
		{
			name:    "already handled today",
			mutate:  func(r *models.Reminder) { r.LastSent = &wedOcc },
			now:     wed0901,
			wantDue: false,
		},
		{
			name: "yesterday's send does not cover today",
			mutate: func(r *models.Reminder) {
				prev := wedOcc.AddDate(0, 0, -7)
				r.LastSent = &prev
			},
			now:      wed0701,
			wantDue:  true,
			wantDate: "2026-01-07",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := base
			if tc.mutate != nil {
				tc.mutate(&r)
			}
			key, occTime, due, err := IsDue(&r, tc.now, ny)
			if err != nil {
				t.Fatalf("IsDue returned error: %v", err)
			}
			if due != tc.wantDue {
				t.Fatalf("IsDue = %v, want %v", due, tc.wantDue)
			}
			if !due {
				return
			}
			if key.LocalDate != tc.wantDate {
				t.Errorf("occurrence date = %s, want %s", key.LocalDate, tc.wantDate)
			}
			if key.ReminderID != r.ID {
				t.Errorf("occurrence reminder = %s, want %s", key.ReminderID, r.ID)
			}
			if !occTime.Equal(wedOcc) {
				t.Errorf("occurrence time = %v, want %v", occTime, wedOcc)
			}
		})
	}
}

func TestIsDueMalformedTimeOfDay(t *testing.T) {
	r := models.Reminder{
		ID:        "rem-bad",
		TimeOfDay: "late",
		Days:      []string{models.DaySun},
		Enabled:   true,
	}
	now := time.Date(2026, 1, 4, 12, 0, 0, 0, time.UTC) // a Sunday
	if _, _, _, err := IsDue(&r, now, time.UTC); err == nil {
		t.Fatal("expected error for malformed timeOfDay")
	}
}

func TestOccurrenceAcrossDSTTransitions(t *testing.T) {
	ny := mustLoc(t, "America/New_York")

	// 2026-03-08: 23-hour day in New York (spring forward).
	springNoon := time.Date(2026, 3, 8, 12, 0, 0, 0, ny)
	// 2026-11-01: 25-hour day (fall back).
	fallNoon := time.Date(2026, 11, 1, 12, 0, 0, 0, ny)

	r := models.Reminder{
		ID:        "rem-dst",
		TimeOfDay: "07:00",
		Days:      []string{models.DaySun},
		Enabled:   true,
	}

	for _, tc := range []struct {
		name string
		now  time.Time
		date string
	}{
		{"spring forward day", springNoon, "2026-03-08"},
		{"fall back day", fallNoon, "2026-11-01"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			key, occTime, due, err := IsDue(&r, tc.now, ny)
			if err != nil {
				t.Fatalf("IsDue returned error: %v", err)
			}
			if !due {
				t.Fatal("expected reminder to be due at noon on a DST transition day")
			}
			if key.LocalDate != tc.date {
				t.Errorf("occurrence date = %s, want %s", key.LocalDate, tc.date)
			}
			// Committing the occurrence must dedupe the rest of the day, so
			// the per-day count stays exactly one regardless of day length.
			r2 := r
			r2.LastSent = &occTime
			if _, _, dueAgain, _ := IsDue(&r2, tc.now.Add(2*time.Hour), ny); dueAgain {
				t.Error("reminder due a second time on the same civil day")
			}
		})
	}
}

func TestOccurrenceInsideSpringForwardGap(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	// 02:30 does not exist on 2026-03-08; the occurrence must still resolve
	// to a single valid instant.
	r := models.Reminder{
		ID:        "rem-gap",
		TimeOfDay: "02:30",
		Days:      []string{models.DaySun},
		Enabled:   true,
	}
	now := time.Date(2026, 3, 8, 12, 0, 0, 0, ny)

	key, occTime, due, err := IsDue(&r, now, ny)
	if err != nil {
		t.Fatalf("IsDue returned error: %v", err)
	}
	if !due {
		t.Fatal("expected reminder to be due after the gap")
	}
	if key.LocalDate != "2026-03-08" {
		t.Errorf("occurrence date = %s", key.LocalDate)
	}
	if occTime.After(now) {
		t.Errorf("occurrence time %v is in the future", occTime)
	}
}
