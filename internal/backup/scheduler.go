package backup

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"billingpro/internal/domain"
)

const defaultTimeOfDay = "02:00"

// NextScheduledTime returns the first run time strictly after `after` for
// the given frequency and HH:MM time of day. Monthly scheduling keeps the
// reference day of month where it exists and clamps to the last day of
// shorter months, so a schedule anchored on the 31st fires on Feb 28.
func NextScheduledTime(after time.Time, frequency, timeOfDay string) time.Time {
	hour, minute := parseTimeOfDay(timeOfDay)
	after = after.UTC()
	candidate := time.Date(after.Year(), after.Month(), after.Day(), hour, minute, 0, 0, time.UTC)

	switch frequency {
	case domain.FrequencyWeekly:
		if !candidate.After(after) {
			candidate = candidate.AddDate(0, 0, 7)
		}
	case domain.FrequencyMonthly:
		if !candidate.After(after) {
			candidate = addMonthClamped(candidate, after.Day())
		}
	default: // daily
		if !candidate.After(after) {
			candidate = candidate.AddDate(0, 0, 1)
		}
	}
	return candidate
}

func parseTimeOfDay(s string) (hour, minute int) {
	if s == "" {
		s = defaultTimeOfDay
	}
	parts := strings.SplitN(s, ":", 2)
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return parseTimeOfDay(defaultTimeOfDay)
	}
	m := 0
	if len(parts) == 2 {
		m, err = strconv.Atoi(parts[1])
		if err != nil || m < 0 || m > 59 {
			return parseTimeOfDay(defaultTimeOfDay)
		}
	}
	return h, m
}

func addMonthClamped(t time.Time, wantDay int) time.Time {
	year, month := t.Year(), t.Month()+1
	if month > time.December {
		month = time.January
		year++
	}
	day := wantDay
	if last := lastDayOfMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), 0, 0, time.UTC)
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Scheduler owns a single timer that fires the backup callback. Rescheduling
// replaces the pending timer; at most one run is ever pending.
type Scheduler struct {
	mu    sync.Mutex
	timer *time.Timer
	fn    func()
}

func NewScheduler(fn func()) *Scheduler {
	return &Scheduler{fn: fn}
}

// ScheduleAt arms the timer for t, replacing any pending run.
func (s *Scheduler) ScheduleAt(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(time.Until(t), s.fn)
}

// Stop cancels the pending run, if any.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
