// Package reminder arms the once-a-day local study reminder.
package reminder

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core"
)

const (
	DefaultHour = 19

	LastNotificationKey = "lastNotificationDate"
	StreakKey           = "studyStreak"
)

type Permission string

const (
	PermissionUnasked Permission = "unasked"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

type (
	// Store persists the reminder flags between runs.
	Store interface {
		Get(key string) (string, bool, error)
		Set(key, value string) error
	}

	// Notifier shows notifications on the current platform.
	Notifier interface {
		Supported() bool
		Permission() Permission
		Show(title, body string) error
	}

	Timer interface {
		Stop() bool
	}

	// TimerFunc calls f once after d, like time.AfterFunc.
	TimerFunc func(d time.Duration, f func()) Timer

	Option func(*Scheduler)
)

// Scheduler keeps at most one armed reminder at a time.
type Scheduler struct {
	store    Store
	notifier Notifier
	logger   core.Logger
	hour     int
	now      func() time.Time
	after    TimerFunc

	mu     sync.Mutex
	timer  Timer
	target time.Time
}

func WithHour(hour int) Option {
	return func(s *Scheduler) {
		if hour >= 0 && hour < 24 {
			s.hour = hour
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func WithTimerFunc(after TimerFunc) Option {
	return func(s *Scheduler) { s.after = after }
}

func NewScheduler(store Store, notifier Notifier, logger core.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:    store,
		notifier: notifier,
		logger:   logger,
		hour:     DefaultHour,
		now:      time.Now,
		after: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NextFireTime returns today at hour:00:00 in now's location, or tomorrow when that is not after now.
func NextFireTime(now time.Time, hour int) time.Time {
	target := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !target.After(now) {
		target = target.AddDate(0, 0, 1)
	}
	return target
}

// Message composes the reminder from the current study streak.
func Message(streak int) (title, body string) {
	switch {
	case streak <= 0:
		return "Hora de estudar! 📚", "Que tal dedicar alguns minutos ao ENEM hoje?"
	case streak == 1:
		return "Continue assim! 🔥", "Você estudou 1 dia seguido. Não quebre a sequência!"
	default:
		return "Continue assim! 🔥", fmt.Sprintf("Você estudou %d dias seguidos. Não quebre a sequência!", streak)
	}
}

func (s *Scheduler) canNotify() bool {
	return s.notifier != nil && s.notifier.Supported() && s.notifier.Permission() == PermissionGranted
}

func (s *Scheduler) notifiedOn(day string) bool {
	last, ok, err := s.store.Get(LastNotificationKey)
	if err != nil {
		s.logger.Warn("reading last notification date", err)
		return false
	}
	return ok && last == day
}

// Schedule arms the reminder and returns its target time.
// It does nothing when notifications are not allowed or today's reminder was already shown.
// Calling it again while armed for the same target keeps the current timer;
// a different target replaces it.
func (s *Scheduler) Schedule() (time.Time, bool) {
	if !s.canNotify() {
		return time.Time{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.notifiedOn(core.DateString(now)) {
		return time.Time{}, false
	}

	target := NextFireTime(now, s.hour)
	if s.timer != nil {
		if s.target.Equal(target) {
			return s.target, true
		}
		s.timer.Stop()
		s.timer = nil
	}

	delay := target.Sub(now)
	if delay < 0 {
		delay = 0
	}
	s.target = target
	s.timer = s.after(delay, func() { s.fire(target) })
	s.logger.Debug(fmt.Sprintf("reminder armed for %s", target.Format(time.RFC3339)))
	return target, true
}

// Cancel stops the pending reminder, if any.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
		s.target = time.Time{}
	}
}

// Armed returns the target of the pending reminder.
func (s *Scheduler) Armed() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target, s.timer != nil
}

func (s *Scheduler) fire(target time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// cancelled or replaced meanwhile
	if s.timer == nil || !s.target.Equal(target) {
		return
	}
	s.timer = nil
	s.target = time.Time{}

	if !s.canNotify() {
		return
	}
	today := core.DateString(s.now())
	if s.notifiedOn(today) {
		return
	}

	title, body := Message(s.streak())
	if err := s.notifier.Show(title, body); err != nil {
		s.logger.Error("showing reminder", err)
		return
	}
	if err := s.store.Set(LastNotificationKey, today); err != nil {
		s.logger.Error("saving last notification date", err)
	}
}

func (s *Scheduler) streak() int {
	v, ok, err := s.store.Get(StreakKey)
	if err != nil {
		s.logger.Warn("reading study streak", err)
		return 0
	}
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
