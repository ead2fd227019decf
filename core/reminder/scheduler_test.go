package reminder_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/reminder"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/tests"
)

type memStore struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]string)}
}

func (s *memStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

type notification struct {
	title, body string
}

type fakeNotifier struct {
	supported  bool
	permission reminder.Permission
	shown      []notification
	err        error
}

func (n *fakeNotifier) Supported() bool                 { return n.supported }
func (n *fakeNotifier) Permission() reminder.Permission { return n.permission }

func (n *fakeNotifier) Show(title, body string) error {
	if n.err != nil {
		return n.err
	}
	n.shown = append(n.shown, notification{title, body})
	return nil
}

type fakeTimer struct {
	delay   time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

// timers records armed timers instead of running them.
type timers struct {
	armed []*fakeTimer
}

func (ts *timers) after(d time.Duration, f func()) reminder.Timer {
	t := &fakeTimer{delay: d, f: f}
	ts.armed = append(ts.armed, t)
	return t
}

func (ts *timers) last() *fakeTimer {
	return ts.armed[len(ts.armed)-1]
}

type env struct {
	store    *memStore
	notifier *fakeNotifier
	timers   *timers
	now      time.Time
	sched    *reminder.Scheduler
}

func setup(t *testing.T, now time.Time) *env {
	e := &env{
		store:    newMemStore(),
		notifier: &fakeNotifier{supported: true, permission: reminder.PermissionGranted},
		timers:   new(timers),
		now:      now,
	}
	e.sched = reminder.NewScheduler(
		e.store,
		e.notifier,
		testutil.NewLogger(t),
		reminder.WithClock(func() time.Time { return e.now }),
		reminder.WithTimerFunc(e.timers.after),
	)
	return e
}

func at(hour, min int) time.Time {
	return time.Date(2024, 5, 10, hour, min, 0, 0, time.Local)
}

func TestNextFireTime(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{name: "morning", now: at(8, 30), want: at(19, 0)},
		{name: "just before", now: at(18, 59), want: at(19, 0)},
		{name: "exactly at the hour", now: at(19, 0), want: at(19, 0).AddDate(0, 0, 1)},
		{name: "evening", now: at(22, 15), want: at(19, 0).AddDate(0, 0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reminder.NextFireTime(tt.now, 19))
		})
	}
}

func TestMessage(t *testing.T) {
	_, body := reminder.Message(0)
	assert.Contains(t, body, "alguns minutos")
	_, body = reminder.Message(1)
	assert.Contains(t, body, "1 dia seguido")
	title, body := reminder.Message(12)
	assert.Contains(t, title, "Continue assim")
	assert.Contains(t, body, "12 dias seguidos")
}

func TestScheduler_Schedule(t *testing.T) {
	t.Run("arms for tonight", func(t *testing.T) {
		e := setup(t, at(8, 0))
		target, ok := e.sched.Schedule()
		require.True(t, ok)
		assert.Equal(t, at(19, 0), target)
		require.Len(t, e.timers.armed, 1)
		assert.Equal(t, 11*time.Hour, e.timers.last().delay)
		// arming never shows anything by itself
		assert.Empty(t, e.notifier.shown)
	})

	t.Run("idempotent for the same target", func(t *testing.T) {
		e := setup(t, at(8, 0))
		e.sched.Schedule()
		e.now = at(9, 0)
		target, ok := e.sched.Schedule()
		require.True(t, ok)
		assert.Equal(t, at(19, 0), target)
		assert.Len(t, e.timers.armed, 1)
		assert.False(t, e.timers.last().stopped)
	})

	t.Run("replaces a stale timer", func(t *testing.T) {
		e := setup(t, at(8, 0))
		e.sched.Schedule()
		e.now = at(20, 0)
		target, ok := e.sched.Schedule()
		require.True(t, ok)
		assert.Equal(t, at(19, 0).AddDate(0, 0, 1), target)
		require.Len(t, e.timers.armed, 2)
		assert.True(t, e.timers.armed[0].stopped)
	})

	t.Run("skipped when already notified today", func(t *testing.T) {
		e := setup(t, at(8, 0))
		require.NoError(t, e.store.Set(reminder.LastNotificationKey, "2024-05-10"))
		_, ok := e.sched.Schedule()
		assert.False(t, ok)
		assert.Empty(t, e.timers.armed)
	})

	tests := []struct {
		name       string
		supported  bool
		permission reminder.Permission
	}{
		{name: "unsupported", supported: false, permission: reminder.PermissionGranted},
		{name: "denied", supported: true, permission: reminder.PermissionDenied},
		{name: "unasked", supported: true, permission: reminder.PermissionUnasked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := setup(t, at(8, 0))
			e.notifier.supported, e.notifier.permission = tt.supported, tt.permission
			_, ok := e.sched.Schedule()
			assert.False(t, ok)
			assert.Empty(t, e.timers.armed)
		})
	}
}

func TestScheduler_fire(t *testing.T) {
	t.Run("shows once and records the day", func(t *testing.T) {
		e := setup(t, at(8, 0))
		require.NoError(t, e.store.Set(reminder.StreakKey, "5"))
		e.sched.Schedule()

		e.now = at(19, 0)
		e.timers.last().f()

		require.Len(t, e.notifier.shown, 1)
		assert.Contains(t, e.notifier.shown[0].body, "5 dias seguidos")
		last, ok, err := e.store.Get(reminder.LastNotificationKey)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "2024-05-10", last)

		_, armed := e.sched.Armed()
		assert.False(t, armed)

		// re-scheduling the same day does nothing
		_, ok = e.sched.Schedule()
		assert.False(t, ok)
	})

	t.Run("cancelled timer does not show", func(t *testing.T) {
		e := setup(t, at(8, 0))
		e.sched.Schedule()
		fire := e.timers.last().f
		e.sched.Cancel()

		assert.True(t, e.timers.last().stopped)
		fire()
		assert.Empty(t, e.notifier.shown)
	})

	t.Run("permission revoked before firing", func(t *testing.T) {
		e := setup(t, at(8, 0))
		e.sched.Schedule()
		e.notifier.permission = reminder.PermissionDenied
		e.timers.last().f()
		assert.Empty(t, e.notifier.shown)
	})

	t.Run("failed notification is not recorded", func(t *testing.T) {
		e := setup(t, at(8, 0))
		e.sched.Schedule()
		e.notifier.err = errors.New("notification center unavailable")
		e.timers.last().f()

		_, ok, err := e.store.Get(reminder.LastNotificationKey)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unreadable streak counts as zero", func(t *testing.T) {
		e := setup(t, at(8, 0))
		require.NoError(t, e.store.Set(reminder.StreakKey, "muitos"))
		e.sched.Schedule()
		e.timers.last().f()

		require.Len(t, e.notifier.shown, 1)
		_, want := reminder.Message(0)
		assert.Equal(t, want, e.notifier.shown[0].body)
	})
}
