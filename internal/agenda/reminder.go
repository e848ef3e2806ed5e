package agenda

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/franklab/frank/internal/core"
	"github.com/franklab/frank/internal/logging"
)

const (
	// DefaultPollInterval is how often the reminder loop scans the agenda.
	DefaultPollInterval = 30 * time.Second

	// notifyWindow is how far ahead of an event the reminder fires.
	notifyWindow = 5 * time.Minute

	// notifiedRetention keeps a fired event's key suppressed past its
	// date. After that the key is evicted, so a re-added event with the
	// same title, date and time can fire again.
	notifiedRetention = 7 * 24 * time.Hour
)

// NotifyFunc receives the spoken reminder message.
type NotifyFunc func(message string)

// Reminder polls the agenda and fires one notification per upcoming
// event.
type Reminder struct {
	store    *Store
	notify   NotifyFunc
	interval time.Duration

	mu       sync.RWMutex
	running  bool
	stopCh   chan struct{}
	notified map[string]time.Time // composite key -> event time

	now func() time.Time
	log *logging.Logger
}

// NewReminder creates a reminder service over the given agenda store.
func NewReminder(store *Store, notify NotifyFunc, interval time.Duration) *Reminder {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Reminder{
		store:    store,
		notify:   notify,
		interval: interval,
		notified: make(map[string]time.Time),
		now:      time.Now,
		log:      logging.WithField("component", "reminder"),
	}
}

// Start launches the polling loop. Starting twice is a no-op.
func (r *Reminder) Start(ctx context.Context) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.mu.Unlock()

	go r.run(ctx)
	r.log.Info("reminder loop started (every %s)", r.interval)
}

// Stop halts the loop. Stopping twice is a no-op.
func (r *Reminder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	close(r.stopCh)
	r.running = false
	r.log.Info("reminder loop stopped")
}

// IsRunning reports whether the loop is active.
func (r *Reminder) IsRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

func (r *Reminder) run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.check()
		}
	}
}

// check fires at most one notification per event whose start time is
// between now and now+5min.
func (r *Reminder) check() {
	now := r.now()

	r.mu.Lock()
	for key, at := range r.notified {
		if now.Sub(at) > notifiedRetention {
			delete(r.notified, key)
		}
	}
	r.mu.Unlock()

	for _, e := range r.store.Events() {
		key := e.Key()

		r.mu.RLock()
		_, seen := r.notified[key]
		r.mu.RUnlock()
		if seen {
			continue
		}

		at, err := time.ParseInLocation("2006-01-02 15:04", e.Date+" "+e.Time, now.Location())
		if err != nil {
			r.log.Warn("unparseable event %q: %v", key, err)
			continue
		}

		delta := at.Sub(now)
		if delta < 0 || delta > notifyWindow {
			continue
		}

		r.mu.Lock()
		r.notified[key] = at
		r.mu.Unlock()

		msg := reminderMessage(e)
		r.log.Info("reminder: %s", msg)
		if r.notify != nil {
			r.notify(msg)
		}
	}
}

func reminderMessage(e core.AgendaEvent) string {
	return fmt.Sprintf("Ton rendez-vous %s commence dans moins de 5 minutes.", e.Title)
}
