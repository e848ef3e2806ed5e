// Package agenda keeps the user's scheduled events and reminds them
// shortly before each one starts.
package agenda

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/franklab/frank/internal/core"
	"github.com/franklab/frank/internal/logging"
	"github.com/franklab/frank/internal/storage"
)

// Store owns the persisted event list. Every mutation writes the whole
// list back before returning.
type Store struct {
	db     *storage.DB
	mu     sync.Mutex
	events []core.AgendaEvent
	now    func() time.Time
	log    *logging.Logger
}

// NewStore loads the agenda, starting empty on first run.
func NewStore(db *storage.DB) (*Store, error) {
	s := &Store{
		db:  db,
		now: time.Now,
		log: logging.WithField("component", "agenda"),
	}

	err := db.LoadDocument(storage.DocAgenda, &s.events)
	if err != nil && !errors.Is(err, core.ErrDocumentNotFound) {
		return nil, err
	}
	if s.events == nil {
		s.events = []core.AgendaEvent{}
	}
	return s, nil
}

// save persists the whole list. Callers must hold mu.
func (s *Store) save() error {
	return s.db.SaveDocument(storage.DocAgenda, s.events)
}

// Add normalizes the date and time expressions and appends the event.
func (s *Store) Add(title, rawDate, rawTime string) (core.AgendaEvent, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return core.AgendaEvent{}, core.ErrTitleTooShort
	}

	date, err := NormalizeDate(rawDate, s.now())
	if err != nil {
		return core.AgendaEvent{}, err
	}
	t, err := NormalizeTime(rawTime)
	if err != nil {
		return core.AgendaEvent{}, err
	}

	e := core.AgendaEvent{
		Title:     title,
		Date:      date,
		Time:      t,
		CreatedAt: s.now().Format("2006-01-02T15:04:05"),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, e)
	if err := s.save(); err != nil {
		return core.AgendaEvent{}, err
	}
	s.log.Info("event added: %s le %s à %s", e.Title, e.Date, e.Time)
	return e, nil
}

// Events returns a copy of all stored events.
func (s *Store) Events() []core.AgendaEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.AgendaEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Delete removes every event whose title matches exactly, ignoring
// case. It returns how many events were removed, or ErrEventNotFound
// when the title matches nothing.
func (s *Store) Delete(title string) (int, error) {
	key := strings.ToLower(strings.TrimSpace(title))

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.events[:0]
	removed := 0
	for _, e := range s.events {
		if strings.ToLower(e.Title) == key {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept

	if removed == 0 {
		return 0, core.ErrEventNotFound
	}
	if err := s.save(); err != nil {
		return 0, err
	}
	return removed, nil
}

// Render formats the agenda grouped by date, chronologically, with
// French day and month names. Returns "" when the agenda is empty.
func (s *Store) Render() string {
	events := s.Events()
	if len(events) == 0 {
		return ""
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].Time < events[j].Time
	})

	var b strings.Builder
	lastDate := ""
	for _, e := range events {
		if e.Date != lastDate {
			if lastDate != "" {
				b.WriteString("\n")
			}
			b.WriteString(formatDate(e.Date))
			b.WriteString(" :\n")
			lastDate = e.Date
		}
		b.WriteString("  - ")
		b.WriteString(e.Time)
		b.WriteString(" : ")
		b.WriteString(e.Title)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
