// Package project tracks the user's named projects and which one is active.
package project

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/franklab/frank/internal/core"
	"github.com/franklab/frank/internal/logging"
	"github.com/franklab/frank/internal/storage"
)

// Store owns the persisted project book. All mutations write the whole
// book back before returning.
type Store struct {
	db  *storage.DB
	mu  sync.Mutex
	b   core.ProjectBook
	now func() time.Time
	log *logging.Logger
}

// NewStore loads the project book, creating an empty one on first run.
func NewStore(db *storage.DB) (*Store, error) {
	s := &Store{
		db:  db,
		now: time.Now,
		log: logging.WithField("component", "projects"),
	}

	err := db.LoadDocument(storage.DocProjects, &s.b)
	if err != nil && !errors.Is(err, core.ErrDocumentNotFound) {
		return nil, err
	}
	if s.b.Projects == nil {
		s.b.Projects = []core.Project{}
	}
	return s, nil
}

// save persists the whole book. Callers must hold mu.
func (s *Store) save() error {
	return s.db.SaveDocument(storage.DocProjects, &s.b)
}

func normTitle(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}

// Add creates a new project. The title must be at least two characters
// after trimming, and must not collide with an existing project when
// compared case- and whitespace-insensitively.
func (s *Store) Add(title, description, theme string) (core.Project, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	theme = strings.TrimSpace(theme)

	if len([]rune(title)) < 2 {
		return core.Project{}, core.ErrTitleTooShort
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := normTitle(title)
	for _, p := range s.b.Projects {
		if normTitle(p.Title) == key {
			s.log.Debug("project %q already exists", title)
			return p, nil
		}
	}

	p := core.Project{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Theme:       theme,
		CreatedAt:   s.now().Format("2006-01-02T15:04:05"),
	}
	s.b.Projects = append(s.b.Projects, p)

	if err := s.save(); err != nil {
		return core.Project{}, err
	}
	s.log.Info("project added: %s", p.Title)
	return p, nil
}

// List returns a copy of all projects in insertion order.
func (s *Store) List() []core.Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Project, len(s.b.Projects))
	copy(out, s.b.Projects)
	return out
}

// FindByTitle returns the project whose title matches exactly, ignoring
// case and surrounding whitespace.
func (s *Store) FindByTitle(title string) (core.Project, bool) {
	key := normTitle(title)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.b.Projects {
		if normTitle(p.Title) == key {
			return p, true
		}
	}
	return core.Project{}, false
}

// Search returns projects whose title, description or theme contains the
// query, case-insensitively.
func (s *Store) Search(query string) []core.Project {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Project
	for _, p := range s.b.Projects {
		hay := strings.ToLower(p.Title + " " + p.Description + " " + p.Theme)
		if strings.Contains(hay, q) {
			out = append(out, p)
		}
	}
	return out
}

// SetCurrent marks a project as active. An empty id clears the marker.
func (s *Store) SetCurrent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.b.CurrentProjectID = id
	return s.save()
}

// Current resolves the active project. A dangling marker (project was
// deleted) behaves as if no project is active.
func (s *Store) Current() (core.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.b.CurrentProjectID == "" {
		return core.Project{}, false
	}
	for _, p := range s.b.Projects {
		if p.ID == s.b.CurrentProjectID {
			return p, true
		}
	}
	return core.Project{}, false
}

// UpdateDescription replaces a project's description.
func (s *Store) UpdateDescription(id, description string) (core.Project, error) {
	return s.update(id, func(p *core.Project) {
		p.Description = strings.TrimSpace(description)
	})
}

// UpdateTheme replaces a project's theme.
func (s *Store) UpdateTheme(id, theme string) (core.Project, error) {
	return s.update(id, func(p *core.Project) {
		p.Theme = strings.TrimSpace(theme)
	})
}

func (s *Store) update(id string, apply func(*core.Project)) (core.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.b.Projects {
		if s.b.Projects[i].ID == id {
			apply(&s.b.Projects[i])
			if err := s.save(); err != nil {
				return core.Project{}, err
			}
			return s.b.Projects[i], nil
		}
	}
	return core.Project{}, core.ErrProjectNotFound
}

// Delete removes a project by id. Deleting the active project leaves the
// current marker dangling; callers that care should clear it.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.b.Projects[:0]
	removed := false
	for _, p := range s.b.Projects {
		if p.ID == id {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	s.b.Projects = kept

	if !removed {
		return false, nil
	}
	if err := s.save(); err != nil {
		return false, err
	}
	return true, nil
}
