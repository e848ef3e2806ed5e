// Package profile implements FRANK's durable user memory: identity facts,
// relations, projects, preferences, behavior metrics and the emotional state
// tracker. All facts are importance-weighted, time-decayed records.
package profile

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/franklab/frank/internal/core"
	"github.com/franklab/frank/internal/decay"
	"github.com/franklab/frank/internal/logging"
	"github.com/franklab/frank/internal/storage"
)

// Default importances per field class.
const (
	importanceName       = 1.0
	importanceLocation   = 0.9
	importanceRelation   = 0.9
	importanceProject    = 0.8
	importancePreference = 0.7
)

// Emotional-state tuning.
const (
	emotionHalfLifeHours = 3.0
	reinforceWindow      = 30 * time.Second
	reinforceBoost       = 0.10
	patternCooldown      = 60 * time.Second
	patternDiscountAfter = 14.0 // days
	historyCap           = 200
)

// patternKeywords are the topic keywords tracked by the emotion-pattern
// ledger.
var patternKeywords = []string{
	"travail", "boulot", "projet", "code", "assistant", "lm studio", "python",
}

// invalidProjectValues are placeholder answers that must never become
// remembered projects.
var invalidProjectValues = map[string]bool{
	"inconnu": true, "aucun": true, "aucune": true, "rien": true,
	"à personne": true, "personne": true, "je ne sais pas": true,
	"non": true, "n/a": true, "none": true,
}

// canonicalEmotions maps label prefixes onto canonical emotion labels.
var canonicalEmotions = []struct {
	prefix    string
	canonical string
}{
	{"stress", core.EmotionStressed},
	{"fatigu", core.EmotionTired},
	{"frustr", core.EmotionFrustrated},
	{"motiv", core.EmotionMotivated},
	{"heureu", core.EmotionHappy},
}

// Store owns the persisted profile document. It is safe for concurrent use:
// the router, the reminder loop and the dashboard all hold the same instance.
type Store struct {
	db  *storage.DB
	mu  sync.Mutex
	p   *core.Profile
	now func() time.Time
	log *logging.Logger
}

// NewStore loads the profile document (writing the default structure if
// absent), migrates legacy plain-string fields into timed records, and
// persists the repaired result.
func NewStore(db *storage.DB) (*Store, error) {
	s := &Store{
		db:  db,
		now: time.Now,
		log: logging.WithField("store", "profile"),
	}

	var raw json.RawMessage
	err := db.LoadDocument(storage.DocProfile, &raw)
	switch {
	case errors.Is(err, core.ErrDocumentNotFound):
		s.p = core.NewProfile()
	case err != nil:
		return nil, err
	default:
		s.p = migrate(raw, s.nowUnix(), s.log)
	}

	s.dedupProjects()
	if err := s.save(); err != nil {
		return nil, err
	}
	return s, nil
}

// save persists the full profile. Callers must hold s.mu (or be the
// constructor, before the store is shared).
func (s *Store) save() error {
	return s.db.SaveDocument(storage.DocProfile, s.p)
}

func (s *Store) nowUnix() float64 {
	return float64(s.now().UnixNano()) / 1e9
}

func (s *Store) newItem(value string, importance float64) core.TimedValue {
	return core.TimedValue{
		Value:      value,
		Timestamp:  s.nowUnix(),
		Importance: core.Clamp01(importance),
	}
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(v string) string {
	runes := []rune(strings.ToLower(v))
	if len(runes) == 0 {
		return v
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// ---------------------------------------------------------------------------
// Identity facts
// ---------------------------------------------------------------------------

// SetName remembers the user's name. Inputs shorter than two characters are
// ignored.
func (s *Store) SetName(name string) error {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < 2 {
		return core.ErrValueTooShort
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	item := s.newItem(capitalize(name), importanceName)
	s.p.Name = &item
	return s.save()
}

// Name returns the stored name, or "" when unknown.
func (s *Store) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.p.Name == nil {
		return ""
	}
	return s.p.Name.Value
}

// SetLocation remembers where the user lives.
func (s *Store) SetLocation(location string) error {
	location = strings.TrimSpace(location)
	if len([]rune(location)) < 2 {
		return core.ErrValueTooShort
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	item := s.newItem(capitalize(location), importanceLocation)
	s.p.Location = &item
	return s.save()
}

// Location returns the stored location, or "".
func (s *Store) Location() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.p.Location == nil {
		return ""
	}
	return s.p.Location.Value
}

// SetRelation remembers a named relation ("femme", "frère", ...). Keys are
// lowercased.
func (s *Store) SetRelation(relationType, name string) error {
	relationType = strings.ToLower(strings.TrimSpace(relationType))
	name = strings.TrimSpace(name)
	if relationType == "" || len([]rune(name)) < 2 {
		return core.ErrValueTooShort
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.Relations[relationType] = s.newItem(capitalize(name), importanceRelation)
	return s.save()
}

// Relation returns the stored relation name for a type, or "".
func (s *Store) Relation(relationType string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.p.Relations[strings.ToLower(strings.TrimSpace(relationType))]
	if !ok {
		return ""
	}
	return item.Value
}

// AddProject appends a project fact, deduplicated case-insensitively.
// Placeholder answers ("aucun", "je ne sais pas", ...) are dropped.
func (s *Store) AddProject(project string) error {
	project = strings.TrimSpace(project)
	if len([]rune(project)) < 3 {
		return core.ErrValueTooShort
	}
	if invalidProjectValues[strings.ToLower(project)] {
		return core.ErrValueTooShort
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	low := strings.ToLower(project)
	for _, p := range s.p.Projects {
		if strings.ToLower(strings.TrimSpace(p.Value)) == low {
			return nil // already known
		}
	}
	s.p.Projects = append(s.p.Projects, s.newItem(project, importanceProject))
	return s.save()
}

// SetPreference remembers a keyed preference. Keys are lowercased.
func (s *Store) SetPreference(key, value string, importance float64) error {
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)
	if key == "" || value == "" {
		return core.ErrValueTooShort
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.Preferences[key] = s.newItem(value, importance)
	return s.save()
}

// Preference returns the stored preference value for key, or "".
func (s *Store) Preference(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.p.Preferences[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return ""
	}
	return item.Value
}

// ---------------------------------------------------------------------------
// Behavior metrics
// ---------------------------------------------------------------------------

// BumpMetric increments a named behavior counter.
func (s *Store) BumpMetric(key string, inc int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := 0
	switch v := s.p.BehaviorMetrics[key].(type) {
	case int:
		cur = v
	case float64:
		cur = int(v)
	}
	s.p.BehaviorMetrics[key] = cur + inc
	return s.save()
}

// SetLastMode records the latest behavioral display mode.
func (s *Store) SetLastMode(mode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.BehaviorMetrics["last_mode"] = strings.ToLower(strings.TrimSpace(mode))
	s.p.BehaviorMetrics["last_mode_ts"] = s.nowUnix()
	return s.save()
}

// ---------------------------------------------------------------------------
// Maintenance
// ---------------------------------------------------------------------------

// Cleanup prunes projects and preferences whose decayed score fell below the
// stale threshold.
func (s *Store) Cleanup() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()

	kept := s.p.Projects[:0]
	for _, p := range s.p.Projects {
		if decay.Score(p, decay.HalfLifeProjects, now) > decay.StaleThreshold {
			kept = append(kept, p)
		}
	}
	s.p.Projects = kept

	for k, v := range s.p.Preferences {
		if decay.Score(v, decay.HalfLifePreferences, now) < decay.StaleThreshold {
			delete(s.p.Preferences, k)
		}
	}
	return s.save()
}

func (s *Store) dedupProjects() {
	seen := make(map[string]bool)
	dedup := s.p.Projects[:0]
	for _, p := range s.p.Projects {
		val := strings.ToLower(strings.TrimSpace(p.Value))
		if val == "" || seen[val] {
			continue
		}
		seen[val] = true
		dedup = append(dedup, p)
	}
	s.p.Projects = dedup
}

// Snapshot returns a deep copy of the profile for read-only views (the
// memory dashboard). Mutating the copy never touches the store.
func (s *Store) Snapshot() *core.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, _ := json.Marshal(s.p)
	out := core.NewProfile()
	_ = json.Unmarshal(body, out)
	return out
}
