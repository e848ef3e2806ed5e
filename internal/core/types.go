// Package core defines the fundamental types for FRANK.
// Every durable fact the assistant knows about its user flows through these.
package core

// -----------------------------------------------------------------------------
// TIMED VALUE - The fundamental unit of durable memory
// -----------------------------------------------------------------------------

// TimedValue wraps a remembered fact with its write time and weight.
// Importance is clamped to [0,1] at write time; Timestamp is always set by
// the store, never supplied by callers.
type TimedValue struct {
	Value      string  `json:"value"`
	Timestamp  float64 `json:"timestamp"`  // unix seconds
	Importance float64 `json:"importance"` // 0..1
}

// -----------------------------------------------------------------------------
// PROFILE - The aggregate of everything known about the user
// -----------------------------------------------------------------------------

// EmotionalState is the single current-emotion slot. An empty Value means no
// current emotion.
type EmotionalState struct {
	Value     string  `json:"value"`
	Intensity float64 `json:"intensity"` // 0..1
	Timestamp float64 `json:"timestamp"`
}

// EmotionEvent is one entry in the capped emotion history log.
type EmotionEvent struct {
	Emotion   string  `json:"emotion"`
	Intensity float64 `json:"intensity"`
	Timestamp float64 `json:"timestamp"`
}

// PatternEntry counts how often an emotion co-occurred with a topic keyword.
type PatternEntry struct {
	Count    int     `json:"count"`
	LastSeen float64 `json:"last_seen"`
}

// Profile is the aggregate root of user memory. It is persisted as a single
// document; mutate it only through the profile store's setters.
type Profile struct {
	Name            *TimedValue                         `json:"name"`
	Location        *TimedValue                         `json:"location"`
	Relations       map[string]TimedValue               `json:"relations"`   // keys lowercase
	Projects        []TimedValue                        `json:"projects"`    // deduplicated by value, case-insensitive
	Preferences     map[string]TimedValue               `json:"preferences"` // keys lowercase
	EmotionPatterns map[string]map[string]*PatternEntry `json:"emotion_patterns"`
	BehaviorMetrics map[string]interface{}              `json:"behavior_metrics"`
	EmotionalState  *EmotionalState                     `json:"emotional_state,omitempty"`
	EmotionHistory  []EmotionEvent                      `json:"emotion_history,omitempty"`
}

// NewProfile returns the default empty structure written on first load.
func NewProfile() *Profile {
	return &Profile{
		Relations:       make(map[string]TimedValue),
		Projects:        []TimedValue{},
		Preferences:     make(map[string]TimedValue),
		EmotionPatterns: make(map[string]map[string]*PatternEntry),
		BehaviorMetrics: make(map[string]interface{}),
	}
}

// -----------------------------------------------------------------------------
// EMOTIONS & MODES - Canonical labels
// -----------------------------------------------------------------------------

// Canonical emotion labels. Free-form labels are normalized onto these by
// prefix match before storage.
const (
	EmotionStressed   = "stressé"
	EmotionTired      = "fatigué"
	EmotionFrustrated = "frustré"
	EmotionMotivated  = "motivé"
	EmotionHappy      = "heureux"
)

// Behavioral display modes driving HUD feedback.
const (
	ModeCalm     = "calme"
	ModeFocus    = "focus"
	ModeThinking = "reflexion"
	ModeError    = "erreur"
)

// Policy is the tuple of generation parameters chosen for a reply.
type Policy struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	MaxTokens   int     `json:"max_tokens"`
}

// -----------------------------------------------------------------------------
// AGENDA & PROJECTS - Ledger records
// -----------------------------------------------------------------------------

// AgendaEvent is one scheduled event. Date is "YYYY-MM-DD" and Time "HH:MM"
// after normalization.
type AgendaEvent struct {
	Title     string `json:"title"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	CreatedAt string `json:"created_at"` // ISO 8601
}

// Key returns the composite identity used for reminder de-duplication.
func (e AgendaEvent) Key() string {
	return e.Date + " " + e.Time + " " + e.Title
}

// Project is one tracked project.
type Project struct {
	ID          string `json:"id"` // uuid
	Title       string `json:"title"`
	Description string `json:"description"`
	Theme       string `json:"theme"`
	CreatedAt   string `json:"created_at"` // ISO 8601
}

// ProjectBook is the persisted project aggregate. CurrentProjectID is a weak
// reference: deleting the referenced project leaves it dangling until the
// caller clears it.
type ProjectBook struct {
	Projects         []Project `json:"projects"`
	CurrentProjectID string    `json:"current_project_id,omitempty"`
}

// Clamp01 bounds x to [0,1].
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
