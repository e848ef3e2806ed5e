package api

import (
	"net/http"
	"sort"
	"time"

	"github.com/franklab/frank/internal/core"
	"github.com/franklab/frank/internal/decay"
)

// scoredFact is one dashboard row: a remembered value with its computed
// age and current relevance.
type scoredFact struct {
	Key        string  `json:"key,omitempty"`
	Value      string  `json:"value"`
	Importance float64 `json:"importance"`
	AgeDays    float64 `json:"age_days"`
	Score      float64 `json:"score"`
}

func newScoredFact(key string, item core.TimedValue, halfLife float64, now time.Time) scoredFact {
	return scoredFact{
		Key:        key,
		Value:      item.Value,
		Importance: item.Importance,
		AgeDays:    decay.AgeDays(item.Timestamp, now),
		Score:      decay.Score(item, halfLife, now),
	}
}

// handleDashboardProfile exposes every profile section with computed decay
// scores, for the read-only memory dashboard.
func (s *Server) handleDashboardProfile(w http.ResponseWriter, r *http.Request) {
	p := s.profile.Snapshot()
	now := time.Now()

	result := map[string]interface{}{}

	if p.Name != nil {
		result["name"] = newScoredFact("", *p.Name, decay.HalfLifeIdentity, now)
	}
	if p.Location != nil {
		result["location"] = newScoredFact("", *p.Location, decay.HalfLifeIdentity, now)
	}

	relations := make([]scoredFact, 0, len(p.Relations))
	for k, v := range p.Relations {
		relations = append(relations, newScoredFact(k, v, decay.HalfLifeRelations, now))
	}
	sort.Slice(relations, func(i, j int) bool { return relations[i].Score > relations[j].Score })
	result["relations"] = relations

	projects := make([]scoredFact, 0, len(p.Projects))
	for _, v := range p.Projects {
		projects = append(projects, newScoredFact("", v, decay.HalfLifeProjects, now))
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Score > projects[j].Score })
	result["projects"] = projects

	preferences := make([]scoredFact, 0, len(p.Preferences))
	for k, v := range p.Preferences {
		preferences = append(preferences, newScoredFact(k, v, decay.HalfLifePreferences, now))
	}
	sort.Slice(preferences, func(i, j int) bool { return preferences[i].Score > preferences[j].Score })
	result["preferences"] = preferences

	if emotion, intensity, err := s.profile.Emotion(); err == nil && emotion != "" {
		result["emotional_state"] = map[string]interface{}{
			"value":     emotion,
			"intensity": intensity,
		}
	}

	result["behavior_metrics"] = p.BehaviorMetrics
	result["emotion_patterns"] = p.EmotionPatterns

	s.respondJSON(w, http.StatusOK, result)
}

// handleDashboardEmotions returns the capped emotion history, oldest first.
func (s *Server) handleDashboardEmotions(w http.ResponseWriter, r *http.Request) {
	history := s.profile.EmotionHistory()
	if history == nil {
		history = []core.EmotionEvent{}
	}
	s.respondJSON(w, http.StatusOK, history)
}
