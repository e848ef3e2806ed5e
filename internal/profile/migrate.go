package profile

import (
	"encoding/json"
	"strings"

	"github.com/franklab/frank/internal/core"
	"github.com/franklab/frank/internal/logging"
)

// migrate coerces a raw profile document into the current schema. Legacy
// documents stored plain strings where timed records now live; those are
// wrapped one-way into TimedValue so only the structured form exists going
// forward. Unrecognized or empty values become nil/absent.
func migrate(raw json.RawMessage, now float64, log *logging.Logger) *core.Profile {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		log.Warn("unreadable profile document, starting fresh: %v", err)
		return core.NewProfile()
	}

	p := core.NewProfile()

	if item := coerceItem(doc["name"], importanceName, now); item != nil {
		p.Name = item
	}
	if item := coerceItem(doc["location"], importanceLocation, now); item != nil {
		p.Location = item
	}

	var rels map[string]json.RawMessage
	if json.Unmarshal(doc["relations"], &rels) == nil {
		for k, v := range rels {
			if item := coerceItem(v, importanceRelation, now); item != nil {
				p.Relations[strings.ToLower(k)] = *item
			}
		}
	}

	var projs []json.RawMessage
	if json.Unmarshal(doc["projects"], &projs) == nil {
		for _, v := range projs {
			if item := coerceItem(v, importanceProject, now); item != nil {
				p.Projects = append(p.Projects, *item)
			}
		}
	}

	var prefs map[string]json.RawMessage
	if json.Unmarshal(doc["preferences"], &prefs) == nil {
		for k, v := range prefs {
			if item := coerceItem(v, importancePreference, now); item != nil {
				p.Preferences[strings.ToLower(k)] = *item
			}
		}
	}

	json.Unmarshal(doc["emotion_patterns"], &p.EmotionPatterns)
	json.Unmarshal(doc["behavior_metrics"], &p.BehaviorMetrics)
	json.Unmarshal(doc["emotional_state"], &p.EmotionalState)
	json.Unmarshal(doc["emotion_history"], &p.EmotionHistory)

	if p.EmotionPatterns == nil {
		p.EmotionPatterns = make(map[string]map[string]*core.PatternEntry)
	}
	if p.BehaviorMetrics == nil {
		p.BehaviorMetrics = make(map[string]interface{})
	}
	if len(p.EmotionHistory) > historyCap {
		p.EmotionHistory = p.EmotionHistory[len(p.EmotionHistory)-historyCap:]
	}
	return p
}

// coerceItem handles the legacy "value may be a string or a structured
// record" shape. Strings become fresh records at the class importance,
// stamped with the migration time. Structured records pass through with
// importance clamped.
func coerceItem(raw json.RawMessage, importance, now float64) *core.TimedValue {
	if len(raw) == 0 {
		return nil
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		str = strings.TrimSpace(str)
		if str == "" {
			return nil
		}
		return &core.TimedValue{Value: str, Timestamp: now, Importance: core.Clamp01(importance)}
	}

	var item core.TimedValue
	if err := json.Unmarshal(raw, &item); err != nil || strings.TrimSpace(item.Value) == "" {
		return nil
	}
	item.Importance = core.Clamp01(item.Importance)
	return &item
}
