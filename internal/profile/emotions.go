package profile

import (
	"strings"
	"time"

	"github.com/franklab/frank/internal/core"
	"github.com/franklab/frank/internal/decay"
)

// normalizeEmotion maps a free-form label onto the canonical table by prefix
// match. Unknown labels pass through unchanged.
func normalizeEmotion(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	for _, e := range canonicalEmotions {
		if strings.HasPrefix(label, e.prefix) {
			return e.canonical
		}
	}
	return label
}

// SetEmotion records a detected emotion. Re-detecting the same canonical
// emotion within 30 seconds is reinforcement: intensity climbs by 0.10
// (capped at 1.0) and only the timestamp refreshes. Anything else replaces
// the slot.
func (s *Store) SetEmotion(label string, intensity float64) error {
	emotion := normalizeEmotion(label)
	if emotion == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowUnix()
	cur := s.p.EmotionalState

	if cur != nil && cur.Value == emotion {
		age := time.Duration((now - cur.Timestamp) * float64(time.Second))
		if age >= 0 && age < reinforceWindow {
			cur.Intensity = core.Clamp01(cur.Intensity + reinforceBoost)
			cur.Timestamp = now
			return s.save()
		}
	}

	s.p.EmotionalState = &core.EmotionalState{
		Value:     emotion,
		Intensity: core.Clamp01(intensity),
		Timestamp: now,
	}
	return s.save()
}

// Emotion returns the current emotion with its live, decayed intensity
// (half-life 3 hours). Reading prunes: once intensity falls under 0.15 the
// slot is cleared and ("", 0) returned. Otherwise the decayed intensity is
// written back so repeated reads converge.
func (s *Store) Emotion() (string, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.p.EmotionalState
	if cur == nil || cur.Value == "" {
		return "", 0, nil
	}

	intensity := decay.IntensityAt(cur.Intensity, cur.Timestamp, emotionHalfLifeHours, s.now())
	if intensity < decay.ExpiredIntensity {
		s.p.EmotionalState = &core.EmotionalState{}
		return "", 0, s.save()
	}

	cur.Intensity = intensity
	return cur.Value, intensity, s.save()
}

// UpdateEmotionPattern links the detected emotion to the first topic keyword
// found in the utterance. A (keyword, emotion) pair observed again within 60
// seconds only refreshes last_seen; a pair unseen for over 14 days has its
// count discounted by 20% before incrementing. At most one topic is processed
// per call, which keeps one excited sentence from inflating several trends at
// once.
func (s *Store) UpdateEmotionPattern(text, emotion string) error {
	emotion = strings.ToLower(strings.TrimSpace(emotion))
	if emotion == "" {
		return nil
	}
	low := strings.ToLower(text)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowUnix()
	for _, k := range patternKeywords {
		if !strings.Contains(low, k) {
			continue
		}

		domain := s.p.EmotionPatterns[k]
		if domain == nil {
			domain = make(map[string]*core.PatternEntry)
			s.p.EmotionPatterns[k] = domain
		}
		entry := domain[emotion]
		if entry == nil {
			entry = &core.PatternEntry{}
			domain[emotion] = entry
		}

		if now-entry.LastSeen < patternCooldown.Seconds() && entry.LastSeen > 0 {
			entry.LastSeen = now
			return s.save()
		}

		if entry.LastSeen > 0 && (now-entry.LastSeen)/86400.0 > patternDiscountAfter {
			entry.Count = int(float64(entry.Count) * 0.8)
			if entry.Count < 0 {
				entry.Count = 0
			}
		}

		entry.Count++
		entry.LastSeen = now
		return s.save()
	}
	return nil
}

// RecordEmotionHistory snapshots the current decayed emotion into the capped
// history log for timeline visualization. A cleared slot records nothing.
func (s *Store) RecordEmotionHistory() error {
	emotion, intensity, err := s.Emotion()
	if err != nil || emotion == "" {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.p.EmotionHistory = append(s.p.EmotionHistory, core.EmotionEvent{
		Emotion:   strings.ToUpper(emotion),
		Intensity: intensity,
		Timestamp: s.nowUnix(),
	})
	if len(s.p.EmotionHistory) > historyCap {
		s.p.EmotionHistory = s.p.EmotionHistory[len(s.p.EmotionHistory)-historyCap:]
	}
	return s.save()
}

// EmotionHistory returns a copy of the history log, oldest first.
func (s *Store) EmotionHistory() []core.EmotionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.EmotionEvent, len(s.p.EmotionHistory))
	copy(out, s.p.EmotionHistory)
	return out
}
