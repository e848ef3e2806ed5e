package profile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/franklab/frank/internal/core"
	"github.com/franklab/frank/internal/decay"
)

// Keyword groups gating conditional context sections.
var (
	locationHints = []string{"météo", "meteo", "où", "ou ", "adresse", "ville", "localisation"}
	projectHints  = []string{"projet", "code", "assistant", "python"}
	relationHints = []string{"femme", "mari", "enfant", "frère", "soeur", "sœur", "parents"}
)

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

type scoredItem struct {
	score float64
	key   string
	item  core.TimedValue
}

func sortByScore(items []scoredItem) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].score > items[j].score })
}

// BuildContext assembles the memory block injected ahead of generation.
// Name and the top-scored project are always included; location, extra
// projects and relations only when the utterance hints at them; the top two
// preferences always; the emotional state only while its 7-day score stays
// above 0.2; pattern trends only when their topic keyword literally appears
// and the count reached 3. Empty memory yields "".
func (s *Store) BuildContext(hintText string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	hint := strings.ToLower(hintText)
	now := s.now()

	needLocation := containsAny(hint, locationHints)
	needProjects := containsAny(hint, projectHints)
	needRelations := containsAny(hint, relationHints)

	var lines []string

	if s.p.Name != nil {
		lines = append(lines, fmt.Sprintf("- Nom: %s", s.p.Name.Value))
	}

	var projects []scoredItem
	for _, p := range s.p.Projects {
		projects = append(projects, scoredItem{score: decay.Score(p, decay.HalfLifeProjects, now), item: p})
	}
	sortByScore(projects)
	if len(projects) > 0 {
		lines = append(lines, fmt.Sprintf("- Projet principal: %s", projects[0].item.Value))
	}
	if needProjects {
		for i := 1; i < len(projects) && i < 3; i++ {
			lines = append(lines, fmt.Sprintf("- Projet: %s", projects[i].item.Value))
		}
	}

	var prefs []scoredItem
	for k, v := range s.p.Preferences {
		prefs = append(prefs, scoredItem{score: decay.Score(v, decay.HalfLifePreferences, now), key: k, item: v})
	}
	sortByScore(prefs)
	for i := 0; i < len(prefs) && i < 2; i++ {
		lines = append(lines, fmt.Sprintf("- Préférence (%s): %s", prefs[i].key, prefs[i].item.Value))
	}

	if needLocation && s.p.Location != nil {
		lines = append(lines, fmt.Sprintf("- Ville: %s", s.p.Location.Value))
	}

	if es := s.p.EmotionalState; es != nil && es.Value != "" {
		asItem := core.TimedValue{Value: es.Value, Timestamp: es.Timestamp, Importance: es.Intensity}
		if decay.Score(asItem, decay.HalfLifeEmotion, now) > 0.2 {
			lines = append(lines, fmt.Sprintf("- État émotionnel récent: %s", es.Value))
		}
	}

	if needRelations {
		var rels []scoredItem
		for k, v := range s.p.Relations {
			rels = append(rels, scoredItem{score: decay.Score(v, decay.HalfLifeRelations, now), key: k, item: v})
		}
		sortByScore(rels)
		for i := 0; i < len(rels) && i < 3; i++ {
			lines = append(lines, fmt.Sprintf("- Relation (%s): %s", rels[i].key, rels[i].item.Value))
		}
	}

	for domain, emos := range s.p.EmotionPatterns {
		if !strings.Contains(hint, domain) {
			continue
		}
		for emo, entry := range emos {
			if entry != nil && entry.Count >= 3 {
				lines = append(lines, fmt.Sprintf(
					"- Tendance émotionnelle: souvent %s quand il parle de %s", emo, domain))
			}
		}
	}

	if len(lines) == 0 {
		return ""
	}
	return "Mémoire utilisateur:\n" + strings.Join(lines, "\n")
}
