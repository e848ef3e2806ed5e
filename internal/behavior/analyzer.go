// Package behavior implements the deterministic behavioral analysis of an
// utterance: no model calls, just lexical and punctuation signals mapped to
// an emotion guess, a display mode and a generation policy.
package behavior

import (
	"regexp"
	"strings"

	"github.com/franklab/frank/internal/core"
)

// French signal lexicons. Closed lists on purpose: the analyzer must stay
// predictable.
var (
	urgentWords = []string{
		"urgent", "vite", "rapidement", "stp", "svp", "maintenant", "asap", "now",
	}
	frustrationWords = []string{
		"marche pas", "fonctionne pas", "encore", "ras le bol",
		"j'en ai marre", "marre", "wtf", "bordel", "putain", "merde",
	}
	confusionWords = []string{
		"j'ai pas compris", "je ne comprends pas", "explique", "détaille", "detaille",
		"comment", "pourquoi", "c'est quoi", "je suis perdu", "ça veut dire quoi",
	}
	motivationWords = []string{
		"let's go", "go", "on y va", "nickel", "parfait", "super", "génial", "genial",
	}
	techHints = []string{
		"traceback", "error", "exception", "stack", "python", "pip", "venv", "import",
		"src/", "requirements", ".py", "json", "lm studio", "router", "orchestrator",
	}
)

var allCapsWord = regexp.MustCompile(`\b[A-Z]{4,}\b`)

// Result is the analyzer's verdict on one utterance.
type Result struct {
	Emotion   string      // canonical label, or "" when none detected
	Intensity float64     // 0..1
	Mode      string      // calme/focus/reflexion/erreur
	Policy    core.Policy // generation parameters for this state
}

// Analyze classifies text. lastError carries an out-of-band failure signal
// (planner or tool error on the previous turn) and takes absolute priority.
func Analyze(text string, lastError string) Result {
	trimmed := strings.TrimSpace(text)
	low := strings.ToLower(trimmed)

	urgent := containsAny(low, urgentWords)
	frustrated := containsAny(low, frustrationWords)
	confused := containsAny(low, confusionWords)
	motivated := containsAny(low, motivationWords)

	pscore := punctuationScore(trimmed)
	tscore := techScore(low)

	intensity := clampMax(0.25+0.55*pscore+0.35*tscore, 1.0)
	if lastError != "" && intensity < 0.75 {
		intensity = 0.75
	}

	var emotion string
	mode := core.ModeCalm

	// Priority-ordered, first match wins.
	switch {
	case lastError != "":
		emotion = core.EmotionFrustrated
		mode = core.ModeError
		if intensity < 0.8 {
			intensity = 0.8
		}
	case frustrated:
		emotion = core.EmotionFrustrated
		mode = core.ModeFocus
		intensity = clampMax(intensity+0.2, 1.0)
	case urgent:
		emotion = core.EmotionStressed
		mode = core.ModeFocus
		intensity = clampMax(intensity+0.15, 1.0)
	case tscore > 0.35:
		mode = core.ModeFocus
	case confused:
		emotion = core.EmotionTired
		mode = core.ModeThinking
	case motivated:
		emotion = core.EmotionMotivated
		mode = core.ModeFocus
	}

	policy := basePolicy(emotion)
	policy.MaxTokens = scaleTokens(policy.MaxTokens, intensity)

	return Result{
		Emotion:   emotion,
		Intensity: intensity,
		Mode:      mode,
		Policy:    policy,
	}
}

// basePolicy returns the per-emotion generation preset.
func basePolicy(emotion string) core.Policy {
	switch emotion {
	case core.EmotionTired:
		return core.Policy{Temperature: 0.2, TopP: 0.45, MaxTokens: 160}
	case core.EmotionStressed:
		return core.Policy{Temperature: 0.28, TopP: 0.55, MaxTokens: 240}
	case core.EmotionFrustrated:
		return core.Policy{Temperature: 0.35, TopP: 0.70, MaxTokens: 360}
	case core.EmotionMotivated:
		return core.Policy{Temperature: 0.60, TopP: 0.90, MaxTokens: 700}
	default:
		return core.Policy{Temperature: 0.45, TopP: 0.80, MaxTokens: 420}
	}
}

// scaleTokens stretches the token budget with intensity, clamped to
// [120, 1200].
func scaleTokens(base int, intensity float64) int {
	tokens := int(float64(base) * (0.65 + 0.7*intensity))
	if tokens < 120 {
		return 120
	}
	if tokens > 1200 {
		return 1200
	}
	return tokens
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// punctuationScore mixes exclamation/question counts, multi-question-mark
// presence and ALL-CAPS words, capped at 1.0.
func punctuationScore(text string) float64 {
	ex := strings.Count(text, "!")
	qu := strings.Count(text, "?")
	multiQ := 0.0
	if qu >= 2 {
		multiQ = 1
	}
	caps := 0.0
	if allCapsWord.MatchString(text) {
		caps = 1
	}
	return clampMax(0.10*float64(ex)+0.12*float64(qu)+0.25*multiQ+0.25*caps, 1.0)
}

// techScore counts jargon hits, 0.12 each, capped at 1.0.
func techScore(low string) float64 {
	score := 0.0
	for _, h := range techHints {
		if strings.Contains(low, h) {
			score += 0.12
		}
	}
	return clampMax(score, 1.0)
}

func clampMax(x, max float64) float64 {
	if x > max {
		return max
	}
	return x
}
