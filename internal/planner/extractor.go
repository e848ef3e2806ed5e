package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/franklab/frank/internal/core"
)

const extractorSystem = `Tu es un module d'extraction de mémoire personnelle.

Analyse la phrase de l'utilisateur.

Si elle contient une information personnelle durable concernant l'utilisateur,
retourne STRICTEMENT un JSON valide avec ce format EXACT :

{
  "type": "name | location | relation | project | preference | none",
  "key": "string",
  "value": "string"
}

Si aucune information personnelle durable n'est détectée,
retourne EXACTEMENT :

{
  "type": "none",
  "key": "",
  "value": ""
}

Si la phrase contient une émotion exprimée par l'utilisateur
(ex: je suis stressé, fatigué, motivé, frustré, heureux, etc.)
retourne :
{
  "type": "emotion",
  "key": "",
  "value": "emotion_detected"
}`

// PersonalInfo is a single extracted durable fact.
type PersonalInfo struct {
	Type  string `json:"type"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// None reports whether nothing durable was extracted.
func (p PersonalInfo) None() bool {
	return p.Type == "none" || p.Value == ""
}

var noInfo = PersonalInfo{Type: "none"}

// ExtractPersonalInfo asks the model whether the sentence carries a
// durable personal fact. Model deviations never surface as errors: a
// malformed response means nothing gets remembered.
func (a *Agent) ExtractPersonalInfo(ctx context.Context, userText string) PersonalInfo {
	prompt := fmt.Sprintf("Phrase :\n\"\"\"%s\"\"\"", userText)

	raw, err := a.llm.Chat(ctx, extractorSystem, prompt, core.Policy{Temperature: 0.0, TopP: 1.0, MaxTokens: 120})
	if err != nil {
		a.log.Warn("personal info extraction failed: %v", err)
		return noInfo
	}

	blob, err := ExtractJSON(raw)
	if err != nil {
		a.log.Warn("extraction returned no JSON: %s", truncate(raw, 120))
		return noInfo
	}

	var info PersonalInfo
	if err := json.Unmarshal(blob, &info); err != nil {
		a.log.Warn("extraction JSON malformed: %v", err)
		return noInfo
	}

	info.Type = strings.ToLower(strings.TrimSpace(info.Type))
	info.Key = strings.TrimSpace(info.Key)
	info.Value = strings.TrimSpace(info.Value)
	if info.Type == "" {
		info.Type = "none"
	}
	return info
}
