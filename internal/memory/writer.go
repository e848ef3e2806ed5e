package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/franklab/frank/internal/core"
	"github.com/franklab/frank/internal/logging"
	"github.com/franklab/frank/internal/planner"
)

// minConfidence below which the model's opinion is not trusted.
const minConfidence = 0.55

const writerSystem = `Tu es un filtre de mémoire (memory writer) pour un assistant.
Décide si l'on doit enregistrer une information DURABLE sur l'utilisateur.
IMPORTANT:
- NE JAMAIS créer/ajouter un 'projet' ou un fait nouveau si l'utilisateur pose une QUESTION.
- NE PAS stocker de contenu éphémère (salutations, petites confirmations, demandes de rappel).
- Stocker uniquement: préférences stables, identité, contraintes, projets explicitement annoncés, décisions durables.
- Si tu n'es pas sûr, réponds should_write=false.
Tu dois répondre UNIQUEMENT en JSON valide, sans texte autour.`

// Decision is the writer's verdict on one exchange.
type Decision struct {
	ShouldWrite bool     `json:"should_write"`
	Confidence  float64  `json:"confidence"`
	MemoryText  string   `json:"memory_text"`
	Tags        []string `json:"tags"`
}

// Writer asks the LLM whether an exchange carries a durable memory.
type Writer struct {
	llm planner.ChatClient
	log *logging.Logger
}

// NewWriter creates a memory writer.
func NewWriter(llm planner.ChatClient) *Writer {
	return &Writer{
		llm: llm,
		log: logging.WithField("component", "memwriter"),
	}
}

var noWrite = Decision{}

// Decide gates one exchange. Model deviations mean nothing is stored.
// Questions never produce memories, whatever the model says.
func (w *Writer) Decide(ctx context.Context, userText, assistantText string) Decision {
	user := fmt.Sprintf(`USER: %s
ASSISTANT: %s

Réponds au format:
{
  "should_write": true|false,
  "confidence": 0.0-1.0,
  "memory_text": "texte court du souvenir à stocker (1-2 lignes, pas de dialogue)",
  "tags": ["preference"|"project"|"identity"|"constraint"|"other"]
}`, userText, assistantText)

	raw, err := w.llm.Chat(ctx, writerSystem, user, core.Policy{Temperature: 0.0, TopP: 1.0, MaxTokens: 220})
	if err != nil {
		w.log.Warn("memory writer call failed: %v", err)
		return noWrite
	}

	blob, err := planner.ExtractJSON(raw)
	if err != nil {
		return noWrite
	}

	var d Decision
	if err := json.Unmarshal(blob, &d); err != nil {
		return noWrite
	}

	d.MemoryText = strings.TrimSpace(d.MemoryText)
	if !d.ShouldWrite || d.Confidence < minConfidence || d.MemoryText == "" {
		return Decision{Confidence: d.Confidence}
	}

	// questions never create facts, even when the model is confident
	if strings.HasSuffix(strings.TrimSpace(userText), "?") {
		return Decision{Confidence: d.Confidence}
	}

	return d
}
