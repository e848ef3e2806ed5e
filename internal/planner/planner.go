// Package planner decides how a user request should be handled:
// delegated to a tool or answered conversationally. It also hosts the
// personal-info extractor used for automatic memory capture.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/franklab/frank/internal/core"
	"github.com/franklab/frank/internal/logging"
)

const plannerSystem = `Tu es FRANK Planner.

Tu dois décider si la demande nécessite :
- une action outil (météo, recherche web, capture écran, agenda, dashboard mémoire)
- une réponse conversationnelle simple

Réponds UNIQUEMENT en JSON valide.

Schéma strict :

{
  "type": "tool" | "answer",
  "tool": "weather" | "web_search" | "screenshot" | "memory_dashboard" | "agenda" | "none",
  "args": {},
  "final": "réponse courte à dire à l'utilisateur"
}

RÈGLES IMPORTANTES :

1. Les phrases conversationnelles comme :
   - "comment ça va"
   - "qui es-tu"
   - "comment je m'appelle"
   sont TOUJOURS type="answer".

2. Si l'utilisateur demande explicitement une recherche internet ("cherche sur le web", "recherche web", "google", "sur internet"),
utilise type="tool", tool="web_search" et args={"query":"..."}.

3. Si l'utilisateur demande la météo (mots-clés: "météo", "quel temps", "température", "il fait combien"),
utilise type="tool", tool="weather" et args={"city":"<ville>"}.
Si aucune ville n'est donnée, mets "Paris".

4. Si l'utilisateur dit "screenshot", "capture écran", "prends une capture",
utilise type="tool", tool="screenshot" et args={}.

5. Si l'utilisateur demande d'afficher la mémoire (mots-clés: "dashboard mémoire", "montre ta mémoire", "affiche la mémoire"),
utilise type="tool", tool="memory_dashboard" et args={}.

6. Si l'utilisateur parle de rendez-vous, planning, agenda, réunion, événement,
utilise tool="agenda".

Pour ajouter :
args={
    "action": "add",
    "title": "<titre court>",
    "date": "<expression naturelle EXACTE extraite>",
    "time": "<heure EXACTE extraite>"
}

Pour lister : args={"action": "list"}.
Pour supprimer : args={"action": "delete", "title": "<titre exact>"}.

IMPORTANT :
- Ne calcule jamais la date.
- Ne convertis jamais en format YYYY-MM-DD.
- Garde les mots exacts comme "demain", "vendredi", "dans 2 jours".
- Si aucune heure n'est donnée, ne mets rien.
- Ne jamais inventer une date.

7. Si la commande est ambiguë, type="answer".`

// Plan is the planner's structured decision.
type Plan struct {
	Type  string                 `json:"type"`
	Tool  string                 `json:"tool"`
	Args  map[string]interface{} `json:"args"`
	Final string                 `json:"final"`
}

// ChatClient is the LLM surface the planner needs.
type ChatClient interface {
	Chat(ctx context.Context, system, user string, policy core.Policy) (string, error)
}

// Agent wraps an LLM client into a planning step.
type Agent struct {
	llm ChatClient
	log *logging.Logger
}

// NewAgent creates a planner agent.
func NewAgent(llm ChatClient) *Agent {
	return &Agent{
		llm: llm,
		log: logging.WithField("component", "planner"),
	}
}

// Plan asks the model for a routing decision. Sampling is cold: the
// decision must be reproducible, not creative.
func (a *Agent) Plan(ctx context.Context, userText, contextBlock string, retrieved []string) (*Plan, error) {
	var rag strings.Builder
	for _, r := range retrieved {
		rag.WriteString("- ")
		rag.WriteString(r)
		rag.WriteString("\n")
	}

	prompt := fmt.Sprintf(`CONTEXTE:
%s

RAPPELS (retrieved):
%s
DEMANDE UTILISATEUR:
%s

Décide l'action selon le schéma JSON.`, contextBlock, rag.String(), userText)

	raw, err := a.llm.Chat(ctx, plannerSystem, prompt, core.Policy{Temperature: 0.0, TopP: 1.0, MaxTokens: 300})
	if err != nil {
		return nil, err
	}

	blob, err := ExtractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrPlannerSchema, truncate(raw, 200))
	}

	var plan Plan
	if err := json.Unmarshal(blob, &plan); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrPlannerSchema, err)
	}

	plan.Type = strings.ToLower(strings.TrimSpace(plan.Type))
	plan.Tool = strings.ToLower(strings.TrimSpace(plan.Tool))
	if plan.Type == "" {
		plan.Type = "answer"
	}
	if plan.Tool == "" {
		plan.Tool = "none"
	}
	if plan.Args == nil {
		plan.Args = map[string]interface{}{}
	}
	plan.Final = strings.TrimSpace(plan.Final)

	return &plan, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
