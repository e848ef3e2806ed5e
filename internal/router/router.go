// Package router is the per-utterance state machine: it classifies the
// input, captures durable facts, answers project and profile commands
// directly, and otherwise delegates to the planner with sampling
// parameters tuned to the user's emotional state.
package router

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/franklab/frank/internal/behavior"
	"github.com/franklab/frank/internal/core"
	"github.com/franklab/frank/internal/logging"
	"github.com/franklab/frank/internal/planner"
	"github.com/franklab/frank/internal/profile"
	"github.com/franklab/frank/internal/project"
	"github.com/franklab/frank/internal/tools"
)

const answerSystem = `Tu es FRANK, assistant local type JARVIS.
Réponds en français, utile, concis.`

const fallbackMessage = "Désolé, je n'arrive pas à répondre pour le moment."

// StateCallback receives display mode changes for the HUD.
type StateCallback func(mode string, intensity float64)

// Router orchestrates one utterance at a time.
type Router struct {
	llm      planner.ChatClient
	planner  *planner.Agent
	profile  *profile.Store
	projects *project.Store
	registry *tools.Registry
	log      *logging.Logger

	mu        sync.Mutex
	lastError string
}

// New wires the router to its collaborators.
func New(llm planner.ChatClient, agent *planner.Agent, prof *profile.Store, projects *project.Store, registry *tools.Registry) *Router {
	return &Router{
		llm:      llm,
		planner:  agent,
		profile:  prof,
		projects: projects,
		registry: registry,
		log:      logging.WithField("component", "router"),
	}
}

// Handle processes one utterance end to end and returns the reply text.
// Earlier stages short-circuit the rest on a match.
func (r *Router) Handle(ctx context.Context, userText, contextBlock string, retrieved []string, stateCb StateCallback) string {
	txt := strings.TrimSpace(userText)
	low := strings.ToLower(txt)

	r.mu.Lock()
	lastErr := r.lastError
	r.lastError = ""
	r.mu.Unlock()

	// 1) deterministic behavioral read
	beh := behavior.Analyze(txt, lastErr)

	if beh.Emotion == core.EmotionFrustrated {
		r.profile.BumpMetric("frustration_hits", 1)
	}
	if beh.Emotion == core.EmotionStressed {
		r.profile.BumpMetric("urgent_hits", 1)
	}
	if stateCb != nil {
		stateCb(beh.Mode, 0.7)
	}
	if beh.Emotion != "" {
		r.profile.SetEmotion(beh.Emotion, beh.Intensity)
		r.profile.UpdateEmotionPattern(txt, beh.Emotion)
	}
	if beh.Mode != "" {
		r.profile.SetLastMode(beh.Mode)
	}

	// 2) implicit emotion wording the analyzer's lexicons miss
	if emotion, intensity := detectImplicitEmotion(low); emotion != "" {
		r.profile.SetEmotion(emotion, intensity)
		r.profile.UpdateEmotionPattern(txt, emotion)
	}

	// 3) project commands answer without any generation call
	if reply, ok := r.handleProjectCommand(txt, low); ok {
		return reply
	}

	// 4) name declarations and queries, no LLM involved
	if reply, ok := r.handleName(low); ok {
		return reply
	}

	// 5) automatic personal-fact capture
	if reply, ok := r.applyPersonalInfo(ctx, txt); ok {
		return reply
	}

	// 6) profile-aware context assembly
	if pc := r.profile.BuildContext(txt); pc != "" {
		contextBlock = pc + "\n\n" + contextBlock
	}

	// 7) planner decision; malformed output degrades to a plain call
	plan, err := r.planner.Plan(ctx, txt, contextBlock, retrieved)
	if err != nil {
		r.log.Error("planner failed: %v", err)
		return r.generate(ctx, txt, contextBlock, retrieved, core.Policy{Temperature: 0.5, TopP: 0.8, MaxTokens: 400})
	}

	// 8) tool dispatch
	if plan.Type == "tool" {
		result := r.registry.Execute(plan.Tool, plan.Args)

		switch plan.Tool {
		case "screenshot":
			return result
		case "web_search":
			return r.summarizeSearch(ctx, result)
		default:
			return result
		}
	}

	// 9) conversational answer with layered sampling policy
	policy := r.answerPolicy(txt, beh)

	if stateCb != nil {
		stateCb(core.ModeCalm, 0.3)
	}

	if plan.Final != "" {
		return plan.Final
	}
	return r.generate(ctx, txt, contextBlock, retrieved, policy)
}

// generate performs a plain tuned completion. A failing call is spoken
// as an apology and remembered as the error signal for the next turn.
func (r *Router) generate(ctx context.Context, userText, contextBlock string, retrieved []string, policy core.Policy) string {
	var rag strings.Builder
	for _, item := range retrieved {
		rag.WriteString("- ")
		rag.WriteString(item)
		rag.WriteString("\n")
	}

	prompt := fmt.Sprintf(`CONTEXTE:
%s

MÉMOIRE RETROUVÉE (peut contenir des infos partielles, à recouper si besoin):
%s
USER:
%s`, contextBlock, rag.String(), userText)

	reply, err := r.llm.Chat(ctx, answerSystem, prompt, policy)
	if err != nil {
		r.log.Error("generation failed: %v", err)
		r.mu.Lock()
		r.lastError = err.Error()
		r.mu.Unlock()
		return fallbackMessage
	}
	return strings.TrimSpace(reply)
}

// summarizeSearch turns raw search blocks into a clean spoken answer.
func (r *Router) summarizeSearch(ctx context.Context, result string) string {
	prompt := fmt.Sprintf(`Voici des informations récupérées via une recherche web :

%s

Ta tâche :
- Synthétise ces informations
- Supprime les doublons
- Structure clairement la réponse
- Donne une réponse claire et exploitable`, result)

	reply, err := r.llm.Chat(ctx, answerSystem, prompt, core.Policy{Temperature: 0.4, TopP: 0.8, MaxTokens: 600})
	if err != nil {
		r.log.Error("search summarization failed: %v", err)
		return result
	}
	return strings.TrimSpace(reply)
}

// answerPolicy layers sampling parameters: emotion preset from the
// decayed tracker state, then the analyzer's policy when its intensity
// clears the gate, then intensity scaling, then the user's style
// preference.
func (r *Router) answerPolicy(txt string, beh behavior.Result) core.Policy {
	policy := core.Policy{Temperature: 0.5, TopP: 0.8, MaxTokens: 400}

	emotion, intensity, err := r.profile.Emotion()
	if err != nil {
		r.log.Warn("emotion read failed: %v", err)
	}

	if emotion != "" {
		r.profile.UpdateEmotionPattern(txt, emotion)

		switch emotion {
		case core.EmotionTired:
			policy = core.Policy{Temperature: 0.2, TopP: 0.4, MaxTokens: 120}
		case core.EmotionStressed:
			policy = core.Policy{Temperature: 0.3, TopP: 0.5, MaxTokens: 200}
		case core.EmotionFrustrated:
			policy = core.Policy{Temperature: 0.4, TopP: 0.7, MaxTokens: 350}
		case core.EmotionMotivated:
			policy = core.Policy{Temperature: 0.6 + 0.3*intensity, TopP: 0.9, MaxTokens: 700}
		}
	}

	if beh.Intensity >= 0.65 {
		policy = beh.Policy
	}

	policy.MaxTokens = int(float64(policy.MaxTokens) * (0.6 + intensity))

	style := strings.ToLower(r.profile.Preference("style"))
	if style == "" {
		style = strings.ToLower(r.profile.Preference("response_style"))
	}
	switch style {
	case "court":
		policy.MaxTokens = int(float64(policy.MaxTokens) * 0.6)
		if policy.Temperature > 0.45 {
			policy.Temperature = 0.45
		}
	case "détaillé", "detaille", "long":
		policy.MaxTokens = int(float64(policy.MaxTokens) * 1.4)
		if policy.Temperature < 0.5 {
			policy.Temperature = 0.5
		}
	}

	return policy
}
