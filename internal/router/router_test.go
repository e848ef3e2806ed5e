package router

import (
	"context"
	"strings"
	"testing"

	"github.com/franklab/frank/internal/behavior"
	"github.com/franklab/frank/internal/core"
	"github.com/franklab/frank/internal/planner"
	"github.com/franklab/frank/internal/profile"
	"github.com/franklab/frank/internal/project"
	"github.com/franklab/frank/internal/storage"
	"github.com/franklab/frank/internal/tools"
)

// fakeLLM routes on the system prompt so one fake serves the planner,
// the extractor and plain generation.
type fakeLLM struct {
	planReply    string
	extractReply string
	answerReply  string
	answerErr    error

	answerCalls int
	lastPolicy  core.Policy
	lastPrompt  string
}

func (f *fakeLLM) Chat(ctx context.Context, system, user string, policy core.Policy) (string, error) {
	switch {
	case strings.Contains(system, "FRANK Planner"):
		reply := f.planReply
		if reply == "" {
			reply = `{"type":"answer","tool":"none","args":{},"final":""}`
		}
		return reply, nil
	case strings.Contains(system, "extraction de mémoire personnelle"):
		reply := f.extractReply
		if reply == "" {
			reply = `{"type":"none","key":"","value":""}`
		}
		return reply, nil
	default:
		f.answerCalls++
		f.lastPolicy = policy
		f.lastPrompt = user
		if f.answerErr != nil {
			return "", f.answerErr
		}
		if f.answerReply == "" {
			return "réponse générée", nil
		}
		return f.answerReply, nil
	}
}

func testRouter(t *testing.T, llm *fakeLLM) *Router {
	t.Helper()
	db, err := storage.Open(storage.Config{InMemory: true})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	prof, err := profile.NewStore(db)
	if err != nil {
		t.Fatalf("profile.NewStore() error = %v", err)
	}
	projects, err := project.NewStore(db)
	if err != nil {
		t.Fatalf("project.NewStore() error = %v", err)
	}

	registry := tools.NewRegistry()
	return New(llm, planner.NewAgent(llm), prof, projects, registry)
}

func TestHandle_FrustrationBeatsUrgency(t *testing.T) {
	llm := &fakeLLM{}
	r := testRouter(t, llm)

	r.Handle(context.Background(), "ça ne marche pas, c'est urgent!!", "", nil, nil)

	emotion, _, err := r.profile.Emotion()
	if err != nil {
		t.Fatalf("Emotion() error = %v", err)
	}
	if emotion != core.EmotionFrustrated {
		t.Errorf("emotion = %q, want frustré", emotion)
	}

	snap := r.profile.Snapshot()
	if hits, _ := snap.BehaviorMetrics["frustration_hits"].(float64); hits < 1 {
		if hitsInt, _ := snap.BehaviorMetrics["frustration_hits"].(int); hitsInt < 1 {
			t.Errorf("frustration_hits = %v, want >= 1", snap.BehaviorMetrics["frustration_hits"])
		}
	}
}

func TestHandle_NameRoundTrip(t *testing.T) {
	llm := &fakeLLM{}
	r := testRouter(t, llm)
	ctx := context.Background()

	reply := r.Handle(ctx, "je m'appelle marie", "", nil, nil)
	if !strings.Contains(reply, "Marie") {
		t.Errorf("declaration reply = %q, want name inside", reply)
	}
	if llm.answerCalls != 0 {
		t.Error("name declaration must not hit the LLM")
	}

	reply = r.Handle(ctx, "comment je m'appelle", "", nil, nil)
	if !strings.Contains(reply, "Marie") {
		t.Errorf("query reply = %q, want Marie", reply)
	}
}

func TestHandle_NameUnknown(t *testing.T) {
	r := testRouter(t, &fakeLLM{})

	reply := r.Handle(context.Background(), "comment je m'appelle ?", "", nil, nil)
	if reply != "Je ne connais pas encore ton nom." {
		t.Errorf("reply = %q", reply)
	}
}

func TestHandle_ImplicitEmotion(t *testing.T) {
	r := testRouter(t, &fakeLLM{})

	r.Handle(context.Background(), "je suis vraiment épuisé ce soir", "", nil, nil)

	emotion, intensity, _ := r.profile.Emotion()
	if emotion != core.EmotionTired {
		t.Errorf("emotion = %q, want fatigué", emotion)
	}
	if intensity < 0.75 || intensity > 0.85 {
		t.Errorf("intensity = %v, want ~0.8 (0.6 + très/vraiment bonus)", intensity)
	}
}

func TestHandle_ProjectLifecycle(t *testing.T) {
	r := testRouter(t, &fakeLLM{})
	ctx := context.Background()

	reply := r.Handle(ctx, "crée un projet Domotique sur la maison qui pilote les volets", "", nil, nil)
	if reply != "Projet ajouté : Domotique" {
		t.Errorf("create = %q", reply)
	}

	p, ok := r.projects.FindByTitle("Domotique")
	if !ok {
		t.Fatal("project should be stored")
	}
	if p.Theme != "la maison" || p.Description != "pilote les volets" {
		t.Errorf("parsed theme/description = %q/%q", p.Theme, p.Description)
	}

	reply = r.Handle(ctx, "active le projet domotique", "", nil, nil)
	if reply != "Projet actif : Domotique" {
		t.Errorf("activate = %q", reply)
	}

	reply = r.Handle(ctx, "quel est le projet courant ?", "", nil, nil)
	if !strings.Contains(reply, "Domotique") {
		t.Errorf("current = %q", reply)
	}

	reply = r.Handle(ctx, "liste mes projets", "", nil, nil)
	if !strings.Contains(reply, "- Domotique") {
		t.Errorf("list = %q", reply)
	}

	reply = r.Handle(ctx, "supprime le projet actif", "", nil, nil)
	if reply != "Projet supprimé : Domotique" {
		t.Errorf("delete = %q", reply)
	}
	if _, ok := r.projects.Current(); ok {
		t.Error("active marker should be cleared after deleting the active project")
	}
}

func TestHandle_ProjectSearch(t *testing.T) {
	r := testRouter(t, &fakeLLM{})
	ctx := context.Background()

	r.Handle(ctx, "crée un projet FRANK sur l'IA locale", "", nil, nil)

	reply := r.Handle(ctx, "recherche IA", "", nil, nil)
	if !strings.Contains(reply, "FRANK") {
		t.Errorf("search = %q", reply)
	}

	reply = r.Handle(ctx, "recherche fusée", "", nil, nil)
	if reply != "Aucun résultat pour : fusée" {
		t.Errorf("search miss = %q", reply)
	}
}

func TestHandle_ExtractorAppliesFacts(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		wantReply string
		check     func(t *testing.T, r *Router)
	}{
		{
			name:      "location",
			reply:     `{"type":"location","key":"","value":"lyon"}`,
			wantReply: "Très bien, tu habites à Lyon.",
			check: func(t *testing.T, r *Router) {
				if got := r.profile.Location(); got != "Lyon" {
					t.Errorf("Location() = %q", got)
				}
			},
		},
		{
			name:      "relation",
			reply:     `{"type":"relation","key":"Femme","value":"claire"}`,
			wantReply: "Je retiens que ton/ta femme s'appelle Claire.",
			check: func(t *testing.T, r *Router) {
				if got := r.profile.Relation("femme"); got != "Claire" {
					t.Errorf("Relation() = %q", got)
				}
			},
		},
		{
			name:      "style preference normalized",
			reply:     `{"type":"preference","key":"réponses","value":"je préfère les réponses courtes"}`,
			wantReply: "Préférence enregistrée.",
			check: func(t *testing.T, r *Router) {
				if got := r.profile.Preference("style"); got != "court" {
					t.Errorf("Preference(style) = %q", got)
				}
			},
		},
		{
			name:      "emotion",
			reply:     `{"type":"emotion","key":"","value":"stressé"}`,
			wantReply: "Je comprends comment tu te sens.",
			check: func(t *testing.T, r *Router) {
				emotion, intensity, _ := r.profile.Emotion()
				if emotion != core.EmotionStressed {
					t.Errorf("emotion = %q", emotion)
				}
				if intensity < 0.75 || intensity > 0.85 {
					t.Errorf("intensity = %v, want ~0.8", intensity)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testRouter(t, &fakeLLM{extractReply: tt.reply})
			got := r.Handle(context.Background(), "une phrase anodine", "", nil, nil)
			if got != tt.wantReply {
				t.Errorf("reply = %q, want %q", got, tt.wantReply)
			}
			tt.check(t, r)
		})
	}
}

func TestHandle_ToolDispatch(t *testing.T) {
	llm := &fakeLLM{planReply: `{"type":"tool","tool":"weather","args":{"city":"Lyon"},"final":""}`}
	r := testRouter(t, llm)
	r.registry.Register("weather", func(args map[string]interface{}) string {
		return "À Lyon, il fait 21 degrés."
	})

	reply := r.Handle(context.Background(), "météo de Lyon", "", nil, nil)
	if reply != "À Lyon, il fait 21 degrés." {
		t.Errorf("reply = %q", reply)
	}
	if llm.answerCalls != 0 {
		t.Error("raw tool results must be returned verbatim")
	}
}

func TestHandle_WebSearchResummarized(t *testing.T) {
	llm := &fakeLLM{
		planReply:   `{"type":"tool","tool":"web_search","args":{"query":"golang"},"final":""}`,
		answerReply: "Synthèse des résultats.",
	}
	r := testRouter(t, llm)
	r.registry.Register("web_search", func(args map[string]interface{}) string {
		return "Titre: Go\nExtrait: langage"
	})

	reply := r.Handle(context.Background(), "cherche sur le web golang", "", nil, nil)
	if reply != "Synthèse des résultats." {
		t.Errorf("reply = %q", reply)
	}
	if llm.answerCalls != 1 {
		t.Errorf("answerCalls = %d, want 1 summarization call", llm.answerCalls)
	}
	if llm.lastPolicy.Temperature != 0.4 || llm.lastPolicy.MaxTokens != 600 {
		t.Errorf("summarization policy = %+v, want 0.4/600", llm.lastPolicy)
	}
}

func TestHandle_PlannerFinalVerbatim(t *testing.T) {
	llm := &fakeLLM{planReply: `{"type":"answer","tool":"none","args":{},"final":"Salut, ça va très bien !"}`}
	r := testRouter(t, llm)

	reply := r.Handle(context.Background(), "comment ça va", "", nil, nil)
	if reply != "Salut, ça va très bien !" {
		t.Errorf("reply = %q", reply)
	}
	if llm.answerCalls != 0 {
		t.Error("planner final should be returned without another call")
	}
}

func TestHandle_PlannerFailureFallsBack(t *testing.T) {
	llm := &fakeLLM{planReply: "pas du JSON du tout", answerReply: "réponse de secours"}
	r := testRouter(t, llm)

	reply := r.Handle(context.Background(), "raconte-moi une histoire", "", nil, nil)
	if reply != "réponse de secours" {
		t.Errorf("reply = %q", reply)
	}
	// the fallback call is untuned
	if llm.lastPolicy.Temperature != 0.5 || llm.lastPolicy.MaxTokens != 400 {
		t.Errorf("fallback policy = %+v, want 0.5/400", llm.lastPolicy)
	}
}

func TestHandle_GenerationFailureDegrades(t *testing.T) {
	llm := &fakeLLM{answerErr: core.ErrLLMUnavailable}
	r := testRouter(t, llm)

	reply := r.Handle(context.Background(), "raconte-moi une histoire", "", nil, nil)
	if reply != fallbackMessage {
		t.Errorf("reply = %q, want fallback message", reply)
	}

	r.mu.Lock()
	remembered := r.lastError
	r.mu.Unlock()
	if remembered == "" {
		t.Error("failed generation should arm the error signal for the next turn")
	}
}

func TestHandle_StateCallback(t *testing.T) {
	r := testRouter(t, &fakeLLM{})

	var modes []string
	cb := func(mode string, intensity float64) { modes = append(modes, mode) }

	r.Handle(context.Background(), "bonjour", "", nil, cb)

	if len(modes) != 2 || modes[0] != core.ModeCalm || modes[1] != core.ModeCalm {
		t.Errorf("modes = %v, want [calme calme]", modes)
	}
}

func TestHandle_ContextInjection(t *testing.T) {
	llm := &fakeLLM{}
	r := testRouter(t, llm)
	ctx := context.Background()

	r.profile.SetName("bruno")
	r.Handle(ctx, "raconte-moi quelque chose", "bloc externe", nil, nil)

	if !strings.Contains(llm.lastPrompt, "Bruno") {
		t.Error("profile context should be injected into the prompt")
	}
	if !strings.Contains(llm.lastPrompt, "bloc externe") {
		t.Error("caller context should survive injection")
	}
}

func TestAnswerPolicy_PreferenceScaling(t *testing.T) {
	r := testRouter(t, &fakeLLM{})
	r.profile.SetEmotion(core.EmotionMotivated, 0.8)

	beh := behavior.Result{Intensity: 0.3, Policy: core.Policy{}}

	without := r.answerPolicy("allons-y", beh)

	r.profile.SetPreference("style", "court", 0.9)
	with := r.answerPolicy("allons-y", beh)

	if with.MaxTokens >= without.MaxTokens {
		t.Errorf("court tokens = %d, want < %d", with.MaxTokens, without.MaxTokens)
	}
	if with.Temperature > 0.45 {
		t.Errorf("court temperature = %v, want <= 0.45", with.Temperature)
	}
}

func TestAnswerPolicy_BehaviorOverrideGate(t *testing.T) {
	r := testRouter(t, &fakeLLM{})
	r.profile.SetEmotion(core.EmotionTired, 0.9)

	// below the gate the emotion preset wins
	weak := behavior.Result{Intensity: 0.5, Policy: core.Policy{Temperature: 0.9, TopP: 0.9, MaxTokens: 1000}}
	p := r.answerPolicy("texte", weak)
	if p.Temperature != 0.2 {
		t.Errorf("temperature = %v, want tired preset 0.2", p.Temperature)
	}

	// at or above the gate the analyzer's policy takes over
	strong := behavior.Result{Intensity: 0.7, Policy: core.Policy{Temperature: 0.9, TopP: 0.9, MaxTokens: 1000}}
	p = r.answerPolicy("texte", strong)
	if p.Temperature != 0.9 {
		t.Errorf("temperature = %v, want analyzer override 0.9", p.Temperature)
	}
}

func TestDetectImplicitEmotion(t *testing.T) {
	tests := []struct {
		input         string
		wantEmotion   string
		wantIntensity float64
	}{
		{"j'ai trop de travail en ce moment", core.EmotionStressed, 0.6},
		{"je suis un peu crevé", core.EmotionTired, 0.4},
		{"c'est extrêmement génial", core.EmotionHappy, 0.9},
		{"let's go objectif atteint", core.EmotionMotivated, 0.6},
		{"rien de spécial", "", 0},
	}

	for _, tt := range tests {
		emotion, intensity := detectImplicitEmotion(tt.input)
		if emotion != tt.wantEmotion {
			t.Errorf("detectImplicitEmotion(%q) emotion = %q, want %q", tt.input, emotion, tt.wantEmotion)
		}
		if diff := intensity - tt.wantIntensity; diff > 0.001 || diff < -0.001 {
			t.Errorf("detectImplicitEmotion(%q) intensity = %v, want %v", tt.input, intensity, tt.wantIntensity)
		}
	}
}
