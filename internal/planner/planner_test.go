package planner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/franklab/frank/internal/core"
)

type fakeLLM struct {
	reply  string
	err    error
	system string
	user   string
	policy core.Policy
}

func (f *fakeLLM) Chat(ctx context.Context, system, user string, policy core.Policy) (string, error) {
	f.system = system
	f.user = user
	f.policy = policy
	return f.reply, f.err
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "pure JSON",
			input: `{"type":"answer"}`,
			want:  `{"type":"answer"}`,
		},
		{
			name:  "markdown fence",
			input: "```json\n{\"type\":\"tool\"}\n```",
			want:  `{"type":"tool"}`,
		},
		{
			name:  "bare fence",
			input: "```\n{\"type\":\"tool\"}\n```",
			want:  `{"type":"tool"}`,
		},
		{
			name:  "prose around the object",
			input: "Voici ma décision : {\"type\":\"answer\",\"final\":\"ok\"} voilà.",
			want:  `{"type":"answer","final":"ok"}`,
		},
		{
			name:    "no JSON at all",
			input:   "je ne sais pas",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			if tt.wantErr {
				if !errors.Is(err, core.ErrNoJSON) {
					t.Errorf("error = %v, want ErrNoJSON", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("ExtractJSON() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAgent_Plan_Tool(t *testing.T) {
	llm := &fakeLLM{reply: `{"type":"TOOL","tool":"Weather","args":{"city":"Lyon"},"final":""}`}
	agent := NewAgent(llm)

	plan, err := agent.Plan(context.Background(), "météo de Lyon", "", nil)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	if plan.Type != "tool" || plan.Tool != "weather" {
		t.Errorf("plan = %s/%s, want tool/weather", plan.Type, plan.Tool)
	}
	if plan.Args["city"] != "Lyon" {
		t.Errorf("args = %v, want city=Lyon", plan.Args)
	}
	if llm.policy.Temperature != 0.0 {
		t.Errorf("planner temperature = %v, want 0", llm.policy.Temperature)
	}
}

func TestAgent_Plan_DefaultsToAnswer(t *testing.T) {
	llm := &fakeLLM{reply: "```json\n{\"final\": \"Salut !\"}\n```"}
	agent := NewAgent(llm)

	plan, err := agent.Plan(context.Background(), "bonjour", "", nil)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	if plan.Type != "answer" {
		t.Errorf("Type = %q, want answer", plan.Type)
	}
	if plan.Tool != "none" {
		t.Errorf("Tool = %q, want none", plan.Tool)
	}
	if plan.Args == nil {
		t.Error("Args should never be nil")
	}
	if plan.Final != "Salut !" {
		t.Errorf("Final = %q", plan.Final)
	}
}

func TestAgent_Plan_IncludesContextAndRetrieved(t *testing.T) {
	llm := &fakeLLM{reply: `{"type":"answer","final":"ok"}`}
	agent := NewAgent(llm)

	_, err := agent.Plan(context.Background(), "de quoi on parlait ?",
		"Mémoire utilisateur:\n- Nom: Bruno", []string{"tu travailles sur FRANK"})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	if !strings.Contains(llm.user, "Nom: Bruno") {
		t.Error("context block missing from prompt")
	}
	if !strings.Contains(llm.user, "- tu travailles sur FRANK") {
		t.Error("retrieved lines missing from prompt")
	}
	if !strings.Contains(llm.user, "de quoi on parlait ?") {
		t.Error("user text missing from prompt")
	}
}

func TestAgent_Plan_SchemaError(t *testing.T) {
	llm := &fakeLLM{reply: "désolé, je ne peux pas répondre en JSON"}
	agent := NewAgent(llm)

	_, err := agent.Plan(context.Background(), "bonjour", "", nil)
	if !errors.Is(err, core.ErrPlannerSchema) {
		t.Errorf("error = %v, want ErrPlannerSchema", err)
	}
}

func TestAgent_Plan_LLMError(t *testing.T) {
	llm := &fakeLLM{err: core.ErrLLMUnavailable}
	agent := NewAgent(llm)

	_, err := agent.Plan(context.Background(), "bonjour", "", nil)
	if !errors.Is(err, core.ErrLLMUnavailable) {
		t.Errorf("error = %v, want ErrLLMUnavailable", err)
	}
}

func TestAgent_ExtractPersonalInfo(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
		want  PersonalInfo
	}{
		{
			name:  "relation extracted",
			reply: `{"type":"relation","key":"femme","value":"Claire"}`,
			want:  PersonalInfo{Type: "relation", Key: "femme", Value: "Claire"},
		},
		{
			name:  "emotion extracted",
			reply: `{"type":"Emotion","key":"","value":"stressé"}`,
			want:  PersonalInfo{Type: "emotion", Value: "stressé"},
		},
		{
			name:  "nothing durable",
			reply: `{"type":"none","key":"","value":""}`,
			want:  noInfo,
		},
		{
			name:  "model leaks prose",
			reply: "no JSON here sorry",
			want:  noInfo,
		},
		{
			name: "llm down",
			err:  core.ErrLLMUnavailable,
			want: noInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent := NewAgent(&fakeLLM{reply: tt.reply, err: tt.err})
			got := agent.ExtractPersonalInfo(context.Background(), "peu importe")
			if got != tt.want {
				t.Errorf("ExtractPersonalInfo() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPersonalInfo_None(t *testing.T) {
	if !(PersonalInfo{Type: "none"}).None() {
		t.Error("type none should report None")
	}
	if !(PersonalInfo{Type: "name", Value: ""}).None() {
		t.Error("empty value should report None")
	}
	if (PersonalInfo{Type: "name", Value: "Bruno"}).None() {
		t.Error("real fact should not report None")
	}
}
