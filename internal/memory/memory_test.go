package memory

import (
	"context"
	"strings"
	"testing"

	"github.com/franklab/frank/internal/core"
)

func TestShortTerm_EvictsOldest(t *testing.T) {
	m := NewShortTerm(2)
	m.Add("un", "1")
	m.Add("deux", "2")
	m.Add("trois", "3")

	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	out := m.Render()
	if strings.Contains(out, "User: un") {
		t.Error("oldest turn should be evicted")
	}
	if !strings.Contains(out, "User: deux") || !strings.Contains(out, "User: trois") {
		t.Errorf("Render() = %q, missing recent turns", out)
	}
}

func TestShortTerm_RenderEmpty(t *testing.T) {
	m := NewShortTerm(5)
	if got := m.Render(); got != "" {
		t.Errorf("Render() = %q, want empty", got)
	}
}

func TestShortTerm_RenderFormat(t *testing.T) {
	m := NewShortTerm(5)
	m.Add("bonjour", "Salut !")

	out := m.Render()
	if !strings.HasPrefix(out, "--- Conversation récente ---\n") {
		t.Errorf("Render() = %q, missing header", out)
	}
	if !strings.Contains(out, "User: bonjour\nAssistant: Salut !") {
		t.Errorf("Render() = %q, wrong turn layout", out)
	}
	if !strings.Contains(out, "--- Fin ---") {
		t.Errorf("Render() = %q, missing footer", out)
	}
}

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Chat(ctx context.Context, system, user string, policy core.Policy) (string, error) {
	return f.reply, f.err
}

func TestWriter_Decide(t *testing.T) {
	tests := []struct {
		name      string
		userText  string
		reply     string
		err       error
		wantWrite bool
	}{
		{
			name:      "confident durable fact",
			userText:  "je travaille sur un assistant vocal nommé FRANK",
			reply:     `{"should_write":true,"confidence":0.9,"memory_text":"Travaille sur FRANK, assistant vocal local","tags":["project"]}`,
			wantWrite: true,
		},
		{
			name:     "below confidence threshold",
			userText: "je crois que j'aime le café",
			reply:    `{"should_write":true,"confidence":0.5,"memory_text":"Aime le café","tags":["preference"]}`,
		},
		{
			name:     "model declines",
			userText: "bonjour",
			reply:    `{"should_write":false,"confidence":0.9,"memory_text":"","tags":[]}`,
		},
		{
			name:     "question blocked even when model is confident",
			userText: "est-ce que je travaille sur FRANK ?",
			reply:    `{"should_write":true,"confidence":0.95,"memory_text":"Travaille sur FRANK","tags":["project"]}`,
		},
		{
			name:     "empty memory text",
			userText: "ok",
			reply:    `{"should_write":true,"confidence":0.9,"memory_text":"  ","tags":[]}`,
		},
		{
			name:     "malformed response",
			userText: "je travaille sur FRANK",
			reply:    "je ne peux pas répondre en JSON",
		},
		{
			name:     "llm unreachable",
			userText: "je travaille sur FRANK",
			err:      core.ErrLLMUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWriter(&fakeLLM{reply: tt.reply, err: tt.err})
			d := w.Decide(context.Background(), tt.userText, "réponse")
			if d.ShouldWrite != tt.wantWrite {
				t.Errorf("ShouldWrite = %v, want %v", d.ShouldWrite, tt.wantWrite)
			}
			if tt.wantWrite && d.MemoryText == "" {
				t.Error("accepted decision should carry memory text")
			}
		})
	}
}
