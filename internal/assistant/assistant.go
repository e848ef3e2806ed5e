// Package assistant ties one conversational turn together: retrieval,
// routing, short-term buffering, emotion history, and the post-answer
// memory write decision.
package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/franklab/frank/internal/logging"
	"github.com/franklab/frank/internal/memory"
	"github.com/franklab/frank/internal/profile"
	"github.com/franklab/frank/internal/router"
)

// stopPhrases end a session when they appear anywhere in the utterance.
var stopPhrases = []string{
	"quit frank",
	"stop frank",
	"au revoir frank",
	"frank quitte",
}

// acknowledgements never deserve a vector search.
var acknowledgements = map[string]struct{}{
	"ok":        {},
	"oui":       {},
	"non":       {},
	"merci":     {},
	"d'accord":  {},
	"ça marche": {},
}

// Handler processes one utterance. *router.Router is the production
// implementation.
type Handler interface {
	Handle(ctx context.Context, userText, contextBlock string, retrieved []string, stateCb router.StateCallback) string
}

// Recall is the long-term vector memory surface.
type Recall interface {
	Add(ctx context.Context, text string, metadata map[string]interface{}) error
	Search(ctx context.Context, query string, k uint64, minScore float32) []string
}

// Gate decides whether a turn leaves a durable memory behind.
type Gate interface {
	Decide(ctx context.Context, userText, assistantText string) memory.Decision
}

type Config struct {
	RAGTopK     uint64
	RAGMinScore float32
}

func DefaultConfig() Config {
	return Config{
		RAGTopK:     memory.DefaultTopK,
		RAGMinScore: memory.DefaultMinScore,
	}
}

// Assistant runs the per-turn pipeline. Long-term memory and the write
// gate are optional; without them the assistant still answers, it just
// forgets.
type Assistant struct {
	cfg     Config
	router  Handler
	profile *profile.Store
	short   *memory.ShortTerm
	long    Recall
	gate    Gate
	log     *logging.Logger
	now     func() time.Time
}

func New(cfg Config, h Handler, prof *profile.Store, short *memory.ShortTerm, long Recall, gate Gate) *Assistant {
	if cfg.RAGTopK == 0 {
		cfg.RAGTopK = memory.DefaultTopK
	}
	if cfg.RAGMinScore == 0 {
		cfg.RAGMinScore = memory.DefaultMinScore
	}
	return &Assistant{
		cfg:     cfg,
		router:  h,
		profile: prof,
		short:   short,
		long:    long,
		gate:    gate,
		log:     logging.WithField("component", "assistant"),
		now:     time.Now,
	}
}

// IsStopPhrase reports whether the utterance asks to end the session.
func (a *Assistant) IsStopPhrase(text string) bool {
	low := strings.ToLower(strings.TrimSpace(text))
	for _, phrase := range stopPhrases {
		if strings.Contains(low, phrase) {
			return true
		}
	}
	return false
}

// skipRetrieval filters inputs too thin to anchor a vector search.
func skipRetrieval(text string) bool {
	low := strings.ToLower(strings.TrimSpace(text))
	if len([]rune(low)) < 6 {
		return true
	}
	_, ack := acknowledgements[low]
	return ack
}

// HandleTurn processes one utterance end to end and returns the reply.
func (a *Assistant) HandleTurn(ctx context.Context, userText string, stateCb router.StateCallback) string {
	txt := strings.TrimSpace(userText)
	if txt == "" {
		return ""
	}

	var retrieved []string
	if a.long != nil && !skipRetrieval(txt) {
		retrieved = a.long.Search(ctx, txt, a.cfg.RAGTopK, a.cfg.RAGMinScore)
	}

	reply := a.router.Handle(ctx, txt, a.short.Render(), retrieved, stateCb)

	if err := a.profile.RecordEmotionHistory(); err != nil {
		a.log.Warn("emotion history: %v", err)
	}
	a.short.Add(txt, reply)
	a.remember(ctx, txt, reply)

	return reply
}

// remember asks the gate whether this exchange is worth keeping, and
// writes the distilled fact to long-term memory when it is.
func (a *Assistant) remember(ctx context.Context, userText, reply string) {
	if a.gate == nil || a.long == nil {
		return
	}

	decision := a.gate.Decide(ctx, userText, reply)
	if !decision.ShouldWrite {
		return
	}

	metadata := map[string]interface{}{
		"role":       "memory",
		"kind":       "fact",
		"ts":         a.now().Format("2006-01-02T15:04:05"),
		"confidence": decision.Confidence,
	}
	if len(decision.Tags) > 0 {
		metadata["tags"] = strings.Join(decision.Tags, ",")
	}

	if err := a.long.Add(ctx, decision.MemoryText, metadata); err != nil {
		a.log.Warn("memory write: %v", err)
	}
}
