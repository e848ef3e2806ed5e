package planner

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/franklab/frank/internal/core"
)

var jsonBlock = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractJSON pulls the first JSON object out of raw model output.
// Local models routinely wrap JSON in markdown fences or leak prose
// around it, so this strips fences and falls back to the first
// balanced-looking {...} block.
func ExtractJSON(text string) (json.RawMessage, error) {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	}

	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		if json.Valid([]byte(text)) {
			return json.RawMessage(text), nil
		}
	}

	m := jsonBlock.FindString(text)
	if m == "" {
		return nil, core.ErrNoJSON
	}
	if !json.Valid([]byte(m)) {
		return nil, core.ErrNoJSON
	}
	return json.RawMessage(m), nil
}
