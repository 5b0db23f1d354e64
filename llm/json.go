package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON strips Markdown code-fence decoration from model output.
// Models regularly wrap JSON replies in ```json fences even when told
// not to; this peels them off and returns the inner payload.
func ExtractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// AskJSON sends the prompt pair and unmarshals the (possibly fenced)
// JSON reply into out. The raw reply is returned alongside any parse
// error so callers can fall back to wrapping the text themselves.
func AskJSON(ctx context.Context, client Client, systemPrompt, userPrompt string, out any) (string, error) {
	raw, err := client.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", err
	}

	cleaned := ExtractJSON(raw)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return raw, fmt.Errorf("invalid model response format: %w", err)
	}
	return raw, nil
}
