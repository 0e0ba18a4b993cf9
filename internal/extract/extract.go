// Package extract pulls a flat answer string out of provider responses.
//
// The provider's response schema is not under our control and has been
// observed in several shapes. Each known shape is handled by a Matcher; the
// matchers are tried in order and the first one producing non-empty text
// wins. A matcher never panics: a structural mismatch is reported as "no
// match" through its boolean result.
package extract

import (
	"encoding/json"
	"strings"
)

// FinishMaxTokens is the finish reason the provider reports when it stopped
// because the output cap was reached.
const FinishMaxTokens = "MAX_TOKENS"

// Matcher extracts text from one known response shape.
type Matcher struct {
	// Name identifies the shape (used in logs and tests).
	Name string

	// Match returns the trimmed text and true when the shape is present and
	// carries non-empty text.
	Match func(v any) (string, bool)
}

// Matchers is the ordered chain used by Text.
var Matchers = []Matcher{
	{Name: "candidates", Match: CandidateParts},
	{Name: "outputText", Match: OutputText},
	{Name: "output", Match: OutputArray},
}

// Text returns the first non-empty text any matcher finds, or "".
func Text(v any) string {
	text, _ := Match(v)
	return text
}

// Match is like Text but also reports which matcher succeeded.
func Match(v any) (string, string) {
	for _, m := range Matchers {
		if text, ok := m.Match(v); ok {
			return text, m.Name
		}
	}
	return "", ""
}

// CandidateParts joins candidates[0].content.parts[].text with newlines.
func CandidateParts(v any) (string, bool) {
	cand, ok := firstCandidate(v)
	if !ok {
		return "", false
	}
	content, ok := cand["content"].(map[string]any)
	if !ok {
		return "", false
	}
	parts, ok := content["parts"].([]any)
	if !ok {
		return "", false
	}
	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		// Parts without text (e.g. inline data) still contribute a line,
		// matching how the provider's own clients render them.
		text, _ := field(p, "text").(string)
		texts = append(texts, text)
	}
	return nonEmpty(strings.Join(texts, "\n"))
}

// OutputText reads a top-level outputText string.
func OutputText(v any) (string, bool) {
	s, _ := field(v, "outputText").(string)
	return nonEmpty(s)
}

// OutputArray flattens a top-level output array. String elements are taken
// as they are; object elements contribute their content, which may be a
// list of {text} fragments, a single string, or a single {text} object.
func OutputArray(v any) (string, bool) {
	items, ok := field(v, "output").([]any)
	if !ok || len(items) == 0 {
		return "", false
	}
	var texts []string
	for _, item := range items {
		switch it := item.(type) {
		case string:
			texts = append(texts, it)
		case map[string]any:
			texts = append(texts, flattenContent(it["content"])...)
		}
	}
	return nonEmpty(strings.Join(texts, "\n"))
}

func flattenContent(c any) []string {
	switch content := c.(type) {
	case string:
		return []string{content}
	case []any:
		var out []string
		for _, frag := range content {
			if text, ok := field(frag, "text").(string); ok && text != "" {
				out = append(out, text)
			}
		}
		return out
	case map[string]any:
		if text, ok := content["text"].(string); ok && text != "" {
			return []string{text}
		}
	}
	return nil
}

// FinishReason returns candidates[0].finishReason, falling back to a
// top-level finishReason. It returns "" when neither is present.
func FinishReason(v any) string {
	if cand, ok := firstCandidate(v); ok {
		if fr, ok := cand["finishReason"].(string); ok && fr != "" {
			return fr
		}
	}
	fr, _ := field(v, "finishReason").(string)
	return fr
}

// Decode parses a provider body. Anything that is not valid JSON decodes to
// an empty object so that it simply yields no text.
func Decode(body []byte) any {
	var v any
	if err := json.Unmarshal(body, &v); err != nil || v == nil {
		return map[string]any{}
	}
	return v
}

func firstCandidate(v any) (map[string]any, bool) {
	cands, ok := field(v, "candidates").([]any)
	if !ok || len(cands) == 0 {
		return nil, false
	}
	cand, ok := cands[0].(map[string]any)
	return cand, ok
}

// field returns obj[key] when v is a JSON object, nil otherwise.
func field(v any, key string) any {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return obj[key]
}

func nonEmpty(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}
