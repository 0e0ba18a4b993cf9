// Package reply picks the text a client should display and speak for a
// voicebot response.
//
// Resolve is more permissive than the server-side extraction: it accepts the
// normalized reply, a reply whose raw provider body still needs extracting,
// a bare provider body, or an error body. It never fails; when nothing usable
// is found it echoes what the user said.
package reply

import (
	"regexp"
	"strings"

	"github.com/nadzzz/voicebot/internal/extract"
)

// questionRe matches text that reads like a restated question rather than
// an answer.
var questionRe = regexp.MustCompile(`(?i)^(Tell|What|How|Why|Do|Is)\b`)

// tier resolves one response shape. ok is false when the shape is absent.
type tier func(resp map[string]any, fallback string) (string, bool)

var tiers = []tier{
	normalizedReply,
	candidateText,
	outputText,
	rawOutput,
	rawString,
}

// Resolve returns the best display text for resp, falling back to
// fallbackTranscript (what the user said) when no tier yields text.
func Resolve(resp any, fallbackTranscript string) string {
	obj, ok := resp.(map[string]any)
	if !ok {
		return fallbackTranscript
	}
	for _, t := range tiers {
		if text, ok := t(obj, fallbackTranscript); ok {
			return text
		}
	}
	return fallbackTranscript
}

func normalizedReply(resp map[string]any, _ string) (string, bool) {
	s, _ := resp["reply"].(string)
	s = strings.TrimSpace(s)
	return s, s != ""
}

// candidateText reads Gemini-style candidates from raw or the top level and
// applies the label policy.
func candidateText(resp map[string]any, fallback string) (string, bool) {
	text, ok := extract.CandidateParts(resp["raw"])
	if !ok {
		text, ok = extract.CandidateParts(resp)
	}
	if !ok {
		return "", false
	}

	if strings.Contains(text, extract.AnswerLabel) {
		return extract.AfterFirstAnswer(text), true
	}
	if i := strings.Index(text, extract.TranscriptLabel); i >= 0 {
		after := strings.TrimSpace(text[i+len(extract.TranscriptLabel):])
		// The provider echoed the question back instead of answering it.
		if questionRe.MatchString(after) && fallback != "" {
			return fallback, true
		}
		return after, true
	}
	return text, true
}

func outputText(resp map[string]any, _ string) (string, bool) {
	if text, ok := extract.OutputText(resp["raw"]); ok {
		return text, true
	}
	return extract.OutputText(resp)
}

func rawOutput(resp map[string]any, _ string) (string, bool) {
	return extract.OutputArray(resp["raw"])
}

func rawString(resp map[string]any, _ string) (string, bool) {
	s, _ := resp["raw"].(string)
	s = strings.TrimSpace(s)
	return s, s != ""
}
