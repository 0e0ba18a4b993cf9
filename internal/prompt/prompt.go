// Package prompt builds the persona instructions sent to the provider.
//
// Every request gets two variants: a primary one with a small output budget
// and a fallback one, used only when the primary answer came back empty or
// truncated, which differs by a trailing instruction sentence and a larger
// budget.
package prompt

import (
	"fmt"
	"strings"
)

// Persona is the first-person character the provider speaks as.
type Persona struct {
	Name        string
	VoiceTraits string
}

// Variant is one fully built prompt plus its generation settings.
type Variant struct {
	Body            string
	MaxOutputTokens int
	Temperature     float64
	TopP            float64
	CandidateCount  int // 0 leaves it unset
}

// Exemplar is a fixed question/answer pair shown to the provider.
type Exemplar struct {
	Question string
	Answer   string
}

// Exemplars are the few-shot examples included in every prompt.
var Exemplars = []Exemplar{
	{
		Question: "Tell me about yourself.",
		Answer: "I'm a final-year CS student who builds practical ML projects and full-stack prototypes. " +
			"I move quickly from idea to working demo. For example, I built a recommendation prototype " +
			"that improved test engagement by 9%. I'm eager to learn and contribute to production systems.",
	},
	{
		Question: "What's your #1 superpower?",
		Answer: "I learn new technologies quickly and turn them into working features. " +
			"I pick up tools fast and ship prototypes that validate ideas.",
	},
}

// DefaultVoiceTraits is used when the persona has none configured.
const DefaultVoiceTraits = "Friendly, confident, concise."

const (
	textFallbackNote  = "Please keep Answer in first-person and do not mention AI."
	audioFallbackNote = "Please provide Transcript and Answer in first-person."
)

// TextPrimary builds the first attempt for a typed question.
func TextPrimary(p Persona, question string) Variant {
	return Variant{
		Body:            textBody(p, question),
		MaxOutputTokens: 400,
		Temperature:     0.18,
		TopP:            0.92,
		CandidateCount:  1,
	}
}

// TextFallback builds the retry for a typed question.
func TextFallback(p Persona, question string) Variant {
	return Variant{
		Body:            textBody(p, question) + "\n\n" + textFallbackNote,
		MaxOutputTokens: 1024,
		Temperature:     0.15,
		TopP:            0.9,
		CandidateCount:  1,
	}
}

// AudioPrimary builds the first attempt for a spoken question. The audio
// itself is the question, so no user text is interpolated.
func AudioPrimary(p Persona) Variant {
	return Variant{
		Body:            audioBody(p),
		MaxOutputTokens: 500,
		Temperature:     0.18,
		TopP:            0.9,
	}
}

// AudioFallback builds the retry for a spoken question.
func AudioFallback(p Persona) Variant {
	return Variant{
		Body:            audioBody(p) + "\n\n" + audioFallbackNote,
		MaxOutputTokens: 1024,
		Temperature:     0.15,
		TopP:            0.9,
	}
}

func personaRules(p Persona) string {
	traits := p.VoiceTraits
	if traits == "" {
		traits = DefaultVoiceTraits
	}
	return strings.Join([]string{
		fmt.Sprintf("Respond as %s, a final-year computer science student (not an AI).", p.Name),
		fmt.Sprintf("Speak in first-person. %s ~25-40 seconds spoken length.", traits),
		"Start with a 1-line summary, then 1-2 supporting sentences, and a short closing line.",
		"Include 1 brief concrete example or metric when helpful.",
		"Never say you are an AI, model, or assistant.",
	}, "\n")
}

func textBody(p Persona, question string) string {
	var sb strings.Builder
	sb.WriteString(personaRules(p))
	sb.WriteString("\n\n")
	for i, ex := range Exemplars {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "Q: %s\nA: %s", ex.Question, ex.Answer)
	}
	fmt.Fprintf(&sb, "\n\nUser question: %s\n\n", strings.TrimSpace(question))
	sb.WriteString("FORMAT:\nTranscript: <user question>\nAnswer: <first-person answer>")
	return sb.String()
}

func audioBody(p Persona) string {
	var sb strings.Builder
	sb.WriteString(personaRules(p))
	sb.WriteString("\n\n")
	for i, ex := range Exemplars {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "Transcript: %s\nAnswer: %s", ex.Question, ex.Answer)
	}
	sb.WriteString("\n\nAnswer the user's spoken question. Output exactly:\n")
	sb.WriteString("Transcript: <short transcript>\nAnswer: <first-person answer>")
	return sb.String()
}
