// Package dispatch answers user turns through the provider.
//
// Both paths follow the same two-step plan: a primary prompt with a small
// output budget, then, only when that answer came back empty or truncated
// for length, exactly one fallback prompt with a larger budget. The calls
// are sequential. An empty result after the fallback is not an error; the
// caller receives an empty reply plus a diagnostic.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nadzzz/voicebot/internal/audio"
	"github.com/nadzzz/voicebot/internal/extract"
	"github.com/nadzzz/voicebot/internal/message"
	"github.com/nadzzz/voicebot/internal/metrics"
	"github.com/nadzzz/voicebot/internal/prompt"
	"github.com/nadzzz/voicebot/internal/provider"
)

var (
	// ErrInvalidInput is returned when a text turn carries no question.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfigured is returned by the audio path when no provider
	// credential is configured.
	ErrNotConfigured = errors.New("provider credential not configured")
)

// PlaceholderReply is returned by the text path when no provider credential
// is configured, so the demo can be exercised locally.
const PlaceholderReply = "I'm a final-year computer science student who builds practical ML projects and prototypes. " +
	"I learn new tools quickly and deliver working demos to validate ideas."

const (
	placeholderNote    = "TEMP-FALLBACK: GEMINI_API_KEY missing"
	noTextDiagnostic   = "No text after fallback"
	noAnswerDiagnostic = "No answer in provider text" // text came back but its Answer section is empty
)

// Dispatcher is the turn-answering engine.
type Dispatcher struct {
	persona   prompt.Persona
	generator provider.Generator // nil when no credential is configured
}

// New creates a Dispatcher. A nil generator puts the text path in
// placeholder mode and makes the audio path fail with ErrNotConfigured.
func New(persona prompt.Persona, generator provider.Generator) *Dispatcher {
	return &Dispatcher{persona: persona, generator: generator}
}

// HandleText answers a typed question.
func (d *Dispatcher) HandleText(ctx context.Context, turn *message.Turn) (*message.Reply, error) {
	start := time.Now()
	logger := turnLogger(turn, metrics.PathText)
	defer observeDuration(metrics.PathText, start)

	question := strings.TrimSpace(turn.Text)
	if question == "" {
		return nil, fmt.Errorf("%w: missing text", ErrInvalidInput)
	}

	if d.generator == nil {
		logger.Warn("provider credential missing, returning placeholder reply")
		metrics.Replies.WithLabelValues(metrics.PathText, metrics.ResultPlaceholder).Inc()
		return &message.Reply{
			Reply: PlaceholderReply,
			Raw:   map[string]any{"note": placeholderNote},
		}, nil
	}

	logger.Info("text turn started", "question_length", len(question))
	res, err := d.generate(ctx, logger, metrics.PathText,
		prompt.TextPrimary(d.persona, question),
		prompt.TextFallback(d.persona, question),
		nil)
	if err != nil {
		logger.Error("text turn failed", "error", err)
		return nil, err
	}

	reply := &message.Reply{Raw: res.raw}
	if res.text == "" {
		reply.Diagnostic = &message.Diagnostic{Message: noTextDiagnostic, PrimaryFinish: res.primaryFinish}
	} else {
		reply.Reply = extract.AfterLastAnswer(res.text)
		if reply.Reply == "" {
			reply.Diagnostic = &message.Diagnostic{Message: noAnswerDiagnostic, PrimaryFinish: res.primaryFinish}
		}
	}
	recordReply(logger, metrics.PathText, reply, start)
	return reply, nil
}

// HandleVoice answers a spoken question carried as a base64 payload.
func (d *Dispatcher) HandleVoice(ctx context.Context, turn *message.Turn) (*message.Reply, error) {
	start := time.Now()
	logger := turnLogger(turn, metrics.PathAudio)
	defer observeDuration(metrics.PathAudio, start)

	if d.generator == nil {
		return nil, ErrNotConfigured
	}

	data, err := audio.DecodePayload(turn.AudioBody)
	if err != nil {
		return nil, err
	}

	logger.Info("voice turn started", "audio_base64_length", len(data))
	inline := &provider.InlineData{MimeType: audio.MIMEType, Data: data}
	res, err := d.generate(ctx, logger, metrics.PathAudio,
		prompt.AudioPrimary(d.persona),
		prompt.AudioFallback(d.persona),
		inline)
	if err != nil {
		logger.Error("voice turn failed", "error", err)
		return nil, err
	}

	reply := &message.Reply{Raw: res.raw}
	if res.text == "" {
		reply.SetTranscript("")
		reply.Diagnostic = &message.Diagnostic{Message: noTextDiagnostic, PrimaryFinish: res.primaryFinish}
	} else {
		transcript, answer := extract.SplitTranscriptAnswer(res.text)
		reply.SetTranscript(transcript)
		reply.Reply = answer
		if answer == "" {
			reply.Diagnostic = &message.Diagnostic{Message: noAnswerDiagnostic, PrimaryFinish: res.primaryFinish}
		}
	}
	recordReply(logger, metrics.PathAudio, reply, start)
	return reply, nil
}

// attempt is the outcome of one provider call.
type attempt struct {
	text   string
	raw    any
	finish string
}

// result is the outcome of a whole turn.
type result struct {
	text          string
	raw           any
	primaryFinish string
}

func (d *Dispatcher) generate(ctx context.Context, logger *slog.Logger, path string,
	primary, fallback prompt.Variant, inline *provider.InlineData) (*result, error) {

	first, err := d.call(ctx, logger, path, metrics.VariantPrimary, primary, inline)
	if err != nil {
		return nil, fmt.Errorf("primary call: %w", err)
	}

	reason := escalationReason(first)
	if reason == "" {
		return &result{text: first.text, raw: first.raw, primaryFinish: first.finish}, nil
	}

	metrics.Escalations.WithLabelValues(path, reason).Inc()
	logger.Info("escalating to fallback prompt", "reason", reason, "finish_reason", first.finish)

	second, err := d.call(ctx, logger, path, metrics.VariantFallback, fallback, inline)
	if err != nil {
		return nil, fmt.Errorf("fallback call: %w", err)
	}
	return &result{text: second.text, raw: second.raw, primaryFinish: first.finish}, nil
}

// escalationReason returns why the primary attempt is not final, or "" when
// it is. A short but complete answer is final; a truncated one is not, even
// when it carries text.
func escalationReason(a *attempt) string {
	switch {
	case a.text == "":
		return "empty"
	case a.finish == extract.FinishMaxTokens:
		return "truncated"
	default:
		return ""
	}
}

func (d *Dispatcher) call(ctx context.Context, logger *slog.Logger, path, variant string,
	v prompt.Variant, inline *provider.InlineData) (*attempt, error) {

	parts := []provider.Part{{Text: v.Body}}
	if inline != nil {
		parts = append(parts, provider.Part{InlineData: inline})
	}

	resp, err := d.generator.Generate(ctx, &provider.Request{
		Parts: parts,
		Config: provider.GenerationConfig{
			Temperature:     v.Temperature,
			MaxOutputTokens: v.MaxOutputTokens,
			CandidateCount:  v.CandidateCount,
			TopP:            v.TopP,
		},
	})
	if err != nil {
		metrics.ProviderCalls.WithLabelValues(path, variant, "error").Inc()
		return nil, err
	}
	metrics.ProviderCalls.WithLabelValues(path, variant, "ok").Inc()

	text, shape := extract.Match(resp.Body)
	finish := extract.FinishReason(resp.Body)
	logger.Debug("provider call complete",
		"variant", variant,
		"status", resp.Status,
		"shape", shape,
		"finish_reason", finish,
		"text_length", len(text))

	return &attempt{text: text, raw: resp.Body, finish: finish}, nil
}

func turnLogger(turn *message.Turn, path string) *slog.Logger {
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	return slog.With("request_id", turn.ID, "path", path)
}

func recordReply(logger *slog.Logger, path string, reply *message.Reply, start time.Time) {
	outcome := metrics.ResultAnswered
	if reply.Reply == "" {
		outcome = metrics.ResultEmpty
	}
	metrics.Replies.WithLabelValues(path, outcome).Inc()
	logger.Info("turn complete",
		"result", outcome,
		"reply_length", len(reply.Reply),
		"duration", time.Since(start))
}

func observeDuration(path string, start time.Time) {
	metrics.TurnDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
}
