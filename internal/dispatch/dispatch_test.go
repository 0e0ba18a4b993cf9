package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/voicebot/internal/audio"
	"github.com/nadzzz/voicebot/internal/extract"
	"github.com/nadzzz/voicebot/internal/message"
	"github.com/nadzzz/voicebot/internal/prompt"
	"github.com/nadzzz/voicebot/internal/provider"
)

// fakeGenerator replays canned provider bodies in order and records requests.
type fakeGenerator struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	requests  []*provider.Request
}

func (f *fakeGenerator) Generate(_ context.Context, req *provider.Request) (*provider.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := len(f.requests)
	f.requests = append(f.requests, req)
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i >= len(f.responses) {
		return &provider.Response{Status: 200, Body: map[string]any{}}, nil
	}
	return &provider.Response{Status: 200, Body: extract.Decode([]byte(f.responses[i]))}, nil
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

var persona = prompt.Persona{Name: "Venu"}

func candidate(text, finish string) string {
	quoted, _ := json.Marshal(text)
	return `{"candidates":[{"content":{"parts":[{"text":` + string(quoted) + `}]},"finishReason":"` + finish + `"}]}`
}

func TestHandleTextNoEscalation(t *testing.T) {
	gen := &fakeGenerator{responses: []string{candidate("Transcript: Who are you?\nAnswer: I build things.", "STOP")}}
	d := New(persona, gen)

	reply, err := d.HandleText(context.Background(), &message.Turn{Text: "Who are you?"})
	require.NoError(t, err)

	assert.Equal(t, 1, gen.calls())
	assert.Equal(t, "I build things.", reply.Reply)
	assert.Nil(t, reply.Transcript)
	assert.Nil(t, reply.Diagnostic)
	assert.NotNil(t, reply.Raw)

	req := gen.requests[0]
	require.Len(t, req.Parts, 1)
	assert.Contains(t, req.Parts[0].Text, "User question: Who are you?")
	assert.Equal(t, 400, req.Config.MaxOutputTokens)
	assert.Equal(t, 1, req.Config.CandidateCount)
}

func TestHandleTextShortAnswerIsFinal(t *testing.T) {
	gen := &fakeGenerator{responses: []string{candidate("Yes.", "STOP")}}
	d := New(persona, gen)

	reply, err := d.HandleText(context.Background(), &message.Turn{Text: "Can you code?"})
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls())
	assert.Equal(t, "Yes.", reply.Reply)
}

func TestHandleTextTruncatedEscalates(t *testing.T) {
	gen := &fakeGenerator{responses: []string{
		candidate("Answer: I am a final-year", extract.FinishMaxTokens),
		candidate("Answer: I am a final-year student.", "STOP"),
	}}
	d := New(persona, gen)

	reply, err := d.HandleText(context.Background(), &message.Turn{Text: "Tell me about yourself"})
	require.NoError(t, err)

	require.Equal(t, 2, gen.calls())
	assert.Equal(t, "I am a final-year student.", reply.Reply)
	assert.Equal(t, 1024, gen.requests[1].Config.MaxOutputTokens)
	assert.Contains(t, gen.requests[1].Parts[0].Text, "do not mention AI")
}

func TestHandleTextEmptyEscalates(t *testing.T) {
	gen := &fakeGenerator{responses: []string{`{}`, `{"outputText":"Answer: from fallback"}`}}
	d := New(persona, gen)

	reply, err := d.HandleText(context.Background(), &message.Turn{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls())
	assert.Equal(t, "from fallback", reply.Reply)
}

func TestHandleTextEmptyAfterFallback(t *testing.T) {
	gen := &fakeGenerator{responses: []string{
		`{"candidates":[{"finishReason":"MAX_TOKENS"}]}`,
		`{"candidates":[{"finishReason":"SAFETY"}]}`,
	}}
	d := New(persona, gen)

	reply, err := d.HandleText(context.Background(), &message.Turn{Text: "hi"})
	require.NoError(t, err)

	assert.Equal(t, 2, gen.calls())
	assert.Equal(t, "", reply.Reply)
	require.NotNil(t, reply.Diagnostic)
	assert.Equal(t, "No text after fallback", reply.Diagnostic.Message)
	assert.Equal(t, "MAX_TOKENS", reply.Diagnostic.PrimaryFinish)
}

func TestHandleTextEmptyAnswerSection(t *testing.T) {
	gen := &fakeGenerator{responses: []string{candidate("Transcript: q\nAnswer:", "STOP")}}
	d := New(persona, gen)

	reply, err := d.HandleText(context.Background(), &message.Turn{Text: "q"})
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls())
	assert.Equal(t, "", reply.Reply)
	require.NotNil(t, reply.Diagnostic)
	assert.Equal(t, "No answer in provider text", reply.Diagnostic.Message)
	assert.Equal(t, "STOP", reply.Diagnostic.PrimaryFinish)
}

func TestHandleTextTakesLastAnswerMarker(t *testing.T) {
	gen := &fakeGenerator{responses: []string{candidate("Answer: example\nTranscript: q\nAnswer: the real one", "STOP")}}
	d := New(persona, gen)

	reply, err := d.HandleText(context.Background(), &message.Turn{Text: "q"})
	require.NoError(t, err)
	assert.Equal(t, "the real one", reply.Reply)
}

func TestHandleTextWithoutMarkerUsesWholeText(t *testing.T) {
	gen := &fakeGenerator{responses: []string{candidate("  I ship prototypes fast.  ", "STOP")}}
	d := New(persona, gen)

	reply, err := d.HandleText(context.Background(), &message.Turn{Text: "q"})
	require.NoError(t, err)
	assert.Equal(t, "I ship prototypes fast.", reply.Reply)
}

func TestHandleTextInvalidInput(t *testing.T) {
	gen := &fakeGenerator{}
	d := New(persona, gen)

	for _, text := range []string{"", "   \n"} {
		_, err := d.HandleText(context.Background(), &message.Turn{Text: text})
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
	assert.Zero(t, gen.calls())
}

func TestHandleTextPlaceholderWithoutCredential(t *testing.T) {
	d := New(persona, nil)

	reply, err := d.HandleText(context.Background(), &message.Turn{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, PlaceholderReply, reply.Reply)
	assert.Equal(t, map[string]any{"note": "TEMP-FALLBACK: GEMINI_API_KEY missing"}, reply.Raw)
}

func TestHandleTextProviderFailure(t *testing.T) {
	gen := &fakeGenerator{errs: []error{errors.New("connection refused")}}
	d := New(persona, gen)

	_, err := d.HandleText(context.Background(), &message.Turn{Text: "hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "primary call")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1, gen.calls())
}

func TestHandleTextFallbackFailure(t *testing.T) {
	gen := &fakeGenerator{
		responses: []string{`{}`},
		errs:      []error{nil, errors.New("reset by peer")},
	}
	d := New(persona, gen)

	_, err := d.HandleText(context.Background(), &message.Turn{Text: "hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallback call")
	assert.Equal(t, 2, gen.calls())
}

func TestHandleTextAssignsID(t *testing.T) {
	d := New(persona, nil)
	turn := &message.Turn{Text: "hello"}
	_, err := d.HandleText(context.Background(), turn)
	require.NoError(t, err)
	assert.NotEmpty(t, turn.ID)
}

func TestHandleVoice(t *testing.T) {
	gen := &fakeGenerator{responses: []string{candidate("Transcript: What do you do?\nAnswer: I build things.", "STOP")}}
	d := New(persona, gen)

	reply, err := d.HandleVoice(context.Background(), &message.Turn{AudioBody: "data:audio/webm;base64,QUJD"})
	require.NoError(t, err)

	assert.Equal(t, 1, gen.calls())
	assert.Equal(t, "What do you do?", reply.TranscriptText())
	assert.Equal(t, "I build things.", reply.Reply)

	req := gen.requests[0]
	require.Len(t, req.Parts, 2)
	assert.Equal(t, &provider.InlineData{MimeType: audio.MIMEType, Data: "QUJD"}, req.Parts[1].InlineData)
	assert.Equal(t, 500, req.Config.MaxOutputTokens)
}

func TestHandleVoiceTruncatedEscalates(t *testing.T) {
	gen := &fakeGenerator{responses: []string{
		candidate("Transcript: Hi\nAnswer: I am", extract.FinishMaxTokens),
		candidate("Transcript: Hi\nAnswer: I am done.", "STOP"),
	}}
	d := New(persona, gen)

	reply, err := d.HandleVoice(context.Background(), &message.Turn{AudioBody: "QUJD"})
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls())
	assert.Equal(t, "I am done.", reply.Reply)
	assert.Equal(t, "Hi", reply.TranscriptText())
	assert.NotNil(t, gen.requests[1].Parts[1].InlineData)
}

func TestHandleVoiceWithoutAnswerMarker(t *testing.T) {
	gen := &fakeGenerator{responses: []string{candidate("Transcript: only the question", "STOP")}}
	d := New(persona, gen)

	reply, err := d.HandleVoice(context.Background(), &message.Turn{AudioBody: "QUJD"})
	require.NoError(t, err)
	require.NotNil(t, reply.Transcript)
	assert.Equal(t, "", reply.TranscriptText())
	assert.Equal(t, "", reply.Reply)
	require.NotNil(t, reply.Diagnostic)
	assert.Equal(t, "No answer in provider text", reply.Diagnostic.Message)
}

func TestHandleVoiceEmptyAnswerSection(t *testing.T) {
	gen := &fakeGenerator{responses: []string{candidate("Transcript: What do you do?\nAnswer:", "STOP")}}
	d := New(persona, gen)

	reply, err := d.HandleVoice(context.Background(), &message.Turn{AudioBody: "QUJD"})
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls())
	assert.Equal(t, "What do you do?", reply.TranscriptText())
	assert.Equal(t, "", reply.Reply)
	require.NotNil(t, reply.Diagnostic)
	assert.Equal(t, "No answer in provider text", reply.Diagnostic.Message)
	assert.Equal(t, "STOP", reply.Diagnostic.PrimaryFinish)
}

func TestHandleVoiceEmptyAfterFallback(t *testing.T) {
	gen := &fakeGenerator{responses: []string{`{}`, `{}`}}
	d := New(persona, gen)

	reply, err := d.HandleVoice(context.Background(), &message.Turn{AudioBody: "QUJD"})
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls())
	require.NotNil(t, reply.Transcript)
	assert.Equal(t, "", reply.Reply)
	assert.NotNil(t, reply.Diagnostic)
}

func TestHandleVoiceNotConfigured(t *testing.T) {
	d := New(persona, nil)
	_, err := d.HandleVoice(context.Background(), &message.Turn{AudioBody: "QUJD"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestHandleVoiceInvalidAudio(t *testing.T) {
	gen := &fakeGenerator{}
	d := New(persona, gen)

	_, err := d.HandleVoice(context.Background(), &message.Turn{AudioBody: "not base64!*"})
	assert.ErrorIs(t, err, audio.ErrInvalidAudio)
	assert.Zero(t, gen.calls())
}

func TestEscalationReason(t *testing.T) {
	assert.Equal(t, "empty", escalationReason(&attempt{}))
	assert.Equal(t, "empty", escalationReason(&attempt{finish: extract.FinishMaxTokens}))
	assert.Equal(t, "truncated", escalationReason(&attempt{text: "x", finish: extract.FinishMaxTokens}))
	assert.Equal(t, "", escalationReason(&attempt{text: "x", finish: "SAFETY"}))
	assert.Equal(t, "", escalationReason(&attempt{text: "x"}))
}
