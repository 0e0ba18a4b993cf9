// Package message defines the request and reply types exchanged with clients.
package message

// Turn is one inbound user turn as seen by the dispatcher.
type Turn struct {
	// ID is a unique identifier for this turn (UUID).
	ID string

	// Text is the typed question (text path).
	Text string

	// AudioBody is the raw request body carrying the base64 audio
	// payload (audio path).
	AudioBody string
}

// TextRequest is the body of POST /api/text.
type TextRequest struct {
	// Text is the user's typed (or browser-transcribed) question.
	Text string `json:"text"`
}

// Reply is the normalized answer returned by both endpoints.
//
// Reply is always a trimmed string, possibly empty, and is never omitted.
// Transcript is only set on the audio path.
type Reply struct {
	// Transcript is what the provider heard in the audio question.
	Transcript *string `json:"transcript,omitempty"`

	// Reply is the first-person answer to speak back.
	Reply string `json:"reply"`

	// Raw is the provider response the reply was extracted from, or a
	// note object in degraded mode.
	Raw any `json:"raw"`

	// Diagnostic is set when the reply is empty after the fallback attempt.
	Diagnostic *Diagnostic `json:"diagnostic,omitempty"`
}

// TranscriptText returns the transcript, or "" on the text path.
func (r *Reply) TranscriptText() string {
	if r.Transcript == nil {
		return ""
	}
	return *r.Transcript
}

// SetTranscript marks the reply as coming from the audio path.
func (r *Reply) SetTranscript(s string) {
	r.Transcript = &s
}

// Diagnostic explains an empty reply.
type Diagnostic struct {
	Message       string `json:"message"`
	PrimaryFinish string `json:"primaryFinish,omitempty"`
}

// ErrorBody is the JSON body of every non-2xx response.
type ErrorBody struct {
	Error string `json:"error"`
}
