// Package provider defines the interface to the generative-language service.
//
// A provider turns a prompt (optionally with inline audio) into an opaque
// JSON response. voicebot ships one backend, Gemini generateContent; the
// response body is deliberately kept untyped so the extract package can
// probe every shape the service has been seen to return.
package provider

import "context"

// InlineData is a binary payload sent alongside the prompt text.
type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64
}

// Part is one element of a request: either text or inline data.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// GenerationConfig controls sampling and the output budget.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	CandidateCount  int     `json:"candidateCount,omitempty"`
	TopP            float64 `json:"topP"`
}

// Request is a single generation request.
type Request struct {
	Parts  []Part
	Config GenerationConfig
}

// Response is the provider's reply.
type Response struct {
	// Status is the HTTP status code the provider answered with.
	Status int

	// Body is the decoded JSON body. It is an empty object when the body
	// was not valid JSON.
	Body any
}

// Generator is implemented by every provider backend.
type Generator interface {
	// Generate issues one request. An error means the provider could not be
	// reached at all; a reachable provider that answered with an error
	// status is reported through Response.Status instead.
	Generate(ctx context.Context, req *Request) (*Response, error)
}
