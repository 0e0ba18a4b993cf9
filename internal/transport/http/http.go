// Package http implements the HTTP transport for voicebot.
//
// It exposes POST /api/text for typed questions and POST /api/voice for
// base64 audio recorded in the browser, plus the Swagger UI describing both.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/nadzzz/voicebot/internal/audio"
	"github.com/nadzzz/voicebot/internal/config"
	"github.com/nadzzz/voicebot/internal/dispatch"
	"github.com/nadzzz/voicebot/internal/message"
	"github.com/nadzzz/voicebot/internal/transport"
)

const (
	maxTextBody  = 1 << 20  // 1 MB
	maxVoiceBody = 25 << 20 // 25 MB
)

// RequestIDHeader carries the turn ID back to the client.
const RequestIDHeader = "X-Request-ID"

// Transport implements transport.Transport over HTTP.
type Transport struct {
	port    int
	limiter *RateLimiter // nil when rate limiting is disabled
	server  *http.Server
}

// New creates a new HTTP transport from config.
func New(cfg config.HTTPConfig) *Transport {
	t := &Transport{port: cfg.Port}
	if cfg.RateLimit > 0 {
		t.limiter = NewRateLimiter(cfg.RateLimit, time.Minute)
		t.limiter.TrustProxyHeaders = cfg.TrustProxyHeaders
	}
	return t
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Handler builds the routing table for the given answerer.
func (t *Transport) Handler(answerer transport.Answerer) http.Handler {
	mux := http.NewServeMux()

	// Registered without a method so other verbs get the JSON 405 body.
	mux.HandleFunc("/api/text", t.limit(func(w http.ResponseWriter, r *http.Request) {
		t.handleText(w, r, answerer)
	}))
	mux.HandleFunc("/api/voice", t.limit(func(w http.ResponseWriter, r *http.Request) {
		t.handleVoice(w, r, answerer)
	}))

	// Swagger UI, serves the registered OpenAPI doc.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return mux
}

// Listen starts the HTTP server and routes incoming requests to the answerer.
func (t *Transport) Listen(ctx context.Context, answerer transport.Answerer) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.port),
		Handler:           t.Handler(answerer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.port, "rate_limited", t.limiter != nil)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// handleText processes a POST /api/text request.
//
// @Summary     Answer a typed question
// @Description Forwards the question to the provider with the persona prompt and returns the
// @Description first-person reply. Without a provider credential a fixed placeholder reply is returned.
// @Tags        turns
// @Accept      json
// @Produce     json
// @Param       request  body      message.TextRequest  true  "Question text"
// @Success     200  {object}  message.Reply      "Normalized reply (reply may be empty, see diagnostic)"
// @Failure     400  {object}  message.ErrorBody  "Missing text or invalid JSON"
// @Failure     405  {object}  message.ErrorBody  "Method not allowed"
// @Failure     413  {object}  message.ErrorBody  "Request body over 1 MB"
// @Failure     500  {object}  message.ErrorBody  "Provider call failed"
// @Router      /api/text [post]
func (t *Transport) handleText(w http.ResponseWriter, r *http.Request, answerer transport.Answerer) {
	if !requirePost(w, r) {
		return
	}

	var req message.TextRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTextBody)).Decode(&req); err != nil {
		if tooLarge(w, err) {
			return
		}
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	turn := newTurn(w)
	turn.Text = req.Text
	// The provider call is not aborted when the client goes away.
	reply, err := answerer.HandleText(context.WithoutCancel(r.Context()), turn)
	respond(w, reply, err)
}

// handleVoice processes a POST /api/voice request.
//
// @Summary     Answer a spoken question
// @Description Accepts a data URI (data:audio/webm;base64,...) or bare base64 audio as the raw body.
// @Description Returns what the provider heard and the first-person reply.
// @Tags        turns
// @Accept      plain
// @Produce     json
// @Param       audio  body      string  true  "data:audio/webm;base64,... or bare base64"
// @Success     200  {object}  message.Reply      "Normalized reply with transcript"
// @Failure     400  {object}  message.ErrorBody  "Invalid audio payload"
// @Failure     405  {object}  message.ErrorBody  "Method not allowed"
// @Failure     413  {object}  message.ErrorBody  "Request body over 25 MB"
// @Failure     500  {object}  message.ErrorBody  "Provider call failed"
// @Failure     503  {object}  message.ErrorBody  "Provider credential not configured"
// @Router      /api/voice [post]
func (t *Transport) handleVoice(w http.ResponseWriter, r *http.Request, answerer transport.Answerer) {
	if !requirePost(w, r) {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxVoiceBody))
	if err != nil {
		if tooLarge(w, err) {
			return
		}
		writeError(w, http.StatusBadRequest, "reading body: "+err.Error())
		return
	}

	turn := newTurn(w)
	turn.AudioBody = string(body)
	reply, err := answerer.HandleVoice(context.WithoutCancel(r.Context()), turn)
	respond(w, reply, err)
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

func (t *Transport) limit(next http.HandlerFunc) http.HandlerFunc {
	if t.limiter == nil {
		return next
	}
	return t.limiter.Middleware(next)
}

func newTurn(w http.ResponseWriter) *message.Turn {
	id := uuid.NewString()
	w.Header().Set(RequestIDHeader, id)
	return &message.Turn{ID: id}
}

// tooLarge answers 413 when err comes from an exceeded body limit.
func tooLarge(w http.ResponseWriter, err error) bool {
	var maxErr *http.MaxBytesError
	if !errors.As(err, &maxErr) {
		return false
	}
	writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
	return true
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodPost {
		return true
	}
	w.Header().Set("Allow", http.MethodPost)
	writeError(w, http.StatusMethodNotAllowed, "POST required")
	return false
}

func respond(w http.ResponseWriter, reply *message.Reply, err error) {
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// statusFor maps dispatcher errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, dispatch.ErrInvalidInput), errors.Is(err, audio.ErrInvalidAudio):
		return http.StatusBadRequest
	case errors.Is(err, dispatch.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, message.ErrorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}
