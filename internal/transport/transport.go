// Package transport defines the interface for pluggable inbound transports.
//
// A transport receives user turns from clients and hands them to an
// Answerer. The Answerer doesn't care how turns arrive; it only works with
// the message types.
package transport

import (
	"context"

	"github.com/nadzzz/voicebot/internal/message"
)

// Answerer processes one user turn and returns the normalized reply.
// The dispatcher implements it.
type Answerer interface {
	HandleText(ctx context.Context, turn *message.Turn) (*message.Reply, error)
	HandleVoice(ctx context.Context, turn *message.Turn) (*message.Reply, error)
}

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "http").
	Name() string

	// Listen starts accepting turns and hands them to the answerer.
	// It blocks until the context is cancelled.
	Listen(ctx context.Context, answerer Answerer) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}
