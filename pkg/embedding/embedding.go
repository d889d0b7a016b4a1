// Package embedding wraps remote text-embedding backends behind a small
// client interface. A missing credential is an expected runtime state, not an
// error to crash on: callers check Available and fall back to unranked
// results.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jobscout/jobscout/internal/config"
)

// ErrNoCredential signals that the backend has no API key configured. It is
// distinct from transient backend errors so call sites can pick the unranked
// fallback path without retrying.
var ErrNoCredential = errors.New("embedding: no credential configured")

// ErrCircuitOpen signals that the backend failed repeatedly and requests are
// being shed until the circuit resets.
var ErrCircuitOpen = errors.New("embedding: circuit open")

// Client produces one fixed-length vector per input text.
type Client interface {
	// Embed returns the vector for a single text.
	Embed(ctx context.Context, text string) ([]float64, error)
	// EmbedBatch returns one vector per input in input order, using a single
	// round trip. Empty input yields empty output without a network call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
	// Available reports whether the backend is configured at all.
	Available() bool
}

// package-level logger; can be replaced by callers
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger sets the logger used by pkg/embedding. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// New builds a client for the configured provider.
func New(cfg config.EmbeddingConfig) (Client, error) {
	switch cfg.Provider {
	case "", "openai":
		return NewOpenAIClient(cfg, nil)
	case "ollama":
		return NewOllamaClient(cfg)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
