// Package session manages per-user interactive sessions: one lazily built
// engine instance and one conversation transcript per session.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/docgpt-ai/docgpt/internal/engine"
	"github.com/docgpt-ai/docgpt/internal/llm"
)

// ErrMissingCredential is returned when an ingestion or chat call runs
// before the user has supplied an API key.
var ErrMissingCredential = errors.New("OpenAI API key is required")

// EngineFactory constructs an engine bound to the given credential.
// Construction may perform network calls and is treated as failable.
type EngineFactory func(credential string) (engine.Engine, error)

// Session is one user's interactive lifetime. It owns at most one engine
// instance; once built, the engine is reused for every later call and the
// credential it was built with wins over any later value.
//
// The mutex guards credential and engine state: the key handler, uploads
// and the websocket goroutine can all touch one session concurrently.
type Session struct {
	ID string

	factory    EngineFactory
	transcript *Transcript

	mu         sync.Mutex
	credential string
	eng        engine.Engine
}

// SetCredential records the API key for lazy engine construction. It has
// no effect on an already constructed engine.
func (s *Session) SetCredential(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = key
}

// HasCredential reports whether an API key has been supplied.
func (s *Session) HasCredential() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential != ""
}

// Transcript returns the session's conversation transcript.
func (s *Session) Transcript() *Transcript { return s.transcript }

// Engine returns the session's engine, constructing it on first use.
// A construction failure is not cached; the next call retries. The lock
// is held across construction so concurrent callers never build twice.
func (s *Session) Engine() (engine.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.eng != nil {
		return s.eng, nil
	}
	if s.credential == "" {
		return nil, ErrMissingCredential
	}
	eng, err := s.factory(s.credential)
	if err != nil {
		return nil, fmt.Errorf("constructing engine: %w", err)
	}
	s.eng = eng
	return s.eng, nil
}

// Respond runs one chat turn: the user message is committed to the
// transcript up front, the engine's stream is consumed once with the
// partial concatenation reported through onDelta, and the assistant
// message is committed only after the stream ends cleanly. On a
// mid-stream failure the partial text is discarded.
func (s *Session) Respond(ctx context.Context, query string, onDelta func(partial string)) (string, error) {
	eng, err := s.Engine()
	if err != nil {
		return "", err
	}

	s.transcript.Append(llm.RoleUser, query)

	stream, err := eng.Chat(ctx, query)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer stream.Close()

	var b strings.Builder
	for {
		frag, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("chat stream: %w", err)
		}
		b.WriteString(frag)
		if onDelta != nil {
			onDelta(b.String())
		}
	}

	full := b.String()
	s.transcript.Append(llm.RoleAssistant, full)
	return full, nil
}
