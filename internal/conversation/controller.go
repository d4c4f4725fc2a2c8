// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation owns the chat transcript and the single in-flight
// completion request.
//
// A Controller accepts a submission only when the text is not blank and no
// request is pending. An accepted submission appends the user turn, marks
// the controller pending and asks the Completer for a reply on its own
// goroutine. Whatever happens to that request, exactly one assistant turn
// is appended (the reply, or the fallback text on failure) and the pending
// flag is cleared in the same step.
package conversation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/juwamardott/chatbot/internal/model"
)

// Defaults used when Options leaves a field empty.
const (
	DefaultSystemPrompt = "You are a helpful assistant."
	DefaultFallbackText = "Terjadi kesalahan. Silakan coba lagi nanti."
)

// ErrNoCompleter is returned by New when Options.Completer is nil.
var ErrNoCompleter = errors.New("conversation: completer is required")

// Completer produces the assistant's reply for a full conversation.
type Completer interface {
	Complete(ctx context.Context, turns []model.Turn) (model.Turn, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, turns []model.Turn) (model.Turn, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, turns []model.Turn) (model.Turn, error) {
	return f(ctx, turns)
}

// Options configures a Controller.
type Options struct {
	// Completer answers each accepted submission. Required.
	Completer Completer
	// SystemPrompt is prepended to every request. It is never stored in
	// the transcript.
	SystemPrompt string
	// FallbackText becomes the assistant turn when a request fails.
	FallbackText string
	// Logger receives lifecycle and failure events. Nil disables logging.
	Logger *zerolog.Logger
}

// Snapshot is a copy of the controller state at one instant. Subscribers
// of the same update share Turns, so it must be treated as read-only.
type Snapshot struct {
	Turns   []model.Turn
	Pending bool
}

// Empty reports whether the transcript has no turns.
func (s Snapshot) Empty() bool {
	return len(s.Turns) == 0
}

// Controller is the conversation state container. It is safe for
// concurrent use.
type Controller struct {
	id        string
	completer Completer
	system    model.Turn
	fallback  string
	logger    zerolog.Logger

	mu         sync.Mutex
	transcript []model.Turn
	pending    bool
	closed     bool
	idle       chan struct{} // closed whenever pending is false
	subs       map[int]chan Snapshot
	nextSub    int

	inflight sync.WaitGroup
}

// New creates a controller with an empty transcript.
func New(opts Options) (*Controller, error) {
	if opts.Completer == nil {
		return nil, ErrNoCompleter
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	if opts.FallbackText == "" {
		opts.FallbackText = DefaultFallbackText
	}

	id := uuid.NewString()
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("session_id", id).Logger()
	}

	idle := make(chan struct{})
	close(idle)

	return &Controller{
		id:         id,
		completer:  opts.Completer,
		system:     model.NewSystemTurn(opts.SystemPrompt),
		fallback:   opts.FallbackText,
		logger:     logger,
		transcript: make([]model.Turn, 0),
		idle:       idle,
		subs:       make(map[int]chan Snapshot),
	}, nil
}

// ID returns the session identifier attached to log events.
func (c *Controller) ID() string {
	return c.id
}

// =============================================================================
// SUBMISSION
// =============================================================================

// Submit sends text as the next user turn. It returns false, changing
// nothing, when the trimmed text is empty, a request is already pending or
// the controller is closed. On true the caller should clear its input.
//
// The pending check and the pending set happen under one lock, so of two
// racing submissions at most one is accepted.
func (c *Controller) Submit(text string) bool {
	user := model.NewUserTurn(text)
	if user.IsBlank() {
		c.logger.Debug().Str("reason", "empty").Msg("submit rejected")
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		c.logger.Debug().Str("reason", "closed").Msg("submit rejected")
		return false
	}
	if c.pending {
		c.logger.Debug().Str("reason", "pending").Msg("submit rejected")
		return false
	}

	payload := make([]model.Turn, 0, len(c.transcript)+2)
	payload = append(payload, c.system)
	payload = append(payload, c.transcript...)
	payload = append(payload, user)

	c.transcript = append(c.transcript, user)
	c.pending = true
	c.idle = make(chan struct{})
	c.publishLocked()

	requestID := uuid.NewString()
	c.logger.Info().
		Str("request_id", requestID).
		Int("turns", len(payload)).
		Msg("submit accepted")

	c.inflight.Add(1)
	go c.dispatch(requestID, payload)
	return true
}

// dispatch runs one completion and folds the outcome back into the transcript.
func (c *Controller) dispatch(requestID string, payload []model.Turn) {
	defer c.inflight.Done()

	log := c.logger.With().Str("request_id", requestID).Logger()
	start := time.Now()

	reply, err := c.complete(payload)
	if err != nil {
		log.Error().
			Err(err).
			Dur("duration", time.Since(start)).
			Msg("completion failed")
		reply = model.NewAssistantTurn(c.fallback)
	} else {
		log.Debug().
			Dur("duration", time.Since(start)).
			Int("chars", len(reply.Content)).
			Msg("completion received")
	}

	c.resolve(reply)
}

// complete calls the completer, turning a panic into an error so the
// pending flag is still released.
func (c *Controller) complete(payload []model.Turn) (reply model.Turn, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("completer panicked: %v", r)
		}
	}()
	return c.completer.Complete(context.Background(), payload)
}

// resolve appends the reply and leaves the pending state in one step.
func (c *Controller) resolve(reply model.Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.transcript = append(c.transcript, reply)
	c.pending = false
	c.publishLocked()
	close(c.idle)
}

// =============================================================================
// READERS
// =============================================================================

// Snapshot returns a copy of the transcript and the pending flag.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Turns:   model.CloneTurns(c.transcript),
		Pending: c.pending,
	}
}

// Transcript returns a copy of the turns so far.
func (c *Controller) Transcript() []model.Turn {
	return c.Snapshot().Turns
}

// Pending reports whether a request is in flight.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Len returns the number of turns in the transcript.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.transcript)
}

// Wait blocks until no request is pending or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// Subscribe returns a channel that always holds the most recent state.
// The current state is delivered immediately. A slow reader never blocks
// the controller: an undelivered snapshot is replaced by the newer one.
// The returned function unsubscribes and closes the channel.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- c.snapshotLocked()
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
			}
		})
	}
}

// publishLocked hands the current state to every subscriber. Only this
// method sends, and always under c.mu, so after draining the send cannot block.
func (c *Controller) publishLocked() {
	if len(c.subs) == 0 {
		return
	}
	snap := c.snapshotLocked()
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

// =============================================================================
// TEARDOWN
// =============================================================================

// Close rejects further submissions, closes every subscription and waits
// for an in-flight request to settle. The request is not cancelled.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
	c.mu.Unlock()

	c.inflight.Wait()
	c.logger.Debug().Int("turns", c.Len()).Msg("conversation closed")
}
