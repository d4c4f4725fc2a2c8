// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juwamardott/chatbot/internal/model"
)

const waitTimeout = 2 * time.Second

// =============================================================================
// TEST DOUBLES
// =============================================================================

type result struct {
	turn model.Turn
	err  error
}

// gatedCompleter records each payload and blocks until the test releases it.
type gatedCompleter struct {
	requests chan []model.Turn
	release  chan result
	calls    atomic.Int32
}

func newGatedCompleter() *gatedCompleter {
	return &gatedCompleter{
		requests: make(chan []model.Turn, 16),
		release:  make(chan result),
	}
}

func (g *gatedCompleter) Complete(ctx context.Context, turns []model.Turn) (model.Turn, error) {
	g.calls.Add(1)
	g.requests <- turns
	r := <-g.release
	return r.turn, r.err
}

func (g *gatedCompleter) nextRequest(t *testing.T) []model.Turn {
	t.Helper()
	select {
	case turns := <-g.requests:
		return turns
	case <-time.After(waitTimeout):
		t.Fatal("no request reached the completer")
		return nil
	}
}

func (g *gatedCompleter) reply(content string) {
	g.release <- result{turn: model.NewAssistantTurn(content)}
}

func (g *gatedCompleter) fail(err error) {
	g.release <- result{err: err}
}

func newController(t *testing.T, c Completer) *Controller {
	t.Helper()
	ctrl, err := New(Options{Completer: c})
	require.NoError(t, err)
	t.Cleanup(ctrl.Close)
	return ctrl
}

func waitIdle(t *testing.T, ctrl *Controller) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	require.NoError(t, ctrl.Wait(ctx))
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

func TestNew_RequiresCompleter(t *testing.T) {
	ctrl, err := New(Options{})
	assert.Nil(t, ctrl)
	assert.ErrorIs(t, err, ErrNoCompleter)
}

func TestNew_StartsIdleAndEmpty(t *testing.T) {
	ctrl := newController(t, newGatedCompleter())

	snap := ctrl.Snapshot()
	assert.True(t, snap.Empty())
	assert.False(t, snap.Pending)
	assert.NotEmpty(t, ctrl.ID())
	waitIdle(t, ctrl)
}

// =============================================================================
// ORDERING
// =============================================================================

// N successful round trips leave 2N alternating turns; the system turn is
// sent every time but never stored.
func TestSubmit_AlternatingTranscript(t *testing.T) {
	g := newGatedCompleter()
	ctrl := newController(t, g)

	const rounds = 4
	for i := 0; i < rounds; i++ {
		require.True(t, ctrl.Submit(fmt.Sprintf("q%d", i)))

		payload := g.nextRequest(t)
		require.Len(t, payload, 2*i+2)
		assert.Equal(t, model.NewSystemTurn(DefaultSystemPrompt), payload[0])
		assert.Equal(t, model.NewUserTurn(fmt.Sprintf("q%d", i)), payload[len(payload)-1])

		g.reply(fmt.Sprintf("a%d", i))
		waitIdle(t, ctrl)
	}

	turns := ctrl.Transcript()
	require.Len(t, turns, 2*rounds)
	for i, turn := range turns {
		assert.NotEqual(t, model.RoleSystem, turn.Role)
		if i%2 == 0 {
			assert.Equal(t, model.NewUserTurn(fmt.Sprintf("q%d", i/2)), turn)
		} else {
			assert.Equal(t, model.NewAssistantTurn(fmt.Sprintf("a%d", i/2)), turn)
		}
	}
}

func TestSubmit_PayloadCarriesPriorHistory(t *testing.T) {
	g := newGatedCompleter()
	ctrl := newController(t, g)

	require.True(t, ctrl.Submit("first"))
	g.nextRequest(t)
	g.reply("one")
	waitIdle(t, ctrl)

	require.True(t, ctrl.Submit("second"))
	payload := g.nextRequest(t)
	assert.Equal(t, []model.Turn{
		model.NewSystemTurn(DefaultSystemPrompt),
		model.NewUserTurn("first"),
		model.NewAssistantTurn("one"),
		model.NewUserTurn("second"),
	}, payload)
	g.reply("two")
}

func TestSubmit_CustomSystemPrompt(t *testing.T) {
	g := newGatedCompleter()
	ctrl, err := New(Options{Completer: g, SystemPrompt: "Jawab singkat."})
	require.NoError(t, err)
	defer ctrl.Close()

	require.True(t, ctrl.Submit("hi"))
	payload := g.nextRequest(t)
	assert.Equal(t, model.NewSystemTurn("Jawab singkat."), payload[0])
	g.reply("ok")
}

func TestSubmit_ContentStoredUntrimmed(t *testing.T) {
	g := newGatedCompleter()
	ctrl := newController(t, g)

	require.True(t, ctrl.Submit("  halo\n"))
	payload := g.nextRequest(t)
	assert.Equal(t, "  halo\n", payload[1].Content)
	assert.Equal(t, "  halo\n", ctrl.Transcript()[0].Content)
	g.reply("ok")
}

func TestSubmit_ReplyAppendedVerbatim(t *testing.T) {
	g := newGatedCompleter()
	ctrl := newController(t, g)

	require.True(t, ctrl.Submit("hi"))
	g.nextRequest(t)
	odd := model.NewTurn(model.Role("assistant"), "  **bold**\n\n")
	g.release <- result{turn: odd}
	waitIdle(t, ctrl)

	assert.Equal(t, odd, ctrl.Transcript()[1])
}

// =============================================================================
// EMPTY SUBMISSIONS
// =============================================================================

func TestSubmit_RejectsBlank(t *testing.T) {
	g := newGatedCompleter()
	ctrl := newController(t, g)

	for _, text := range []string{"", " ", "\t", "\n\n", "  \r\n "} {
		assert.False(t, ctrl.Submit(text), "%q", text)
	}

	snap := ctrl.Snapshot()
	assert.True(t, snap.Empty())
	assert.False(t, snap.Pending)
	assert.Equal(t, int32(0), g.calls.Load())
}

// =============================================================================
// MUTUAL EXCLUSION
// =============================================================================

func TestSubmit_RejectedWhilePending(t *testing.T) {
	g := newGatedCompleter()
	ctrl := newController(t, g)

	require.True(t, ctrl.Submit("first"))
	g.nextRequest(t)

	assert.False(t, ctrl.Submit("second"))
	assert.Equal(t, []model.Turn{model.NewUserTurn("first")}, ctrl.Transcript())

	g.reply("done")
	waitIdle(t, ctrl)
	assert.Equal(t, int32(1), g.calls.Load())
	assert.Len(t, ctrl.Transcript(), 2)
}

func TestSubmit_ConcurrentOnlyOneAccepted(t *testing.T) {
	g := newGatedCompleter()
	ctrl := newController(t, g)

	const submitters = 32
	var accepted atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			if ctrl.Submit(fmt.Sprintf("msg %d", i)) {
				accepted.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), accepted.Load())
	g.nextRequest(t)
	g.reply("only one")
	waitIdle(t, ctrl)

	assert.Equal(t, int32(1), g.calls.Load())
	assert.Len(t, ctrl.Transcript(), 2)
}

// =============================================================================
// PENDING LIFECYCLE
// =============================================================================

func TestPending_SetOnSubmitClearedOnResolve(t *testing.T) {
	tests := []struct {
		name    string
		resolve func(g *gatedCompleter)
	}{
		{"success", func(g *gatedCompleter) { g.reply("ok") }},
		{"failure", func(g *gatedCompleter) { g.fail(errors.New("boom")) }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := newGatedCompleter()
			ctrl := newController(t, g)

			assert.False(t, ctrl.Pending())
			require.True(t, ctrl.Submit("hi"))
			assert.True(t, ctrl.Pending())

			g.nextRequest(t)
			assert.True(t, ctrl.Pending(), "still pending until the request resolves")

			tc.resolve(g)
			waitIdle(t, ctrl)
			assert.False(t, ctrl.Pending())
			assert.True(t, ctrl.Submit("again"), "accepts again once idle")
			g.nextRequest(t)
			g.reply("ok")
		})
	}
}

func TestPending_ClearedWhenCompleterPanics(t *testing.T) {
	ctrl := newController(t, CompleterFunc(func(ctx context.Context, turns []model.Turn) (model.Turn, error) {
		panic("kaboom")
	}))

	require.True(t, ctrl.Submit("hi"))
	waitIdle(t, ctrl)

	assert.False(t, ctrl.Pending())
	assert.Equal(t, model.NewAssistantTurn(DefaultFallbackText), ctrl.Transcript()[1])
}

func TestWait_RespectsContext(t *testing.T) {
	g := newGatedCompleter()
	ctrl := newController(t, g)

	require.True(t, ctrl.Submit("hi"))
	g.nextRequest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, ctrl.Wait(ctx), context.DeadlineExceeded)

	g.reply("ok")
	waitIdle(t, ctrl)
}

// =============================================================================
// FAILURE FALLBACK
// =============================================================================

func TestFailure_AppendsFallbackAndLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	g := newGatedCompleter()
	ctrl, err := New(Options{Completer: g, Logger: &logger})
	require.NoError(t, err)
	defer ctrl.Close()

	require.True(t, ctrl.Submit("hi"))
	g.nextRequest(t)
	g.fail(errors.New("connection reset"))
	waitIdle(t, ctrl)

	assert.Equal(t, []model.Turn{
		model.NewUserTurn("hi"),
		model.NewAssistantTurn(DefaultFallbackText),
	}, ctrl.Transcript())

	out := buf.String()
	assert.Contains(t, out, "completion failed")
	assert.Contains(t, out, "connection reset")
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, ctrl.ID())
}

func TestFailure_CustomFallbackText(t *testing.T) {
	g := newGatedCompleter()
	ctrl, err := New(Options{Completer: g, FallbackText: "Something went wrong."})
	require.NoError(t, err)
	defer ctrl.Close()

	require.True(t, ctrl.Submit("hi"))
	g.nextRequest(t)
	g.fail(errors.New("500"))
	waitIdle(t, ctrl)

	assert.Equal(t, "Something went wrong.", ctrl.Transcript()[1].Content)
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

func receive(t *testing.T, ch <-chan Snapshot) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return snap
	case <-time.After(waitTimeout):
		t.Fatal("no snapshot delivered")
		return Snapshot{}
	}
}

func TestSubscribe_DeliversStateChanges(t *testing.T) {
	g := newGatedCompleter()
	ctrl := newController(t, g)

	updates, unsubscribe := ctrl.Subscribe()
	defer unsubscribe()

	initial := receive(t, updates)
	assert.True(t, initial.Empty())
	assert.False(t, initial.Pending)

	require.True(t, ctrl.Submit("hi"))
	pending := receive(t, updates)
	assert.True(t, pending.Pending)
	assert.Equal(t, []model.Turn{model.NewUserTurn("hi")}, pending.Turns)

	g.nextRequest(t)
	g.reply("hello")
	settled := receive(t, updates)
	assert.False(t, settled.Pending)
	assert.Len(t, settled.Turns, 2)
}

func TestSubscribe_SlowReaderGetsLatest(t *testing.T) {
	g := newGatedCompleter()
	ctrl := newController(t, g)

	updates, unsubscribe := ctrl.Subscribe()
	defer unsubscribe()

	require.True(t, ctrl.Submit("hi"))
	g.nextRequest(t)
	g.reply("hello")
	waitIdle(t, ctrl)

	latest := receive(t, updates)
	assert.False(t, latest.Pending)
	assert.Len(t, latest.Turns, 2)

	select {
	case extra := <-updates:
		t.Fatalf("unexpected extra snapshot: %+v", extra)
	default:
	}
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	ctrl := newController(t, newGatedCompleter())

	updates, unsubscribe := ctrl.Subscribe()
	receive(t, updates)
	unsubscribe()
	unsubscribe()

	_, ok := <-updates
	assert.False(t, ok)
}

func TestSubscribe_SnapshotsAreCopies(t *testing.T) {
	g := newGatedCompleter()
	ctrl := newController(t, g)

	require.True(t, ctrl.Submit("hi"))
	snap := ctrl.Snapshot()
	snap.Turns[0] = model.NewUserTurn("tampered")

	assert.Equal(t, "hi", ctrl.Transcript()[0].Content)
	g.nextRequest(t)
	g.reply("ok")
}

// =============================================================================
// TEARDOWN
// =============================================================================

func TestClose_WaitsForInflightAndRejects(t *testing.T) {
	g := newGatedCompleter()
	ctrl, err := New(Options{Completer: g})
	require.NoError(t, err)

	updates, _ := ctrl.Subscribe()
	receive(t, updates)

	require.True(t, ctrl.Submit("hi"))
	g.nextRequest(t)

	closed := make(chan struct{})
	go func() {
		ctrl.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned before the request settled")
	case <-time.After(20 * time.Millisecond):
	}

	g.reply("late")
	select {
	case <-closed:
	case <-time.After(waitTimeout):
		t.Fatal("Close did not return")
	}

	assert.False(t, ctrl.Submit("after close"))
	assert.Len(t, ctrl.Transcript(), 2)

	for range updates {
	}
	ch, _ := ctrl.Subscribe()
	_, ok := <-ch
	assert.False(t, ok)
}

// =============================================================================
// END-TO-END SCENARIOS
// =============================================================================

func TestScenario_SuccessfulRoundTrip(t *testing.T) {
	ctrl := newController(t, CompleterFunc(func(ctx context.Context, turns []model.Turn) (model.Turn, error) {
		return model.NewAssistantTurn("Halo! Ada yang bisa saya bantu?"), nil
	}))

	require.True(t, ctrl.Submit("Halo"))
	waitIdle(t, ctrl)

	assert.Equal(t, []model.Turn{
		model.NewUserTurn("Halo"),
		model.NewAssistantTurn("Halo! Ada yang bisa saya bantu?"),
	}, ctrl.Transcript())
	assert.False(t, ctrl.Pending())
}

func TestScenario_NetworkError(t *testing.T) {
	ctrl := newController(t, CompleterFunc(func(ctx context.Context, turns []model.Turn) (model.Turn, error) {
		return model.Turn{}, errors.New("dial tcp: connection refused")
	}))

	require.True(t, ctrl.Submit("Halo"))
	waitIdle(t, ctrl)

	assert.Equal(t, []model.Turn{
		model.NewUserTurn("Halo"),
		model.NewAssistantTurn("Terjadi kesalahan. Silakan coba lagi nanti."),
	}, ctrl.Transcript())
	assert.False(t, ctrl.Pending())
}

func TestScenario_WhitespaceOnly(t *testing.T) {
	var calls atomic.Int32
	ctrl := newController(t, CompleterFunc(func(ctx context.Context, turns []model.Turn) (model.Turn, error) {
		calls.Add(1)
		return model.NewAssistantTurn("x"), nil
	}))

	assert.False(t, ctrl.Submit("   "))
	assert.Empty(t, ctrl.Transcript())
	assert.False(t, ctrl.Pending())
	assert.Equal(t, int32(0), calls.Load())
}

func TestScenario_SecondSubmitWhilePending(t *testing.T) {
	g := newGatedCompleter()
	ctrl := newController(t, g)

	require.True(t, ctrl.Submit("A"))
	g.nextRequest(t)
	assert.False(t, ctrl.Submit("B"))

	g.reply("reply to A")
	waitIdle(t, ctrl)

	assert.Equal(t, []model.Turn{
		model.NewUserTurn("A"),
		model.NewAssistantTurn("reply to A"),
	}, ctrl.Transcript())
	assert.Equal(t, int32(1), g.calls.Load())
}
