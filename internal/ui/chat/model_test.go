// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juwamardott/chatbot/internal/conversation"
	"github.com/juwamardott/chatbot/internal/locale"
	"github.com/juwamardott/chatbot/internal/model"
	"github.com/juwamardott/chatbot/internal/ui/styles"
)

// fakeConversation records submissions and accepts non-blank text while
// accept is set.
type fakeConversation struct {
	mu           sync.Mutex
	accept       bool
	submitted    []string
	updates      chan conversation.Snapshot
	unsubscribed bool
}

func newFakeConversation(accept bool) *fakeConversation {
	return &fakeConversation{accept: accept, updates: make(chan conversation.Snapshot, 1)}
}

func (f *fakeConversation) Submit(text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, text)
	return f.accept && strings.TrimSpace(text) != ""
}

func (f *fakeConversation) Subscribe() (<-chan conversation.Snapshot, func()) {
	return f.updates, func() {
		f.mu.Lock()
		f.unsubscribed = true
		f.mu.Unlock()
	}
}

func newTestModel(t *testing.T, conv Conversation) Model {
	t.Helper()
	m := New(conv, Options{
		Theme:   styles.NewTheme(styles.ModeDark),
		Strings: locale.For("id"),
	})
	return update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok, "Update returned %T", next)
	return out
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

var (
	enterKey    = tea.KeyMsg{Type: tea.KeyEnter}
	altEnterKey = tea.KeyMsg{Type: tea.KeyEnter, Alt: true}
	ctrlJKey    = tea.KeyMsg{Type: tea.KeyCtrlJ}
)

// =============================================================================
// KEYBOARD
// =============================================================================

func TestModel_EnterSubmitsAndClearsInput(t *testing.T) {
	conv := newFakeConversation(true)
	m := newTestModel(t, conv)

	m = typeText(t, m, "halo")
	m = update(t, m, enterKey)

	assert.Equal(t, []string{"halo"}, conv.submitted)
	assert.Empty(t, m.InputValue())
}

func TestModel_RejectedSubmitKeepsInput(t *testing.T) {
	conv := newFakeConversation(false)
	m := newTestModel(t, conv)

	m = typeText(t, m, "masih menunggu")
	m = update(t, m, enterKey)

	assert.Equal(t, []string{"masih menunggu"}, conv.submitted)
	assert.Equal(t, "masih menunggu", m.InputValue())
}

func TestModel_BlankEnterIsNotAccepted(t *testing.T) {
	conv := newFakeConversation(true)
	m := newTestModel(t, conv)

	m = typeText(t, m, "   ")
	m = update(t, m, enterKey)

	assert.Equal(t, "   ", m.InputValue())
}

func TestModel_ModifiedEnterInsertsNewline(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
	}{
		{"alt+enter", altEnterKey},
		{"ctrl+j", ctrlJKey},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conv := newFakeConversation(true)
			m := newTestModel(t, conv)

			m = typeText(t, m, "baris satu")
			m = update(t, m, tc.key)
			m = typeText(t, m, "baris dua")

			assert.Equal(t, "baris satu\nbaris dua", m.InputValue())
			assert.Empty(t, conv.submitted)
		})
	}
}

func TestModel_QuitUnsubscribes(t *testing.T) {
	conv := newFakeConversation(true)
	m := newTestModel(t, conv)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.True(t, conv.unsubscribed)
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

func TestModel_SnapshotRendersTranscript(t *testing.T) {
	conv := newFakeConversation(true)
	m := newTestModel(t, conv)
	s := locale.For("id")

	assert.Contains(t, m.View(), s.EmptyTitle)

	next, cmd := m.Update(SnapshotMsg{
		Turns:   []model.Turn{model.NewUserTurn("apa kabar")},
		Pending: true,
	})
	m = next.(Model)

	assert.NotNil(t, cmd, "should keep listening and start the spinner")
	view := m.View()
	assert.Contains(t, view, "apa kabar")
	assert.Contains(t, view, s.Typing)
	assert.NotContains(t, view, s.EmptyTitle)

	m = update(t, m, SnapshotMsg{Turns: []model.Turn{
		model.NewUserTurn("apa kabar"),
		model.NewAssistantTurn("baik"),
	}})
	view = m.View()
	assert.Contains(t, view, "baik")
	assert.NotContains(t, view, s.Typing)
}

func TestModel_SubscriptionClosedQuits(t *testing.T) {
	m := newTestModel(t, newFakeConversation(true))

	_, cmd := m.Update(SubscriptionClosedMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_ViewBeforeResize(t *testing.T) {
	m := New(newFakeConversation(true), Options{Theme: styles.NewTheme(styles.ModeDark)})
	assert.Equal(t, "Loading...", m.View())
}

func TestWaitForSnapshot(t *testing.T) {
	ch := make(chan conversation.Snapshot, 1)
	ch <- conversation.Snapshot{Pending: true}

	msg := waitForSnapshot(ch)()
	assert.Equal(t, SnapshotMsg{Pending: true}, msg)

	close(ch)
	assert.Equal(t, SubscriptionClosedMsg{}, waitForSnapshot(ch)())
}

// =============================================================================
// CONTROLLER INTEGRATION
// =============================================================================

func TestModel_WithController(t *testing.T) {
	release := make(chan struct{})
	ctrl, err := conversation.New(conversation.Options{
		Completer: conversation.CompleterFunc(func(ctx context.Context, turns []model.Turn) (model.Turn, error) {
			<-release
			return model.NewAssistantTurn("jawaban"), nil
		}),
	})
	require.NoError(t, err)
	defer ctrl.Close()

	m := newTestModel(t, ctrl)
	m = update(t, m, SnapshotMsg(<-m.updates))

	m = typeText(t, m, "pertanyaan")
	m = update(t, m, enterKey)
	assert.Empty(t, m.InputValue())
	assert.True(t, ctrl.Pending())

	// A second Enter while pending is rejected and keeps the input.
	m = typeText(t, m, "lagi")
	m = update(t, m, enterKey)
	assert.Equal(t, "lagi", m.InputValue())
	assert.Equal(t, 1, ctrl.Len())

	m = update(t, m, SnapshotMsg(<-m.updates))
	assert.True(t, m.Snapshot().Pending)

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, ctrl.Wait(ctx))

	m = update(t, m, SnapshotMsg(<-m.updates))
	assert.False(t, m.Snapshot().Pending)
	assert.Contains(t, m.View(), "jawaban")
}
