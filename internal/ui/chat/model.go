// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file contains the Model struct, the Bubble Tea interface and the
// key and resize handlers.
package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/juwamardott/chatbot/internal/conversation"
	"github.com/juwamardott/chatbot/internal/locale"
	"github.com/juwamardott/chatbot/internal/ui/styles"
)

// =============================================================================
// CONVERSATION SURFACE
// =============================================================================

// Conversation is the part of the controller the chat view drives.
// *conversation.Controller satisfies it.
type Conversation interface {
	Submit(text string) bool
	Subscribe() (<-chan conversation.Snapshot, func())
}

// Options configures a chat Model.
type Options struct {
	Theme   *styles.Theme
	Strings locale.Strings
	// Markdown enables glamour rendering of assistant turns.
	Markdown bool
	// Renderer overrides the markdown renderer built from Markdown.
	Renderer MarkdownRenderer
	KeyMap   *KeyMap
	Logger   *zerolog.Logger
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view. It owns no conversation
// state of its own: it renders the latest snapshot from the controller and
// forwards submissions to it.
type Model struct {
	conv        Conversation
	updates     <-chan conversation.Snapshot
	unsubscribe func()

	theme    *styles.Theme
	strings  locale.Strings
	keys     KeyMap
	markdown bool
	renderer MarkdownRenderer
	logger   zerolog.Logger

	input    textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model

	snap   conversation.Snapshot
	width  int
	height int
	ready  bool
}

// Layout constants. They must stay at or above the heights rendered by
// View so the viewport never pushes the input off screen.
const (
	headerHeight    = 3 // title + subtitle + buffer
	inputRows       = 3
	inputAreaHeight = inputRows + 2 // textarea + border
	footerHeight    = 2
	sendWidth       = 10
)

// New creates a chat model bound to conv and subscribes to its updates.
func New(conv Conversation, opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(styles.ModeAuto)
	}
	keys := DefaultKeyMap()
	if opts.KeyMap != nil {
		keys = *opts.KeyMap
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("component", "chat").Logger()
	}

	ta := textarea.New()
	ta.KeyMap = textareaKeyMap(keys)
	ta.Placeholder = opts.Strings.Placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(inputRows)
	ta.Prompt = ""
	ta.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(theme.TypingSpinner),
	)

	m := Model{
		conv:     conv,
		theme:    theme,
		strings:  opts.Strings,
		keys:     keys,
		markdown: opts.Markdown,
		renderer: opts.Renderer,
		logger:   logger,
		input:    ta,
		viewport: viewport.New(defaultRenderWidth, 10),
		spinner:  sp,
		help:     help.New(),
	}
	if conv != nil {
		m.updates, m.unsubscribe = conv.Subscribe()
	}
	return m
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blink and the snapshot listener.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.updates != nil {
		cmds = append(cmds, waitForSnapshot(m.updates))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SnapshotMsg:
		return m.handleSnapshot(conversation.Snapshot(msg))

	case SubscriptionClosedMsg:
		m.updates = nil
		return m, tea.Quit

	case spinner.TickMsg:
		if !m.snap.Pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshViewport()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the whole screen.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := renderHeader(m.theme, m.strings, m.width)
	input := renderInputArea(m.theme, m.strings, m.input.View(), m.canSend())

	helpView := ""
	if m.help.ShowAll {
		helpView = m.help.View(m.keys)
	}
	footer := renderFooter(m.theme, m.strings, helpView, m.snap.Pending, m.width)

	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), input, footer)
}

// Close releases the snapshot subscription.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Snapshot returns the state the view last rendered.
func (m Model) Snapshot() conversation.Snapshot {
	return m.snap
}

// InputValue returns the current input text.
func (m Model) InputValue() string {
	return m.input.Value()
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true

	m.theme.SetSize(m.width, m.height)

	vpHeight := m.height - headerHeight - inputAreaHeight - footerHeight
	m.viewport.Width = clamp(m.width, 1, m.width)
	m.viewport.Height = clamp(vpHeight, 1, vpHeight)

	m.input.SetWidth(clamp(m.width-sendWidth-4, 10, m.width))
	m.help.Width = m.width

	if m.markdown && (m.renderer == nil || isGlamour(m.renderer)) {
		r, err := NewMarkdownRenderer(m.theme.IsDark, m.theme.BubbleWidth()-bubbleChrome)
		if err != nil {
			m.logger.Warn().Err(err).Msg("markdown disabled")
			m.markdown = false
		} else {
			m.renderer = glamourRenderer{r}
		}
	}

	m.refreshViewport()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit hands the input to the controller. The input is cleared only when
// the controller accepted it, so a rejected message stays editable.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.conv == nil {
		return m, nil
	}
	if !m.conv.Submit(m.input.Value()) {
		m.logger.Debug().Bool("pending", m.snap.Pending).Msg("submit rejected")
		return m, nil
	}
	m.input.Reset()
	return m, nil
}

func (m Model) handleSnapshot(snap conversation.Snapshot) (tea.Model, tea.Cmd) {
	wasPending := m.snap.Pending
	m.snap = snap
	m.refreshViewport()

	var cmds []tea.Cmd
	if m.updates != nil {
		cmds = append(cmds, waitForSnapshot(m.updates))
	}
	if snap.Pending && !wasPending {
		cmds = append(cmds, m.spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

// refreshViewport re-renders the transcript and keeps the newest row in
// view.
func (m *Model) refreshViewport() {
	frame := ""
	if m.snap.Pending {
		frame = m.spinner.View()
	}
	height := 0
	if m.snap.Empty() {
		height = m.viewport.Height
	}
	content := Render(m.snap, RenderOptions{
		Width:    m.viewport.Width,
		Height:   height,
		Theme:    m.theme,
		Strings:  m.strings,
		Markdown: m.renderer,
		Spinner:  frame,
	})
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}

// canSend reports whether Enter would be accepted right now.
func (m Model) canSend() bool {
	return !m.snap.Pending && strings.TrimSpace(m.input.Value()) != ""
}

// glamourRenderer marks renderers this model built itself, so they can be
// rebuilt for a new width on resize.
type glamourRenderer struct {
	MarkdownRenderer
}

func isGlamour(r MarkdownRenderer) bool {
	_, ok := r.(glamourRenderer)
	return ok
}
