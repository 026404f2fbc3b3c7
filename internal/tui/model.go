// Package tui renders the chat widget as a bubbletea program: a collapsed
// launcher line that opens into a chat panel.
package tui

import (
	"context"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"
	"github.com/longkey1/merokisan/internal/widget"
	"github.com/rs/zerolog/log"
)

const (
	appTitle             = "Mero Kisan"
	defaultMaxInputLines = 6
)

// Options configures the TUI.
type Options struct {
	// MaxInputLines bounds the auto-growing input box.
	MaxInputLines int
	// Notify raises a desktop notification for replies that arrive while
	// the panel is closed.
	Notify bool
	// Notifier delivers those notifications. Defaults to the desktop.
	Notifier func(title, message string) error
}

// eventMsg carries a widget event back onto the bubbletea loop.
type eventMsg struct {
	ev widget.Event
}

// notifiedMsg reports the outcome of a desktop notification.
type notifiedMsg struct {
	err error
}

// copiedMsg reports the outcome of a clipboard write.
type copiedMsg struct {
	err error
}

// Model is the bubbletea model wrapping a widget.
type Model struct {
	ctx  context.Context
	w    *widget.Widget
	opts Options

	input    textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap

	width  int
	height int
	ready  bool
	status string

	// what the list showed last time it was scrolled to the bottom
	shown listKey

	fx *effects
}

type listKey struct {
	count        int
	open         bool
	loading      bool
	transcribing bool
}

// New creates a TUI for w. Effects run with ctx.
func New(ctx context.Context, w *widget.Widget, opts Options) Model {
	if opts.MaxInputLines < 1 {
		opts.MaxInputLines = defaultMaxInputLines
	}
	if opts.Notifier == nil {
		opts.Notifier = desktopNotify
	}

	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.SetHeight(1)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = indicatorStyle

	m := Model{
		ctx:      ctx,
		w:        w,
		opts:     opts,
		input:    ta,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		help:     help.New(),
		keys:     defaultKeyMap(),
		fx:       &effects{},
	}
	m.syncInput()
	return m
}

// Widget returns the wrapped widget.
func (m Model) Widget() *widget.Widget {
	return m.w
}

// Wait refuses further effects and blocks until running ones return.
// Device handles they produce after this point are released.
func (m Model) Wait() {
	m.fx.close()
	m.fx.wait()
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case eventMsg:
		wasOpen := m.w.State().Open
		cmds = append(cmds, m.run(m.w.Apply(msg.ev)))
		if reply, ok := msg.ev.(widget.ChatReplied); ok && !wasOpen && m.opts.Notify {
			cmds = append(cmds, m.notify(reply.Reply))
		}
		m.syncInput()

	case notifiedMsg:
		if msg.err != nil {
			log.Debug().Err(msg.err).Msg("tui: desktop notification failed")
		}

	case copiedMsg:
		if msg.err != nil {
			log.Warn().Err(msg.err).Msg("tui: copy to clipboard failed")
			m.status = "Copy failed"
		} else {
			m.status = "Copied"
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		m.status = ""
		if key.Matches(msg, m.keys.Quit) {
			m.fx.close()
			m.w.Shutdown()
			return m, tea.Quit
		}
		if m.w.State().Open {
			cmds = append(cmds, m.handlePanelKey(msg))
		} else if key.Matches(msg, m.keys.Toggle, m.keys.Send) {
			m.w.SetOpen(true)
		}

	case tea.MouseMsg:
		if m.w.State().Open {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.layout()
	return m, tea.Batch(cmds...)
}

func (m *Model) handlePanelKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Toggle, m.keys.Close):
		m.w.SetOpen(false)
		return nil

	case key.Matches(msg, m.keys.Send):
		m.w.SetDraft(m.input.Value())
		cmd := m.run(m.w.Send())
		m.syncInput()
		return cmd

	case key.Matches(msg, m.keys.Newline):
		m.input.InsertString("\n")
		m.w.SetDraft(m.input.Value())
		return nil

	case key.Matches(msg, m.keys.Voice):
		m.w.SetDraft(m.input.Value())
		cmd := m.run(m.w.ToggleRecording())
		m.syncInput()
		return cmd

	case key.Matches(msg, m.keys.Language):
		m.w.ToggleLanguage()
		m.syncInput()
		return nil

	case key.Matches(msg, m.keys.Speak):
		return m.run(m.w.ReplayLast())

	case key.Matches(msg, m.keys.PageUp, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd

	case key.Matches(msg, m.keys.Copy):
		last, ok := m.w.LastBotMessage()
		if !ok {
			return nil
		}
		return copyText(last.Text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.w.SetDraft(m.input.Value())
	return cmd
}

// run turns a widget effect into a command whose result is fed back to Apply.
func (m Model) run(eff widget.Effect) tea.Cmd {
	if eff == nil {
		return nil
	}
	ctx, fx := m.ctx, m.fx
	return func() tea.Msg {
		if !fx.begin() {
			return nil
		}
		defer fx.done()
		ev := eff(ctx)
		if ev == nil {
			return nil
		}
		if fx.isClosed() {
			// the program is quitting and will not apply it
			widget.Release(ev)
			return nil
		}
		return eventMsg{ev: ev}
	}
}

// effects tracks commands running widget effects.
type effects struct {
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func (e *effects) begin() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	e.wg.Add(1)
	return true
}

func (e *effects) done() {
	e.wg.Done()
}

func (e *effects) close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}

func (e *effects) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

func (e *effects) wait() {
	e.wg.Wait()
}

// syncInput copies widget-owned input state into the text box.
func (m *Model) syncInput() {
	s := m.w.State()
	if m.input.Value() != s.Draft {
		m.input.SetValue(s.Draft)
	}
	m.input.Placeholder = s.Language.Placeholder()
}

func (m Model) notify(reply string) tea.Cmd {
	send := m.opts.Notifier
	return func() tea.Msg {
		return notifiedMsg{err: send(appTitle, reply)}
	}
}

func desktopNotify(title, message string) error {
	return beeep.Notify(title, message, "")
}

func copyText(text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{err: clipboard.WriteAll(text)}
	}
}
