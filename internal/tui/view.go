package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/longkey1/merokisan/internal/merokisan"
	"github.com/longkey1/merokisan/internal/widget"
)

const (
	micIdleLabel   = "🎤"
	micActiveLabel = "■ stop"
	sendLabel      = "Send"
)

// layout sizes the list and input to the window and keeps the list pinned
// to the newest message when the conversation or panel changes.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	s := m.w.State()

	frameW, frameH := panelStyle.GetFrameSize()
	inner := max(m.width-frameW, 10)

	m.input.SetWidth(max(inner-m.inputChromeWidth(s), 4))
	m.input.SetHeight(inputHeight(m.input.Value(), m.input.Width(), m.opts.MaxInputLines))

	// header + input row + help line
	chrome := 1 + m.input.Height() + 1
	m.viewport.Width = inner
	m.viewport.Height = max(m.height-frameH-chrome, 3)
	m.viewport.SetContent(m.renderMessages(s, inner))

	k := listKey{count: len(s.Messages), open: s.Open, loading: s.Loading, transcribing: s.Transcribing}
	if k != m.shown {
		m.viewport.GotoBottom()
		m.shown = k
	}
}

func (m Model) inputChromeWidth(s widget.State) int {
	return lipgloss.Width(m.languageButton(s)) + lipgloss.Width(m.micButton(s)) + lipgloss.Width(m.sendButton(s)) + 3
}

func (m Model) View() string {
	if !m.ready {
		return "\n  Starting " + appTitle + "…"
	}
	s := m.w.State()
	if !s.Open {
		return m.launcherView(s)
	}

	parts := []string{
		m.headerView(s),
		m.viewport.View(),
		m.inputView(s),
		m.footerView(),
	}
	return panelStyle.Width(max(m.width-2, 10)).Render(strings.Join(parts, "\n"))
}

func (m Model) launcherView(s widget.State) string {
	label := "💬 " + appTitle
	if s.Loading {
		label += " " + m.spinner.View()
	}
	if s.Speaking {
		label += " 🔊"
	}
	return launcherStyle.Render(label) + " " + controlStyle.Render("ctrl+o open · ctrl+c quit")
}

func (m Model) headerView(s widget.State) string {
	speak := "▶ replay"
	speakStyle := controlStyle
	if s.Speaking {
		speak = "■ stop"
		speakStyle = activeStyle
	}
	controls := strings.Join([]string{
		speakStyle.Render("[" + speak + "]"),
		controlStyle.Render("[copy]"),
		controlStyle.Render("[✕]"),
	}, " ")
	title := titleStyle.Render("🌾 " + appTitle)
	gap := max(m.viewport.Width-lipgloss.Width(title)-lipgloss.Width(controls), 1)
	return title + strings.Repeat(" ", gap) + controls
}

func (m Model) renderMessages(s widget.State, width int) string {
	body := lipgloss.NewStyle().Width(max(width, 1))

	var b strings.Builder
	for i, msg := range s.Messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		label := botLabelStyle.Render(appTitle)
		if msg.Sender == merokisan.SenderUser {
			label = userLabelStyle.Render("You")
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(body.Render(msg.Text))
	}
	switch {
	case s.Loading:
		b.WriteString("\n\n" + m.spinner.View() + indicatorStyle.Render(" Thinking…"))
	case s.Transcribing:
		b.WriteString("\n\n" + m.spinner.View() + indicatorStyle.Render(" Processing voice…"))
	case s.Recording:
		b.WriteString("\n\n" + activeStyle.Render("●") + indicatorStyle.Render(" Listening… ctrl+r to stop"))
	}
	return b.String()
}

func (m Model) inputView(s widget.State) string {
	return lipgloss.JoinHorizontal(lipgloss.Bottom,
		m.languageButton(s), " ",
		m.input.View(), " ",
		m.micButton(s), " ",
		m.sendButton(s),
	)
}

func (m Model) languageButton(s widget.State) string {
	return buttonStyle.Render(s.Language.Label())
}

func (m Model) micButton(s widget.State) string {
	if s.Recording {
		return activeStyle.Render(micActiveLabel)
	}
	if s.Transcribing {
		return disabledButtonStyle.Render(micIdleLabel)
	}
	return controlStyle.Render(micIdleLabel)
}

func (m Model) sendButton(s widget.State) string {
	if s.Loading || strings.TrimSpace(s.Draft) == "" {
		return disabledButtonStyle.Render(sendLabel)
	}
	return buttonStyle.Render(sendLabel)
}

func (m Model) footerView() string {
	if m.status != "" {
		return statusStyle.Render(m.status)
	}
	return m.help.ShortHelpView(m.keys.ShortHelp())
}
