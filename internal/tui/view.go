package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ziadkadry99/cyanguide/internal/chat"
	"github.com/ziadkadry99/cyanguide/internal/clipboard"
	"github.com/ziadkadry99/cyanguide/internal/llm"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n"
	}
	if !m.ready {
		return "Loading guide..."
	}

	inner := m.docView.Height
	panels := []string{
		m.panel(m.navView(inner), navWidth-2, inner, m.focus == focusNav),
		m.panel(m.docView.View(), m.docView.Width, inner, m.focus == focusDoc),
	}
	if m.chatOpen() {
		panels = append(panels, m.panel(m.chatPanel(inner), chatWidth-2, inner, m.focus == focusChat))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, panels...),
		m.statusBar(),
	)
}

func (m *Model) panel(content string, width, height int, focused bool) string {
	style := panelStyle
	if focused {
		style = focusedPanelStyle
	}
	return style.Width(width).Height(height).MaxHeight(height + 2).Render(content)
}

func (m *Model) navView(height int) string {
	brand := strings.TrimSuffix(m.guide.Title(), " Guide")
	lines := []string{brandStyle.Render(brand), ""}

	rows := height - len(lines)
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	active := m.tracker.Active()
	for i := start; i < len(m.entries) && i-start < rows; i++ {
		e := m.entries[i]
		prefix := "  "
		if m.focus == focusNav && i == m.cursor {
			prefix = cursorStyle.Render("> ")
		}
		title := truncate(strings.Repeat("  ", e.Depth-1)+e.Title, navWidth-6)
		style := navItemStyle
		if e.ID == active {
			style = navActiveStyle
		}
		lines = append(lines, prefix+style.Render(title))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) chatPanel(height int) string {
	header := chatTitle.Render("Build Assistant") + statusStyle.Render(" "+m.widget.State().String())
	input := m.input.View()
	if !m.widget.InputEnabled() {
		input = pendingStyle.Render("waiting for reply...")
	}
	m.chatView.Height = max(height-2, 1)
	return lipgloss.JoinVertical(lipgloss.Left, header, m.chatView.View(), input)
}

// renderTranscript formats the conversation for a panel width columns wide.
func renderTranscript(msgs []chat.Message, state chat.State, width int) string {
	wrap := lipgloss.NewStyle().Width(max(width, 10))
	var parts []string
	for i, msg := range msgs {
		var text string
		switch {
		case msg.Role == llm.RoleUser:
			text = userStyle.Render("You: ") + msg.Text
		case msg.IsError:
			text = errorStyle.Render(msg.Text)
		case msg.Text == "" && i == len(msgs)-1 && state == chat.Loading:
			text = pendingStyle.Render("thinking...")
		default:
			text = modelStyle.Render("Assistant: ") + msg.Text
		}
		parts = append(parts, wrap.Render(text))
	}
	return strings.Join(parts, "\n\n")
}

func (m *Model) statusBar() string {
	var parts []string
	if label, ok := m.copyLabel(); ok {
		if label == clipboard.LabelCopied {
			parts = append(parts, copiedStyle.Render("c: "+label))
		} else {
			parts = append(parts, "c: "+label)
		}
	}
	parts = append(parts, "tab: nav", "?: assistant", "q: quit")
	if m.status != "" {
		parts = append(parts, m.status)
	}
	pct := 100
	if m.doc != nil && m.doc.lines > m.docView.Height {
		pct = int(m.docView.ScrollPercent() * 100)
	}
	parts = append(parts, fmt.Sprintf("%d%%", pct))
	return statusStyle.Render(strings.Join(parts, " • "))
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
