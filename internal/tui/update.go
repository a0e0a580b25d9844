package tui

import tea "github.com/charmbracelet/bubbletea"

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case widgetMsg:
		m.refreshChat()
		return m, m.waitForWidget()

	case copyRevertMsg:
		return m, nil

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.docView, cmd = m.docView.Update(msg)
		m.syncTracker()
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.focus == focusChat {
		return m.handleChatKey(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab":
		if m.focus == focusNav {
			m.focus = focusDoc
		} else {
			m.focus = focusNav
			m.cursor = m.indexOf(m.tracker.Active())
		}
		return m, nil
	case "?":
		return m, m.toggleChat()
	case "c":
		return m, m.copySample()
	}

	if m.focus == focusNav {
		switch msg.String() {
		case "up", "k":
			m.cursor = max(m.cursor-1, 0)
		case "down", "j":
			m.cursor = min(m.cursor+1, len(m.entries)-1)
		case "enter":
			m.navigate(m.entries[m.cursor].ID)
			m.focus = focusDoc
		case "esc":
			m.focus = focusDoc
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.docView, cmd = m.docView.Update(msg)
	m.syncTracker()
	return m, cmd
}

func (m *Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.focus = focusDoc
		m.input.Blur()
		return m, nil
	case tea.KeyTab:
		m.focus = focusDoc
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		if !m.widget.InputEnabled() {
			return m, nil
		}
		m.widget.SetInput(m.input.Value())
		if _, ok := m.widget.Send(m.ctx); ok {
			m.input.Reset()
		}
		m.refreshChat()
		return m, nil
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd
	}

	if msg.String() == "?" && m.input.Value() == "" {
		return m, m.toggleChat()
	}
	if !m.widget.InputEnabled() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) toggleChat() tea.Cmd {
	if m.widget == nil {
		m.status = "Assistant not configured"
		return nil
	}
	m.widget.Toggle()
	var cmd tea.Cmd
	if m.widget.IsOpen() {
		m.focus = focusChat
		cmd = m.input.Focus()
	} else {
		m.focus = focusDoc
		m.input.Blur()
	}
	m.layout()
	return cmd
}

// refreshChat re-renders the transcript and keeps the newest message in view.
func (m *Model) refreshChat() {
	if m.widget == nil {
		return
	}
	m.chatView.SetContent(renderTranscript(m.widget.Transcript(), m.widget.State(), m.chatView.Width))
	m.chatView.GotoBottom()
}
