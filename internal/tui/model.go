// Package tui is the interactive terminal reader: a navigation panel kept in
// step with the document scroll position, copyable code samples and the
// build assistant in a side panel.
package tui

import (
	"context"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ziadkadry99/cyanguide/internal/chat"
	"github.com/ziadkadry99/cyanguide/internal/clipboard"
	"github.com/ziadkadry99/cyanguide/internal/guide"
	"github.com/ziadkadry99/cyanguide/internal/nav"
	"github.com/ziadkadry99/cyanguide/internal/site"
)

type focus int

const (
	focusDoc focus = iota
	focusNav
	focusChat
)

const (
	navWidth     = 32
	chatWidth    = 44
	minDocWidth  = 30
	statusHeight = 1
)

// Options configures the reader.
type Options struct {
	// Clipboard receives copied code. Defaults to the system clipboard.
	Clipboard clipboard.Writer
	// Style is a glamour style name; "" or "auto" picks one from the terminal.
	Style string
	// CopyWindow overrides clipboard.DefaultWindow.
	CopyWindow time.Duration
}

type navEntry struct {
	ID    string
	Title string
	Depth int
}

type (
	widgetMsg     struct{}
	copyRevertMsg struct{}
)

// Model is the bubbletea model of the reader.
type Model struct {
	ctx     context.Context
	guide   *guide.Guide
	widget  *chat.Widget
	clip    clipboard.Writer
	style   string
	window  time.Duration
	entries []navEntry

	tracker *nav.Tracker
	doc     *document
	docView viewport.Model

	chatView viewport.Model
	input    textinput.Model
	notify   chan struct{}
	cancel   func()

	buttons map[int]*clipboard.Button
	status  string

	width, height int
	focus         focus
	cursor        int
	ready         bool
	err           error
}

// New returns a reader for g. A nil widget disables the assistant panel.
func New(ctx context.Context, g *guide.Guide, widget *chat.Widget, opts Options) *Model {
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.System{}
	}
	if opts.CopyWindow <= 0 {
		opts.CopyWindow = clipboard.DefaultWindow
	}

	m := &Model{
		ctx:     ctx,
		guide:   g,
		widget:  widget,
		clip:    opts.Clipboard,
		style:   opts.Style,
		window:  opts.CopyWindow,
		tracker: nav.NewTracker(g.Anchors()),
		buttons: make(map[int]*clipboard.Button),
		notify:  make(chan struct{}, 1),
	}
	g.Walk(func(s *guide.Section, depth int) bool {
		m.entries = append(m.entries, navEntry{ID: s.ID, Title: site.NavTitle(s.Title, depth), Depth: depth})
		return true
	})

	m.chatView = viewport.New(chatWidth-2, 10)
	m.input = textinput.New()
	m.input.Placeholder = "Ask about the build..."
	m.input.Prompt = "> "

	if widget != nil {
		// Coalesced: the view always reads the widget's current state.
		m.cancel = widget.Subscribe(func(chat.Event) {
			select {
			case m.notify <- struct{}{}:
			default:
			}
		})
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.widget == nil {
		return nil
	}
	return m.waitForWidget()
}

func (m *Model) waitForWidget() tea.Cmd {
	return func() tea.Msg {
		<-m.notify
		return widgetMsg{}
	}
}

// Active returns the highlighted section id.
func (m *Model) Active() string { return m.tracker.Active() }

// Err returns the last rendering error, if any.
func (m *Model) Err() error { return m.err }

// Close releases the tracker and the widget subscription.
func (m *Model) Close() {
	m.tracker.Disconnect()
	if m.cancel != nil {
		m.cancel()
	}
	for _, b := range m.buttons {
		b.Stop()
	}
}

func (m *Model) chatOpen() bool { return m.widget != nil && m.widget.IsOpen() }

// layout sizes the panels for the current window and re-renders the
// document when its width changed.
func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	inner := max(m.height-statusHeight-2, 1)

	docWidth := m.width - navWidth
	if m.chatOpen() {
		docWidth -= chatWidth
	}
	docWidth = max(docWidth, minDocWidth)

	if !m.ready || m.docView.Width != docWidth-2 || m.docView.Height != inner {
		active := m.tracker.Active()
		doc, err := renderDocument(m.guide, docWidth-2, m.style)
		if err != nil {
			m.err = err
			return
		}
		m.doc = doc
		if !m.ready {
			m.docView = viewport.New(docWidth-2, inner)
		}
		m.docView.Width = docWidth - 2
		m.docView.Height = inner
		m.docView.SetContent(doc.content)

		// The offset puts a navigated anchor at the top of the activation band.
		m.tracker.Disconnect()
		m.tracker = nav.NewTracker(m.guide.Anchors(), nav.WithOffset(math.Ceil(nav.DefaultMargin.Top*float64(inner))))
		if m.ready {
			m.navigate(active)
		}
		m.ready = true
	}

	m.chatView.Width = chatWidth - 2
	m.chatView.Height = max(inner-2, 1)
	m.input.Width = chatWidth - 6
	m.syncTracker()
	m.refreshChat()
}

// syncTracker feeds the current scroll position to the tracker.
func (m *Model) syncTracker() {
	if m.doc == nil {
		return
	}
	m.tracker.Update(m.doc.rects, nav.Viewport{Top: float64(m.docView.YOffset), Height: float64(m.docView.Height)})
	if m.focus != focusNav {
		m.cursor = m.indexOf(m.tracker.Active())
	}
}

// navigate scrolls the document to id's anchor.
func (m *Model) navigate(id string) {
	target, err := m.tracker.Navigate(id)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.docView.SetYOffset(int(target))
	m.syncTracker()
}

func (m *Model) indexOf(id string) int {
	for i, e := range m.entries {
		if e.ID == id {
			return i
		}
	}
	return 0
}

// copySample copies the first code sample in view.
func (m *Model) copySample() tea.Cmd {
	if m.doc == nil {
		return nil
	}
	i, ok := m.doc.sampleInView(m.docView.YOffset, m.docView.Height)
	if !ok {
		m.status = "No code sample in view"
		return nil
	}
	b, ok := m.buttons[i]
	if !ok {
		b = clipboard.NewButton(m.doc.samples[i].Code, m.clip, clipboard.WithWindow(m.window))
		m.buttons[i] = b
	}
	if err := b.Click(); err != nil {
		m.status = "Copy failed: " + err.Error()
		return nil
	}
	m.status = ""
	return tea.Tick(m.window+10*time.Millisecond, func(time.Time) tea.Msg { return copyRevertMsg{} })
}

// copyLabel is the label of the button for the sample in view.
func (m *Model) copyLabel() (string, bool) {
	if m.doc == nil {
		return "", false
	}
	i, ok := m.doc.sampleInView(m.docView.YOffset, m.docView.Height)
	if !ok {
		return "", false
	}
	if b, ok := m.buttons[i]; ok {
		return b.Label(), true
	}
	return clipboard.LabelCopy, true
}
