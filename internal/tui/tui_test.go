package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ziadkadry99/cyanguide/internal/chat"
	"github.com/ziadkadry99/cyanguide/internal/clipboard"
	"github.com/ziadkadry99/cyanguide/internal/guide"
	"github.com/ziadkadry99/cyanguide/internal/llm"
)

func newModel(t *testing.T, widget *chat.Widget, clip clipboard.Writer) *Model {
	t.Helper()
	g, err := guide.Default()
	if err != nil {
		t.Fatalf("loading guide: %v", err)
	}
	m := New(context.Background(), g, widget, Options{Clipboard: clip, Style: "notty", CopyWindow: 50 * time.Millisecond})
	t.Cleanup(m.Close)
	m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	if m.Err() != nil {
		t.Fatalf("layout: %v", m.Err())
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		m.Update(key(k))
	}
}

// navigateTo moves the nav cursor to id and presses enter.
func navigateTo(t *testing.T, m *Model, id string) {
	t.Helper()
	press(m, "tab")
	target := m.indexOf(id)
	for m.cursor < target {
		press(m, "down")
	}
	for m.cursor > target {
		press(m, "up")
	}
	press(m, "enter")
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal(msg)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLayoutRendersEveryAnchor(t *testing.T) {
	m := newModel(t, nil, &clipboard.Memory{})

	anchors := m.guide.Anchors()
	if len(m.doc.rects) != len(anchors) {
		t.Fatalf("rects = %d, want %d", len(m.doc.rects), len(anchors))
	}
	prev := -1.0
	for _, id := range anchors {
		r := m.doc.rects[id]
		if r.Top <= prev {
			t.Errorf("%s starts at %v, not after %v", id, r.Top, prev)
		}
		prev = r.Top
	}

	view := m.View()
	for _, want := range []string{"Cyan Builder", "Host System", "tab: nav"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestNavEnterScrollsAndHighlights(t *testing.T) {
	m := newModel(t, nil, &clipboard.Memory{})

	navigateTo(t, m, "kernel-build")

	if got := m.Active(); got != "kernel-build" {
		t.Errorf("active = %q, want kernel-build", got)
	}
	offset := 8 // ceil(20% of the 37-line document panel)
	want := max(int(m.doc.rects["kernel-build"].Top)-offset, 0)
	if m.docView.YOffset != want {
		t.Errorf("scrolled to %d, want %d", m.docView.YOffset, want)
	}
	if m.focus != focusDoc {
		t.Error("enter should return focus to the document")
	}
}

func TestScrollingMovesActiveForward(t *testing.T) {
	m := newModel(t, nil, &clipboard.Memory{})

	last := m.indexOf(m.Active())
	for i := 0; i < 150; i++ {
		press(m, "down")
		cur := m.indexOf(m.Active())
		if cur < last {
			t.Fatalf("active moved backwards from %d to %d while scrolling down", last, cur)
		}
		last = cur
	}
	if last == 0 {
		t.Error("active never advanced")
	}
	if m.cursor != last {
		t.Errorf("nav cursor %d should follow active %d", m.cursor, last)
	}
}

func TestCopyKey(t *testing.T) {
	mem := &clipboard.Memory{}
	m := newModel(t, nil, mem)
	navigateTo(t, m, "kernel-build")

	i, ok := m.doc.sampleInView(m.docView.YOffset, m.docView.Height)
	if !ok {
		t.Fatal("expected a code sample in view")
	}
	press(m, "c")

	if mem.Text() != m.doc.samples[i].Code {
		t.Errorf("copied %q, want %q", mem.Text(), m.doc.samples[i].Code)
	}
	if label, _ := m.copyLabel(); label != clipboard.LabelCopied {
		t.Errorf("label = %q", label)
	}
	if !strings.Contains(m.View(), "c: "+clipboard.LabelCopied) {
		t.Error("status bar should show the copied label")
	}

	eventually(t, func() bool {
		label, _ := m.copyLabel()
		return label == clipboard.LabelCopy
	}, "label never reverted")
}

func TestCopyWithoutSampleInView(t *testing.T) {
	mem := &clipboard.Memory{}
	m := newModel(t, nil, mem)
	m.docView.SetYOffset(0)
	if _, ok := m.doc.sampleInView(0, m.docView.Height); ok {
		t.Skip("overview has a code sample in view")
	}
	press(m, "c")
	if mem.Writes() != 0 {
		t.Error("nothing should be copied")
	}
	if m.status == "" {
		t.Error("expected a status message")
	}
}

func TestChatPanel(t *testing.T) {
	g, _ := guide.Default()
	widget := chat.New(llm.NewClient(llm.NewFakeProvider(), llm.SessionConfig{}), chat.WithGreeting(g.Greeting()))
	m := newModel(t, widget, &clipboard.Memory{})
	docWidth := m.docView.Width

	press(m, "?")
	if !widget.IsOpen() || m.focus != focusChat {
		t.Fatal("? should open the assistant and focus its input")
	}
	if m.docView.Width >= docWidth {
		t.Error("document should narrow to make room for the panel")
	}
	if !strings.Contains(m.View(), "Build Assistant") {
		t.Error("panel header missing")
	}

	press(m, "h", "i", "enter")
	eventually(t, func() bool {
		return widget.State() == chat.Idle && len(widget.Transcript()) == 3
	}, "reply never finished")

	tr := widget.Transcript()
	if tr[1].Text != "hi" || tr[2].Text != "You asked: hi" {
		t.Errorf("transcript = %+v", tr)
	}
	if m.input.Value() != "" {
		t.Error("input should be cleared after sending")
	}

	m.Update(widgetMsg{})
	if !strings.Contains(m.chatView.View(), "You asked: hi") {
		t.Errorf("chat view should show the newest reply:\n%s", m.chatView.View())
	}

	press(m, "esc")
	if m.focus != focusDoc {
		t.Error("esc should leave the chat input")
	}
	press(m, "?")
	if widget.IsOpen() {
		t.Error("? should close the assistant")
	}
}

func TestChatBlankInputIgnored(t *testing.T) {
	widget := chat.New(llm.NewClient(llm.NewFakeProvider(), llm.SessionConfig{}))
	m := newModel(t, widget, &clipboard.Memory{})
	press(m, "?", " ", "enter")
	if len(widget.Transcript()) != 0 {
		t.Errorf("blank input should not be sent: %+v", widget.Transcript())
	}
}

func TestNoAssistant(t *testing.T) {
	m := newModel(t, nil, &clipboard.Memory{})
	press(m, "?")
	if m.status != "Assistant not configured" {
		t.Errorf("status = %q", m.status)
	}
	if m.Init() != nil {
		t.Error("Init should not wait on a missing widget")
	}
}

func TestResizeKeepsSection(t *testing.T) {
	m := newModel(t, nil, &clipboard.Memory{})
	navigateTo(t, m, "kernel-build")

	m.Update(tea.WindowSizeMsg{Width: 110, Height: 40})
	if got := m.Active(); got != "kernel-build" {
		t.Errorf("active after resize = %q", got)
	}
}

func TestRenderTranscript(t *testing.T) {
	msgs := []chat.Message{
		{Role: llm.RoleModel, Text: "Hello!"},
		{Role: llm.RoleUser, Text: "board?"},
		{Role: llm.RoleModel},
	}
	out := renderTranscript(msgs, chat.Loading, 40)
	for _, want := range []string{"Hello!", "You: board?", "thinking..."} {
		if !strings.Contains(out, want) {
			t.Errorf("transcript missing %q:\n%s", want, out)
		}
	}

	msgs[2] = chat.Message{Role: llm.RoleModel, Text: chat.ErrorText, IsError: true}
	if out := renderTranscript(msgs, chat.Idle, 200); !strings.Contains(out, chat.ErrorText) {
		t.Error("error text missing")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"Manual Source Configuration", 10, "Manual So…"},
		{"ab", 1, "a"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
