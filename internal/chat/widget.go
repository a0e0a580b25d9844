// Package chat implements the assistant widget: a transcript of user and
// model turns, an input field, and the idle/loading/streaming state machine
// that gates sends.
package chat

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ziadkadry99/cyanguide/internal/llm"
)

// ErrorText replaces the model turn when a send fails.
const ErrorText = "Error: Could not connect to Gemini API. Please check your network or API key."

// State is the send state of the widget.
type State int

const (
	Idle State = iota
	Loading
	Streaming
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Streaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// Message is one transcript entry.
type Message struct {
	Role    llm.Role `json:"role"`
	Text    string   `json:"text"`
	IsError bool     `json:"is_error,omitempty"`
}

// Sender streams a reply to message. *llm.Client satisfies it.
type Sender interface {
	SendStreaming(ctx context.Context, message string) llm.Stream
}

// EventKind identifies what changed.
type EventKind int

const (
	EventOpened EventKind = iota
	EventClosed
	EventTranscript
	EventState
)

// Event is delivered to subscribers after every visible change. Views use
// EventOpened and EventTranscript to keep the newest entry in view.
type Event struct {
	Kind  EventKind
	State State
	// Len is the transcript length after the change.
	Len int
}

// Option configures a Widget.
type Option func(*Widget)

// WithGreeting seeds the transcript with a model turn.
func WithGreeting(text string) Option {
	return func(w *Widget) {
		if text != "" {
			w.transcript = append(w.transcript, Message{Role: llm.RoleModel, Text: text})
		}
	}
}

// KeepPartialOnError keeps text streamed before a failure and appends the
// error line after it instead of replacing it.
func KeepPartialOnError(keep bool) Option {
	return func(w *Widget) { w.keepPartial = keep }
}

// WithTimeout bounds each send. Zero means no limit beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(w *Widget) { w.timeout = d }
}

// Widget is safe for concurrent use. Visibility is independent of the send
// state, so Toggle works while a reply is streaming.
type Widget struct {
	sender      Sender
	keepPartial bool
	timeout     time.Duration

	mu         sync.Mutex
	open       bool
	input      string
	state      State
	transcript []Message
	subs       map[int]func(Event)
	nextSub    int
}

// New returns a closed, idle widget that sends through sender.
func New(sender Sender, opts ...Option) *Widget {
	w := &Widget{
		sender: sender,
		subs:   make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Widget) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open
}

func (w *Widget) Open()   { w.setOpen(func(bool) bool { return true }) }
func (w *Widget) Close()  { w.setOpen(func(bool) bool { return false }) }
func (w *Widget) Toggle() { w.setOpen(func(open bool) bool { return !open }) }

// setOpen applies next to the visibility flag under the lock and emits an
// event when it changed.
func (w *Widget) setOpen(next func(open bool) bool) {
	w.mu.Lock()
	open := next(w.open)
	if w.open == open {
		w.mu.Unlock()
		return
	}
	w.open = open
	kind := EventClosed
	if open {
		kind = EventOpened
	}
	ev := w.eventLocked(kind)
	w.mu.Unlock()
	w.emit(ev)
}

// SetInput replaces the pending input text.
func (w *Widget) SetInput(s string) {
	w.mu.Lock()
	w.input = s
	w.mu.Unlock()
}

func (w *Widget) Input() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.input
}

func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// InputEnabled reports whether a new message may be submitted.
func (w *Widget) InputEnabled() bool {
	return w.State() == Idle
}

// Transcript returns a copy of the conversation so far.
func (w *Widget) Transcript() []Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Message, len(w.transcript))
	copy(out, w.transcript)
	return out
}

// Subscribe registers fn for change events and returns a function that
// removes it. fn is called without the widget lock held.
func (w *Widget) Subscribe(fn func(Event)) (cancel func()) {
	w.mu.Lock()
	id := w.nextSub
	w.nextSub++
	w.subs[id] = fn
	w.mu.Unlock()
	return func() {
		w.mu.Lock()
		delete(w.subs, id)
		w.mu.Unlock()
	}
}

// Submit sends the pending input and blocks until the reply has finished
// streaming or failed. It reports false, changing nothing, when a send is
// already in flight or the input is blank.
func (w *Widget) Submit(ctx context.Context) bool {
	msg, ok := w.begin()
	if !ok {
		return false
	}
	w.consume(ctx, msg)
	return true
}

// Send is Submit without blocking. The returned channel is closed when the
// reply has finished; it is nil when the submission was rejected.
func (w *Widget) Send(ctx context.Context) (<-chan struct{}, bool) {
	msg, ok := w.begin()
	if !ok {
		return nil, false
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.consume(ctx, msg)
	}()
	return done, true
}

// begin appends the user turn and the empty model placeholder, clears the
// input and moves to Loading.
func (w *Widget) begin() (string, bool) {
	w.mu.Lock()
	msg := w.input
	if w.state != Idle || strings.TrimSpace(msg) == "" {
		w.mu.Unlock()
		return "", false
	}
	w.transcript = append(w.transcript,
		Message{Role: llm.RoleUser, Text: msg},
		Message{Role: llm.RoleModel},
	)
	w.input = ""
	w.state = Loading
	ev := w.eventLocked(EventTranscript)
	w.mu.Unlock()

	w.emit(ev)
	return msg, true
}

func (w *Widget) consume(ctx context.Context, msg string) {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	var acc strings.Builder
	for fragment, err := range w.sender.SendStreaming(ctx, msg) {
		if err != nil {
			w.fail(acc.String(), err)
			return
		}
		acc.WriteString(fragment)
		w.update(acc.String())
	}
	// A stream that ends because ctx expired without reporting it still
	// counts as a failure.
	if err := ctx.Err(); err != nil {
		w.fail(acc.String(), err)
		return
	}
	w.finish()
}

func (w *Widget) update(text string) {
	w.mu.Lock()
	w.state = Streaming
	w.transcript[len(w.transcript)-1].Text = text
	ev := w.eventLocked(EventTranscript)
	w.mu.Unlock()
	w.emit(ev)
}

func (w *Widget) finish() {
	w.mu.Lock()
	w.state = Idle
	ev := w.eventLocked(EventState)
	w.mu.Unlock()
	w.emit(ev)
}

func (w *Widget) fail(partial string, err error) {
	log.Printf("chat: send failed: %v", err)

	text := ErrorText
	if w.keepPartial && partial != "" {
		text = partial + "\n\n" + ErrorText
	}

	w.mu.Lock()
	last := &w.transcript[len(w.transcript)-1]
	last.Text = text
	last.IsError = true
	w.state = Idle
	ev := w.eventLocked(EventTranscript)
	w.mu.Unlock()
	w.emit(ev)
}

func (w *Widget) eventLocked(kind EventKind) Event {
	return Event{Kind: kind, State: w.state, Len: len(w.transcript)}
}

func (w *Widget) emit(ev Event) {
	w.mu.Lock()
	fns := make([]func(Event), 0, len(w.subs))
	for _, fn := range w.subs {
		fns = append(fns, fn)
	}
	w.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}
