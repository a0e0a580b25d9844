// Package clipboard backs the copy buttons on code samples.
package clipboard

import (
	"errors"
	"sync"
	"time"

	sysclip "github.com/atotto/clipboard"
)

// DefaultWindow is how long a button shows "Copied!" after a click.
const DefaultWindow = 2 * time.Second

const (
	LabelCopy   = "Copy"
	LabelCopied = "Copied!"
)

// ErrUnsupported is returned by System when no clipboard utility is available
// (for example xclip or xsel on a headless Linux host).
var ErrUnsupported = errors.New("clipboard: not supported on this system")

// Writer writes text to a clipboard.
type Writer interface {
	WriteAll(text string) error
}

// System writes to the operating system clipboard.
type System struct{}

func (System) WriteAll(text string) error {
	if sysclip.Unsupported {
		return ErrUnsupported
	}
	return sysclip.WriteAll(text)
}

// Memory is an in-process clipboard.
type Memory struct {
	mu   sync.Mutex
	text string
	n    int
}

func (m *Memory) WriteAll(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	m.n++
	return nil
}

// Text returns the last written text.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// Writes returns how many times WriteAll was called.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.n
}

// Option configures a Button.
type Option func(*Button)

// WithWindow overrides DefaultWindow.
func WithWindow(d time.Duration) Option {
	return func(b *Button) { b.window = d }
}

// OnChange registers fn to be called with the new flag each time the button
// flips between copied and not copied. fn runs without the button lock held,
// possibly on a timer goroutine.
func OnChange(fn func(copied bool)) Option {
	return func(b *Button) { b.onChange = fn }
}

// Button copies one code sample. After a successful click it reports copied
// for the window, then reverts. Clicking again inside the window restarts it.
type Button struct {
	code     string
	writer   Writer
	window   time.Duration
	onChange func(bool)

	mu     sync.Mutex
	copied bool
	timer  *time.Timer
	gen    uint64
}

// NewButton returns a button that writes code to w.
func NewButton(code string, w Writer, opts ...Option) *Button {
	b := &Button{code: code, writer: w, window: DefaultWindow}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Code returns the literal text the button copies.
func (b *Button) Code() string { return b.code }

// Click writes the code to the clipboard. A write error leaves the flag
// unchanged.
func (b *Button) Click() error {
	if err := b.writer.WriteAll(b.code); err != nil {
		return err
	}

	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.gen++
	gen := b.gen
	flipped := !b.copied
	b.copied = true
	b.timer = time.AfterFunc(b.window, func() { b.revert(gen) })
	b.mu.Unlock()

	if flipped && b.onChange != nil {
		b.onChange(true)
	}
	return nil
}

func (b *Button) revert(gen uint64) {
	b.mu.Lock()
	if gen != b.gen || !b.copied {
		b.mu.Unlock()
		return
	}
	b.copied = false
	b.timer = nil
	b.mu.Unlock()

	if b.onChange != nil {
		b.onChange(false)
	}
}

// Copied reports whether the button is inside its copied window.
func (b *Button) Copied() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.copied
}

// Label returns the text shown on the button.
func (b *Button) Label() string {
	if b.Copied() {
		return LabelCopied
	}
	return LabelCopy
}

// Stop cancels a pending revert and resets the flag without notifying.
func (b *Button) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.gen++
	b.copied = false
}
