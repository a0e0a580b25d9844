// Package nav keeps the navigation panel's highlighted entry in step with the
// part of the guide the reader is looking at.
//
// A Tracker watches a set of anchors. Layout updates are turned into
// intersection batches against an activation band (the viewport minus a top
// and bottom margin); every anchor that starts intersecting the band becomes
// active, the last one in a batch winning. Clicking a nav entry sets the
// active anchor immediately and returns where to scroll; the next layout
// update confirms or overrides it.
package nav

import (
	"errors"
	"sync"
)

// ErrUnknownAnchor is returned by Navigate for an id that is not observed.
var ErrUnknownAnchor = errors.New("nav: unknown anchor")

// DefaultOffset is the distance kept between the viewport top and a
// navigated-to anchor.
const DefaultOffset = 80

// DefaultMargin excludes the top 20% and bottom 60% of the viewport.
var DefaultMargin = Margin{Top: 0.20, Bottom: 0.60}

// Margin is the fraction of the viewport height cut from each edge when
// computing the activation band.
type Margin struct {
	Top    float64
	Bottom float64
}

// Band returns the half-open activation band [start, end) for a viewport
// that starts at top and is height tall.
func (m Margin) Band(top, height float64) (start, end float64) {
	return top + m.Top*height, top + height - m.Bottom*height
}

// Rect is an anchor's vertical extent in document coordinates.
type Rect struct {
	Top    float64
	Height float64
}

// Viewport is the visible slice of the document.
type Viewport struct {
	Top    float64
	Height float64
}

// Entry reports a change in one anchor's intersection with the band.
type Entry struct {
	ID           string
	Intersecting bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithMargin overrides DefaultMargin.
func WithMargin(m Margin) Option {
	return func(t *Tracker) { t.margin = m }
}

// WithOffset overrides DefaultOffset.
func WithOffset(offset float64) Option {
	return func(t *Tracker) { t.offset = offset }
}

// Tracker is safe for concurrent use.
type Tracker struct {
	margin Margin
	offset float64

	mu           sync.Mutex
	order        []string
	observed     map[string]bool
	intersecting map[string]bool
	rects        map[string]Rect
	active       string
	subs         map[int]func(string)
	nextSub      int
	disconnected bool
}

// NewTracker returns a tracker observing ids. The first id starts active.
func NewTracker(ids []string, opts ...Option) *Tracker {
	t := &Tracker{
		margin:       DefaultMargin,
		offset:       DefaultOffset,
		observed:     make(map[string]bool),
		intersecting: make(map[string]bool),
		rects:        make(map[string]Rect),
		subs:         make(map[int]func(string)),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.Observe(ids...)
	return t
}

// Observe registers more anchors. Already observed ids are ignored.
func (t *Tracker) Observe(ids ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.disconnected {
		return
	}
	for _, id := range ids {
		if id == "" || t.observed[id] {
			continue
		}
		t.observed[id] = true
		t.order = append(t.order, id)
	}
	if t.active == "" && len(t.order) > 0 {
		t.active = t.order[0]
	}
}

// Observed returns the watched ids in registration order.
func (t *Tracker) Observed() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Active returns the highlighted anchor id.
func (t *Tracker) Active() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Subscribe registers fn to be called with the new id whenever the active
// anchor changes. The returned function removes it.
func (t *Tracker) Subscribe(fn func(active string)) (cancel func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.disconnected {
		return func() {}
	}
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	return func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
}

// Update records anchor geometry and applies the resulting batch. Only
// anchors whose intersection with the band changed are reported, in
// registration order. Anchors missing from rects keep their last geometry.
func (t *Tracker) Update(rects map[string]Rect, vp Viewport) []Entry {
	t.mu.Lock()
	if t.disconnected {
		t.mu.Unlock()
		return nil
	}
	for id, r := range rects {
		if t.observed[id] {
			t.rects[id] = r
		}
	}
	start, end := t.margin.Band(vp.Top, vp.Height)
	var batch []Entry
	for _, id := range t.order {
		r, ok := t.rects[id]
		if !ok {
			continue
		}
		in := r.Top < end && r.Top+r.Height > start
		// A zero-height anchor intersects when it sits inside the band.
		if r.Height == 0 {
			in = r.Top >= start && r.Top < end
		}
		if in != t.intersecting[id] {
			t.intersecting[id] = in
			batch = append(batch, Entry{ID: id, Intersecting: in})
		}
	}
	fns, changed := t.applyLocked(batch)
	t.mu.Unlock()

	t.notify(fns, changed)
	return batch
}

// HandleBatch applies an intersection batch: each intersecting entry in
// turn becomes active. Entries for unobserved ids are skipped.
func (t *Tracker) HandleBatch(batch []Entry) {
	t.mu.Lock()
	if t.disconnected {
		t.mu.Unlock()
		return
	}
	fns, changed := t.applyLocked(batch)
	t.mu.Unlock()
	t.notify(fns, changed)
}

func (t *Tracker) applyLocked(batch []Entry) ([]func(string), string) {
	prev := t.active
	for _, e := range batch {
		if e.Intersecting && t.observed[e.ID] {
			t.active = e.ID
		}
	}
	if t.active == prev {
		return nil, ""
	}
	return t.subscribersLocked(), t.active
}

// Navigate makes id active immediately and returns the scroll position that
// puts its anchor the configured offset below the viewport top. Without
// known geometry the target is 0.
func (t *Tracker) Navigate(id string) (float64, error) {
	t.mu.Lock()
	if t.disconnected || !t.observed[id] {
		t.mu.Unlock()
		return 0, ErrUnknownAnchor
	}
	target := t.rects[id].Top - t.offset
	if target < 0 {
		target = 0
	}
	var fns []func(string)
	if t.active != id {
		t.active = id
		fns = t.subscribersLocked()
	}
	t.mu.Unlock()

	t.notify(fns, id)
	return target, nil
}

// Disconnect releases every observation and subscriber. Later updates and
// batches are ignored.
func (t *Tracker) Disconnect() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disconnected = true
	t.order = nil
	t.observed = map[string]bool{}
	t.intersecting = map[string]bool{}
	t.rects = map[string]Rect{}
	t.subs = map[int]func(string){}
}

// Connected reports whether Disconnect has not been called.
func (t *Tracker) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.disconnected
}

func (t *Tracker) subscribersLocked() []func(string) {
	fns := make([]func(string), 0, len(t.subs))
	for _, fn := range t.subs {
		fns = append(fns, fn)
	}
	return fns
}

func (t *Tracker) notify(fns []func(string), active string) {
	for _, fn := range fns {
		fn(active)
	}
}
