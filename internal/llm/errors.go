package llm

import (
	"errors"
	"fmt"
	"sync/atomic"
)

var (
	// ErrStreamConsumed is yielded when a Stream is ranged over a second time.
	ErrStreamConsumed = errors.New("llm: stream already consumed")
	// ErrSessionBusy is yielded when a send starts while another send on the
	// same session is still streaming.
	ErrSessionBusy = errors.New("llm: session busy")
)

// RemoteServiceError reports that the hosted model could not be reached or
// returned an error. It is the only failure kind the chat layer recognizes;
// transient and permanent failures are not distinguished.
type RemoteServiceError struct {
	Provider string
	Op       string
	Err      error
}

func (e *RemoteServiceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *RemoteServiceError) Unwrap() error { return e.Err }

// IsRemoteServiceError reports whether err wraps a RemoteServiceError.
func IsRemoteServiceError(err error) bool {
	var rse *RemoteServiceError
	return errors.As(err, &rse)
}

// once makes seq non-restartable: a second range yields ErrStreamConsumed.
func once(seq Stream) Stream {
	var used atomic.Bool
	return func(yield func(string, error) bool) {
		if used.Swap(true) {
			yield("", ErrStreamConsumed)
			return
		}
		seq(yield)
	}
}

// busyGuard enforces one in-flight send per session.
type busyGuard struct{ busy atomic.Bool }

func (g *busyGuard) acquire() bool { return g.busy.CompareAndSwap(false, true) }
func (g *busyGuard) release()      { g.busy.Store(false) }
