package tracker

import (
	"sync"
)

// focusLatch is the one-shot state machine behind the deep-link focus: it
// fires exactly once, the first time the requested train renders after
// startup.
type focusLatch struct {
	mu     sync.Mutex
	target string
	fired  bool
}

func newFocusLatch(target string) *focusLatch {
	return &focusLatch{target: target}
}

func (f *focusLatch) Target() string {
	return f.target
}

// Fire reports true when trainIdent is the pending target; every later call
// returns false.
func (f *focusLatch) Fire(trainIdent string) bool {
	if f.target == "" || trainIdent != f.target {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fired {
		return false
	}

	f.fired = true
	return true
}
