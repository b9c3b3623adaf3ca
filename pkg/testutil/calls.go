package testutil

import "sync"

// CallLog records subscriber invocations in order.
type CallLog struct {
	mu    sync.Mutex
	calls []string
}

// Record returns a callback that appends name to the log each time it runs.
func (l *CallLog) Record(name string) func() {
	return func() {
		l.mu.Lock()
		l.calls = append(l.calls, name)
		l.mu.Unlock()
	}
}

// Calls returns a copy of the recorded names.
func (l *CallLog) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.calls))
	copy(out, l.calls)
	return out
}

// Count returns how many times name was recorded.
func (l *CallLog) Count(name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, c := range l.calls {
		if c == name {
			n++
		}
	}
	return n
}

// Reset forgets everything recorded so far.
func (l *CallLog) Reset() {
	l.mu.Lock()
	l.calls = nil
	l.mu.Unlock()
}
