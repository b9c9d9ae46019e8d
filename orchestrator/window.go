package orchestrator

const DefaultWindowSize = 5

// Window is a fixed-capacity FIFO of the most recent utterances, oldest first.
// It is owned by a single goroutine.
type Window struct {
	size int
	utts []Utterance
}

func NewWindow(size int) *Window {
	if size < 1 {
		size = DefaultWindowSize
	}
	return &Window{size: size, utts: make([]Utterance, 0, size)}
}

// Push evicts the oldest utterance when full, then appends u.
func (w *Window) Push(u Utterance) {
	if len(w.utts) == w.size {
		copy(w.utts, w.utts[1:])
		w.utts = w.utts[:len(w.utts)-1]
	}
	w.utts = append(w.utts, u)
}

// Snapshot returns a copy of the window contents, oldest first.
func (w *Window) Snapshot() []Utterance {
	out := make([]Utterance, len(w.utts))
	copy(out, w.utts)
	return out
}

func (w *Window) Len() int { return len(w.utts) }
func (w *Window) Cap() int { return w.size }
