// Package frame broadcasts one render frame notification per display tick
// to the listeners registered with it.
package frame

// ListenerID identifies a registered listener.
type ListenerID uint64

type listener struct {
	id ListenerID
	fn func()
}

// Broadcaster dispatches frames to listeners in registration order.
// It is only used from Bubbletea's single-threaded Update loop.
type Broadcaster struct {
	listeners []listener
	nextID    ListenerID
	frames    uint64
}

// New creates an empty Broadcaster.
func New() *Broadcaster {
	return &Broadcaster{}
}

// Add registers fn and returns the id used to remove it.
func (b *Broadcaster) Add(fn func()) ListenerID {
	b.nextID++
	b.listeners = append(b.listeners, listener{id: b.nextID, fn: fn})
	return b.nextID
}

// Remove unregisters the listener with the given id. Unknown ids are ignored.
func (b *Broadcaster) Remove(id ListenerID) {
	for i := len(b.listeners) - 1; i >= 0; i-- {
		if b.listeners[i].id == id {
			b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
			return
		}
	}
}

// Emit delivers one frame. A listener removed by an earlier listener during
// the same emit is not called.
func (b *Broadcaster) Emit() {
	b.frames++
	snapshot := b.listeners
	for _, l := range snapshot {
		if !b.has(l.id) {
			continue
		}
		l.fn()
	}
}

// Len returns the number of registered listeners.
func (b *Broadcaster) Len() int { return len(b.listeners) }

// Frames returns the number of frames emitted so far.
func (b *Broadcaster) Frames() uint64 { return b.frames }

func (b *Broadcaster) has(id ListenerID) bool {
	for _, l := range b.listeners {
		if l.id == id {
			return true
		}
	}
	return false
}
