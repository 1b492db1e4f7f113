package server

import "sync"

// notifier broadcasts reload signals to subscribed event streams.
// Listeners receive an empty struct and re-read the dataset.
type notifier struct {
	mu        sync.RWMutex
	listeners map[chan struct{}]struct{}
}

func newNotifier() *notifier {
	return &notifier{
		listeners: make(map[chan struct{}]struct{}),
	}
}

// subscribe returns a channel that receives a ping after every reload.
// The caller must call unsubscribe when done.
func (n *notifier) subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

func (n *notifier) unsubscribe(ch chan struct{}) {
	n.mu.Lock()
	delete(n.listeners, ch)
	n.mu.Unlock()
	close(ch)
}

// broadcast pings every listener without blocking. A listener with a
// pending ping is skipped.
func (n *notifier) broadcast() {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
