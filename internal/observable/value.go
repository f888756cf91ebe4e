// Package observable provides a value holder that notifies subscribers of
// every change.
package observable

import "sync"

// Value holds a current value of type T. Subscribers receive the latest
// value; intermediate values may be skipped when a subscriber falls behind.
type Value[T any] struct {
	mu     sync.RWMutex
	cur    T
	nextID int
	subs   map[int]chan T
}

func New[T any](initial T) *Value[T] {
	return &Value[T]{cur: initial, subs: make(map[int]chan T)}
}

func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cur
}

// Set stores x and delivers it to every subscriber without blocking.
func (v *Value[T]) Set(x T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cur = x
	for _, ch := range v.subs {
		deliver(ch, x)
	}
}

// Subscribe returns a channel that immediately carries the current value and
// then every subsequent one. The returned func unsubscribes and closes the
// channel; it is safe to call more than once.
func (v *Value[T]) Subscribe() (<-chan T, func()) {
	ch := make(chan T, 1)

	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.subs[id] = ch
	ch <- v.cur
	v.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.subs, id)
			close(ch)
			v.mu.Unlock()
		})
	}
}

// deliver replaces any pending value in ch with x. Callers hold v.mu, so
// there is no competing sender.
func deliver[T any](ch chan T, x T) {
	select {
	case ch <- x:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- x
}
