package motion

import "sync"

// ButtonEvent is delivered to subscribers when a mapped button changes.
type ButtonEvent struct {
	Control Control `json:"control"`
	Channel Channel `json:"channel"`
	Index   int     `json:"index"`
	Value   float64 `json:"value"`
	Pressed bool    `json:"pressed"`
	Touched bool    `json:"touched"`
}

// Observer receives notifications from an Observable.
type Observer[T any] func(T)

// Observable is a list of observers notified in registration order.
type Observable[T any] struct {
	mu        sync.RWMutex
	observers map[int]Observer[T]
	order     []int
	next      int
}

func NewObservable[T any]() *Observable[T] {
	return &Observable[T]{observers: make(map[int]Observer[T])}
}

// Add registers fn and returns a function that removes it again.
func (o *Observable[T]) Add(fn Observer[T]) (remove func()) {
	o.mu.Lock()
	id := o.next
	o.next++
	o.observers[id] = fn
	o.order = append(o.order, id)
	o.mu.Unlock()
	return func() { o.remove(id) }
}

func (o *Observable[T]) remove(id int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.observers[id]; !ok {
		return
	}
	delete(o.observers, id)
	for i, v := range o.order {
		if v == id {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
}

// HasObservers reports whether anyone is listening.
func (o *Observable[T]) HasObservers() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.order) > 0
}

// Notify calls every observer synchronously. Observers may unsubscribe while
// being notified.
func (o *Observable[T]) Notify(v T) {
	o.mu.RLock()
	fns := make([]Observer[T], 0, len(o.order))
	for _, id := range o.order {
		fns = append(fns, o.observers[id])
	}
	o.mu.RUnlock()
	for _, fn := range fns {
		fn(v)
	}
}
