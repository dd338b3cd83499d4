package broadcast

import (
	"sync"

	"go.uber.org/zap"
)

const defaultQueueSize = 256

// dispatcher owns the subscriptions of one context and delivers events to
// them one at a time, in arrival order.
type dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]map[uint64]Handler
	nextID   uint64

	queue     chan Event
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	logger    *zap.Logger
}

func newDispatcher(queueSize int, logger *zap.Logger) *dispatcher {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	d := &dispatcher{
		handlers: make(map[string]map[uint64]Handler),
		queue:    make(chan Event, queueSize),
		done:     make(chan struct{}),
		logger:   logger,
	}

	d.wg.Add(1)
	go d.loop()

	return d
}

func (d *dispatcher) subscribe(key string, handler Handler) func() {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	if d.handlers[key] == nil {
		d.handlers[key] = make(map[uint64]Handler)
	}
	d.handlers[key][id] = handler
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()

			delete(d.handlers[key], id)
			if len(d.handlers[key]) == 0 {
				delete(d.handlers, key)
			}
		})
	}
}

func (d *dispatcher) enqueue(ev Event) bool {
	select {
	case <-d.done:
		return false
	default:
	}

	select {
	case d.queue <- ev:
		return true
	case <-d.done:
		return false
	}
}

// offer queues ev without waiting. It reports false when the context is
// closed or its queue is full.
func (d *dispatcher) offer(ev Event) bool {
	select {
	case <-d.done:
		return false
	default:
	}

	select {
	case d.queue <- ev:
		return true
	default:
		return false
	}
}

func (d *dispatcher) loop() {
	defer d.wg.Done()

	for {
		select {
		case ev := <-d.queue:
			d.dispatch(ev)
		case <-d.done:
			return
		}
	}
}

func (d *dispatcher) dispatch(ev Event) {
	d.mu.RLock()
	handlers := make([]Handler, 0, len(d.handlers[ev.Key]))
	for _, h := range d.handlers[ev.Key] {
		handlers = append(handlers, h)
	}
	d.mu.RUnlock()

	for _, h := range handlers {
		d.safeCall(h, ev)
	}
}

func (d *dispatcher) safeCall(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("storage event handler panicked",
				zap.String("key", ev.Key),
				zap.Any("panic", r),
			)
		}
	}()
	h(ev)
}

func (d *dispatcher) close() {
	d.closeOnce.Do(func() {
		close(d.done)
	})
	d.wg.Wait()
}
