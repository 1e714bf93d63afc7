package notification

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// AsyncNotifier decouples notification delivery from the request that
// produced it: Notify enqueues and returns immediately, a single worker
// drains the queue, and delivery failures are logged, never propagated.
type AsyncNotifier struct {
	sink    Notifier
	queue   chan Notification
	wg      sync.WaitGroup
	closeMu sync.Mutex
	closed  bool
}

func NewAsyncNotifier(sink Notifier, buffer int) *AsyncNotifier {
	if buffer <= 0 {
		buffer = 256
	}
	a := &AsyncNotifier{
		sink:  sink,
		queue: make(chan Notification, buffer),
	}
	a.wg.Add(1)
	go a.run()
	return a
}

func (a *AsyncNotifier) run() {
	defer a.wg.Done()
	for n := range a.queue {
		if err := a.sink.Notify(n); err != nil {
			log.Warn().Err(err).
				Uint("user_id", n.UserID).
				Str("type", n.Type).
				Uint("reference_id", n.ReferenceID).
				Msg("Notification delivery failed")
		}
	}
}

// Notify never blocks the caller: when the queue is full the notification
// is dropped and logged, matching the fire-and-forget contract.
func (a *AsyncNotifier) Notify(n Notification) error {
	a.closeMu.Lock()
	defer a.closeMu.Unlock()
	if a.closed {
		return nil
	}
	select {
	case a.queue <- n:
	default:
		log.Warn().Uint("user_id", n.UserID).Str("type", n.Type).Msg("Notification queue full, dropping")
	}
	return nil
}

// Close drains the queue and stops the worker.
func (a *AsyncNotifier) Close() {
	a.closeMu.Lock()
	if a.closed {
		a.closeMu.Unlock()
		return
	}
	a.closed = true
	close(a.queue)
	a.closeMu.Unlock()
	a.wg.Wait()
}
