package eventlog

import (
	"context"
	"time"
)

// pollInterval bounds how long a subscriber can wait between a wake signal
// being missed (e.g. because no one was listening yet) and its next poll.
// Grounded on tail-claude's watcher.go debounce/fallback-poll pairing.
const pollInterval = 2 * time.Second

// SubscribeResult is one item delivered by Subscribe: either an Event or a
// terminal error. The channel is closed after an error or when ctx is done.
type SubscribeResult struct {
	Event Event
	Err   error
}

// wake notifies any goroutine currently blocked in Subscribe for stream
// that new data may be available. It never blocks: a missed wake is
// recovered by the subscriber's own poll-interval fallback.
func (s *Store) wake(stream string) {
	s.subMu.Lock()
	chans := s.waiters[stream]
	s.waiters[stream] = nil
	s.subMu.Unlock()

	for _, ch := range chans {
		close(ch)
	}
}

func (s *Store) registerWaiter(stream string) chan struct{} {
	ch := make(chan struct{})
	s.subMu.Lock()
	s.waiters[stream] = append(s.waiters[stream], ch)
	s.subMu.Unlock()
	return ch
}

// Subscribe streams every event appended to stream with Seq > fromSeq,
// starting with a catch-up read of whatever is already durable. It is
// restartable: calling Subscribe again with the last seen Seq resumes
// without gaps or duplicates. The returned channel is closed when ctx is
// cancelled or a read fails.
//
// This is a catch-up-then-subscribe pattern: a single-process poll loop
// stands in for LISTEN/NOTIFY, since SQLite has no notification channel.
func (s *Store) Subscribe(ctx context.Context, stream string, fromSeq int64) <-chan SubscribeResult {
	out := make(chan SubscribeResult)

	go func() {
		defer close(out)

		last := fromSeq
		for {
			events, err := s.Read(ctx, stream, last, 256)
			if err != nil {
				select {
				case out <- SubscribeResult{Err: err}:
				case <-ctx.Done():
				}
				return
			}

			for _, e := range events {
				select {
				case out <- SubscribeResult{Event: e}:
					last = e.Seq
				case <-ctx.Done():
					return
				}
			}

			if len(events) > 0 {
				continue // drain without waiting; more may already be durable
			}

			waiter := s.registerWaiter(stream)
			timer := time.NewTimer(pollInterval)
			select {
			case <-waiter:
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return
			}
			timer.Stop()
		}
	}()

	return out
}
