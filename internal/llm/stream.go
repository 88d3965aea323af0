package llm

import (
	"context"
	"io"
)

// eventStream adapts a producer goroutine to the Stream interface. The
// producer writes events to a channel; Recv reads them until the channel
// closes, then reports io.EOF.
type eventStream struct {
	ctx    context.Context
	cancel context.CancelFunc
	events chan Event
}

// newEventStream spawns run in a goroutine and returns a Stream over its
// events. If run returns a non-nil error an EventError is emitted before
// the stream ends. Closing the stream cancels run's context.
func newEventStream(ctx context.Context, run func(ctx context.Context, out chan<- Event) error) *eventStream {
	ctx, cancel := context.WithCancel(ctx)
	events := make(chan Event, 32)
	go func() {
		defer close(events)
		if err := run(ctx, events); err != nil {
			select {
			case events <- Event{Type: EventError, Err: err}:
			case <-ctx.Done():
			}
		}
	}()
	return &eventStream{ctx: ctx, cancel: cancel, events: events}
}

// emit sends ev unless ctx is done. Producers use it so an abandoned
// stream never blocks them forever.
func emit(ctx context.Context, out chan<- Event, ev Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// Recv returns the next event. Delivered events are drained before
// cancellation is reported, so a completed response is never truncated by
// a late Close.
func (s *eventStream) Recv() (Event, error) {
	select {
	case ev, ok := <-s.events:
		return s.translate(ev, ok)
	default:
	}
	select {
	case ev, ok := <-s.events:
		return s.translate(ev, ok)
	case <-s.ctx.Done():
		return Event{}, s.ctx.Err()
	}
}

func (s *eventStream) translate(ev Event, ok bool) (Event, error) {
	if !ok {
		return Event{}, io.EOF
	}
	if ev.Type == EventError {
		return ev, ev.Err
	}
	return ev, nil
}

func (s *eventStream) Close() error {
	s.cancel()
	return nil
}
