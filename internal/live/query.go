package live

import "context"

// Result is one delivery of a live query.
type Result[T any] struct {
	Value T
	Err   error
}

// Query observes load: it delivers the current result immediately, then
// re-runs load and delivers again after every change to one of tables. The
// channel is closed once ctx is done; subscribe again to restart.
//
// The subscription is taken before the first load so a write landing
// between the initial read and the subscription is not missed.
func Query[T any](ctx context.Context, h *Hub, load func(context.Context) (T, error), tables ...Table) <-chan Result[T] {
	out := make(chan Result[T])
	changes, cancel := h.Subscribe(tables...)

	go func() {
		defer close(out)
		defer cancel()

		for {
			value, err := load(ctx)
			if ctx.Err() != nil {
				return
			}

			select {
			case out <- Result[T]{Value: value, Err: err}:
			case <-ctx.Done():
				return
			}

			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
			}
		}
	}()

	return out
}
