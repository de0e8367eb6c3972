package core

import (
	"context"
	"time"
)

// StreamFunc issues one streaming request attempt.
type StreamFunc func(ctx context.Context) (*MessageStream, error)

// RetryStream invokes fn and re-invokes it, per policy, on any failure that
// occurs before the stream has delivered its first event: setup errors and
// streams that die without emitting. A failure after the first delivered
// event is terminal: it propagates on the returned stream's Err channel
// with no retry, so the consumer never sees duplicated events.
//
// The first attempt runs synchronously, so a non-retryable setup failure
// (missing API key, bad request) is returned directly and no stream is
// created. Retries happen asynchronously; their delays honor ctx. When the
// policy is exhausted the last error is wrapped in a *RetryError carrying
// the attempt count.
func RetryStream(ctx context.Context, policy RetryPolicy, fn StreamFunc) (*MessageStream, error) {
	if policy == nil {
		policy = DefaultRetryPolicy()
	}

	first, firstErr := fn(ctx)
	if firstErr != nil {
		if _, ok := policy.NextDelay(0, firstErr); !ok {
			return nil, firstErr
		}
	}

	out := make(chan StreamEvent, 1)
	errc := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errc)

		stream, err := first, firstErr
		attempt := 0
		for {
			if err != nil {
				delay, ok := policy.NextDelay(attempt, err)
				if !ok {
					errc <- retryExhausted(attempt, err)
					return
				}
				attempt++
				if werr := sleep(ctx, delay); werr != nil {
					errc <- werr
					return
				}
				stream, err = fn(ctx)
				continue
			}

			delivered, relayErr := relay(ctx, stream, out)
			if relayErr == nil {
				return
			}
			if delivered {
				// Partial output already reached the consumer; a retry
				// would re-issue the request and duplicate events.
				errc <- relayErr
				return
			}
			err = relayErr
		}
	}()

	return &MessageStream{Ch: out, Err: errc}, nil
}

// relay forwards events from s until it ends, reporting whether any event
// reached the consumer and the stream's terminal error, if one occurred.
func relay(ctx context.Context, s *MessageStream, out chan<- StreamEvent) (delivered bool, err error) {
	events, errs := s.Ch, s.Err
	var streamErr error

	for events != nil || errs != nil {
		select {
		case <-ctx.Done():
			return delivered, ctx.Err()

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			select {
			case out <- ev:
				delivered = true
			case <-ctx.Done():
				return delivered, ctx.Err()
			}

		case e, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if e != nil {
				streamErr = e
			}
		}
	}

	return delivered, streamErr
}

// retryExhausted annotates err with the attempt count once at least one
// retry was granted. A first-attempt failure passes through unchanged.
func retryExhausted(attempt int, err error) error {
	if attempt == 0 {
		return err
	}
	return &RetryError{Attempts: attempt + 1, Err: err}
}

// sleep waits for d, returning early with ctx.Err() on cancellation.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
