package mail

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// DefaultAsyncTimeout bounds a single background delivery.
const DefaultAsyncTimeout = 10 * time.Second

// Async delivers on a background goroutine so request handlers never wait on
// the mail backend. Failures and panics are logged, never returned.
type Async struct {
	Next    Transport
	Logger  *slog.Logger
	Timeout time.Duration

	wg sync.WaitGroup
}

func (a *Async) Deliver(ctx context.Context, m Message) error {
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = DefaultAsyncTimeout
	}
	// Keep request-scoped values but outlive the request.
	parent := context.WithoutCancel(ctx)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()

		defer func() {
			if r := recover(); r != nil {
				a.Logger.Error("panic delivering email",
					"type", m.Kind, "panic", r, "stack", string(debug.Stack()))
			}
		}()

		if err := a.Next.Deliver(ctx, m); err != nil {
			a.Logger.Error("email delivery failed", "type", m.Kind, "to", m.To, "error", err)
		}
	}()
	return nil
}

// Wait blocks until every queued delivery has finished.
func (a *Async) Wait() {
	a.wg.Wait()
}
