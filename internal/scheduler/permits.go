package scheduler

import "context"

// PermitPool is a counting semaphore bounding how many jobs run at once.
// Acquire is the only suspending operation in the whole scheduler; every other
// operation completes without blocking beyond brief lock acquisition.
type PermitPool struct {
	tokens chan struct{}
	closed chan struct{}
	max    int
}

// NewPermitPool creates a pool with max free permits
func NewPermitPool(max int) *PermitPool {
	if max < 1 {
		max = 1
	}
	p := &PermitPool{
		tokens: make(chan struct{}, max),
		closed: make(chan struct{}),
		max:    max,
	}
	for i := 0; i < max; i++ {
		p.tokens <- struct{}{}
	}
	return p
}

// Acquire blocks until a permit is free, the context is cancelled, or the pool
// is closed. On success the caller owns one permit and must Release it exactly
// once.
func (p *PermitPool) Acquire(ctx context.Context) error {
	// A closed pool refuses even if tokens are free.
	select {
	case <-p.closed:
		return ErrPoolClosed
	default:
	}

	select {
	case <-p.tokens:
		return nil
	case <-p.closed:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns one permit. Must be called exactly once per successful
// Acquire; extra releases beyond the pool capacity are dropped.
func (p *PermitPool) Release() {
	select {
	case p.tokens <- struct{}{}:
	default:
	}
}

// Available returns the number of free permits. Non-blocking, for observability.
func (p *PermitPool) Available() int {
	return len(p.tokens)
}

// Max returns the pool capacity
func (p *PermitPool) Max() int {
	return p.max
}

// Close fails all pending and future acquires with ErrPoolClosed. Safe to call
// more than once.
func (p *PermitPool) Close() {
	select {
	case <-p.closed:
	default:
		close(p.closed)
	}
}
