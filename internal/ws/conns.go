package ws

import (
	"context"
	"sync"
)

// Conns tracks live websocket connections. http.Server.Shutdown does not
// wait for hijacked connections, so the server closes them through Close
// and waits on Wait before its last snapshot flush.
type Conns struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewConns() *Conns {
	ctx, cancel := context.WithCancel(context.Background())
	return &Conns{ctx: ctx, cancel: cancel}
}

// add registers one connection; false once Close has been called.
func (c *Conns) add() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.wg.Add(1)
	return true
}

func (c *Conns) done() { c.wg.Done() }

// Closing is done once Close has been called.
func (c *Conns) Closing() <-chan struct{} { return c.ctx.Done() }

// Close refuses new connections and tells live ones to go away.
// Safe to call more than once.
func (c *Conns) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
}

// Wait blocks until every tracked connection has returned or ctx is done.
// Call it after Close.
func (c *Conns) Wait(ctx context.Context) error {
	finished := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
