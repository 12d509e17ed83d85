package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Conn is the part of *pgx.Conn the engine uses.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close(ctx context.Context) error
}

// Dialer opens a new connection.
type Dialer func(ctx context.Context) (Conn, error)

// Pool is a bounded set of connections. Connections are created lazily up to
// the capacity; beyond that Get blocks until one is returned. The most
// recently returned connection is handed out first.
//
// Waiting for a connection is not cancellable; ctx only bounds dialing.
type Pool struct {
	dial     Dialer
	capacity int

	mu      sync.Mutex
	cond    *sync.Cond
	idle    []Conn
	created int
	closed  bool
}

// NewPool creates a pool. Capacity is clamped to at least 1.
func NewPool(dial Dialer, capacity int) *Pool {
	if capacity < 1 {
		capacity = 1
	}
	p := &Pool{
		dial:     dial,
		capacity: capacity,
		idle:     make([]Conn, 0, capacity),
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Get hands out an idle connection, dials a new one if there is room, or
// waits for a connection to be returned.
func (p *Pool) Get(ctx context.Context) (Conn, error) {
	p.mu.Lock()
	for {
		if p.closed {
			p.mu.Unlock()
			return nil, ErrPoolClosed
		}
		if n := len(p.idle); n > 0 {
			conn := p.idle[n-1]
			p.idle[n-1] = nil
			p.idle = p.idle[:n-1]
			p.mu.Unlock()
			return conn, nil
		}
		if p.created < p.capacity {
			// reserve the slot so concurrent callers cannot overshoot
			p.created++
			p.mu.Unlock()
			return p.open(ctx)
		}
		p.cond.Wait()
	}
}

func (p *Pool) open(ctx context.Context) (Conn, error) {
	conn, err := p.dial(ctx)
	if err == nil && conn == nil {
		err = errors.New("dialer returned no connection")
	}
	if err != nil {
		p.mu.Lock()
		p.created--
		p.cond.Signal()
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: %w", ErrNoConnection, err)
	}
	return conn, nil
}

// Put returns a connection to the idle set and wakes one waiter. A
// connection that reports itself closed is discarded instead.
func (p *Pool) Put(conn Conn) {
	if conn == nil {
		return
	}
	if isClosed(conn) {
		p.Discard(conn)
		return
	}
	p.mu.Lock()
	if p.closed || len(p.idle) >= p.capacity {
		p.created--
		p.mu.Unlock()
		_ = conn.Close(context.Background())
		return
	}
	p.idle = append(p.idle, conn)
	p.cond.Signal()
	p.mu.Unlock()
}

// isClosed reports whether conn knows its server link is gone, as
// *pgx.Conn does after a network error or a fatal server error.
func isClosed(conn Conn) bool {
	c, ok := conn.(interface{ IsClosed() bool })
	return ok && c.IsClosed()
}

// Discard drops a connection that must not be reused and frees its slot.
func (p *Pool) Discard(conn Conn) {
	if conn == nil {
		return
	}
	p.mu.Lock()
	p.created--
	p.cond.Signal()
	p.mu.Unlock()
	_ = conn.Close(context.Background())
}

// Available returns the number of idle connections.
func (p *Pool) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}

// Size returns the number of live connections, idle or handed out.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created
}

func (p *Pool) Capacity() int {
	return p.capacity
}

// Close closes the idle connections and fails pending and future Gets.
// Connections still handed out are closed when they are returned.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.created -= len(idle)
	p.cond.Broadcast()
	p.mu.Unlock()

	var errs []error
	for _, conn := range idle {
		if err := conn.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
