package memory

import (
	"context"
	"sync"
)

// rowLock is held by at most one transaction. refs counts the holder plus
// waiters; the entry is dropped when it reaches zero.
type rowLock struct {
	ch   chan struct{}
	refs int
}

// rowLocks hands out one exclusive lock per row key. Waiting honours ctx.
type rowLocks struct {
	mu   sync.Mutex
	rows map[string]*rowLock
}

func newRowLocks() *rowLocks {
	return &rowLocks{rows: make(map[string]*rowLock)}
}

func (l *rowLocks) ref(key string) *rowLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	rl, ok := l.rows[key]
	if !ok {
		rl = &rowLock{ch: make(chan struct{}, 1)}
		l.rows[key] = rl
	}
	rl.refs++
	return rl
}

func (l *rowLocks) unref(key string, rl *rowLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rl.refs--
	if rl.refs == 0 {
		delete(l.rows, key)
	}
}

func (l *rowLocks) acquire(ctx context.Context, key string) error {
	rl := l.ref(key)
	select {
	case rl.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		l.unref(key, rl)
		return ctx.Err()
	}
}

func (l *rowLocks) release(key string) {
	l.mu.Lock()
	rl := l.rows[key]
	l.mu.Unlock()

	<-rl.ch
	l.unref(key, rl)
}

// len is the number of rows currently held or waited on
func (l *rowLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rows)
}
