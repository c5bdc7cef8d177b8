// Package state tracks the progress of API calls as observable state
// machines: {data, loading, error} plus per-operation stages.
package state

import (
	"context"
	"sync"

	"github.com/aki307/frext/model"
)

type listeners[S any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(S)
}

func (l *listeners[S]) add(fn func(S)) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func(S))
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.fns, id)
	}
}

func (l *listeners[S]) emit(s S) {
	l.mu.Lock()
	fns := make([]func(S), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

// Snapshot is the observable state of a Request.
type Snapshot[T any] struct {
	Data    *T
	Loading bool
	Error   string
}

// Request tracks one API operation. Execute is not cancellable once
// started; the client timeout bounds it.
type Request[T any] struct {
	mu    sync.RWMutex
	state Snapshot[T]
	subs  listeners[Snapshot[T]]
}

func NewRequest[T any]() *Request[T] {
	return &Request[T]{}
}

// Execute runs fn and records its envelope. On failure Data is cleared.
func (r *Request[T]) Execute(ctx context.Context, fn func(context.Context) *model.APIResponse[T]) *model.APIResponse[T] {
	r.set(func(s *Snapshot[T]) {
		s.Loading = true
		s.Error = ""
	})

	resp := fn(ctx)
	if resp == nil {
		resp = model.Failure[T]("no response", nil)
	}

	r.set(func(s *Snapshot[T]) {
		s.Loading = false
		if resp.Success {
			s.Data = resp.Data
			s.Error = ""
			return
		}
		s.Data = nil
		s.Error = resp.Error
		if s.Error == "" {
			s.Error = resp.Cause().Error()
		}
	})
	return resp
}

func (r *Request[T]) set(mutate func(*Snapshot[T])) {
	r.mu.Lock()
	mutate(&r.state)
	snap := r.state
	r.mu.Unlock()
	r.subs.emit(snap)
}

func (r *Request[T]) State() Snapshot[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

func (r *Request[T]) Data() *T     { return r.State().Data }
func (r *Request[T]) Loading() bool { return r.State().Loading }
func (r *Request[T]) Error() string { return r.State().Error }

func (r *Request[T]) Reset() {
	r.set(func(s *Snapshot[T]) { *s = Snapshot[T]{} })
}

// Subscribe registers fn for every state change.
func (r *Request[T]) Subscribe(fn func(Snapshot[T])) (unsubscribe func()) {
	return r.subs.add(fn)
}
