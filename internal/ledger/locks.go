package ledger

import (
	"bytes"
	"sync"

	"github.com/google/uuid"
)

// LockSet hands out one mutex per account. Every read-then-write of an
// account's balance or counters runs under that account's lock; operations on
// different accounts proceed in parallel.
type LockSet struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewLockSet() *LockSet {
	return &LockSet{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (l *LockSet) get(id uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}

func (l *LockSet) Lock(id uuid.UUID) func() {
	m := l.get(id)
	m.Lock()
	return m.Unlock
}

// LockPair acquires both accounts' locks in identifier order, so two
// concurrent transfers between the same pair can never deadlock.
func (l *LockSet) LockPair(a, b uuid.UUID) func() {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	first := l.get(a)
	second := l.get(b)
	first.Lock()
	second.Lock()
	return func() {
		second.Unlock()
		first.Unlock()
	}
}
