package store

import (
	"context"

	"github.com/invariant-run/invariant/internal/value"
)

// Null is a store that never retains anything: Exists and Get always
// report a miss, and Put stores nothing (it only counts the call). Running
// an executor against it forces every cached op vertex to dispatch, through
// the same Store interface as every other store instead of a nil check at
// every call site.
type Null struct {
	counters
}

// NewNull builds a Null store.
func NewNull() *Null { return &Null{} }

func (n *Null) Exists(context.Context, string, value.Digest) (bool, error) {
	return false, nil
}

func (n *Null) Get(context.Context, string, value.Digest) (value.Value, error) {
	n.recordMiss()
	return nil, ErrNotFound
}

func (n *Null) Put(context.Context, string, value.Digest, value.Value) error {
	n.recordPut()
	return nil
}

func (n *Null) Stats() Stats { return n.snapshot() }

func (n *Null) Clear() { n.reset() }
