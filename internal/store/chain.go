package store

import (
	"context"

	"github.com/invariant-run/invariant/internal/value"
)

// Chain composes two stores as an L1/L2 tier: l1 is checked first, and a
// hit that was only found in l2 is promoted into l1 so the next lookup is
// fast. Put always writes through both tiers.
type Chain struct {
	l1, l2 Store
}

// NewChain builds a Chain with l1 as the fast tier and l2 as the
// fallback tier (e.g. l1 = in-memory, l2 = disk).
func NewChain(l1, l2 Store) *Chain {
	return &Chain{l1: l1, l2: l2}
}

func (c *Chain) Exists(ctx context.Context, op string, digest value.Digest) (bool, error) {
	ok, err := c.l1.Exists(ctx, op, digest)
	if err != nil || ok {
		return ok, err
	}
	return c.l2.Exists(ctx, op, digest)
}

func (c *Chain) Get(ctx context.Context, op string, digest value.Digest) (value.Value, error) {
	v, err := c.l1.Get(ctx, op, digest)
	if err == nil {
		return v, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	v, err = c.l2.Get(ctx, op, digest)
	if err != nil {
		return nil, err
	}

	// Promote into l1. A promotion failure doesn't invalidate the hit
	// we already have from l2.
	_ = c.l1.Put(ctx, op, digest, v)
	return v, nil
}

func (c *Chain) Put(ctx context.Context, op string, digest value.Digest, artifact value.Value) error {
	if err := c.l1.Put(ctx, op, digest, artifact); err != nil {
		return err
	}
	return c.l2.Put(ctx, op, digest, artifact)
}

// Stats sums l1's and l2's counters into one aggregate view: each tier
// keeps its own independent statistics, and the composite presents their
// total.
func (c *Chain) Stats() Stats {
	s1, s2 := c.l1.Stats(), c.l2.Stats()
	return Stats{
		Hits:   s1.Hits + s2.Hits,
		Misses: s1.Misses + s2.Misses,
		Puts:   s1.Puts + s2.Puts,
	}
}

func (c *Chain) Clear() {
	c.l1.Clear()
	c.l2.Clear()
}
