package store

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru"
	"github.com/mitchellh/copystructure"

	"github.com/invariant-run/invariant/internal/value"
)

// PolicyKind selects an in-memory store's eviction policy.
type PolicyKind int

const (
	// PolicyLRU evicts the least-recently-used entry once the shard is at
	// capacity. This is the default.
	PolicyLRU PolicyKind = iota
	// PolicyLFU evicts the least-frequently-used entry once the shard is
	// at capacity.
	PolicyLFU
	// PolicyUnbounded never evicts.
	PolicyUnbounded
)

const (
	defaultCapacity = 1000
	shardCount      = 16
)

// Memory is the in-memory artifact store. It holds Values directly — no
// serialization — and shards its keyspace across shardCount buckets
// selected by xxhash of the composite (op, digest) key, so concurrent
// Get/Put calls from an embedding application that shares one Memory
// across goroutines don't all fight over a single lock.
type Memory struct {
	counters
	shards   [shardCount]*shard
	deepCopy bool
}

type shard struct {
	mu       sync.Mutex
	policy   PolicyKind
	capacity int

	// PolicyLRU bookkeeping, delegated to hashicorp/golang-lru.
	lru *lru.Cache

	// PolicyLFU / PolicyUnbounded bookkeeping.
	entries map[string]value.Value
	freq    map[string]int
	order   []string // insertion order, for Unbounded's Clear and FIFO-ish LFU tie-break
}

// Option configures a Memory store.
type Option func(*Memory)

// WithCapacity sets the store's total capacity, split across shards as
// n/shardCount entries each (at least 1). Each shard evicts on its own once
// it holds that many entries, whatever the other shards hold. Ignored for
// PolicyUnbounded.
func WithCapacity(n int) Option {
	return func(m *Memory) {
		cap := max(1, n/shardCount)
		for _, s := range m.shards {
			s.capacity = cap
			if s.policy == PolicyLRU {
				s.lru, _ = lru.New(cap)
			}
		}
	}
}

// WithPolicy sets the eviction policy.
func WithPolicy(p PolicyKind) Option {
	return func(m *Memory) {
		for _, s := range m.shards {
			s.policy = p
			if p == PolicyLRU && s.lru == nil {
				s.lru, _ = lru.New(s.capacity)
			}
		}
	}
}

// WithDeepCopy makes Put deep-copy the artifact (via
// mitchellh/copystructure) before it enters the store, guarding against an
// operation mutating a List/Map artifact it handed to the store after the
// fact.
func WithDeepCopy() Option {
	return func(m *Memory) { m.deepCopy = true }
}

// NewMemory builds an in-memory store. The default policy is LRU with a
// nominal capacity of defaultCapacity (1000), split as 62 entries per
// shard: at most 992 entries in all, and a shard evicts its least recently
// used entry once it holds 62, so eviction can begin well before the store
// as a whole holds 1000 entries.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{}
	perShard := defaultCapacity / shardCount
	for i := range m.shards {
		l, _ := lru.New(perShard)
		m.shards[i] = &shard{
			policy:   PolicyLRU,
			capacity: perShard,
			lru:      l,
			entries:  map[string]value.Value{},
			freq:     map[string]int{},
		}
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) shardFor(key string) *shard {
	h := xxhash.Sum64String(key)
	return m.shards[h%shardCount]
}

func (m *Memory) Exists(_ context.Context, op string, digest value.Digest) (bool, error) {
	key := compositeKey(op, digest)
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.lookup(key)
	return ok, nil
}

func (m *Memory) Get(_ context.Context, op string, digest value.Digest) (value.Value, error) {
	key := compositeKey(op, digest)
	s := m.shardFor(key)
	s.mu.Lock()
	v, ok := s.lookup(key)
	s.mu.Unlock()
	if !ok {
		m.recordMiss()
		return nil, ErrNotFound
	}
	m.recordHit()
	return v, nil
}

func (m *Memory) Put(_ context.Context, op string, digest value.Digest, artifact value.Value) error {
	key := compositeKey(op, digest)
	stored := artifact
	if m.deepCopy {
		cp, err := copystructure.Copy(artifact)
		if err == nil {
			if v, ok := cp.(value.Value); ok {
				stored = v
			}
		}
	}
	s := m.shardFor(key)
	s.mu.Lock()
	s.insert(key, stored)
	s.mu.Unlock()
	m.recordPut()
	return nil
}

func (m *Memory) Stats() Stats { return m.snapshot() }

func (m *Memory) Clear() {
	for _, s := range m.shards {
		s.mu.Lock()
		if s.lru != nil {
			s.lru.Purge()
		}
		s.entries = map[string]value.Value{}
		s.freq = map[string]int{}
		s.order = nil
		s.mu.Unlock()
	}
	m.reset()
}

// lookup returns the value for key, updating eviction bookkeeping for the
// policy in use. Caller holds s.mu.
func (s *shard) lookup(key string) (value.Value, bool) {
	switch s.policy {
	case PolicyLRU:
		v, ok := s.lru.Get(key)
		if !ok {
			return nil, false
		}
		return v.(value.Value), true
	case PolicyLFU:
		v, ok := s.entries[key]
		if ok {
			s.freq[key]++
		}
		return v, ok
	default: // PolicyUnbounded
		v, ok := s.entries[key]
		return v, ok
	}
}

// insert adds or overwrites key's value, evicting if the shard is at
// capacity. Caller holds s.mu.
func (s *shard) insert(key string, v value.Value) {
	switch s.policy {
	case PolicyLRU:
		s.lru.Add(key, v)
	case PolicyLFU:
		if _, exists := s.entries[key]; !exists {
			if s.capacity > 0 && len(s.entries) >= s.capacity {
				s.evictLFU()
			}
			s.order = append(s.order, key)
			s.freq[key] = 1
		} else {
			s.freq[key]++
		}
		s.entries[key] = v
	default: // PolicyUnbounded
		if _, exists := s.entries[key]; !exists {
			s.order = append(s.order, key)
		}
		s.entries[key] = v
	}
}

// evictLFU removes the entry with the lowest access frequency, breaking
// ties by oldest insertion. Caller holds s.mu.
func (s *shard) evictLFU() {
	var victim string
	min := -1
	for _, k := range s.order {
		f := s.freq[k]
		if min == -1 || f < min {
			min = f
			victim = k
		}
	}
	delete(s.entries, victim)
	delete(s.freq, victim)
	for i, k := range s.order {
		if k == victim {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
