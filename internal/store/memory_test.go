package store

import (
	"context"
	"testing"

	"github.com/invariant-run/invariant/internal/value"
)

func TestMemoryPutGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	d := value.HashManifest(value.Map{"x": value.NewInt(1)})

	if err := m.Put(ctx, "op", d, value.NewInt(99)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := m.Get(ctx, "op", d)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !value.Equal(got, value.NewInt(99)) {
		t.Errorf("got %v want 99", got)
	}

	stats := m.Stats()
	if stats.Puts != 1 || stats.Hits != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestMemoryMiss(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	d := value.HashManifest(value.Map{"x": value.NewInt(1)})

	_, err := m.Get(ctx, "missing-op", d)
	if err != ErrNotFound {
		t.Fatalf("got %v want ErrNotFound", err)
	}
	if m.Stats().Misses != 1 {
		t.Errorf("miss not recorded: %+v", m.Stats())
	}
}

func TestMemoryLRUEviction(t *testing.T) {
	m := NewMemory(WithCapacity(shardCount), WithPolicy(PolicyLRU))
	ctx := context.Background()

	key := func(n int) value.Digest {
		return value.HashManifest(value.Map{"n": value.NewInt(int64(n))})
	}

	// Force everything into one shard's logical capacity (1 per shard) by
	// writing enough entries to guarantee at least one shard overflows.
	for i := 0; i < shardCount*4; i++ {
		if err := m.Put(ctx, "op", key(i), value.NewInt(int64(i))); err != nil {
			t.Fatalf("Put(%d): %v", i, err)
		}
	}

	hits := 0
	for i := 0; i < shardCount*4; i++ {
		if ok, _ := m.Exists(ctx, "op", key(i)); ok {
			hits++
		}
	}
	if hits == shardCount*4 {
		t.Error("expected some eviction to have occurred, but every entry is still present")
	}
	if hits == 0 {
		t.Error("expected some entries to survive, got none")
	}
}

func TestMemoryUnboundedNeverEvicts(t *testing.T) {
	m := NewMemory(WithPolicy(PolicyUnbounded))
	ctx := context.Background()

	for i := 0; i < 500; i++ {
		d := value.HashManifest(value.Map{"n": value.NewInt(int64(i))})
		if err := m.Put(ctx, "op", d, value.NewInt(int64(i))); err != nil {
			t.Fatalf("Put(%d): %v", i, err)
		}
	}
	for i := 0; i < 500; i++ {
		d := value.HashManifest(value.Map{"n": value.NewInt(int64(i))})
		if ok, _ := m.Exists(ctx, "op", d); !ok {
			t.Fatalf("entry %d evicted from an unbounded store", i)
		}
	}
}

func TestMemoryClearResetsStats(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	d := value.HashManifest(value.Map{"x": value.NewInt(1)})
	_ = m.Put(ctx, "op", d, value.NewInt(1))
	m.Clear()
	if stats := m.Stats(); stats.Puts != 0 {
		t.Errorf("Clear did not reset stats: %+v", stats)
	}
	if ok, _ := m.Exists(ctx, "op", d); ok {
		t.Error("Clear did not discard entries")
	}
}

func TestMemoryDeepCopyIsolatesArtifact(t *testing.T) {
	m := NewMemory(WithDeepCopy())
	ctx := context.Background()
	d := value.HashManifest(value.Map{"x": value.NewInt(1)})

	list := value.List{value.NewInt(1), value.NewInt(2)}
	if err := m.Put(ctx, "op", d, list); err != nil {
		t.Fatalf("Put: %v", err)
	}
	list[0] = value.NewInt(999) // mutate the caller's copy after Put

	got, err := m.Get(ctx, "op", d)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	gotList := got.(value.List)
	if !value.Equal(gotList[0], value.NewInt(1)) {
		t.Errorf("stored artifact was mutated by caller-side change: got %v", gotList[0])
	}
}
