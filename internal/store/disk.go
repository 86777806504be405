package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invariant-run/invariant/internal/store/envelope"
	"github.com/invariant-run/invariant/internal/value"
)

// Disk is a content-addressed on-disk artifact store. Artifacts are
// written to a path derived entirely from the (op, digest) key:
//
//	<root>/<sanitized op>/<digest[0:2]>/<digest[2:]>
//
// Writes land in a temp file next to the final path and are renamed into
// place, so a crash mid-write never leaves a partial artifact visible
// under its real name.
type Disk struct {
	counters
	root     string
	registry *envelope.Registry
}

// NewDisk builds a Disk store rooted at dir. registry resolves Domain
// artifact type names back to their readers; pass nil if the store will
// only ever hold native values.
func NewDisk(dir string, registry *envelope.Registry) *Disk {
	return &Disk{root: dir, registry: registry}
}

func (d *Disk) path(op string, digest value.Digest) string {
	ds := digest.String()
	prefix := ds
	rest := ""
	if len(ds) > 2 {
		prefix, rest = ds[:2], ds[2:]
	}
	return filepath.Join(d.root, sanitizeOp(op), prefix, rest)
}

func (d *Disk) Exists(_ context.Context, op string, digest value.Digest) (bool, error) {
	_, err := os.Stat(d.path(op, digest))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (d *Disk) Get(_ context.Context, op string, digest value.Digest) (value.Value, error) {
	f, err := os.Open(d.path(op, digest))
	if os.IsNotExist(err) {
		d.recordMiss()
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	v, err := envelope.DecodeValue(f, d.registry)
	if err != nil {
		return nil, fmt.Errorf("store: corrupt artifact at %s: %w", d.path(op, digest), err)
	}
	d.recordHit()
	return v, nil
}

func (d *Disk) Put(_ context.Context, op string, digest value.Digest, artifact value.Value) error {
	dest := d.path(op, digest)
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(dest)+".*.tmp")
	if err != nil {
		return fmt.Errorf("store: creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once the rename below succeeds

	if err := envelope.EncodeValue(tmp, artifact); err != nil {
		tmp.Close()
		return fmt.Errorf("store: encoding artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("store: syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("store: renaming into place: %w", err)
	}
	d.recordPut()
	return nil
}

func (d *Disk) Stats() Stats { return d.snapshot() }

// Clear resets the hit/miss/put counters only. A disk store's whole
// purpose is to survive across runs, so Clear never deletes artifacts;
// use os.RemoveAll(dir) directly if that's actually what's wanted.
func (d *Disk) Clear() { d.reset() }
