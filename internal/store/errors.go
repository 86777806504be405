package store

import "errors"

// ErrNotFound is returned by Get when the (op, digest) key has no
// artifact. It is a plain miss, not a failure: callers that already
// checked Exists should never see it, but Get returns it anyway rather
// than panicking so a store can be queried directly.
var ErrNotFound = errors.New("store: artifact not found")
