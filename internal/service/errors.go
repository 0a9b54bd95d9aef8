package service

import "errors"

// ErrModelMismatch indicates the configured embedding model differs from
// the one the corpus was indexed with. Queries must not proceed because
// vectors from different models are not comparable.
var ErrModelMismatch = errors.New("embedding model mismatch")
