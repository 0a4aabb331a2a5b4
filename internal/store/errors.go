// Package store declares sentinel errors shared by the persistence
// layer. Repositories translate driver-level errors (pgx.ErrNoRows,
// unique violations) into these so handlers can map them with
// errors.Is without importing pgx.
package store

import "errors"

// ErrNotFound covers both "does not exist" and "exists but belongs to
// another organization". The two must stay indistinguishable to
// callers so that entity ids cannot be enumerated across tenants.
var ErrNotFound = errors.New("not found")

// ErrSlugTaken indicates slug derivation ran out of candidates.
var ErrSlugTaken = errors.New("slug already taken")
