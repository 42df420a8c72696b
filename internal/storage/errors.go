// Package storage defines the persistence contract consumed by services.
//
// Drivers translate engine errors into the sentinels below; a missing row is
// returned as (nil, nil) by point lookups.
package storage

import "errors"

var (
	// ErrDuplicate unique constraint violated
	ErrDuplicate = errors.New("duplicate: entity already exists")

	// ErrNotFound update or lock target does not exist
	ErrNotFound = errors.New("entity not found")
)
