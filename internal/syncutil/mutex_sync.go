//go:build !deadlock

// Package syncutil provides the mutex types used across the module. The
// default build wraps the standard library with zero overhead; building
// with -tags=deadlock swaps in github.com/sasha-s/go-deadlock so lock
// ordering problems in the simulator and driver surface during tests.
package syncutil

import "sync"

// Mutex is sync.Mutex under the default build
type Mutex struct {
	sync.Mutex
}

// RWMutex is sync.RWMutex under the default build
type RWMutex struct {
	sync.RWMutex
}
