//go:build deadlock

// Deadlock-detecting variants, selected with -tags=deadlock.
package syncutil

import deadlock "github.com/sasha-s/go-deadlock"

// Mutex is deadlock.Mutex under the deadlock build
type Mutex struct {
	deadlock.Mutex
}

// RWMutex is deadlock.RWMutex under the deadlock build
type RWMutex struct {
	deadlock.RWMutex
}
