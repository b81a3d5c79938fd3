package testkit

import (
	"sync"
	"testing"
)

// seams serializes tests that replace package level vars
var seams sync.Mutex

// Swap sets *target to v until the test ends
func Swap[T any](t *testing.T, target *T, v T) {
	t.Helper()
	prev := *target
	*target = v
	t.Cleanup(func() { *target = prev })
}

// Serial holds the seam lock until the test ends
// call it before Swap in any test that may run in parallel with another swapper
func Serial(t *testing.T) {
	t.Helper()
	seams.Lock()
	t.Cleanup(seams.Unlock)
}
