// Package memzero clears secrets held in byte slices.
package memzero

import (
	"crypto/subtle"
	"runtime"
)

// Wipe overwrites every given buffer with zeros. It is best effort: copies
// the runtime made earlier are out of reach.
//
//go:noinline
func Wipe(bufs ...[]byte) {
	for _, b := range bufs {
		if len(b) == 0 {
			continue
		}
		subtle.ConstantTimeCopy(1, b, make([]byte, len(b)))
		runtime.KeepAlive(b)
	}
}
