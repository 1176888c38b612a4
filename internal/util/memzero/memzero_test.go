package memzero

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWipe(t *testing.T) {
	a := []byte("passphrase")
	b := []byte{1, 2, 3}
	Wipe(a, nil, b)

	assert.Equal(t, make([]byte, 10), a)
	assert.Equal(t, []byte{0, 0, 0}, b)
}
