package bits

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssign(t *testing.T) {
	for i := uint8(0); i < 8; i++ {
		assert.True(t, Test(Assign(0, i, true), i))
		assert.False(t, Test(Assign(0xFF, i, false), i))
		assert.Equal(t, uint8(0xFF)&^(1<<i), Assign(0xFF, i, false))
	}
}

func TestParity(t *testing.T) {
	assert.True(t, Parity(0x00))
	assert.False(t, Parity(0x01))
	assert.True(t, Parity(0x03))
	assert.True(t, Parity(0xFF))
	assert.False(t, Parity(0x7F))
}
