package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsDeterministic(t *testing.T) {
	a, b := New(42), New(42)
	for range 16 {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
}

func TestNewSeedsDiffer(t *testing.T) {
	a, b := New(1), New(2)
	same := 0
	for range 16 {
		if a.Uint64() == b.Uint64() {
			same++
		}
	}
	assert.Less(t, same, 16)
}

func TestSeed(t *testing.T) {
	seed := int64(-7)
	assert.Equal(t, int64(-7), Seed(&seed))
	assert.NotZero(t, Seed(nil))
}
