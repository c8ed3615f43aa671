package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryReadWriteRoundTrip(t *testing.T) {
	m := NewVM(16, 4)
	require.NoError(t, m.WriteMemory(5, 42))
	v, err := m.ReadMemory(5)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

func TestMemoryBoundsChecking(t *testing.T) {
	cases := []struct {
		name string
		addr int64
	}{
		{"negative", -1},
		{"at size", 16},
		{"far past size", 1000},
	}
	m := NewVM(16, 4)
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := m.ReadMemory(c.addr)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrOutOfBounds)

			err = m.WriteMemory(c.addr, 1)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrOutOfBounds)
		})
	}
}

func TestStackPushPopBounds(t *testing.T) {
	m := NewVM(16, 2)

	require.NoError(t, m.push(1))
	require.NoError(t, m.push(2))

	err := m.push(3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStackOverflow)

	v, err := m.pop()
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	v, err = m.pop()
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	_, err = m.pop()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStackUnderflow)
}

func TestStackPushPopOrderingTable(t *testing.T) {
	cases := []struct {
		name   string
		pushes []int64
	}{
		{"single", []int64{7}},
		{"several", []int64{1, 2, 3, 4}},
		{"negative values", []int64{-5, 0, 5}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := NewVM(16, len(c.pushes)+1)
			for _, v := range c.pushes {
				require.NoError(t, m.push(v))
			}
			for i := len(c.pushes) - 1; i >= 0; i-- {
				v, err := m.pop()
				require.NoError(t, err)
				assert.Equal(t, c.pushes[i], v)
			}
		})
	}
}
