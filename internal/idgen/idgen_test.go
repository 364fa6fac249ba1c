package idgen

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormat(t *testing.T) {
	g := NewGenerator()
	id := g.New("node")

	parts := strings.Split(id, "-")
	require.Len(t, parts, 4)
	assert.Equal(t, "node", parts[0])
	assert.Equal(t, "1", parts[2])
	assert.Len(t, parts[3], 6)
}

func TestNewDefaultsPrefix(t *testing.T) {
	id := NewGenerator().New("")
	assert.True(t, strings.HasPrefix(id, "id-"), id)
}

func TestNewUniqueUnderRapidCalls(t *testing.T) {
	g := NewGenerator()
	fixed := time.UnixMilli(1700000000000)
	g.now = func() time.Time { return fixed }

	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		id := g.New("edge")
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestCounterWraps(t *testing.T) {
	g := NewGenerator()
	g.counter.Store(maxCounter - 1)

	assert.Equal(t, uint64(0), g.next())
	assert.Equal(t, uint64(1), g.next())
}

func TestPackageLevelNew(t *testing.T) {
	a := New("barrier")
	b := New("barrier")
	assert.NotEqual(t, a, b)
}
