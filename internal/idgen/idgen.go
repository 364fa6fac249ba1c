// Package idgen produces process-unique string identifiers for map entities.
package idgen

import (
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// maxCounter mirrors the largest integer a JSON number can hold exactly.
const maxCounter = 1<<53 - 1

// Generator hands out ids of the form prefix-<time>-<counter>-<random>.
// Ids are unique for the lifetime of the Generator, not across sessions.
type Generator struct {
	counter atomic.Uint64
	now     func() time.Time
}

// NewGenerator returns a Generator using the wall clock.
func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// New returns the next id for prefix. An empty prefix becomes "id".
func (g *Generator) New(prefix string) string {
	if prefix == "" {
		prefix = "id"
	}
	n := g.next()
	var b strings.Builder
	b.Grow(len(prefix) + 24)
	b.WriteString(prefix)
	b.WriteByte('-')
	b.WriteString(strconv.FormatInt(g.now().UnixMilli(), 36))
	b.WriteByte('-')
	b.WriteString(strconv.FormatUint(n, 36))
	b.WriteByte('-')
	b.WriteString(entropy())
	return b.String()
}

func (g *Generator) next() uint64 {
	for {
		cur := g.counter.Load()
		n := (cur + 1) % maxCounter
		if g.counter.CompareAndSwap(cur, n) {
			return n
		}
	}
}

func entropy() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:6]
}

var defaultGenerator = NewGenerator()

// New returns an id from the process-wide generator.
func New(prefix string) string {
	return defaultGenerator.New(prefix)
}
