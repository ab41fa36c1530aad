package ids

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator produces ULIDs: lexicographically sortable by creation time and
// collision-resistant, which keeps event-log entries in append order even if
// two devices write to the same animal.
type Generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewGenerator seeds a monotonic ULID source.
func NewGenerator() *Generator {
	src := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Generator{entropy: ulid.Monotonic(src, 0)}
}

// Novo returns a fresh ULID string. Safe for concurrent use.
func (g *Generator) Novo() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), g.entropy).String()
}
