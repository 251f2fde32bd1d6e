package barrier

import "sync"

// Domain names one mutual-exclusion domain of the Guard.
type Domain int

const (
	// DomainNetwork serializes use of the single outbound HTTP channel.
	// The underlying client must not run concurrent requests.
	DomainNetwork Domain = iota
	// DomainFramebuffer serializes draws to the shared render buffer so
	// concurrent widgets cannot interleave pixel writes.
	DomainFramebuffer
)

// Guard holds the two independent mutual-exclusion domains shared by the
// cycle's tasks.
//
// Invariant: no task ever holds both domains at the same time. Every fetch
// releases the network domain before it starts drawing, so there is no lock
// ordering between the two and no deadlock is possible. Keep it that way.
type Guard struct {
	network     sync.Mutex
	framebuffer sync.Mutex
}

func NewGuard() *Guard {
	return &Guard{}
}

// WithLock runs fn with the given domain held. The domain is released on
// every exit path, including fn returning an error or panicking.
func (g *Guard) WithLock(d Domain, fn func() error) error {
	mu := g.mutex(d)
	mu.Lock()
	defer mu.Unlock()
	return fn()
}

func (g *Guard) mutex(d Domain) *sync.Mutex {
	if d == DomainNetwork {
		return &g.network
	}
	return &g.framebuffer
}
