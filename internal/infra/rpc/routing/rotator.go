package routing

import (
	"fmt"
	"sync"

	"github.com/minhvu/lottosync/internal/infra/rpc/provider"
)

// Rotator selects the next provider round-robin, skipping unavailable ones.
type Rotator struct {
	mu        sync.Mutex
	providers []provider.Provider
	next      int
}

// NewRotator creates a rotator over the given providers.
func NewRotator(providers []provider.Provider) *Rotator {
	return &Rotator{providers: providers}
}

// Select returns the next available provider. If every provider is marked
// unavailable it still returns one, so a degraded endpoint gets a chance to
// recover rather than wedging the client.
func (r *Rotator) Select() (provider.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.providers) == 0 {
		return nil, fmt.Errorf("no providers configured")
	}

	for i := 0; i < len(r.providers); i++ {
		p := r.providers[(r.next+i)%len(r.providers)]
		if p.Available() {
			r.next = (r.next + i + 1) % len(r.providers)
			return p, nil
		}
	}

	p := r.providers[r.next]
	r.next = (r.next + 1) % len(r.providers)
	return p, nil
}

// Size returns the number of configured providers.
func (r *Rotator) Size() int {
	return len(r.providers)
}

// Providers returns the configured providers.
func (r *Rotator) Providers() []provider.Provider {
	return r.providers
}
