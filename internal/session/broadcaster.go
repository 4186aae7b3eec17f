// Package session tracks "who is signed in" per session: a push-updated
// cache of the session record and its profile, plus the registry the HTTP
// layer resolves identities through. All state is injected — nothing here
// is ambient or package-global.
package session

import (
	"sync"

	"github.com/keralahub/culturalhub/internal/core/domain"
)

// Broadcaster fans auth state changes out to subscribers. Publish invokes
// handlers synchronously on the publishing goroutine, so handlers must not
// block: anything slow belongs in a goroutine of their own.
type Broadcaster struct {
	mu       sync.RWMutex
	handlers []func(domain.AuthEvent)
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

// Subscribe registers a handler for all subsequent events.
func (b *Broadcaster) Subscribe(fn func(domain.AuthEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, fn)
}

// Publish delivers evt to every subscriber in registration order.
func (b *Broadcaster) Publish(evt domain.AuthEvent) {
	b.mu.RLock()
	handlers := make([]func(domain.AuthEvent), len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(evt)
	}
}
