package memory

import (
	"context"
	"slices"
	"sync"
)

// Provider keeps roster documents in process memory. Payloads are copied on
// the way in and out so callers never share buffers with the store.
type Provider struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewProvider() *Provider {
	return &Provider{items: make(map[string][]byte)}
}

// NewProviderWith seeds the provider, mainly for tests and fixtures.
func NewProviderWith(seed map[string][]byte) *Provider {
	p := NewProvider()
	for key, payload := range seed {
		p.items[key] = slices.Clone(payload)
	}
	return p
}

func (p *Provider) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	payload, ok := p.items[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(payload), true, nil
}

func (p *Provider) Save(ctx context.Context, key string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.items[key] = slices.Clone(payload)
	return nil
}
