package cache

import (
	"context"
	"slices"
	"time"

	"github.com/riskibarqy/roster-manager/internal/domain/roster"
	platformcache "github.com/riskibarqy/roster-manager/internal/platform/cache"
)

type document struct {
	payload []byte
	found   bool
}

// Provider is a read-through, write-through cache in front of another provider.
// Concurrent loads of one key share a single backend read.
type Provider struct {
	next  roster.Provider
	store *platformcache.Store[document]
}

func NewProvider(next roster.Provider, ttl time.Duration) *Provider {
	return &Provider{
		next:  next,
		store: platformcache.NewStore[document](ttl),
	}
}

func (p *Provider) Load(ctx context.Context, key string) ([]byte, bool, error) {
	doc, err := p.store.GetOrLoad(ctx, key, func(ctx context.Context) (document, error) {
		payload, found, err := p.next.Load(ctx, key)
		if err != nil {
			return document{}, err
		}
		return document{payload: payload, found: found}, nil
	})
	if err != nil {
		return nil, false, err
	}
	return slices.Clone(doc.payload), doc.found, nil
}

func (p *Provider) Save(ctx context.Context, key string, payload []byte) error {
	if err := p.next.Save(ctx, key, payload); err != nil {
		p.store.Delete(ctx, key)
		return err
	}
	p.store.Set(ctx, key, document{payload: slices.Clone(payload), found: true})
	return nil
}
