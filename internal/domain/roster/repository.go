package roster

import "context"

// Provider is the opaque key/value persistence behind the roster store.
// Load reports found=false when nothing was saved under key yet.
type Provider interface {
	Load(ctx context.Context, key string) (payload []byte, found bool, err error)
	Save(ctx context.Context, key string, payload []byte) error
}
