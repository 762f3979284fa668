package player

import "context"

// Source is the paginated, read-only player catalogue.
type Source interface {
	FetchPage(ctx context.Context, cursor int64, perPage int) (Page, error)
	GetPlayer(ctx context.Context, playerID int64) (Player, bool, error)
}
