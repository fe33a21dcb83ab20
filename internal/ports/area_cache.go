package ports

import "context"

// Optional cross-request cache of the distinct area names.
type AreaCache interface {
	// Return cached names; ok is false on a miss.
	GetAreaNames(ctx context.Context) (names []string, ok bool, err error)
	PutAreaNames(ctx context.Context, names []string) error
	Invalidate(ctx context.Context) error
}
