package resolver

import (
	"context"
	"errors"

	"github.com/latoulicious/Minuet/pkg/player"
)

var (
	// ErrUnsupportedSource marks inputs the resolver refuses by policy:
	// playlists and short-form links.
	ErrUnsupportedSource = errors.New("playlists and short-form links are not supported")

	// ErrNoResults means a search query matched nothing.
	ErrNoResults = errors.New("no results found")
)

// Resolver turns a user-supplied URL or free-text query into a playable
// track. Failures are wrapped in player.ErrResolutionFailed so callers
// can match on the session-level taxonomy.
type Resolver interface {
	Resolve(ctx context.Context, input, requestedBy string) (player.Track, error)
}
