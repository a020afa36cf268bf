package musickit

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/simonhull/musickit/internal/artist"
)

// LookupArtist returns the album artist of the file at path, falling back
// to the track artist. Returns ErrNoArtist when neither is set.
func LookupArtist(path string) (string, error) {
	return artist.LookupFile(path)
}

// LookupArtists looks up the artist of many files concurrently.
//
// Results are returned in input order. A file with no artist tag yields an
// empty string; any other failure cancels the remaining lookups.
//
// Example:
//
//	ctx := context.Background()
//	names, err := musickit.LookupArtists(ctx, paths...)
func LookupArtists(ctx context.Context, paths ...string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	results := make([]string, len(paths))

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			name, err := artist.LookupFile(path)
			if err != nil && !errors.Is(err, artist.ErrNoArtist) {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = name
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
