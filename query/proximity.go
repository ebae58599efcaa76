// Package query holds the datastore-facing protocols the mobile client
// relies on: geohash-bounded proximity search and cursor-based pagination.
// Both are written against narrow source interfaces so they run unchanged
// over the local database or a hosted document store.
package query

import (
	"context"
	"fmt"

	"github.com/Sk4rKr0w/wildlife-spotter-sub000/geo"
	"github.com/Sk4rKr0w/wildlife-spotter-sub000/models"
)

// SightingSource is the slice of document-store capability the proximity
// protocol needs: a range scan ordered by the geohash field, inclusive on
// both ends.
type SightingSource interface {
	SightingsInGeohashRange(ctx context.Context, start, end string) ([]models.Sighting, error)
}

// NearbySightings returns every sighting within radiusMeters of center.
//
// The geohash bound is a superset, so two steps after retrieval are
// mandatory, not optional: results from overlapping ranges are merged into
// a map keyed by id, and every candidate is re-checked against its true
// great-circle distance. Skipping the distance check silently returns
// false positives near cell edges.
//
// Ordering of the result is unspecified; callers re-sort as needed.
func NearbySightings(ctx context.Context, src SightingSource, center geo.Point, radiusMeters float64) ([]models.Sighting, error) {
	bounds := geo.QueryBounds(center, radiusMeters)

	candidates := make(map[string]models.Sighting)
	for _, b := range bounds {
		batch, err := src.SightingsInGeohashRange(ctx, b.Start, b.End)
		if err != nil {
			return nil, fmt.Errorf("geohash range scan [%s, %s]: %w", b.Start, b.End, err)
		}
		for _, s := range batch {
			candidates[s.ID] = s
		}
	}

	results := make([]models.Sighting, 0, len(candidates))
	for _, s := range candidates {
		d := geo.DistanceMeters(geo.Point{Lat: s.Latitude, Lng: s.Longitude}, center)
		if d <= radiusMeters {
			results = append(results, s)
		}
	}
	return results, nil
}
