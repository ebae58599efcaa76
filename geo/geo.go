// Package geo wraps the geohash library with the helpers the sighting
// queries need: fixed-precision encoding, radius-to-range bounding, and
// great-circle distance.
package geo

import (
	"math"

	"github.com/mmcloughlin/geohash"
)

// EncodePrecision is the geohash length stored on sighting records. At 9
// characters a cell is roughly 5x5 meters, well below GPS accuracy.
const EncodePrecision = 9

const earthRadiusMeters = 6371000

const metersPerDegree = earthRadiusMeters * math.Pi / 180

type Point struct {
	Lat float64
	Lng float64
}

// Bound is an inclusive [Start, End] string range over the geohash field.
type Bound struct {
	Start string
	End   string
}

// Encode returns the stored-precision geohash for a coordinate pair.
func Encode(lat, lng float64) string {
	return geohash.EncodeWithPrecision(lat, lng, EncodePrecision)
}

// cellDims returns the east-west and north-south extent in meters of a
// geohash cell of the given length at the given latitude. A cell spends
// ceil(5p/2) bits on longitude and floor(5p/2) on latitude, and a degree
// of longitude shrinks by cos(latitude) while a degree of latitude does
// not.
func cellDims(precision uint, lat float64) (width, height float64) {
	lngBits := (5*precision + 1) / 2
	latBits := 5 * precision / 2
	lngDeg := 360 / math.Exp2(float64(lngBits))
	latDeg := 180 / math.Exp2(float64(latBits))
	width = lngDeg * metersPerDegree * math.Cos(lat*math.Pi/180)
	height = latDeg * metersPerDegree
	return width, height
}

// precisionForRadius picks the longest geohash whose cell still spans the
// radius in both axes at the query latitude. The latitude matters: at 80
// degrees north a cell is nearly six times narrower than at the equator,
// and an equator-sized table would leave points due east or west of the
// center uncovered. Returns 0 when no precision covers the radius, as with
// continental radii or centers close to a pole.
func precisionForRadius(radiusMeters, lat float64) uint {
	for p := uint(EncodePrecision); p >= 1; p-- {
		w, h := cellDims(p, lat)
		if math.Min(w, h) >= radiusMeters {
			return p
		}
	}
	return 0
}

// QueryBounds converts a center point and radius into geohash string ranges
// that together cover every point within the radius. The cover is a
// superset: the cell block extends past the circle, so callers must filter
// candidates by true distance afterwards. Multiple ranges are returned
// because geohash prefixes do not wrap cleanly across cell boundaries.
func QueryBounds(center Point, radiusMeters float64) []Bound {
	p := precisionForRadius(radiusMeters, center.Lat)
	if p == 0 {
		// No single-character cell spans this radius; scan the whole
		// keyspace and let the distance filter do the work. '0' is the
		// lowest base32 geohash character.
		return []Bound{{Start: "0", End: "~"}}
	}
	cell := geohash.EncodeWithPrecision(center.Lat, center.Lng, p)

	cells := append([]string{cell}, geohash.Neighbors(cell)...)

	// Neighbors can repeat near the poles.
	seen := make(map[string]bool, len(cells))
	bounds := make([]Bound, 0, len(cells))
	for _, c := range cells {
		if seen[c] {
			continue
		}
		seen[c] = true
		// '~' sorts above every base32 geohash character, so [c, c+"~"]
		// spans all hashes with prefix c.
		bounds = append(bounds, Bound{Start: c, End: c + "~"})
	}
	return bounds
}

// DistanceMeters returns the haversine great-circle distance between two
// points.
func DistanceMeters(a, b Point) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
