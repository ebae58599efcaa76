package query

import (
	"context"
	"sync"
	"time"

	"github.com/Sk4rKr0w/wildlife-spotter-sub000/geo"
	"github.com/Sk4rKr0w/wildlife-spotter-sub000/models"
)

// ProximityResult is what a proximity query resolves to: either sightings
// or an error, never both, never neither. An error is distinct from an
// empty result so consumers can tell "nothing nearby" from "query failed".
// Center and RadiusMeters echo the trigger the result answers.
type ProximityResult struct {
	Center       geo.Point
	RadiusMeters float64
	Sightings    []models.Sighting
	Err          error
}

// ProximitySession drives repeated proximity queries from a stream of
// location updates. Triggers inside the movement threshold are dropped,
// bursts collapse into one query via the debounce delay, and a new query
// cancels and supersedes any in-flight one: the last trigger wins, no
// matter which query finishes first.
type ProximitySession struct {
	src      SightingSource
	minMove  float64
	debounce time.Duration

	mu         sync.Mutex
	hasLast    bool
	lastCenter geo.Point
	lastRadius float64
	pendCenter geo.Point
	pendRadius float64
	timer      *time.Timer
	gen        uint64
	cancel     context.CancelFunc
	closed     bool

	results chan ProximityResult
}

// NewProximitySession creates a session. minMoveMeters is the smallest
// center movement worth re-querying for; debounce is how long to wait for
// a burst of triggers to settle.
func NewProximitySession(src SightingSource, minMoveMeters float64, debounce time.Duration) *ProximitySession {
	return &ProximitySession{
		src:      src,
		minMove:  minMoveMeters,
		debounce: debounce,
		results:  make(chan ProximityResult, 1),
	}
}

// Results delivers query outcomes in emission order. The channel holds the
// most recent result only; a stale unread result is replaced, not queued.
func (s *ProximitySession) Results() <-chan ProximityResult {
	return s.results
}

// Trigger records a new center/radius and schedules a query after the
// debounce delay. GPS jitter below the movement threshold with an
// unchanged radius is ignored.
func (s *ProximitySession) Trigger(center geo.Point, radiusMeters float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.hasLast && radiusMeters == s.lastRadius &&
		geo.DistanceMeters(center, s.lastCenter) < s.minMove {
		return
	}
	s.hasLast = true
	s.lastCenter = center
	s.lastRadius = radiusMeters
	s.pendCenter = center
	s.pendRadius = radiusMeters

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.fire)
}

func (s *ProximitySession) fire() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.gen++
	gen := s.gen
	center, radius := s.pendCenter, s.pendRadius
	s.mu.Unlock()

	go func() {
		sightings, err := NearbySightings(ctx, s.src, center, radius)
		s.deliver(gen, ProximityResult{
			Center:       center,
			RadiusMeters: radius,
			Sightings:    sightings,
			Err:          err,
		})
	}()
}

func (s *ProximitySession) deliver(gen uint64, r ProximityResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen {
		// Superseded by a newer trigger; drop the stale result.
		return
	}
	select {
	case s.results <- r:
	default:
		select {
		case <-s.results:
		default:
		}
		s.results <- r
	}
}

// Close cancels any in-flight query and stops the session. Results is
// closed; pending deliveries are dropped.
func (s *ProximitySession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.cancel != nil {
		s.cancel()
	}
	close(s.results)
}
