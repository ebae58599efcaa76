package query

import (
	"context"
	"errors"

	"github.com/Sk4rKr0w/wildlife-spotter-sub000/models"
)

// LeaderboardPageSize is the fixed ranked-listing page size.
const LeaderboardPageSize = 10

// ErrNoSuchPage is returned by Prev when there is no earlier page.
var ErrNoSuchPage = errors.New("no such page")

// RankCursor identifies the last document of a fetched page. The id
// tie-break keeps the ordering total when scores collide.
type RankCursor struct {
	TotalSpots int64  `json:"total_spots"`
	ID         string `json:"id"`
}

// RankingSource is the slice of document-store capability the pagination
// protocols need: cursor-bounded ordered scans and an inequality count.
type RankingSource interface {
	// TopUsers returns up to limit users ordered by score descending,
	// starting strictly after the cursor (nil cursor = from the top).
	TopUsers(ctx context.Context, after *RankCursor, limit int) ([]models.RankingEntry, error)
	// UsersAfterName returns up to limit users ordered by username
	// ascending, strictly after the given username ("" = from the start).
	UsersAfterName(ctx context.Context, afterUsername string, limit int) ([]models.RankingEntry, error)
	// CountUsersWithMoreSpots counts users with a strictly greater score.
	CountUsersWithMoreSpots(ctx context.Context, spots int64) (int64, error)
}

// FetchLeaderboardPage is the pure page transition: given the cursor of
// the previous page (nil for the first), it returns the page, the cursor
// for the page after it, and whether this was the last page. A short page
// is the last page.
func FetchLeaderboardPage(ctx context.Context, src RankingSource, after *RankCursor) ([]models.RankingEntry, *RankCursor, bool, error) {
	entries, err := src.TopUsers(ctx, after, LeaderboardPageSize)
	if err != nil {
		return nil, nil, false, err
	}
	var next *RankCursor
	if len(entries) > 0 {
		last := entries[len(entries)-1]
		next = &RankCursor{TotalSpots: last.TotalSpots, ID: last.ID}
	}
	return entries, next, len(entries) < LeaderboardPageSize, nil
}

// LeaderboardPager walks the ranked listing forward and backward. The
// store only pages forward, so the pager retains the start-after cursor of
// every page it has fetched and re-derives "previous" from that list.
type LeaderboardPager struct {
	src     RankingSource
	cursors []*RankCursor // cursors[i] starts page i; cursors[0] is nil
	page    int           // index of the page last returned; -1 before the first fetch
	done    bool          // the last fetched page was final
}

func NewLeaderboardPager(src RankingSource) *LeaderboardPager {
	return &LeaderboardPager{
		src:     src,
		cursors: []*RankCursor{nil},
		page:    -1,
	}
}

// Next fetches the page after the current one. Past the final page it
// returns an empty page.
func (p *LeaderboardPager) Next(ctx context.Context) ([]models.RankingEntry, error) {
	i := p.page + 1
	if i >= len(p.cursors) {
		// Already saw the final page.
		return []models.RankingEntry{}, nil
	}
	entries, next, done, err := FetchLeaderboardPage(ctx, p.src, p.cursors[i])
	if err != nil {
		return nil, err
	}
	p.page = i
	p.done = done
	if !done {
		if i+1 < len(p.cursors) {
			p.cursors[i+1] = next
		} else {
			p.cursors = append(p.cursors, next)
		}
	}
	return entries, nil
}

// Prev re-fetches the page before the current one using its retained
// cursor.
func (p *LeaderboardPager) Prev(ctx context.Context) ([]models.RankingEntry, error) {
	i := p.page - 1
	if i < 0 {
		return nil, ErrNoSuchPage
	}
	entries, _, done, err := FetchLeaderboardPage(ctx, p.src, p.cursors[i])
	if err != nil {
		return nil, err
	}
	p.page = i
	p.done = done
	return entries, nil
}

// Done reports whether the page last returned was the final one.
func (p *LeaderboardPager) Done() bool {
	return p.done
}
