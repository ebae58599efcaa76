package query

import (
	"context"
	"strings"

	"github.com/Sk4rKr0w/wildlife-spotter-sub000/models"
)

const (
	// SearchPageSize is how many matches one search page carries.
	SearchPageSize = 10
	// SearchBatchSize is how many users one store scan pulls at a time.
	SearchBatchSize = 50
	// SearchScanCap bounds the total users scanned for one search term, so
	// a rare term over a huge user base cannot run away on latency or cost.
	SearchScanCap = 500
)

// SearchState is the resumable position of a username search. The scan
// cursor only ever moves forward: matches found past the end of the
// current page are parked in Pending so the next page never re-scans a
// batch it has already seen.
type SearchState struct {
	After     string                `json:"after"`   // last username scanned
	Scanned   int                   `json:"scanned"` // total users scanned so far
	Pending   []models.RankingEntry `json:"pending,omitempty"`
	Exhausted bool                  `json:"exhausted"` // store drained or scan cap hit
}

// Done reports whether the search has nothing left to return.
func (s SearchState) Done() bool {
	return s.Exhausted && len(s.Pending) == 0
}

// FetchSearchPage advances a case-insensitive substring search over
// usernames by one page. Username ordering is the only index the store
// offers, so the scan over-fetches lexicographic batches and filters them
// client-side. Each match's GlobalRank is looked up as the count of users
// with a strictly greater score, plus one.
//
// Batches are fetched sequentially: the scan cursor is stateful and the
// next batch depends on where the previous one ended.
func FetchSearchPage(ctx context.Context, src RankingSource, term string, st SearchState, pageSize int) ([]models.RankingEntry, SearchState, error) {
	term = strings.ToLower(term)

	page := make([]models.RankingEntry, 0, pageSize)
	take := min(pageSize, len(st.Pending))
	page = append(page, st.Pending[:take]...)
	st.Pending = st.Pending[take:]

	for len(page) < pageSize && !st.Exhausted {
		if st.Scanned >= SearchScanCap {
			st.Exhausted = true
			break
		}
		batch, err := src.UsersAfterName(ctx, st.After, SearchBatchSize)
		if err != nil {
			return nil, st, err
		}
		if len(batch) == 0 {
			st.Exhausted = true
			break
		}
		st.Scanned += len(batch)
		st.After = batch[len(batch)-1].Username
		if len(batch) < SearchBatchSize {
			st.Exhausted = true
		}

		for _, e := range batch {
			if !strings.Contains(strings.ToLower(e.Username), term) {
				continue
			}
			greater, err := src.CountUsersWithMoreSpots(ctx, e.TotalSpots)
			if err != nil {
				return nil, st, err
			}
			e.GlobalRank = greater + 1
			if len(page) < pageSize {
				page = append(page, e)
			} else {
				st.Pending = append(st.Pending, e)
			}
		}
	}

	return page, st, nil
}

// UserSearchPager is the session-scoped search state machine. Successive
// Next calls share one monotonic scan cursor; changing the term resets
// everything.
type UserSearchPager struct {
	src   RankingSource
	term  string
	state SearchState
	page  int
}

func NewUserSearchPager(src RankingSource, term string) *UserSearchPager {
	return &UserSearchPager{src: src, term: term, page: -1}
}

// SetTerm switches the search term and drops all accumulated state:
// cursor, pending matches, done flag, and page index.
func (p *UserSearchPager) SetTerm(term string) {
	p.term = term
	p.state = SearchState{}
	p.page = -1
}

// Next returns the next page of matches.
func (p *UserSearchPager) Next(ctx context.Context) ([]models.RankingEntry, error) {
	page, st, err := FetchSearchPage(ctx, p.src, p.term, p.state, SearchPageSize)
	if err != nil {
		return nil, err
	}
	p.state = st
	p.page++
	return page, nil
}

// Done reports whether further Next calls can return anything.
func (p *UserSearchPager) Done() bool {
	return p.state.Done()
}
