package query

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sk4rKr0w/wildlife-spotter-sub000/models"
)

// memRankings implements RankingSource over an in-memory user list with
// the same ordering semantics as the real store.
type memRankings struct {
	users     []models.RankingEntry
	nameScans int
}

func (m *memRankings) TopUsers(ctx context.Context, after *RankCursor, limit int) ([]models.RankingEntry, error) {
	sorted := make([]models.RankingEntry, len(m.users))
	copy(sorted, m.users)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].TotalSpots != sorted[j].TotalSpots {
			return sorted[i].TotalSpots > sorted[j].TotalSpots
		}
		return sorted[i].ID > sorted[j].ID
	})

	var out []models.RankingEntry
	for _, u := range sorted {
		if after != nil {
			if u.TotalSpots > after.TotalSpots {
				continue
			}
			if u.TotalSpots == after.TotalSpots && u.ID >= after.ID {
				continue
			}
		}
		out = append(out, u)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memRankings) UsersAfterName(ctx context.Context, afterUsername string, limit int) ([]models.RankingEntry, error) {
	m.nameScans++
	sorted := make([]models.RankingEntry, len(m.users))
	copy(sorted, m.users)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Username < sorted[j].Username })

	var out []models.RankingEntry
	for _, u := range sorted {
		if u.Username <= afterUsername {
			continue
		}
		out = append(out, u)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memRankings) CountUsersWithMoreSpots(ctx context.Context, spots int64) (int64, error) {
	var count int64
	for _, u := range m.users {
		if u.TotalSpots > spots {
			count++
		}
	}
	return count, nil
}

func rankedUsers(n int) []models.RankingEntry {
	users := make([]models.RankingEntry, 0, n)
	for i := 1; i <= n; i++ {
		users = append(users, models.RankingEntry{
			ID:         fmt.Sprintf("u%03d", i),
			Username:   fmt.Sprintf("user%03d", i),
			TotalSpots: int64(i),
		})
	}
	return users
}

func TestLeaderboardPagesThroughAllRecords(t *testing.T) {
	src := &memRankings{users: rankedUsers(35)}
	pager := NewLeaderboardPager(src)
	ctx := context.Background()

	var sizes []int
	seen := map[string]bool{}
	prevScore := int64(1 << 60)

	for i := 0; i < 4; i++ {
		page, err := pager.Next(ctx)
		require.NoError(t, err)
		sizes = append(sizes, len(page))
		for _, e := range page {
			assert.False(t, seen[e.ID], "record %s repeated", e.ID)
			seen[e.ID] = true
			assert.LessOrEqual(t, e.TotalSpots, prevScore)
			prevScore = e.TotalSpots
		}
	}

	assert.Equal(t, []int{10, 10, 10, 5}, sizes)
	assert.Len(t, seen, 35)
	assert.True(t, pager.Done())

	// Past the end: empty page, no error.
	page, err := pager.Next(ctx)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestLeaderboardPrevReusesRetainedCursors(t *testing.T) {
	src := &memRankings{users: rankedUsers(35)}
	pager := NewLeaderboardPager(src)
	ctx := context.Background()

	first, err := pager.Next(ctx)
	require.NoError(t, err)
	second, err := pager.Next(ctx)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, err = pager.Prev(ctx)
	require.NoError(t, err)

	again, err := pager.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, again)

	_, err = pager.Prev(ctx)
	require.NoError(t, err)
	back, err := pager.Prev(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, back)

	_, err = pager.Prev(ctx)
	assert.ErrorIs(t, err, ErrNoSuchPage)
}

func TestLeaderboardStableUnderScoreTies(t *testing.T) {
	users := rankedUsers(25)
	for i := range users {
		users[i].TotalSpots = 7 // everyone tied
	}
	src := &memRankings{users: users}
	pager := NewLeaderboardPager(src)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		page, err := pager.Next(ctx)
		require.NoError(t, err)
		for _, e := range page {
			assert.False(t, seen[e.ID], "record %s repeated across tied pages", e.ID)
			seen[e.ID] = true
		}
	}
	assert.Len(t, seen, 25)
}

func TestSearchFindsMatchesAcrossBatches(t *testing.T) {
	users := rankedUsers(200)
	// Sprinkle matches throughout the lexicographic order.
	for i := 0; i < 200; i += 8 {
		users[i].Username = fmt.Sprintf("Lynx%03d", i)
	}
	src := &memRankings{users: users}
	pager := NewUserSearchPager(src, "lynx")
	ctx := context.Background()

	var all []models.RankingEntry
	for !pager.Done() {
		page, err := pager.Next(ctx)
		require.NoError(t, err)
		all = append(all, page...)
	}

	assert.Len(t, all, 25)
	for _, e := range all {
		assert.True(t, strings.Contains(strings.ToLower(e.Username), "lynx"))
		assert.Positive(t, e.GlobalRank)
	}
}

func TestSearchRankIsGreaterScoreCountPlusOne(t *testing.T) {
	src := &memRankings{users: rankedUsers(50)}
	pager := NewUserSearchPager(src, "user050")
	ctx := context.Background()

	page, err := pager.Next(ctx)
	require.NoError(t, err)
	require.Len(t, page, 1)
	// user050 has the top score of 50, so rank 1.
	assert.EqualValues(t, 1, page[0].GlobalRank)

	pager.SetTerm("user001")
	page, err = pager.Next(ctx)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.EqualValues(t, 50, page[0].GlobalRank)
}

func TestSearchZeroMatchesTerminatesWithinScanCap(t *testing.T) {
	src := &memRankings{users: rankedUsers(600)}
	pager := NewUserSearchPager(src, "no-such-user")
	ctx := context.Background()

	page, err := pager.Next(ctx)
	require.NoError(t, err)
	assert.Empty(t, page)
	assert.True(t, pager.Done())
	assert.LessOrEqual(t, pager.state.Scanned, SearchScanCap)
	assert.LessOrEqual(t, src.nameScans, SearchScanCap/SearchBatchSize)
}

func TestSearchNeverRescansBatches(t *testing.T) {
	users := rankedUsers(150)
	// First batch alone holds 25 matches: page overflow must be parked,
	// not re-scanned.
	for i := 0; i < 25; i++ {
		users[i].Username = fmt.Sprintf("aacat%03d", i)
	}
	src := &memRankings{users: users}
	pager := NewUserSearchPager(src, "cat")
	ctx := context.Background()

	page1, err := pager.Next(ctx)
	require.NoError(t, err)
	require.Len(t, page1, 10)
	scansAfterFirst := src.nameScans

	page2, err := pager.Next(ctx)
	require.NoError(t, err)
	require.Len(t, page2, 10)
	// Page 2 is served from parked matches; no new store scans needed.
	assert.Equal(t, scansAfterFirst, src.nameScans)

	for _, e := range page2 {
		for _, p := range page1 {
			assert.NotEqual(t, p.ID, e.ID)
		}
	}
}

func TestSearchSetTermResetsState(t *testing.T) {
	src := &memRankings{users: rankedUsers(150)}
	pager := NewUserSearchPager(src, "user")
	ctx := context.Background()

	_, err := pager.Next(ctx)
	require.NoError(t, err)
	require.NotZero(t, pager.state.Scanned)

	pager.SetTerm("other")
	assert.Zero(t, pager.state.Scanned)
	assert.Empty(t, pager.state.Pending)
	assert.False(t, pager.state.Exhausted)
	assert.Equal(t, -1, pager.page)
}
