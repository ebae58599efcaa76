package controllers

import (
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Sk4rKr0w/wildlife-spotter-sub000/database"
	"github.com/Sk4rKr0w/wildlife-spotter-sub000/models"
	"github.com/Sk4rKr0w/wildlife-spotter-sub000/query"
)

// Cursor tokens are opaque to clients: base64 over the protocol state.

func encodeCursor(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(token string, v any) error {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// Leaderboard returns one ranked page. The optional cursor query param is
// the next_cursor of the previous response; omitting it fetches the top.
func Leaderboard(rankings *database.RankingStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var after *query.RankCursor
		if token := c.Query("cursor"); token != "" {
			var cur query.RankCursor
			if err := decodeCursor(token, &cur); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cursor"})
				return
			}
			after = &cur
		}

		entries, next, done, err := query.FetchLeaderboardPage(c.Request.Context(), rankings, after)
		if err != nil {
			log.Printf("rankings: leaderboard page: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "leaderboard query failed"})
			return
		}
		if entries == nil {
			entries = []models.RankingEntry{}
		}

		nextToken := ""
		if !done && next != nil {
			nextToken = encodeCursor(next)
		}
		c.JSON(http.StatusOK, gin.H{
			"entries":     entries,
			"next_cursor": nextToken,
			"done":        done,
		})
	}
}

// searchCursor binds a scan state to the term it was built for. Replaying
// a cursor under a different term would resume mid-scan and skip records.
type searchCursor struct {
	Term  string            `json:"term"`
	State query.SearchState `json:"state"`
}

// SearchRankings pages through users whose name contains the query term,
// case-insensitively. The cursor token carries the scan position so
// successive pages of one term never re-scan users already seen; a new
// term simply starts without a cursor.
func SearchRankings(rankings *database.RankingStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		term := c.Query("q")
		if term == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
			return
		}

		var state query.SearchState
		if token := c.Query("cursor"); token != "" {
			var cur searchCursor
			if err := decodeCursor(token, &cur); err != nil || !strings.EqualFold(cur.Term, term) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cursor"})
				return
			}
			state = cur.State
		}

		entries, state, err := query.FetchSearchPage(c.Request.Context(), rankings, term, state, query.SearchPageSize)
		if err != nil {
			log.Printf("rankings: search %q: %v", term, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "search query failed"})
			return
		}
		if entries == nil {
			entries = []models.RankingEntry{}
		}

		nextToken := ""
		if !state.Done() {
			nextToken = encodeCursor(searchCursor{Term: term, State: state})
		}
		c.JSON(http.StatusOK, gin.H{
			"entries":     entries,
			"next_cursor": nextToken,
			"done":        state.Done(),
		})
	}
}
