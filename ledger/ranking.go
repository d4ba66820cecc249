package ledger

import "sort"

// =============================================================================
// RANKING - Leaderboard ordering over an aggregated snapshot
// =============================================================================

// Page is one slice of a ranked leaderboard.
type Page struct {
	Entries []RankedStanding
	Total   int // entities in the full ordering
	Limit   int
	Offset  int
	Page    int // 1-based page number containing Offset
	Pages   int // ceil(Total / Limit)
}

// Rank orders standings by total coins descending, ties broken by ascending
// ID, and returns the window [offset, offset+limit).
//
// Rank numbers are absolute positions in the full ordering, so an entity
// carries the same rank no matter which window it is read through.
func Rank(standings []Standing, limit, offset int) (Page, error) {
	if limit <= 0 {
		return Page{}, Invalid("limit", "must be positive")
	}
	if offset < 0 {
		return Page{}, Invalid("offset", "must not be negative")
	}

	ordered := make([]Standing, len(standings))
	copy(ordered, standings)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].TotalCoins != ordered[j].TotalCoins {
			return ordered[i].TotalCoins > ordered[j].TotalCoins
		}
		return ordered[i].ID < ordered[j].ID
	})

	total := len(ordered)
	page := Page{
		Entries: []RankedStanding{},
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		Page:    offset/limit + 1,
		Pages:   total / limit,
	}
	if total%limit != 0 {
		page.Pages++
	}
	if offset >= total {
		return page, nil
	}

	// Bounds are compared without offset+limit, which overflows for huge limits.
	end := total
	if limit < total-offset {
		end = offset + limit
	}
	for i := offset; i < end; i++ {
		page.Entries = append(page.Entries, RankedStanding{Rank: i + 1, Standing: ordered[i]})
	}
	return page, nil
}
