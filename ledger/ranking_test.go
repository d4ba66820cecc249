package ledger_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/coinboard/ledger"
)

func standing(id int64, total int64) ledger.Standing {
	return ledger.Standing{Scope: ledger.ScopeUser, ID: id, TotalCoins: total}
}

func snapshot() []ledger.Standing {
	// Deliberately unsorted, with ties on 50 and on 0.
	return []ledger.Standing{
		standing(4, 50),
		standing(1, 10),
		standing(7, 120),
		standing(2, 50),
		standing(9, 0),
		standing(3, -5),
		standing(5, 0),
		standing(6, 75),
	}
}

func ids(p ledger.Page) []int64 {
	var out []int64
	for _, e := range p.Entries {
		out = append(out, e.ID)
	}
	return out
}

func TestRank_OrdersByTotalThenID(t *testing.T) {
	page, err := ledger.Rank(snapshot(), 50, 0)
	require.NoError(t, err)

	assert.Equal(t, []int64{7, 6, 2, 4, 1, 5, 9, 3}, ids(page))
	for i, e := range page.Entries {
		assert.Equal(t, i+1, e.Rank, "entity %d", e.ID)
	}
	assert.Equal(t, 8, page.Total)
	assert.Equal(t, 1, page.Pages)
	assert.Equal(t, 1, page.Page)
}

func TestRank_RankIndependentOfPagination(t *testing.T) {
	// GIVEN: A fixed snapshot
	// WHEN: Reading absolute rank 5 through different windows
	// THEN: It carries rank 5 every time

	full, err := ledger.Rank(snapshot(), 10, 0)
	require.NoError(t, err)
	single, err := ledger.Rank(snapshot(), 1, 4)
	require.NoError(t, err)

	require.Len(t, single.Entries, 1)
	assert.Equal(t, 5, single.Entries[0].Rank)
	assert.Equal(t, full.Entries[4], single.Entries[0])
	assert.Equal(t, 5, single.Page)
	assert.Equal(t, 8, single.Pages)
}

func TestRank_Deterministic(t *testing.T) {
	first, err := ledger.Rank(snapshot(), 3, 2)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := ledger.Rank(snapshot(), 3, 2)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	in := snapshot()
	_, err := ledger.Rank(in, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, snapshot(), in)
}

func TestRank_Pages(t *testing.T) {
	page, err := ledger.Rank(snapshot(), 3, 6)
	require.NoError(t, err)

	assert.Equal(t, []int64{9, 3}, ids(page))
	assert.Equal(t, 7, page.Entries[0].Rank)
	assert.Equal(t, 3, page.Pages)
	assert.Equal(t, 3, page.Page)
}

func TestRank_OffsetPastEnd(t *testing.T) {
	page, err := ledger.Rank(snapshot(), 5, 40)
	require.NoError(t, err)
	assert.Empty(t, page.Entries)
	assert.Equal(t, 8, page.Total)
}

func TestRank_HugeLimit(t *testing.T) {
	// GIVEN: A limit near the int maximum, as a query string can carry
	// WHEN: Reading from offset 1
	// THEN: Every remaining row is returned on a single page

	page, err := ledger.Rank(snapshot(), math.MaxInt, 1)
	require.NoError(t, err)

	assert.Equal(t, []int64{6, 2, 4, 1, 5, 9, 3}, ids(page))
	assert.Equal(t, 2, page.Entries[0].Rank)
	assert.Equal(t, 1, page.Pages)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 8, page.Total)

	page, err = ledger.Rank(snapshot(), math.MaxInt, math.MaxInt)
	require.NoError(t, err)
	assert.Empty(t, page.Entries)
	assert.Equal(t, 1, page.Pages)
}

func TestRank_Empty(t *testing.T) {
	page, err := ledger.Rank(nil, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Entries)
	assert.Equal(t, 0, page.Pages)
}

func TestRank_RejectsBadWindow(t *testing.T) {
	_, err := ledger.Rank(snapshot(), 0, 0)
	assert.ErrorIs(t, err, ledger.ErrValidation)

	_, err = ledger.Rank(snapshot(), 10, -1)
	assert.ErrorIs(t, err, ledger.ErrValidation)
}
