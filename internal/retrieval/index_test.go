package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/types"
)

func seededIndex() *Index {
	ix := NewIndex()
	ix.Add(SeedDocuments...)
	return ix
}

func TestSearchSymbolFilter(t *testing.T) {
	ix := seededIndex()

	docs, err := ix.Search(context.Background(), "AAPL", "AAPL earnings revenue", 5)
	require.NoError(t, err)
	require.NotEmpty(t, docs)
	for _, doc := range docs {
		assert.Equal(t, "AAPL", doc.Symbol)
	}
}

func TestSearchUnfilteredSpansSymbols(t *testing.T) {
	ix := seededIndex()

	docs, err := ix.Search(context.Background(), "", "market volatility earnings", 10)
	require.NoError(t, err)

	symbols := map[string]bool{}
	for _, doc := range docs {
		symbols[doc.Symbol] = true
	}
	assert.Greater(t, len(symbols), 1)
}

func TestSearchOrdersByDescendingScore(t *testing.T) {
	ix := seededIndex()

	docs, err := ix.Search(context.Background(), "", "strong earnings demand growth", 10)
	require.NoError(t, err)
	require.NotEmpty(t, docs)

	for i := 1; i < len(docs); i++ {
		assert.GreaterOrEqual(t, docs[i-1].Score, docs[i].Score)
	}
}

func TestSearchTopK(t *testing.T) {
	ix := seededIndex()

	docs, err := ix.Search(context.Background(), "", "analysts expected growth demand market", 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(docs), 2)
}

func TestSearchNoMatches(t *testing.T) {
	ix := seededIndex()

	docs, err := ix.Search(context.Background(), "", "zzzz qqqq", 5)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSearchCancelledContext(t *testing.T) {
	ix := seededIndex()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ix.Search(ctx, "", "earnings", 5)
	assert.Error(t, err)
}

func TestQueriesForFeatureDriven(t *testing.T) {
	snap := types.MarketSnapshot{
		Symbol:    "AAPL",
		Sector:    "Technology",
		Volume:    20_000_000,
		MarketCap: 2_500_000_000_000,
	}
	fv := types.FeatureVector{Symbol: "AAPL", RSI: 25}

	queries := QueriesFor(snap, fv)

	assert.Contains(t, queries, "AAPL stock analysis")
	assert.Contains(t, queries, "AAPL Technology sector performance")
	assert.Contains(t, queries, "AAPL oversold RSI technical analysis")
	assert.Contains(t, queries, "AAPL high volume trading analysis")
	assert.Contains(t, queries, "AAPL large cap stock analysis")
}

func TestQueriesForNeutral(t *testing.T) {
	snap := types.MarketSnapshot{Symbol: "PG"}
	fv := types.FeatureVector{Symbol: "PG", RSI: 50}

	queries := QueriesFor(snap, fv)
	assert.Equal(t, []string{"PG stock analysis"}, queries)
}

func TestContextForDedupesAndCaps(t *testing.T) {
	ix := seededIndex()
	snap := types.MarketSnapshot{Symbol: "AAPL", Sector: "Technology", Volume: 20_000_000, MarketCap: 2_500_000_000_000}
	fv := types.FeatureVector{Symbol: "AAPL", RSI: 25}

	docs, err := ContextFor(context.Background(), ix, snap, fv, 3)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(docs), 3)

	seen := map[string]bool{}
	for _, doc := range docs {
		assert.False(t, seen[doc.Title], "duplicate title %q", doc.Title)
		seen[doc.Title] = true
	}
}
