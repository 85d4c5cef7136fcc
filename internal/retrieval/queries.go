package retrieval

import (
	"context"
	"fmt"
	"sort"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/types"
)

// QueriesFor generates the search queries used to gather context for one
// symbol, derived from its snapshot and features.
func QueriesFor(snap types.MarketSnapshot, fv types.FeatureVector) []string {
	queries := []string{fmt.Sprintf("%s stock analysis", snap.Symbol)}

	if snap.Sector != "" {
		queries = append(queries, fmt.Sprintf("%s %s sector performance", snap.Symbol, snap.Sector))
	}

	if fv.RSI < 30 {
		queries = append(queries, fmt.Sprintf("%s oversold RSI technical analysis", snap.Symbol))
	} else if fv.RSI > 70 {
		queries = append(queries, fmt.Sprintf("%s overbought RSI technical analysis", snap.Symbol))
	}

	if snap.Volume > 10_000_000 {
		queries = append(queries, fmt.Sprintf("%s high volume trading analysis", snap.Symbol))
	}

	if snap.MarketCap > 1_000_000_000_000 {
		queries = append(queries, fmt.Sprintf("%s large cap stock analysis", snap.Symbol))
	} else if snap.MarketCap > 0 && snap.MarketCap < 10_000_000_000 {
		queries = append(queries, fmt.Sprintf("%s small cap stock analysis", snap.Symbol))
	}

	return queries
}

// ContextFor runs the symbol's generated queries plus a general market
// query against the retriever, de-duplicates by title, and returns the
// top-k documents by descending score.
func ContextFor(ctx context.Context, r interfaces.Retriever, snap types.MarketSnapshot, fv types.FeatureVector, k int) ([]types.RetrievedDocument, error) {
	var docs []types.RetrievedDocument

	for _, query := range QueriesFor(snap, fv) {
		found, err := r.Search(ctx, snap.Symbol, query, 3)
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", query, err)
		}
		docs = append(docs, found...)
	}

	// General market context is searched without the symbol filter.
	general, err := r.Search(ctx, "", fmt.Sprintf("market analysis %s sector %s", snap.Symbol, snap.Sector), 2)
	if err != nil {
		return nil, fmt.Errorf("search market context: %w", err)
	}
	docs = append(docs, general...)

	docs = dedupeByTitle(docs)
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Score > docs[j].Score
	})
	if len(docs) > k {
		docs = docs[:k]
	}
	return docs, nil
}

func dedupeByTitle(docs []types.RetrievedDocument) []types.RetrievedDocument {
	seen := map[string]bool{}
	out := docs[:0]
	for _, doc := range docs {
		if seen[doc.Title] {
			continue
		}
		seen[doc.Title] = true
		out = append(out, doc)
	}
	return out
}
