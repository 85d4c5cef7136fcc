package news

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

// Scraper collects recent headlines per symbol as retrieval documents.
type Scraper struct {
	sources   []Source
	timeout   time.Duration
	userAgent string
}

// Source defines one headline source.
type Source struct {
	Name       string
	URL        string // contains {symbol}
	Container  string // CSS selector for the headline elements
	MaxPerPage int
	RateLimit  time.Duration
}

func defaultSources() []Source {
	return []Source{
		{
			Name:       "Yahoo Finance",
			URL:        "https://finance.yahoo.com/quote/{symbol}/news",
			Container:  "h3",
			MaxPerPage: 3,
			RateLimit:  2 * time.Second,
		},
	}
}

func NewScraper(timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scraper{
		sources:   defaultSources(),
		timeout:   timeout,
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	}
}

// Headlines scrapes headlines for up to maxSymbols symbols. Scrape failures
// are logged and skipped; the caller gets whatever was found.
func (s *Scraper) Headlines(ctx context.Context, symbols []string, maxSymbols int) []types.RetrievedDocument {
	if maxSymbols > 0 && len(symbols) > maxSymbols {
		symbols = symbols[:maxSymbols]
	}

	var docs []types.RetrievedDocument
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			break
		}
		found, err := s.scrapeSymbol(ctx, symbol)
		if err != nil {
			logger.Warn(ctx, "Headline scrape failed", "symbol", symbol, "error", err)
			continue
		}
		docs = append(docs, found...)
	}
	return docs
}

func (s *Scraper) scrapeSymbol(ctx context.Context, symbol string) ([]types.RetrievedDocument, error) {
	var docs []types.RetrievedDocument
	today := time.Now().Format("2006-01-02")

	for _, src := range s.sources {
		c := colly.NewCollector(
			colly.UserAgent(s.userAgent),
			colly.MaxDepth(1),
		)
		c.SetRequestTimeout(s.timeout)

		count := 0
		c.OnHTML(src.Container, func(e *colly.HTMLElement) {
			if count >= src.MaxPerPage {
				return
			}
			title := headlineText(e.DOM)
			if title == "" {
				return
			}
			count++
			docs = append(docs, types.RetrievedDocument{
				Title:   title,
				Content: fmt.Sprintf("Recent news about %s: %s", symbol, title),
				Source:  src.Name,
				Date:    today,
				Symbol:  symbol,
				Type:    "news",
			})
		})

		url := strings.ReplaceAll(src.URL, "{symbol}", symbol)
		if err := c.Visit(url); err != nil {
			return nil, fmt.Errorf("visit %s: %w", url, err)
		}
		c.Wait()

		if src.RateLimit > 0 {
			select {
			case <-time.After(src.RateLimit):
			case <-ctx.Done():
				return docs, nil
			}
		}
	}
	return docs, nil
}

// headlineText extracts a cleaned headline from the matched element,
// preferring an inner anchor when present.
func headlineText(sel *goquery.Selection) string {
	if a := sel.Find("a"); a.Length() > 0 {
		if t := strings.TrimSpace(a.First().Text()); t != "" {
			return t
		}
	}
	return strings.TrimSpace(sel.Text())
}
