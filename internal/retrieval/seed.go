package retrieval

import "stock-advisor/internal/types"

// SeedDocuments are curated documents loaded into a fresh index so the
// narrative scorer has context before any headlines are scraped.
var SeedDocuments = []types.RetrievedDocument{
	{
		Title:   "Apple Q4 Earnings Beat Expectations",
		Content: "Apple reported strong Q4 earnings with iPhone sales up 15% year-over-year. Services revenue continues to grow at 25% annually.",
		Source:  "Reuters",
		Date:    "2024-01-15",
		Symbol:  "AAPL",
		Type:    "earnings",
	},
	{
		Title:   "Tesla Production Challenges in Q3",
		Content: "Tesla faced supply chain issues affecting Model 3 production. However, demand remains strong with record pre-orders.",
		Source:  "Bloomberg",
		Date:    "2024-01-10",
		Symbol:  "TSLA",
		Type:    "news",
	},
	{
		Title:   "Market Volatility Expected Due to Fed Meeting",
		Content: "Federal Reserve meeting this week expected to cause market volatility. Analysts predict potential rate hike pause.",
		Source:  "CNBC",
		Date:    "2024-01-12",
		Symbol:  "MARKET",
		Type:    "market_analysis",
	},
	{
		Title:   "Semiconductor Demand Outlook Remains Strong",
		Content: "Data center buildouts continue to drive semiconductor demand. Analysts see double digit growth for AI accelerator suppliers through next year.",
		Source:  "Reuters",
		Date:    "2024-01-14",
		Symbol:  "NVDA",
		Type:    "analyst_report",
	},
	{
		Title:   "Banks Brace for Slower Loan Growth",
		Content: "Large banks guided to slower loan growth amid elevated rates. Net interest margins are expected to compress modestly.",
		Source:  "MarketWatch",
		Date:    "2024-01-11",
		Symbol:  "JPM",
		Type:    "news",
	},
}
