package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DataSource string   `yaml:"data_source"` // MOCK or LIVE
	Universe   []string `yaml:"universe"`

	Indicators struct {
		SMAWindows []int   `yaml:"sma_windows"`
		RSIPeriod  int     `yaml:"rsi_period"`
		BBWindow   int     `yaml:"bb_window"`
		BBStdDev   float64 `yaml:"bb_stddev"`
		MACDFast   int     `yaml:"macd_fast"`
		MACDSlow   int     `yaml:"macd_slow"`
	} `yaml:"indicators"`

	LLM struct {
		Provider       string  `yaml:"provider"` // OLLAMA or NONE
		Model          string  `yaml:"model"`
		MaxTokens      int     `yaml:"max_tokens"`
		Temperature    float64 `yaml:"temperature"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
	} `yaml:"llm"`

	Retrieval struct {
		TopK             int  `yaml:"top_k"`
		PromptDocs       int  `yaml:"prompt_docs"`
		ScrapeHeadlines  bool `yaml:"scrape_headlines"`
		MaxScrapeSymbols int  `yaml:"max_scrape_symbols"`
	} `yaml:"retrieval"`

	Cache struct {
		TTLSeconds int `yaml:"ttl_seconds"`
		Retries    int `yaml:"retries"`
	} `yaml:"cache"`

	Pipeline struct {
		Concurrency             int `yaml:"concurrency"`
		TopN                    int `yaml:"top_n"`
		CollectTimeoutSeconds   int `yaml:"collect_timeout_seconds"`
		ScoreTimeoutSeconds     int `yaml:"score_timeout_seconds"`
		RetrievalTimeoutSeconds int `yaml:"retrieval_timeout_seconds"`
		NarrativeTimeoutSeconds int `yaml:"narrative_timeout_seconds"`
		CombineTimeoutSeconds   int `yaml:"combine_timeout_seconds"`
		PersistTimeoutSeconds   int `yaml:"persist_timeout_seconds"`
	} `yaml:"pipeline"`

	Schedule struct {
		DailyTime string `yaml:"daily_time"` // "04:00", pre-market
		Timezone  string `yaml:"timezone"`   // e.g. "America/New_York"
	} `yaml:"schedule"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
}

func (c *Config) Validate() error {
	if c.DataSource != "MOCK" && c.DataSource != "LIVE" {
		return fmt.Errorf("invalid data_source '%s': must be 'MOCK' or 'LIVE'", c.DataSource)
	}
	if len(c.Universe) == 0 {
		return errors.New("universe cannot be empty")
	}
	if c.LLM.Provider != "OLLAMA" && c.LLM.Provider != "NONE" {
		return fmt.Errorf("invalid llm.provider '%s': must be 'OLLAMA' or 'NONE'", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0-2, got %.2f", c.LLM.Temperature)
	}
	if c.Pipeline.Concurrency <= 0 {
		return fmt.Errorf("pipeline.concurrency must be positive, got %d", c.Pipeline.Concurrency)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

func applyDefaults(c *Config) {
	if c.DataSource == "" {
		c.DataSource = "MOCK"
	}
	if len(c.Indicators.SMAWindows) == 0 {
		c.Indicators.SMAWindows = []int{20, 50}
	}
	if c.Indicators.RSIPeriod == 0 {
		c.Indicators.RSIPeriod = 14
	}
	if c.Indicators.BBWindow == 0 {
		c.Indicators.BBWindow = 20
	}
	if c.Indicators.BBStdDev == 0 {
		c.Indicators.BBStdDev = 2
	}
	if c.Indicators.MACDFast == 0 {
		c.Indicators.MACDFast = 12
	}
	if c.Indicators.MACDSlow == 0 {
		c.Indicators.MACDSlow = 26
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "NONE"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "llama3"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 500
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.3
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = 30
	}
	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = 5
	}
	if c.Retrieval.PromptDocs == 0 {
		c.Retrieval.PromptDocs = 3
	}
	if c.Retrieval.MaxScrapeSymbols == 0 {
		c.Retrieval.MaxScrapeSymbols = 5
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 300
	}
	if c.Cache.Retries == 0 {
		c.Cache.Retries = 3
	}
	if c.Pipeline.Concurrency == 0 {
		c.Pipeline.Concurrency = 8
	}
	if c.Pipeline.TopN == 0 {
		c.Pipeline.TopN = 5
	}
	if c.Pipeline.CollectTimeoutSeconds == 0 {
		c.Pipeline.CollectTimeoutSeconds = 600
	}
	if c.Pipeline.ScoreTimeoutSeconds == 0 {
		c.Pipeline.ScoreTimeoutSeconds = 900
	}
	if c.Pipeline.RetrievalTimeoutSeconds == 0 {
		c.Pipeline.RetrievalTimeoutSeconds = 300
	}
	if c.Pipeline.NarrativeTimeoutSeconds == 0 {
		c.Pipeline.NarrativeTimeoutSeconds = 600
	}
	if c.Pipeline.CombineTimeoutSeconds == 0 {
		c.Pipeline.CombineTimeoutSeconds = 300
	}
	if c.Pipeline.PersistTimeoutSeconds == 0 {
		c.Pipeline.PersistTimeoutSeconds = 120
	}
	if c.Schedule.DailyTime == "" {
		c.Schedule.DailyTime = "04:00"
	}
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = "America/New_York"
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/advisor.db"
	}
}
