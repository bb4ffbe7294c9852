// Package config loads the application configuration from environment
// variables, with optional .env file support for local development.
package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Stream termination modes.
const (
	StopModeNone     = "none"
	StopModeCount    = "count"
	StopModeDuration = "duration"
)

// Aspect extractor strategies.
const (
	AspectExtractorLexicon = "lexicon"
	AspectExtractorLLM     = "llm"
)

var (
	ErrInvalidStopMode  = errors.New("invalid STREAM_STOP_MODE")
	ErrInvalidMatchMode = errors.New("invalid MATCH_MODE")
	ErrInvalidExtractor = errors.New("invalid ASPECT_EXTRACTOR")
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"local"`
	PostgresDSN string `env:"POSTGRES_DSN,required"`
	HealthPort  int    `env:"HEALTH_PORT" envDefault:"8080"`

	// Feed source selection and credentials.
	FeedSource       string        `env:"FEED_SOURCE" envDefault:"reddit"`
	RedditSubreddits []string      `env:"REDDIT_SUBREDDITS" envSeparator:"," envDefault:"iphone,Android,gadgets"`
	RedditUserAgent  string        `env:"REDDIT_USER_AGENT" envDefault:"aspect-miner/0.1"`
	YouTubeAPIKey    string        `env:"YOUTUBE_API_KEY"`
	YouTubeVideoID   string        `env:"YOUTUBE_VIDEO_ID"`
	YouTubeChannelID string        `env:"YOUTUBE_CHANNEL_ID"`
	YouTubeMaxPages  int           `env:"YOUTUBE_MAX_PAGES" envDefault:"3"`
	RSSFeedURLs      []string      `env:"RSS_FEED_URLS" envSeparator:","`
	PollInterval     time.Duration `env:"POLL_INTERVAL" envDefault:"60s"`

	// Relevance filter.
	KeywordTerms []string `env:"KEYWORD_TERMS" envSeparator:"," envDefault:"battery,camera,screen,shipping,packaging,quality,price"`
	ProductTerms []string `env:"PRODUCT_TERMS" envSeparator:"," envDefault:"iphone,ios,ipad,macbook,airpods,apple watch,apple,android,pixel,galaxy,samsung,oneplus,xiaomi"`
	MatchMode    string   `env:"MATCH_MODE" envDefault:"AND"`

	// Author suppression. Names are matched after case folding; authors
	// whose name ends in "bot" are always rejected.
	BotAuthors []string `env:"BOT_AUTHORS" envSeparator:"," envDefault:"automoderator,bot"`

	// Ingestion phases.
	BackfillTarget     int           `env:"BACKFILL_TARGET" envDefault:"20"`
	BackfillOversample int           `env:"BACKFILL_OVERSAMPLE" envDefault:"10"`
	BackfillFetchRPS   float64       `env:"BACKFILL_FETCH_RPS" envDefault:"2"`
	BatchTriggerSize   int           `env:"BATCH_TRIGGER_SIZE" envDefault:"5"`
	StreamStopMode     string        `env:"STREAM_STOP_MODE" envDefault:"none"`
	StreamMaxCount     int           `env:"STREAM_MAX_COUNT" envDefault:"0"`
	StreamDuration     time.Duration `env:"STREAM_DURATION" envDefault:"0s"`

	// Enrichment.
	EnrichBatchLimit int    `env:"ENRICH_BATCH_LIMIT" envDefault:"500"`
	AspectExtractor  string `env:"ASPECT_EXTRACTOR" envDefault:"lexicon"`
	AspectTopK       int    `env:"ASPECT_TOP_K" envDefault:"5"`
	AspectMinHits    int    `env:"ASPECT_MIN_HITS" envDefault:"1"`
	SentimentMaxLen  int    `env:"SENTIMENT_MAX_LEN" envDefault:"512"`

	// Topic model.
	TopicModelPath     string  `env:"TOPIC_MODEL_PATH" envDefault:"./data/topic_model.json"`
	TopicCount         int     `env:"TOPIC_COUNT" envDefault:"10"`
	TopicMinSimilarity float64 `env:"TOPIC_MIN_SIMILARITY" envDefault:"0.05"`

	// LLM keyphrase extractor (only used when ASPECT_EXTRACTOR=llm).
	LLMAPIKey string `env:"LLM_API_KEY"`
	LLMModel  string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StreamStopMode {
	case StopModeNone, StopModeCount, StopModeDuration:
	default:
		return ErrInvalidStopMode
	}

	switch c.MatchMode {
	case "AND", "OR":
	default:
		return ErrInvalidMatchMode
	}

	switch c.AspectExtractor {
	case AspectExtractorLexicon, AspectExtractorLLM:
	default:
		return ErrInvalidExtractor
	}

	return nil
}
