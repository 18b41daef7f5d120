package config

import (
	"fmt"

	"github.com/utafrali/elasticbridge/internal/elastic"
	pkgconfig "github.com/utafrali/elasticbridge/pkg/config"
)

// Config holds all configuration for the search bridge service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort          int      `env:"SEARCH_HTTP_PORT" envDefault:"8010"`
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`

	// Elasticsearch connection. An empty URL leaves the provider
	// unconfigured: every search operation fails fast with a descriptive
	// error instead of a connection timeout.
	ElasticsearchURL         string `env:"ELASTICSEARCH_URL" envDefault:"http://localhost:9200"`
	ElasticsearchUser        string `env:"ELASTICSEARCH_USER"`
	ElasticsearchPassword    string `env:"ELASTICSEARCH_PASSWORD"`
	ElasticsearchFingerprint string `env:"ELASTICSEARCH_CERT_FINGERPRINT"`

	// Scope prefixes every index name, isolating tenants sharing a cluster.
	Scope string `env:"SEARCH_SCOPE" envDefault:"default"`

	// Index creation settings.
	IndexFieldsLimit int    `env:"SEARCH_INDEX_FIELDS_LIMIT" envDefault:"1000"`
	IndexTokenFilter string `env:"SEARCH_INDEX_TOKEN_FILTER" envDefault:"custom_edge_ngram"`
	IndexMinGram     int    `env:"SEARCH_INDEX_MIN_GRAM" envDefault:"1"`
	IndexMaxGram     int    `env:"SEARCH_INDEX_MAX_GRAM" envDefault:"20"`

	// Semantic search: Disabled, ELSER, or ThirdParty.
	SemanticSearchType string `env:"SEARCH_SEMANTIC_TYPE" envDefault:"Disabled"`
	SemanticModelID    string `env:"SEARCH_SEMANTIC_MODEL_ID" envDefault:".elser_model_1"`
	SemanticPipeline   string `env:"SEARCH_SEMANTIC_PIPELINE" envDefault:"elser-v1-pipeline"`
	VectorDimensions   int    `env:"SEARCH_SEMANTIC_VECTOR_DIMENSIONS" envDefault:"384"`

	// Relevance tuning.
	KeywordBoost           float64 `env:"SEARCH_KEYWORD_BOOST" envDefault:"2"`
	SemanticBoost          float64 `env:"SEARCH_SEMANTIC_BOOST" envDefault:"4"`
	MinScore               float64 `env:"SEARCH_MIN_SCORE"`
	MinScoreByDocumentType string  `env:"SEARCH_MIN_SCORE_BY_DOCUMENT_TYPE"`

	// Suggestion tokenizer settings.
	SuggestionMaxLength int    `env:"SEARCH_SUGGESTION_MAX_LENGTH" envDefault:"256"`
	SuggestionMaxTokens int    `env:"SEARCH_SUGGESTION_MAX_TOKENS" envDefault:"10"`
	PreservedSymbols    string `env:"SEARCH_SUGGESTION_PRESERVED_SYMBOLS" envDefault:"#%@&"`

	// Document types that get their active alias ensured at startup.
	DocumentTypes []string `env:"SEARCH_DOCUMENT_TYPES" envDefault:"product" envSeparator:","`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaGroupID string   `env:"KAFKA_GROUP_ID" envDefault:"search-bridge"`
	// KafkaEventsEnabled controls both event consumption and lifecycle
	// event publishing.
	KafkaEventsEnabled bool `env:"KAFKA_EVENTS_ENABLED" envDefault:"true"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load search bridge config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.SemanticSearchType {
	case elastic.SemanticDisabled, elastic.SemanticElser, elastic.SemanticThirdParty:
	default:
		return fmt.Errorf("invalid semantic search type: %q", c.SemanticSearchType)
	}
	if c.IndexMinGram > c.IndexMaxGram {
		return fmt.Errorf("min gram %d exceeds max gram %d", c.IndexMinGram, c.IndexMaxGram)
	}
	if len(c.DocumentTypes) == 0 {
		return fmt.Errorf("at least one document type is required")
	}
	return nil
}

// ProviderOptions maps the configuration onto provider options.
func (c *Config) ProviderOptions() elastic.Options {
	return elastic.Options{
		ServerURL:              c.ElasticsearchURL,
		Username:               c.ElasticsearchUser,
		Password:               c.ElasticsearchPassword,
		CertificateFingerprint: c.ElasticsearchFingerprint,
		Scope:                  c.Scope,
		FieldsLimit:            c.IndexFieldsLimit,
		TokenFilter:            c.IndexTokenFilter,
		MinGram:                c.IndexMinGram,
		MaxGram:                c.IndexMaxGram,
		SemanticSearchType:     c.SemanticSearchType,
		ModelID:                c.SemanticModelID,
		PipelineName:           c.SemanticPipeline,
		VectorDimensions:       c.VectorDimensions,
		KeywordBoost:           c.KeywordBoost,
		SemanticBoost:          c.SemanticBoost,
		MinScore:               c.MinScore,
		MinScoreByDocumentType: c.MinScoreByDocumentType,
		SuggestionMaxLength:    c.SuggestionMaxLength,
		SuggestionMaxTokens:    c.SuggestionMaxTokens,
		PreservedSymbols:       c.PreservedSymbols,
	}
}
