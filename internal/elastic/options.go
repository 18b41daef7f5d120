package elastic

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Semantic search modes.
const (
	SemanticDisabled   = "Disabled"
	SemanticElser      = "ELSER"
	SemanticThirdParty = "ThirdParty"
)

// DocumentTypeMinScore is one entry of the per-document-type minimum score
// table, configured as a JSON array.
type DocumentTypeMinScore struct {
	DocumentType string  `json:"documentType"`
	MinScore     float64 `json:"minScore"`
}

// Options holds every setting the provider reads. Values come from the
// configuration layer as typed scalars with defaults.
type Options struct {
	// ServerURL addresses the engine; empty means the provider is not
	// configured and every operation fails fast.
	ServerURL              string
	Username               string
	Password               string
	CertificateFingerprint string

	// Scope prefixes every index name, isolating tenants sharing a cluster.
	Scope string

	// Index creation settings.
	FieldsLimit int
	TokenFilter string
	MinGram     int
	MaxGram     int

	// Semantic search settings.
	SemanticSearchType string
	ModelID            string
	PipelineName       string
	VectorDimensions   int

	// Relevance tuning. Zero boosts and scores are treated as unset.
	KeywordBoost  float64
	SemanticBoost float64
	MinScore      float64
	// MinScoreByDocumentType is a JSON array of {documentType, minScore}
	// entries overriding MinScore per document type.
	MinScoreByDocumentType string

	// Suggestion tokenizer settings.
	SuggestionMaxLength int
	SuggestionMaxTokens int
	// PreservedSymbols are punctuation runes kept at word edges when
	// deriving completion inputs.
	PreservedSymbols string

	// Transport overrides the HTTP transport, used by tests.
	Transport http.RoundTripper
}

// withDefaults fills unset options with their defaults.
func (o Options) withDefaults() Options {
	if o.Scope == "" {
		o.Scope = "default"
	}
	if o.FieldsLimit == 0 {
		o.FieldsLimit = 1000
	}
	if o.TokenFilter == "" {
		o.TokenFilter = edgeNGramFilterName
	}
	if o.MinGram == 0 {
		o.MinGram = 1
	}
	if o.MaxGram == 0 {
		o.MaxGram = 20
	}
	if o.SemanticSearchType == "" {
		o.SemanticSearchType = SemanticDisabled
	}
	if o.ModelID == "" {
		o.ModelID = ".elser_model_1"
	}
	if o.PipelineName == "" {
		o.PipelineName = "elser-v1-pipeline"
	}
	if o.VectorDimensions == 0 {
		o.VectorDimensions = 384
	}
	if o.SuggestionMaxLength == 0 {
		o.SuggestionMaxLength = 256
	}
	if o.SuggestionMaxTokens == 0 {
		o.SuggestionMaxTokens = 10
	}
	if o.PreservedSymbols == "" {
		o.PreservedSymbols = "#%@&"
	}
	return o
}

// semanticEnabled reports whether any semantic mode is configured.
func (o *Options) semanticEnabled() bool {
	return o.SemanticSearchType != SemanticDisabled
}

// minScoreFor resolves the relevance floor for a document type from the
// per-type table, falling back to the scalar setting. Zero means no floor.
// A malformed table falls back to the scalar rather than failing the query.
func (o *Options) minScoreFor(documentType string) float64 {
	if documentType == "" || o.MinScoreByDocumentType == "" {
		return o.MinScore
	}

	var entries []DocumentTypeMinScore
	if err := json.Unmarshal([]byte(o.MinScoreByDocumentType), &entries); err != nil {
		return o.MinScore
	}

	for _, entry := range entries {
		if strings.EqualFold(entry.DocumentType, documentType) {
			return entry.MinScore
		}
	}
	return o.MinScore
}
