// Package elastic implements the Elasticsearch provider adapter: it compiles
// the abstract search model to the native query DSL, manages index mappings
// and the active/backup alias lifecycle, and decodes native responses.
package elastic

import (
	"strings"

	"github.com/google/uuid"
)

const (
	activeIndexAlias = "active"
	backupIndexAlias = "backup"

	searchableFieldAnalyzerName = "searchable_field_analyzer"
	ngramFilterName             = "custom_ngram"
	edgeNGramFilterName         = "custom_edge_ngram"

	// suggestionFieldSuffix marks the companion completion field derived
	// for suggestable document fields.
	suggestionFieldSuffix = "__suggest"

	// objectFieldName is reserved for internal object serialization and is
	// never written to the native document.
	objectFieldName = "__object"

	// mlPropertyName holds model-produced semantic search data.
	mlPropertyName   = "__ml"
	tokensFieldName  = mlPropertyName + ".tokens"
	vectorFieldName  = mlPropertyName + ".predicted_value"
	rawSubFieldName  = "raw"
	suffixByteLength = 8
)

// toElasticFieldName maps an abstract field name to its native form.
// Native names are lower-case invariant.
func toElasticFieldName(name string) string {
	return strings.ToLower(name)
}

// suggestionFieldName derives the companion completion field name for a
// suggestable field.
func suggestionFieldName(name string) string {
	return toElasticFieldName(name) + suggestionFieldSuffix
}

// indexName computes the base index name for a document type: "scope-doctype".
func indexName(scope, documentType string) string {
	return strings.ToLower(scope + "-" + documentType)
}

// indexAlias combines the base index name with an alias suffix, e.g.
// "default-product-active".
func indexAlias(scope, documentType, alias string) string {
	return strings.ToLower(indexName(scope, documentType) + "-" + alias)
}

// randomIndexSuffix returns a random suffix attached to physical index names
// so a new generation never collides with the one it replaces.
func randomIndexSuffix() string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	return s[:suffixByteLength]
}
