package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/utafrali/elasticbridge/internal/search"
)

// bulkErrorItemID marks the synthetic indexing result item carrying a
// request-level bulk failure, as opposed to a per-document one.
const bulkErrorItemID = "_bulk_error"

// Provider is the Elasticsearch-backed search provider. It owns the client,
// the per-index schema cache and the request/response translation, and
// implements every index lifecycle operation including the active/backup
// alias swap.
type Provider struct {
	client    *elasticsearch.Client
	opts      Options
	logger    *slog.Logger
	schema    *SchemaCache
	converter *DocumentConverter
	builder   requestBuilder
}

// NewProvider creates a provider from the given options. An empty server URL
// leaves the client unconfigured; every operation then fails fast with a
// SearchError instead of dialing nowhere.
func NewProvider(opts Options, logger *slog.Logger) (*Provider, error) {
	opts = opts.withDefaults()

	p := &Provider{
		opts:   opts,
		logger: logger,
	}
	p.schema = NewSchemaCache(p)
	p.converter = NewDocumentConverter(&p.opts)
	p.builder = requestBuilder{opts: &p.opts}

	if opts.ServerURL != "" {
		cfg := elasticsearch.Config{
			Addresses:              []string{opts.ServerURL},
			Username:               opts.Username,
			Password:               opts.Password,
			CertificateFingerprint: opts.CertificateFingerprint,
			Transport:              opts.Transport,
		}

		client, err := elasticsearch.NewClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("elastic: create client: %w", err)
		}
		p.client = client
	}

	return p, nil
}

// Ping checks whether the cluster is reachable.
func (p *Provider) Ping(ctx context.Context) error {
	if err := p.checkConfigured(); err != nil {
		return err
	}

	res, err := p.client.Ping(p.client.Ping.WithContext(ctx))
	if err != nil {
		return p.newError("ping failed", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return p.newError(fmt.Sprintf("ping failed: unexpected status %s", res.Status()), nil)
	}
	return nil
}

// Search executes a search request against the document type's active index,
// or its backup index when the request asks for it.
func (p *Provider) Search(ctx context.Context, documentType string, request *search.Request) (*search.Response, error) {
	if err := p.checkConfigured(); err != nil {
		return nil, err
	}

	alias := p.aliasFor(request.UseBackupIndex, documentType)

	fields, err := p.schema.Get(ctx, alias)
	if err != nil {
		return nil, err
	}

	body := p.builder.Build(request, documentType, fields)

	raw, err := p.executeSearch(ctx, alias, body)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		// Index does not exist yet.
		return &search.Response{}, nil
	}

	return buildResponse(raw, request.Aggregations), nil
}

// Suggest returns completion suggestions for a prefix across the requested
// suggestable fields.
func (p *Provider) Suggest(ctx context.Context, documentType string, request *search.SuggestionRequest) (*search.SuggestionResponse, error) {
	if err := p.checkConfigured(); err != nil {
		return nil, err
	}
	if len(request.Fields) == 0 || request.Query == "" {
		return &search.SuggestionResponse{}, nil
	}

	alias := p.aliasFor(request.UseBackupIndex, documentType)
	body := p.builder.BuildSuggest(request)

	raw, err := p.executeSearch(ctx, alias, body)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return &search.SuggestionResponse{}, nil
	}

	return buildSuggestions(raw, request.Fields), nil
}

func (p *Provider) executeSearch(ctx context.Context, alias string, body map[string]any) (*esSearchResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, p.newError("marshal search request", err)
	}

	res, err := p.client.Search(
		p.client.Search.WithContext(ctx),
		p.client.Search.WithIndex(alias),
		p.client.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return nil, p.newError("search failed", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if res.IsError() {
		return nil, p.responseError(res, "search failed")
	}

	var raw esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, p.newError("decode search response", err)
	}
	return &raw, nil
}

// Index adds or updates documents in the active index, evolving the mapping
// first when the documents introduce new fields.
func (p *Provider) Index(ctx context.Context, documentType string, documents []search.Document) (*search.IndexingResult, error) {
	return p.index(ctx, documentType, documents, false)
}

// IndexWithBackup writes documents to the backup index, building the next
// index generation without touching live traffic. SwapIndex promotes it.
func (p *Provider) IndexWithBackup(ctx context.Context, documentType string, documents []search.Document) (*search.IndexingResult, error) {
	return p.index(ctx, documentType, documents, true)
}

// CreateIndex ensures the backup index exists with a mapping derived from
// the schema document, without indexing it.
func (p *Provider) CreateIndex(ctx context.Context, documentType string, schema search.Document) error {
	if err := p.checkConfigured(); err != nil {
		return err
	}
	_, _, err := p.prepareIndex(ctx, documentType, []search.Document{schema}, true)
	return err
}

func (p *Provider) index(ctx context.Context, documentType string, documents []search.Document, reindex bool) (*search.IndexingResult, error) {
	if err := p.checkConfigured(); err != nil {
		return nil, err
	}

	alias, providerDocuments, err := p.prepareIndex(ctx, documentType, documents, reindex)
	if err != nil {
		return nil, err
	}

	pipeline := ""
	if p.opts.semanticEnabled() {
		if err := p.ensureMLMapping(ctx, alias); err != nil {
			return nil, err
		}
		if err := p.checkPipeline(ctx, p.opts.PipelineName); err != nil {
			return nil, err
		}
		pipeline = p.opts.PipelineName
	}

	var buf bytes.Buffer
	for i, doc := range documents {
		action := map[string]any{
			"index": map[string]any{"_index": alias, "_id": doc.ID},
		}
		if err := json.NewEncoder(&buf).Encode(action); err != nil {
			return nil, p.newError("encode bulk action", err)
		}
		if err := json.NewEncoder(&buf).Encode(providerDocuments[i]); err != nil {
			return nil, p.newError("encode bulk document", err)
		}
	}

	result, err := p.executeBulk(ctx, alias, &buf, pipeline)
	if err != nil {
		return nil, err
	}

	p.refresh(ctx, alias)

	p.logger.DebugContext(ctx, "indexed documents",
		"documentType", documentType, "count", len(documents), "index", alias)

	return result, nil
}

// prepareIndex resolves the target alias, converts the documents against the
// cached schema, creates the physical index on first use and pushes any new
// mapping properties.
func (p *Provider) prepareIndex(ctx context.Context, documentType string, documents []search.Document, reindex bool) (string, []map[string]any, error) {
	alias := p.aliasFor(reindex, documentType)

	properties, err := p.schema.Snapshot(ctx, alias)
	if err != nil {
		return "", nil, err
	}

	providerDocuments := make([]map[string]any, 0, len(documents))
	for _, doc := range documents {
		converted, err := p.converter.Convert(doc, properties)
		if err != nil {
			return "", nil, p.newError(fmt.Sprintf("convert document %q", doc.ID), err)
		}
		providerDocuments = append(providerDocuments, converted)
	}

	exists, err := p.IndexExists(ctx, alias)
	if err != nil {
		return "", nil, err
	}
	if !exists {
		physicalName := indexName(p.opts.Scope, documentType) + "-" + randomIndexSuffix()
		if err := p.createPhysicalIndex(ctx, physicalName, alias); err != nil {
			return "", nil, err
		}
	}

	newProperties := p.schema.Merge(alias, properties)
	if len(newProperties) > 0 {
		if err := p.pushMapping(ctx, alias, newProperties); err != nil {
			// The cache must not claim properties the engine rejected.
			p.schema.Invalidate(alias)
			return "", nil, err
		}
		p.refresh(ctx, alias)
	}

	return alias, providerDocuments, nil
}

// Remove deletes documents by ID from the active index. Missing documents
// count as removed.
func (p *Provider) Remove(ctx context.Context, documentType string, ids []string) (*search.IndexingResult, error) {
	if err := p.checkConfigured(); err != nil {
		return nil, err
	}

	alias := p.aliasFor(false, documentType)

	var buf bytes.Buffer
	for _, id := range ids {
		action := map[string]any{
			"delete": map[string]any{"_index": alias, "_id": id},
		}
		if err := json.NewEncoder(&buf).Encode(action); err != nil {
			return nil, p.newError("encode bulk action", err)
		}
	}

	result, err := p.executeBulk(ctx, alias, &buf, "")
	if err != nil {
		return nil, err
	}

	p.refresh(ctx, alias)

	return result, nil
}

// DeleteIndex removes the document type's backup index. Deleting an absent
// index is not an error.
func (p *Provider) DeleteIndex(ctx context.Context, documentType string) error {
	if err := p.checkConfigured(); err != nil {
		return err
	}

	alias := indexAlias(p.opts.Scope, documentType, backupIndexAlias)

	physicalName, err := p.resolveIndexName(ctx, alias)
	if err != nil {
		return err
	}

	if physicalName != "" {
		res, err := p.client.Indices.Delete(
			[]string{physicalName},
			p.client.Indices.Delete.WithContext(ctx),
		)
		if err != nil {
			return p.newError("delete index failed", err)
		}
		defer func() { _ = res.Body.Close() }()

		if res.IsError() && res.StatusCode != http.StatusNotFound {
			return p.responseError(res, "delete index failed")
		}
	}

	p.schema.Invalidate(alias)

	p.logger.InfoContext(ctx, "deleted backup index", "documentType", documentType, "index", physicalName)
	return nil
}

// SwapIndex atomically exchanges the active and backup aliases of a document
// type, promoting the freshly built backup generation to serve traffic. When
// no active index exists yet, the default index is created or aliased first
// so the swap always has two sides to work with.
func (p *Provider) SwapIndex(ctx context.Context, documentType string) error {
	if err := p.checkConfigured(); err != nil {
		return err
	}

	activeAlias := indexAlias(p.opts.Scope, documentType, activeIndexAlias)
	backupAlias := indexAlias(p.opts.Scope, documentType, backupIndexAlias)

	if err := p.ensureActiveIndex(ctx, documentType, activeAlias); err != nil {
		return err
	}

	activeName, err := p.resolveIndexName(ctx, activeAlias)
	if err != nil {
		return err
	}
	if activeName == "" {
		return nil
	}

	actions := []any{
		map[string]any{"remove": map[string]any{"index": activeName, "alias": activeAlias}},
	}

	backupName, err := p.resolveIndexName(ctx, backupAlias)
	if err != nil {
		return err
	}
	if backupName != "" {
		actions = append(actions,
			map[string]any{"remove": map[string]any{"index": backupName, "alias": backupAlias}},
			map[string]any{"add": map[string]any{"index": backupName, "alias": activeAlias}},
		)
	}

	actions = append(actions,
		map[string]any{"add": map[string]any{"index": activeName, "alias": backupAlias}},
	)

	data, err := json.Marshal(map[string]any{"actions": actions})
	if err != nil {
		return p.newError("marshal alias swap", err)
	}

	res, err := p.client.Indices.UpdateAliases(
		bytes.NewReader(data),
		p.client.Indices.UpdateAliases.WithContext(ctx),
	)
	if err != nil {
		return p.newError(fmt.Sprintf("failed to swap indexes for document type %s", documentType), err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return p.responseError(res, fmt.Sprintf("failed to swap indexes for document type %s", documentType))
	}

	p.schema.Invalidate(activeAlias)
	p.schema.Invalidate(backupAlias)

	p.logger.InfoContext(ctx, "swapped index aliases",
		"documentType", documentType, "active", backupName, "backup", activeName)
	return nil
}

// ensureActiveIndex guarantees the active alias resolves to something before
// a swap: a missing default index is created with the alias attached, an
// existing unaliased one gets the alias put on it.
func (p *Provider) ensureActiveIndex(ctx context.Context, documentType, activeAlias string) error {
	exists, err := p.IndexExists(ctx, activeAlias)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	defaultName := indexName(p.opts.Scope, documentType)

	defaultExists, err := p.IndexExists(ctx, defaultName)
	if err != nil {
		return err
	}
	if !defaultExists {
		return p.createPhysicalIndex(ctx, defaultName, activeAlias)
	}

	res, err := p.client.Indices.PutAlias(
		[]string{defaultName},
		activeAlias,
		p.client.Indices.PutAlias.WithContext(ctx),
	)
	if err != nil {
		return p.newError("put alias failed", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return p.responseError(res, "put alias failed")
	}
	return nil
}

// AddActiveAlias puts the active alias on each document type's default index
// when the alias is missing and the index exists. Used at startup to adopt
// indexes created before alias-based addressing. Failures are logged, never
// fatal.
func (p *Provider) AddActiveAlias(ctx context.Context, documentTypes []string) error {
	if err := p.checkConfigured(); err != nil {
		return err
	}

	for _, documentType := range documentTypes {
		alias := indexAlias(p.opts.Scope, documentType, activeIndexAlias)

		exists, err := p.IndexExists(ctx, alias)
		if err != nil || exists {
			p.logAliasSkip(ctx, documentType, err)
			continue
		}

		defaultName := indexName(p.opts.Scope, documentType)
		defaultExists, err := p.IndexExists(ctx, defaultName)
		if err != nil || !defaultExists {
			p.logAliasSkip(ctx, documentType, err)
			continue
		}

		res, err := p.client.Indices.PutAlias(
			[]string{defaultName},
			alias,
			p.client.Indices.PutAlias.WithContext(ctx),
		)
		if err != nil {
			p.logAliasSkip(ctx, documentType, err)
			continue
		}
		if res.IsError() {
			p.logAliasSkip(ctx, documentType, p.responseError(res, "put alias failed"))
		}
		_ = res.Body.Close()
	}

	return nil
}

func (p *Provider) logAliasSkip(ctx context.Context, documentType string, err error) {
	if err == nil {
		return
	}
	p.logger.ErrorContext(ctx, "failed to put active alias on default index",
		"documentType", documentType, "error", err)
}

// IndexExists reports whether an index or alias exists.
func (p *Provider) IndexExists(ctx context.Context, name string) (bool, error) {
	res, err := p.client.Indices.Exists(
		[]string{name},
		p.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, p.newError(fmt.Sprintf("index check call failed for index: %s", name), err)
	}
	defer func() { _ = res.Body.Close() }()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, p.newError(fmt.Sprintf("index check call failed for index: %s", name), nil)
	}
}

// LoadMapping reads the live property map of an index or alias.
func (p *Provider) LoadMapping(ctx context.Context, name string) (map[string]*Property, error) {
	res, err := p.client.Indices.GetMapping(
		p.client.Indices.GetMapping.WithIndex(name),
		p.client.Indices.GetMapping.WithContext(ctx),
	)
	if err != nil {
		return nil, p.newError("load mapping failed", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == http.StatusNotFound {
		return map[string]*Property{}, nil
	}
	if res.IsError() {
		return nil, p.responseError(res, "load mapping failed")
	}

	var decoded map[string]struct {
		Mappings struct {
			Properties map[string]*Property `json:"properties"`
		} `json:"mappings"`
	}
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, p.newError("decode mapping response", err)
	}

	for _, entry := range decoded {
		if entry.Mappings.Properties != nil {
			return entry.Mappings.Properties, nil
		}
	}
	return map[string]*Property{}, nil
}

func (p *Provider) pushMapping(ctx context.Context, name string, properties map[string]*Property) error {
	data, err := json.Marshal(map[string]any{"properties": properties})
	if err != nil {
		return p.newError("marshal mapping", err)
	}

	res, err := p.client.Indices.PutMapping(
		[]string{name},
		bytes.NewReader(data),
		p.client.Indices.PutMapping.WithContext(ctx),
	)
	if err != nil {
		return p.newError("failed to submit mapping", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return p.responseError(res, "failed to submit mapping")
	}
	return nil
}

// ensureMLMapping adds the semantic search property to the index mapping
// once: a sparse-vector tokens field for ELSER, a dense-vector embedding
// field for third-party models.
func (p *Provider) ensureMLMapping(ctx context.Context, alias string) error {
	properties, err := p.schema.Get(ctx, alias)
	if err != nil {
		return err
	}
	if _, ok := properties[mlPropertyName]; ok {
		return nil
	}

	var property *Property
	var fieldName string

	switch p.opts.SemanticSearchType {
	case SemanticElser:
		fieldName = tokensFieldName
		property = &Property{Type: PropertySparseVector}
	case SemanticThirdParty:
		fieldName = vectorFieldName
		property = &Property{
			Type:       PropertyDenseVector,
			Index:      boolPtr(true),
			Dims:       p.opts.VectorDimensions,
			Similarity: "cosine",
		}
	default:
		return nil
	}

	if err := p.pushMapping(ctx, alias, map[string]*Property{fieldName: property}); err != nil {
		return p.newError(fmt.Sprintf("failed to create %s field", mlPropertyName), err)
	}

	// Cache the parent object name so the check above short-circuits next time.
	p.schema.Merge(alias, map[string]*Property{mlPropertyName: {Type: PropertyNested}})
	return nil
}

// checkPipeline verifies the ingest pipeline backing semantic indexing
// exists. A missing pipeline is an operator error worth failing loudly on.
func (p *Provider) checkPipeline(ctx context.Context, pipelineName string) error {
	res, err := p.client.Ingest.GetPipeline(
		p.client.Ingest.GetPipeline.WithPipelineID(pipelineName),
		p.client.Ingest.GetPipeline.WithContext(ctx),
	)
	if err != nil {
		return p.newError("pipeline check failed", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == http.StatusNotFound {
		return p.newError(fmt.Sprintf("ml pipeline is not found: %s, create the pipeline first", pipelineName), nil)
	}
	if res.IsError() {
		return p.responseError(res, "pipeline check failed")
	}
	return nil
}

func (p *Provider) executeBulk(ctx context.Context, alias string, body *bytes.Buffer, pipeline string) (*search.IndexingResult, error) {
	if body.Len() == 0 {
		return &search.IndexingResult{}, nil
	}

	options := []func(*esapi.BulkRequest){
		p.client.Bulk.WithContext(ctx),
		p.client.Bulk.WithIndex(alias),
	}
	if pipeline != "" {
		options = append(options, p.client.Bulk.WithPipeline(pipeline))
	}

	res, err := p.client.Bulk(bytes.NewReader(body.Bytes()), options...)
	if err != nil {
		return nil, p.newError("bulk request failed", err)
	}
	defer func() { _ = res.Body.Close() }()

	result := &search.IndexingResult{}

	if res.IsError() {
		reason := p.errorReason(res)
		result.Items = append(result.Items, search.IndexingResultItem{
			ID:           bulkErrorItemID,
			Succeeded:    false,
			ErrorMessage: reason,
		})
		return result, nil
	}

	var bulkResponse esBulkResponse
	if err := json.NewDecoder(res.Body).Decode(&bulkResponse); err != nil {
		return nil, p.newError("decode bulk response", err)
	}

	for _, item := range bulkResponse.Items {
		for _, entry := range item {
			resultItem := search.IndexingResultItem{
				ID:        entry.ID,
				Succeeded: entry.Error == nil,
			}
			if entry.Error != nil {
				resultItem.ErrorMessage = entry.Error.Reason
			}
			result.Items = append(result.Items, resultItem)
		}
	}

	return result, nil
}

type esBulkResponse struct {
	Errors bool                        `json:"errors"`
	Items  []map[string]esBulkRespItem `json:"items"`
}

type esBulkRespItem struct {
	ID     string `json:"_id"`
	Status int    `json:"status"`
	Error  *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

// createPhysicalIndex creates a concrete index carrying the alias and the
// analysis settings every index generation shares.
func (p *Provider) createPhysicalIndex(ctx context.Context, name, alias string) error {
	body := map[string]any{
		"settings": p.indexSettings(),
		"aliases":  map[string]any{alias: map[string]any{}},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return p.newError("marshal index settings", err)
	}

	res, err := p.client.Indices.Create(
		name,
		p.client.Indices.Create.WithBody(bytes.NewReader(data)),
		p.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return p.newError("failed to create index", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return p.responseError(res, "failed to create index")
	}

	p.logger.InfoContext(ctx, "created index", "index", name, "alias", alias)
	return nil
}

func (p *Provider) indexSettings() map[string]any {
	return map[string]any{
		"index": map[string]any{
			"max_ngram_diff": p.opts.MaxGram - p.opts.MinGram,
			"mapping": map[string]any{
				"total_fields": map[string]any{"limit": p.opts.FieldsLimit},
			},
		},
		"analysis": map[string]any{
			"filter": map[string]any{
				ngramFilterName: map[string]any{
					"type":     "ngram",
					"min_gram": p.opts.MinGram,
					"max_gram": p.opts.MaxGram,
				},
				edgeNGramFilterName: map[string]any{
					"type":     "edge_ngram",
					"min_gram": p.opts.MinGram,
					"max_gram": p.opts.MaxGram,
				},
			},
			"analyzer": map[string]any{
				searchableFieldAnalyzerName: map[string]any{
					"type":      "custom",
					"tokenizer": "standard",
					"filter":    []string{"lowercase", p.opts.TokenFilter},
				},
			},
			"normalizer": map[string]any{
				"lowercase": map[string]any{
					"type":   "custom",
					"filter": []string{"lowercase"},
				},
			},
		},
	}
}

// resolveIndexName resolves an alias to the physical index carrying it.
// An unknown alias resolves to the empty string.
func (p *Provider) resolveIndexName(ctx context.Context, alias string) (string, error) {
	res, err := p.client.Indices.Get(
		[]string{alias},
		p.client.Indices.Get.WithContext(ctx),
	)
	if err != nil {
		return "", p.newError("resolve index name failed", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if res.IsError() {
		return "", p.responseError(res, "resolve index name failed")
	}

	var decoded map[string]json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return "", p.newError("decode index response", err)
	}

	for name := range decoded {
		return name, nil
	}
	return "", nil
}

func (p *Provider) refresh(ctx context.Context, name string) {
	res, err := p.client.Indices.Refresh(
		p.client.Indices.Refresh.WithIndex(name),
		p.client.Indices.Refresh.WithContext(ctx),
	)
	if err != nil {
		p.logger.WarnContext(ctx, "index refresh failed", "index", name, "error", err)
		return
	}
	_ = res.Body.Close()
}

// aliasFor returns the alias a request addresses: backup when asked for,
// active otherwise.
func (p *Provider) aliasFor(useBackup bool, documentType string) string {
	alias := activeIndexAlias
	if useBackup {
		alias = backupIndexAlias
	}
	return indexAlias(p.opts.Scope, documentType, alias)
}

func (p *Provider) checkConfigured() error {
	if p.client == nil {
		return p.newError("search provider is not configured", nil)
	}
	return nil
}

func (p *Provider) newError(message string, err error) *SearchError {
	return &SearchError{
		Message:   message,
		ServerURL: p.opts.ServerURL,
		Scope:     p.opts.Scope,
		Err:       err,
	}
}

// esErrorResponse decodes the engine's error body.
type esErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

func (p *Provider) responseError(res *esapi.Response, message string) error {
	return p.newError(fmt.Sprintf("%s: %s", message, p.errorReason(res)), nil)
}

func (p *Provider) errorReason(res *esapi.Response) string {
	var decoded esErrorResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err == nil && decoded.Error.Type != "" {
		return fmt.Sprintf("%s: %s", decoded.Error.Type, decoded.Error.Reason)
	}
	return fmt.Sprintf("unexpected status %s", res.Status())
}
