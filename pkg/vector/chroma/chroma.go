// Package chroma provides a Chroma vector database driver implementation.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/papercomputeco/kotori/pkg/vector"
)

const (
	// DefaultCollectionName is the collection used when none is configured.
	DefaultCollectionName = "kotori_memory"

	defaultMaxRetries    = 10
	defaultRetryDelay    = 500 * time.Millisecond
	defaultMaxRetryDelay = 5 * time.Second

	collectionsPath = "/api/v2/tenants/default_tenant/databases/default_database/collections"
)

// Driver implements vector.Driver using Chroma's REST API.
type Driver struct {
	baseURL        string
	collectionName string
	collectionID   string
	httpClient     *http.Client
	logger         *slog.Logger
}

// Config holds configuration for the Chroma driver.
type Config struct {
	// URL is the Chroma server URL (e.g., "http://localhost:8000").
	URL string

	// CollectionName is the name of the collection to use.
	// Defaults to DefaultCollectionName if empty.
	CollectionName string

	// MaxRetries bounds connection attempts while Chroma starts up.
	MaxRetries int

	// RetryDelay is the first backoff delay; it doubles up to MaxRetryDelay.
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

// NewDriver creates a new Chroma vector driver, retrying collection setup
// with exponential backoff.
func NewDriver(c Config, logger *slog.Logger) (*Driver, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("chroma URL is required")
	}

	collectionName := c.CollectionName
	if collectionName == "" {
		collectionName = DefaultCollectionName
	}
	maxRetries := c.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	delay := c.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	maxDelay := c.MaxRetryDelay
	if maxDelay <= 0 {
		maxDelay = defaultMaxRetryDelay
	}

	d := &Driver{
		baseURL:        c.URL,
		collectionName: collectionName,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		id, err := d.getOrCreateCollection(context.Background())
		if err == nil {
			d.collectionID = id
			logger.Debug("connected to chroma",
				"url", c.URL,
				"collection", collectionName,
				"collection_id", id,
				"attempts", attempt,
			)
			return d, nil
		}

		lastErr = err
		logger.Debug("chroma not ready, retrying", "attempt", attempt, "error", err)
		if attempt < maxRetries {
			time.Sleep(delay)
			delay = min(delay*2, maxDelay)
		}
	}

	return nil, fmt.Errorf("%w: collection %q after %d attempts: %w",
		vector.ErrConnection, collectionName, maxRetries, lastErr)
}

// getOrCreateCollection gets an existing collection or creates a new one
// configured for cosine distance.
func (d *Driver) getOrCreateCollection(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+collectionsPath+"/"+d.collectionName, nil)
	if err != nil {
		return "", fmt.Errorf("creating get request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending get request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		var collection chromaCollection
		if err := json.NewDecoder(resp.Body).Decode(&collection); err != nil {
			return "", fmt.Errorf("decoding collection response: %w", err)
		}
		return collection.ID, nil
	}

	var collection chromaCollection
	err = d.post(ctx, collectionsPath, chromaCreateCollectionRequest{
		Name:     d.collectionName,
		Metadata: map[string]any{"hnsw:space": "cosine"},
	}, &collection)
	if err != nil {
		return "", err
	}
	return collection.ID, nil
}

// post sends a JSON request and decodes the JSON response into out when out
// is non-nil.
func (d *Driver) post(ctx context.Context, path string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", vector.ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chroma %s: status %d: %s", path, resp.StatusCode, string(b))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (d *Driver) collectionPath(op string) string {
	return collectionsPath + "/" + d.collectionID + "/" + op
}

// where renders a Filter as a Chroma where clause. Multiple keys are
// combined with $and since Chroma only accepts one field per clause.
func where(filter vector.Filter) map[string]any {
	if len(filter) == 0 {
		return nil
	}
	if len(filter) == 1 {
		for k, v := range filter {
			return map[string]any{k: v}
		}
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		clauses = append(clauses, map[string]any{k: filter[k]})
	}
	return map[string]any{"$and": clauses}
}

func toAnyMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func toStringMap(m map[string]any) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
		} else {
			out[k] = fmt.Sprint(v)
		}
	}
	return out
}

// Add upserts documents with their embeddings.
func (d *Driver) Add(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	req := chromaUpsertRequest{
		IDs:        make([]string, len(docs)),
		Embeddings: make([][]float32, len(docs)),
		Metadatas:  make([]map[string]any, len(docs)),
		Documents:  make([]string, len(docs)),
	}
	for i, doc := range docs {
		req.IDs[i] = doc.ID
		req.Embeddings[i] = doc.Embedding
		req.Documents[i] = doc.Content
		if len(doc.Metadata) > 0 {
			req.Metadatas[i] = toAnyMap(doc.Metadata)
		}
	}

	if err := d.post(ctx, d.collectionPath("upsert"), req, nil); err != nil {
		return fmt.Errorf("adding documents: %w", err)
	}

	d.logger.Debug("added documents to chroma", "collection", d.collectionName, "count", len(docs))
	return nil
}

// Query finds the topK most similar documents to the given embedding.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int, filter vector.Filter) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	var queryResp chromaQueryResponse
	err := d.post(ctx, d.collectionPath("query"), chromaQueryRequest{
		QueryEmbeddings: [][]float32{embedding},
		NResults:        topK,
		Where:           where(filter),
		Include:         []string{"documents", "metadatas", "distances"},
	}, &queryResp)
	if err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}

	var results []vector.QueryResult

	// We only query with one embedding.
	if len(queryResp.IDs) == 0 || len(queryResp.IDs[0]) == 0 {
		return results, nil
	}

	ids := queryResp.IDs[0]
	var (
		distances []float32
		documents []*string
		metadatas []map[string]any
	)
	if len(queryResp.Distances) > 0 {
		distances = queryResp.Distances[0]
	}
	if len(queryResp.Documents) > 0 {
		documents = queryResp.Documents[0]
	}
	if len(queryResp.Metadatas) > 0 {
		metadatas = queryResp.Metadatas[0]
	}

	for i, id := range ids {
		result := vector.QueryResult{Document: vector.Document{ID: id}}
		if i < len(documents) && documents[i] != nil {
			result.Content = *documents[i]
		}
		if i < len(metadatas) && metadatas[i] != nil {
			result.Metadata = toStringMap(metadatas[i])
		}
		if i < len(distances) {
			result.Distance = distances[i]
			result.Score = 1 - distances[i]
		}
		results = append(results, result)
	}

	d.logger.Debug("queried chroma", "collection", d.collectionName, "results", len(results))
	return results, nil
}

// List returns all documents matching filter.
func (d *Driver) List(ctx context.Context, filter vector.Filter) ([]vector.Document, error) {
	return d.get(ctx, chromaGetRequest{
		Where:   where(filter),
		Include: []string{"documents", "metadatas"},
	})
}

// Get retrieves documents by their IDs.
func (d *Driver) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return d.get(ctx, chromaGetRequest{
		IDs:     ids,
		Include: []string{"documents", "metadatas", "embeddings"},
	})
}

func (d *Driver) get(ctx context.Context, req chromaGetRequest) ([]vector.Document, error) {
	var getResp chromaGetResponse
	if err := d.post(ctx, d.collectionPath("get"), req, &getResp); err != nil {
		return nil, fmt.Errorf("getting documents: %w", err)
	}

	docs := make([]vector.Document, len(getResp.IDs))
	for i, id := range getResp.IDs {
		docs[i] = vector.Document{ID: id}
		if i < len(getResp.Documents) && getResp.Documents[i] != nil {
			docs[i].Content = *getResp.Documents[i]
		}
		if i < len(getResp.Metadatas) && getResp.Metadatas[i] != nil {
			docs[i].Metadata = toStringMap(getResp.Metadatas[i])
		}
		if i < len(getResp.Embeddings) {
			docs[i].Embedding = getResp.Embeddings[i]
		}
	}
	return docs, nil
}

// Delete removes documents by their IDs.
func (d *Driver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	if err := d.post(ctx, d.collectionPath("delete"), chromaDeleteRequest{IDs: ids}, nil); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}

	d.logger.Debug("deleted documents from chroma", "collection", d.collectionName, "count", len(ids))
	return nil
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	return nil
}
