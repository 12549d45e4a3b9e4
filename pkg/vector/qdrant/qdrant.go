// Package qdrant provides a Qdrant vector driver over the gRPC client.
package qdrant

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	qc "github.com/qdrant/go-client/qdrant"

	"github.com/papercomputeco/kotori/pkg/vector"
)

const (
	defaultPort = 6334

	// docIDKey carries the caller's document ID. Qdrant point IDs must be
	// UUIDs or integers, so IDs are mapped with a name-based UUID.
	docIDKey   = "doc_id"
	contentKey = "content"

	scrollLimit = 10000
)

// Driver implements vector.Driver against a Qdrant collection.
type Driver struct {
	client     *qc.Client
	collection string
	logger     *slog.Logger
}

// Config holds configuration for the Qdrant driver.
type Config struct {
	// Target is "host:port" or a URL; https enables TLS. Port defaults to 6334.
	Target     string
	APIKey     string
	Collection string
	Dimensions uint
}

// NewDriver connects to Qdrant and creates the collection with cosine
// distance when it does not exist.
func NewDriver(ctx context.Context, c Config, logger *slog.Logger) (*Driver, error) {
	if c.Target == "" {
		return nil, fmt.Errorf("qdrant target is required")
	}
	if c.Collection == "" {
		return nil, fmt.Errorf("qdrant collection is required")
	}
	if c.Dimensions == 0 {
		return nil, fmt.Errorf("qdrant embedding dimensions cannot be 0, must be configured")
	}

	host, port, useTLS, err := parseTarget(c.Target)
	if err != nil {
		return nil, err
	}

	client, err := qc.NewClient(&qc.Config{
		Host:   host,
		Port:   port,
		APIKey: c.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", vector.ErrConnection, err)
	}

	exists, err := client.CollectionExists(ctx, c.Collection)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: checking collection: %w", vector.ErrConnection, err)
	}
	if !exists {
		err = client.CreateCollection(ctx, &qc.CreateCollection{
			CollectionName: c.Collection,
			VectorsConfig: qc.NewVectorsConfig(&qc.VectorParams{
				Size:     uint64(c.Dimensions),
				Distance: qc.Distance_Cosine,
			}),
		})
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("creating collection %q: %w", c.Collection, err)
		}
	}

	logger.Debug("connected to qdrant", "host", host, "port", port, "collection", c.Collection)

	return &Driver{client: client, collection: c.Collection, logger: logger}, nil
}

func parseTarget(target string) (string, int, bool, error) {
	useTLS := false
	hostport := target
	if strings.Contains(target, "://") {
		u, err := url.Parse(target)
		if err != nil {
			return "", 0, false, fmt.Errorf("parsing qdrant target: %w", err)
		}
		useTLS = u.Scheme == "https"
		hostport = u.Host
	}

	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		return hostport, defaultPort, useTLS, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, false, fmt.Errorf("invalid qdrant port %q", portStr)
	}
	return host, port, useTLS, nil
}

// PointID maps a document ID onto the UUID Qdrant stores it under.
func PointID(docID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(docID)).String()
}

func toFilter(filter vector.Filter) *qc.Filter {
	if len(filter) == 0 {
		return nil
	}
	conds := make([]*qc.Condition, 0, len(filter))
	for k, v := range filter {
		conds = append(conds, qc.NewMatch(k, v))
	}
	return &qc.Filter{Must: conds}
}

func fromPayload(payload map[string]*qc.Value) vector.Document {
	doc := vector.Document{Metadata: map[string]string{}}
	for k, v := range payload {
		switch k {
		case docIDKey:
			doc.ID = v.GetStringValue()
		case contentKey:
			doc.Content = v.GetStringValue()
		default:
			doc.Metadata[k] = v.GetStringValue()
		}
	}
	return doc
}

// Add upserts documents. Metadata is flattened into the point payload.
func (d *Driver) Add(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*qc.PointStruct, 0, len(docs))
	for _, doc := range docs {
		payload := map[string]any{
			docIDKey:   doc.ID,
			contentKey: doc.Content,
		}
		for k, v := range doc.Metadata {
			payload[k] = v
		}
		points = append(points, &qc.PointStruct{
			Id:      qc.NewID(PointID(doc.ID)),
			Vectors: qc.NewVectors(doc.Embedding...),
			Payload: qc.NewValueMap(payload),
		})
	}

	_, err := d.client.Upsert(ctx, &qc.UpsertPoints{
		CollectionName: d.collection,
		Wait:           qc.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	d.logger.Debug("added documents to qdrant", "collection", d.collection, "count", len(docs))
	return nil
}

// Query finds the topK most similar documents. Qdrant reports cosine
// similarity, so distance is 1 - score.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int, filter vector.Filter) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	points, err := d.client.Query(ctx, &qc.QueryPoints{
		CollectionName: d.collection,
		Query:          qc.NewQuery(embedding...),
		Limit:          qc.PtrOf(uint64(topK)),
		Filter:         toFilter(filter),
		WithPayload:    qc.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying points: %w", err)
	}

	results := make([]vector.QueryResult, 0, len(points))
	for _, p := range points {
		results = append(results, vector.QueryResult{
			Document: fromPayload(p.GetPayload()),
			Score:    p.GetScore(),
			Distance: 1 - p.GetScore(),
		})
	}

	d.logger.Debug("queried qdrant", "collection", d.collection, "results", len(results))
	return results, nil
}

// List scrolls through matching points. Collections larger than the scroll
// limit are truncated.
func (d *Driver) List(ctx context.Context, filter vector.Filter) ([]vector.Document, error) {
	points, err := d.client.Scroll(ctx, &qc.ScrollPoints{
		CollectionName: d.collection,
		Filter:         toFilter(filter),
		Limit:          qc.PtrOf(uint32(scrollLimit)),
		WithPayload:    qc.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("scrolling points: %w", err)
	}

	docs := make([]vector.Document, 0, len(points))
	for _, p := range points {
		docs = append(docs, fromPayload(p.GetPayload()))
	}
	return docs, nil
}

// Get retrieves documents by their IDs.
func (d *Driver) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	pointIDs := make([]*qc.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = qc.NewID(PointID(id))
	}

	points, err := d.client.Get(ctx, &qc.GetPoints{
		CollectionName: d.collection,
		Ids:            pointIDs,
		WithPayload:    qc.NewWithPayload(true),
		WithVectors:    qc.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("getting points: %w", err)
	}

	docs := make([]vector.Document, 0, len(points))
	for _, p := range points {
		doc := fromPayload(p.GetPayload())
		doc.Embedding = p.GetVectors().GetVector().GetData()
		docs = append(docs, doc)
	}
	return docs, nil
}

// Delete removes documents by their IDs.
func (d *Driver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	pointIDs := make([]*qc.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = qc.NewID(PointID(id))
	}

	_, err := d.client.Delete(ctx, &qc.DeletePoints{
		CollectionName: d.collection,
		Wait:           qc.PtrOf(true),
		Points:         qc.NewPointsSelector(pointIDs...),
	})
	if err != nil {
		return fmt.Errorf("deleting points: %w", err)
	}
	return nil
}

// Close closes the gRPC connection.
func (d *Driver) Close() error {
	return d.client.Close()
}
