// Package vectorutils builds vector drivers from configuration.
package vectorutils

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/papercomputeco/kotori/pkg/vector"
	"github.com/papercomputeco/kotori/pkg/vector/chroma"
	"github.com/papercomputeco/kotori/pkg/vector/inmemory"
	"github.com/papercomputeco/kotori/pkg/vector/pgvector"
	"github.com/papercomputeco/kotori/pkg/vector/qdrant"
	"github.com/papercomputeco/kotori/pkg/vector/sqlitevec"
)

type NewVectorDriverOpts struct {
	// ProviderType is one of sqlite, chroma, qdrant, pgvector, memory.
	ProviderType string

	// Target is a file path for sqlite, a URL for chroma and qdrant, and a
	// DSN for pgvector. Unused for memory.
	Target     string
	Collection string
	Dimensions uint
	Logger     *slog.Logger
}

func NewVectorDriver(ctx context.Context, o *NewVectorDriverOpts) (vector.Driver, error) {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch o.ProviderType {
	case "sqlite":
		return sqlitevec.NewDriver(sqlitevec.Config{
			DBPath:     o.Target,
			Collection: o.Collection,
			Dimensions: o.Dimensions,
		}, logger)
	case "chroma":
		return chroma.NewDriver(chroma.Config{
			URL:            o.Target,
			CollectionName: o.Collection,
		}, logger)
	case "qdrant":
		return qdrant.NewDriver(ctx, qdrant.Config{
			Target:     o.Target,
			APIKey:     os.Getenv("QDRANT_API_KEY"),
			Collection: o.Collection,
			Dimensions: o.Dimensions,
		}, logger)
	case "pgvector":
		return pgvector.NewDriver(ctx, pgvector.Config{
			DSN:        o.Target,
			Collection: o.Collection,
			Dimensions: o.Dimensions,
		}, logger)
	case "memory":
		return inmemory.NewDriver(), nil
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}
