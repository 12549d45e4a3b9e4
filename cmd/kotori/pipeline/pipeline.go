// Package pipeline wires configured drivers, stores and services into a
// ready dialogue orchestrator for the kotori commands.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/papercomputeco/kotori/pkg/agent"
	"github.com/papercomputeco/kotori/pkg/assembler"
	"github.com/papercomputeco/kotori/pkg/config"
	"github.com/papercomputeco/kotori/pkg/credentials"
	"github.com/papercomputeco/kotori/pkg/dotdir"
	"github.com/papercomputeco/kotori/pkg/embeddings"
	embeddingutils "github.com/papercomputeco/kotori/pkg/embeddings/utils"
	"github.com/papercomputeco/kotori/pkg/eventstream"
	"github.com/papercomputeco/kotori/pkg/eventstream/kafka"
	"github.com/papercomputeco/kotori/pkg/eventstream/nop"
	"github.com/papercomputeco/kotori/pkg/llm"
	llmutils "github.com/papercomputeco/kotori/pkg/llm/utils"
	"github.com/papercomputeco/kotori/pkg/logger"
	"github.com/papercomputeco/kotori/pkg/memory"
	"github.com/papercomputeco/kotori/pkg/orchestrator"
	"github.com/papercomputeco/kotori/pkg/reference"
	"github.com/papercomputeco/kotori/pkg/router"
	"github.com/papercomputeco/kotori/pkg/vector"
	vectorutils "github.com/papercomputeco/kotori/pkg/vector/utils"
)

// sqliteFile is the default sqlite-vec database inside the .kotori/ directory.
const sqliteFile = "kotori.db"

// Options select the configuration a pipeline is built from.
type Options struct {
	Config    *config.Config
	ConfigDir string
	Logger    *slog.Logger
}

// Stores holds the embedder and the two vector collections.
type Stores struct {
	Embedder  embeddings.Embedder
	Memory    *memory.Store
	Reference *reference.Index

	// ReferenceDriver is the reference collection, used by ingestion.
	ReferenceDriver vector.Driver
}

// OpenStores builds the embedder and opens the memory and reference
// collections.
func OpenStores(ctx context.Context, o Options) (*Stores, error) {
	cfg := o.Config
	log := o.logger()

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
		APIKey:       embeddingKey(cfg, o.ConfigDir),
		Dimensions:   cfg.Embedding.Dimensions,
		Timeout:      cfg.LLMTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	target, err := vectorTarget(cfg, o.ConfigDir)
	if err != nil {
		embedder.Close()
		return nil, err
	}

	open := func(collection string) (vector.Driver, error) {
		return vectorutils.NewVectorDriver(ctx, &vectorutils.NewVectorDriverOpts{
			ProviderType: cfg.VectorStore.Provider,
			Target:       target,
			Collection:   collection,
			Dimensions:   cfg.Embedding.Dimensions,
			Logger:       log,
		})
	}

	memDriver, err := open(cfg.Memory.Collection)
	if err != nil {
		embedder.Close()
		return nil, fmt.Errorf("opening memory collection: %w", err)
	}
	refDriver, err := open(cfg.Reference.Collection)
	if err != nil {
		memDriver.Close()
		embedder.Close()
		return nil, fmt.Errorf("opening reference collection: %w", err)
	}

	log.Debug("opened vector stores",
		"provider", cfg.VectorStore.Provider,
		"memory", cfg.Memory.Collection,
		"reference", cfg.Reference.Collection,
	)

	return &Stores{
		Embedder:        embedder,
		Memory:          memory.NewStore(memDriver, embedder, logger.Component(log, "memory")),
		Reference:       reference.NewIndex(refDriver, embedder, logger.Component(log, "reference")),
		ReferenceDriver: refDriver,
	}, nil
}

// Close releases both collections and the embedder.
func (s *Stores) Close() error {
	return errors.Join(s.Memory.Close(), s.Reference.Close(), s.Embedder.Close())
}

// NewLLM builds the configured language model service. Hosted providers
// without a key fail with llm.ErrMissingCredentials.
func NewLLM(o Options) (llm.Service, error) {
	credMgr, err := credentials.NewManager(o.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	cfg := o.Config
	return llmutils.NewService(&llmutils.NewServiceOpts{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
		APIKey:   cfg.LLM.APIKey,
		CredMgr:  credMgr,
		Timeout:  cfg.LLMTimeout(),
	})
}

// NewPublisher builds the configured turn event publisher.
func NewPublisher(o Options) (eventstream.Publisher, error) {
	es := o.Config.EventStream
	switch strings.ToLower(es.Provider) {
	case "", "nop":
		return nop.NewPublisher(), nil
	case "kafka":
		p, err := kafka.NewPublisher(kafka.Config{
			Brokers: splitList(es.Brokers),
			Topic:   es.Topic,
		}, logger.Component(o.logger(), "eventstream"))
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported eventstream provider: %s", es.Provider)
	}
}

// Pipeline is a fully wired dialogue core.
type Pipeline struct {
	*Stores

	LLM          llm.Service
	Orchestrator *orchestrator.Orchestrator
}

// New builds the stores, language model, publisher and orchestrator.
func New(ctx context.Context, o Options) (*Pipeline, error) {
	svc, err := NewLLM(o)
	if err != nil {
		return nil, err
	}

	stores, err := OpenStores(ctx, o)
	if err != nil {
		return nil, err
	}

	publisher, err := NewPublisher(o)
	if err != nil {
		stores.Close()
		return nil, err
	}

	p, err := Assemble(svc, stores, publisher, o)
	if err != nil {
		publisher.Close()
		stores.Close()
		return nil, err
	}
	return p, nil
}

// Assemble wires an orchestrator over already-built collaborators. The
// orchestrator takes ownership of publisher and stores.
func Assemble(svc llm.Service, stores *Stores, publisher eventstream.Publisher, o Options) (*Pipeline, error) {
	log := o.logger()
	asm := assembler.New(stores.Reference, stores.Memory, logger.Component(log, "assembler"))
	genLog := logger.Component(log, "agent")

	orch, err := orchestrator.New(orchestrator.Config{
		Router:     router.New(svc, router.Config{AgentName: o.Config.Router.AgentName}, logger.Component(log, "router")),
		Welcome:    agent.NewWelcomer(svc, genLog),
		QnA:        agent.New(agent.QnA, svc, asm, stores.Memory, genLog),
		Emotional:  agent.New(agent.Emotional, svc, asm, stores.Memory, genLog),
		Suggestion: agent.New(agent.Suggestion, svc, asm, stores.Memory, genLog),
		Publisher:  publisher,
		Closers:    []io.Closer{stores},
	}, logger.Component(log, "orchestrator"))
	if err != nil {
		return nil, err
	}

	return &Pipeline{Stores: stores, LLM: svc, Orchestrator: orch}, nil
}

// Close releases everything the pipeline owns.
func (p *Pipeline) Close() error {
	return p.Orchestrator.Close()
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// vectorTarget defaults the sqlite-vec database into the .kotori/ directory.
func vectorTarget(cfg *config.Config, configDir string) (string, error) {
	target := cfg.VectorStore.Target
	if target != "" || cfg.VectorStore.Provider != "sqlite" {
		return target, nil
	}

	dir, err := dotdir.NewManager().EnsureTarget(configDir)
	if err != nil {
		return "", fmt.Errorf("resolving sqlite path: %w", err)
	}
	return filepath.Join(dir, sqliteFile), nil
}

// embeddingKey reuses the stored OpenAI credential for OpenAI embeddings.
func embeddingKey(cfg *config.Config, configDir string) string {
	if cfg.Embedding.Provider != llm.OpenAI {
		return ""
	}
	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return ""
	}
	key, _ := mgr.Resolve(llm.OpenAI, "")
	return key
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
