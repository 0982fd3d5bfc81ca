package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/artifact-graph/internal/config"
	"github.com/kirillkom/artifact-graph/internal/core/identity"
	"github.com/kirillkom/artifact-graph/internal/core/ontology"
	"github.com/kirillkom/artifact-graph/internal/core/ports"
	"github.com/kirillkom/artifact-graph/internal/core/triples"
	"github.com/kirillkom/artifact-graph/internal/core/usecase"
	"github.com/kirillkom/artifact-graph/internal/infrastructure/queue/nats"
	"github.com/kirillkom/artifact-graph/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/artifact-graph/internal/infrastructure/resilience"
	"github.com/kirillkom/artifact-graph/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/artifact-graph/internal/infrastructure/store/neo4jstore"
)

type App struct {
	Config config.Config

	Queue    ports.MessageQueue
	Repo     ports.ArtifactRepository
	Store    ports.TripleStore
	Registry *ontology.Registry

	IngestUC   ports.ArtifactIngestor
	AnnotateUC ports.ArtifactAnnotator
	ExploreUC  ports.GraphExplorer
	SearchUC   ports.ArtifactSearcher

	closeFn func(context.Context)
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	registry, err := ontology.LoadRegistry(cfg.OntologyPath)
	if err != nil {
		return nil, fmt.Errorf("load ontology: %w", err)
	}
	rules, err := ontology.LoadRuleTable(cfg.RulesPath, registry, logger)
	if err != nil {
		return nil, fmt.Errorf("load classification rules: %w", err)
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewArtifactRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.Config{Logger: logger})

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	store, err := neo4jstore.NewWithOptions(ctx, cfg.Neo4jURI, cfg.Neo4jUsername, cfg.Neo4jPassword, cfg.Neo4jDatabase, neo4jstore.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init triple store: %w", err)
	}

	minter := identity.NewMinter(cfg.InstanceNamespace)
	writer := triples.NewWriter(store, triples.NewGenerator(cfg.InstanceNamespace))

	ingestUC := usecase.NewIngestArtifactUseCase(repo, storage, queue, minter)
	annotateUC := usecase.NewAnnotateArtifactUseCase(repo, storage, rules, writer, logger)
	exploreUC := usecase.NewExploreGraphUseCase(store, registry, usecase.ExploreLimits{
		DefaultMaxNodes: cfg.GraphDefaultMaxNodes,
		MaxNodesCap:     cfg.GraphMaxNodesCap,
		MaxDepth:        cfg.GraphMaxDepth,
		AnalyticsTopK:   cfg.GraphAnalyticsTopK,
	})
	searchUC := usecase.NewSearchArtifactsUseCase(repo, usecase.SearchLimits{
		CandidateCap: cfg.SearchCandidateLimit,
		DefaultLimit: cfg.SearchDefaultLimit,
	})

	return &App{
		Config:   cfg,
		Queue:    queue,
		Repo:     repo,
		Store:    store,
		Registry: registry,

		IngestUC:   ingestUC,
		AnnotateUC: annotateUC,
		ExploreUC:  exploreUC,
		SearchUC:   searchUC,

		closeFn: func(ctx context.Context) {
			queue.Close()
			_ = store.Close(ctx)
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close(ctx context.Context) {
	if a.closeFn != nil {
		a.closeFn(ctx)
	}
}
