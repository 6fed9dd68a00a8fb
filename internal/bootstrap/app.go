package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"tender-backend/internal/ai"
	"tender-backend/internal/ai/anthropic"
	"tender-backend/internal/ai/tavily"
	"tender-backend/internal/analysis"
	"tender-backend/internal/budget"
	"tender-backend/internal/cache"
	"tender-backend/internal/classification"
	"tender-backend/internal/config"
	"tender-backend/internal/pruner"
	"tender-backend/internal/queue"
	"tender-backend/internal/session"
	"tender-backend/internal/shared/server"
	"tender-backend/internal/shared/storage/db"
	"tender-backend/internal/shared/storage/object"
	localstore "tender-backend/internal/shared/storage/object/local"
	s3store "tender-backend/internal/shared/storage/object/s3"
	"tender-backend/internal/tenders"
)

// App holds the wired application dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	Sessions *session.Store
	Cache    *cache.Store
	Budget   *budget.Service
	Tenders  *tenders.Service
	Resolver classification.Resolver
	Analysis *analysis.Service
	Pruner   *pruner.Pruner
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}
	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:                cfg,
		AnalysisHandler:       analysis.NewHandler(app.Analysis),
		ClassificationHandler: classification.NewHandler(app.Resolver),
		TendersHandler:        tenders.NewHandler(app.Tenders),
		BudgetHandler:         budget.NewHandler(app.Budget),
		CacheHandler:          cache.NewHandler(app.Cache),
		SessionHandler:        session.NewHandler(app.Sessions),
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.Env == "dev" {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if cfg.Env == "dev" {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.BatchQueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.BatchQueueURL, cfg.AWSRegion)
}

func buildServices(app *App) error {
	cfg := app.Config

	var analysisRepo analysis.Repo
	var tendersRepo tenders.TendersRepo
	var budgetSvc *budget.Service
	if app.DB != nil {
		analysisRepo = &analysis.PGRepo{DB: app.DB}
		tendersRepo = &tenders.PGRepo{DB: app.DB}
		budgetSvc = budget.NewPostgresService(budget.NewPGStore(app.DB), cfg.BudgetLimit)
	} else {
		analysisRepo = analysis.NewMemoryRepo()
		tendersRepo = tenders.NewMemoryRepo()
		budgetSvc = budget.NewService(cfg.BudgetLimit)
	}

	sessions := session.NewStore(nil)
	resolver := classification.NewBreakerResolver(classification.NewClient(cfg.EtimadBaseURL, sessions))
	tendersSvc := tenders.NewService(tendersRepo)

	var analyzer ai.Analyzer
	if cfg.AnthropicAPIKey != "" {
		client, err := anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		if err != nil {
			return err
		}
		analyzer = client
	} else {
		log.Printf("bootstrap: ANTHROPIC_API_KEY empty; analysis jobs will fail as unconfigured")
	}

	var searcher ai.Searcher
	if cfg.TavilyAPIKey != "" {
		client, err := tavily.NewClient(cfg.TavilyAPIKey)
		if err != nil {
			return err
		}
		searcher = client
	} else {
		log.Printf("bootstrap: TAVILY_API_KEY empty; market research disabled")
	}

	cacheStore := cache.NewStore(cache.NewObjectPersister(app.Store))
	if loaded, err := cacheStore.Warm(context.Background()); err != nil {
		log.Printf("bootstrap: cache warm failed: %v", err)
	} else if loaded > 0 {
		log.Printf("bootstrap: restored %d cached entries", loaded)
	}
	analysisSvc := &analysis.Service{
		Repo:        analysisRepo,
		Tenders:     tendersSvc,
		Budget:      budgetSvc,
		Cache:       cacheStore,
		Store:       app.Store,
		Analyzer:    analyzer,
		Searcher:    searcher,
		Queue:       app.Queue,
		Model:       cfg.AnthropicModel,
		Profile:     analysis.DefaultCompanyProfile(),
		StepTimeout: cfg.StepTimeout,
	}

	app.Sessions = sessions
	app.Cache = cacheStore
	app.Budget = budgetSvc
	app.Tenders = tendersSvc
	app.Resolver = resolver
	app.Analysis = analysisSvc
	app.Pruner = pruner.New(resolver, tendersSvc, cfg.PrunePacing)
	return nil
}
