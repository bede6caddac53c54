package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zatekoja/doctordiscovery/internal/adapters/cache"
	"github.com/zatekoja/doctordiscovery/internal/adapters/database"
	"github.com/zatekoja/doctordiscovery/internal/adapters/events"
	"github.com/zatekoja/doctordiscovery/internal/adapters/search"
	"github.com/zatekoja/doctordiscovery/internal/api/handlers"
	"github.com/zatekoja/doctordiscovery/internal/api/routes"
	"github.com/zatekoja/doctordiscovery/internal/application/services"
	"github.com/zatekoja/doctordiscovery/internal/domain/providers"
	"github.com/zatekoja/doctordiscovery/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/doctordiscovery/internal/infrastructure/clients/redis"
	"github.com/zatekoja/doctordiscovery/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/doctordiscovery/internal/infrastructure/observability"
	"github.com/zatekoja/doctordiscovery/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)
	logger := observability.GetLogger()

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()

	// Initialize Redis client; caching and events degrade gracefully without it
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	// Initialize Typesense client; search endpoint degrades without it
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Printf("Warning: Failed to initialize Typesense client: %v", err)
	} else {
		log.Println("Typesense client initialized successfully")
	}

	// Initialize adapters
	doctorRepo := database.NewDoctorAdapter(pgClient)

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		defer eventBus.Close()
		log.Println("Event bus initialized successfully")
	} else {
		log.Println("Event bus disabled (Redis not available)")
	}

	var searchProvider providers.DoctorSearchProvider
	if typesenseClient != nil {
		adapter := search.NewTypesenseAdapter(typesenseClient)
		if err := adapter.EnsureCollection(context.Background()); err != nil {
			log.Printf("Warning: Failed to init Typesense schema: %v", err)
		}
		searchProvider = adapter
	}

	// Initialize services
	normalizer := services.NewRecordNormalizer(cfg.Normalizer)
	classifier := services.NewSpecialistClassifier()
	analyzer := services.NewConversationStateAnalyzer(classifier)
	ranker := services.NewDoctorRankingService(cfg.Ranking)

	poolService := services.NewDoctorPoolService(doctorRepo, normalizer, eventBus, *logger)
	discoveryService := services.NewDoctorDiscoveryService(
		poolService,
		ranker,
		cacheProvider,
		time.Duration(cfg.Pool.CacheTTLSeconds)*time.Second,
		*logger,
	)

	// Initial pool load; a failure here means serving an empty pool until
	// the first successful background refresh.
	if err := poolService.Refresh(ctx); err != nil {
		log.Printf("Warning: initial pool load failed: %v", err)
	}
	go poolService.RunPeriodicRefresh(ctx, cfg.Pool.RefreshInterval)

	// Other processes announce refreshes over the bus; drop cached rankings
	// when they do.
	if eventBus != nil && cacheProvider != nil {
		err := eventBus.Subscribe(ctx, services.PoolRefreshedTopic, func(event providers.Event) {
			discoveryService.InvalidateCache(context.Background())
		})
		if err != nil {
			log.Printf("Warning: failed to subscribe to pool refresh events: %v", err)
		}
	}

	// Initialize handlers
	triageHandler := handlers.NewTriageHandler(classifier, analyzer, discoveryService)
	doctorHandler := handlers.NewDoctorHandler(discoveryService, poolService, analyzer, searchProvider)

	// Set up router
	router := routes.NewRouter(triageHandler, doctorHandler, metrics)
	handler := router.SetupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
