package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/ec-storefront/internal/api"
	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/checkout"
	"github.com/example/ec-storefront/internal/command"
	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/domain/catalog"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/engine"
	"github.com/example/ec-storefront/internal/infrastructure/kafka"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/logging"
	"github.com/example/ec-storefront/internal/metrics"
	"github.com/example/ec-storefront/internal/query"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[API] Invalid configuration: %v", err)
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr); err != nil {
		log.Fatalf("[API] %v", err)
	}

	log.Println("[API] ========================================")
	log.Println("[API] Storefront")
	log.Println("[API] ========================================")
	log.Printf("[API] Stock policy: %s", cfg.StockPolicy)
	log.Printf("[API] Admin email: %s", cfg.AdminEmail)

	// Event publishing is optional
	var publisher store.Publisher
	if cfg.EventsEnabled() {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		publisher = producer
		log.Printf("[API] Kafka: %v (topic %s)", cfg.KafkaBrokers, cfg.KafkaTopic)
	} else {
		log.Println("[API] Kafka: disabled")
	}

	products := catalog.NewStore(catalog.SeedCategories...)
	orders := order.NewStore()

	var (
		events  store.EventStoreInterface
		options []command.Option
		loaded  bool
	)
	if cfg.PersistenceEnabled() {
		db, err := store.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("[API] Failed to connect to PostgreSQL: %v", err)
		}
		defer db.Close()
		log.Println("[API] Connected to PostgreSQL")

		if err := store.Migrate(ctx, db); err != nil {
			log.Fatalf("[API] Failed to migrate schema: %v", err)
		}
		loaded, err = restore(ctx, db, products, orders)
		if err != nil {
			log.Fatalf("[API] Failed to restore state: %v", err)
		}

		events = store.NewPostgresEventStore(db, publisher)
		options = append(options,
			command.WithProductRepository(store.NewPostgresProductRepository(db)),
			command.WithOrderRepository(store.NewPostgresOrderRepository(db)),
		)
	} else {
		log.Println("[API] PostgreSQL: disabled, state is in memory")
		events = store.NewEventStore(publisher)
	}

	orchestrator := checkout.NewOrchestrator(orders, products, cfg.StockPolicy)
	eng := engine.New(products, orders, orchestrator)
	cmdHandler := command.NewHandler(eng, events, cfg.AdminEmail, options...)
	queryHandler := query.NewHandler(eng)

	if !loaded && cfg.SeedCatalog {
		cmdHandler.IngestProducts(ctx, command.IngestProducts{Products: catalog.SeedProducts()})
		log.Printf("[API] Seeded catalog with %d products", products.Len())
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.SessionSweepSchedule, func() {
		evicted := eng.Sweep(cfg.SessionIdleTimeout)
		pruned := rateLimiter.Prune()
		metrics.SetSessions(eng.Len())
		log.WithFields(log.Fields{
			"evicted":  evicted,
			"pruned":   pruned,
			"sessions": eng.Len(),
		}).Debug("[API] Session sweep")
	}); err != nil {
		log.Fatalf("[API] Invalid SESSION_SWEEP_SCHEDULE %q: %v", cfg.SessionSweepSchedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := api.NewRouter(api.RouterConfig{
		Handlers:     api.NewHandlers(cmdHandler, queryHandler),
		AuthHandlers: api.NewAuthHandlers(cmdHandler, queryHandler),
		Tokens:       auth.NewSessionTokens(cfg.JWTSecret, cfg.SessionTTL),
		Roles:        eng,
		RateLimiter:  rateLimiter,
		SecureCookie: cfg.SecureCookie,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[API] Server started on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[API] Shutdown error: %v", err)
	}
}

// restore loads persisted products and orders into the stores. It reports
// whether a catalog was found so seeding is skipped on restart.
func restore(ctx context.Context, db *sql.DB, products *catalog.Store, orders *order.Store) (bool, error) {
	saved, err := store.NewPostgresProductRepository(db).LoadProducts(ctx)
	if err != nil {
		return false, err
	}
	if len(saved) > 0 {
		products.Ingest(saved)
	}

	placed, err := store.NewPostgresOrderRepository(db).LoadOrders(ctx)
	if err != nil {
		return false, err
	}
	orders.Ingest(placed)

	log.Printf("[API] Restored %d products and %d orders from PostgreSQL", len(saved), len(placed))
	return len(saved) > 0, nil
}
