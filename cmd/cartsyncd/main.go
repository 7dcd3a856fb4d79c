package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/GenevieveOppong-Gyabaa/emporie-cart/internal/catalog"
	"github.com/GenevieveOppong-Gyabaa/emporie-cart/internal/httpapi"
	"github.com/GenevieveOppong-Gyabaa/emporie-cart/internal/outbox"
	"github.com/GenevieveOppong-Gyabaa/emporie-cart/internal/remote"
	"github.com/GenevieveOppong-Gyabaa/emporie-cart/internal/service"
	"github.com/GenevieveOppong-Gyabaa/emporie-cart/internal/store"
)

type Config struct {
	HTTPPort        string
	BackendURL      string
	BoltPath        string
	RedisAddr       string
	InitialUserID   string
	RequestTimeout  time.Duration
	SyncInterval    time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("CART_HTTP_PORT", "8090"),
		BackendURL:      getEnv("BACKEND_URL", "http://localhost:8080"),
		BoltPath:        getEnv("CART_DB_PATH", "cart.db"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		InitialUserID:   getEnv("CART_USER_ID", ""),
		RequestTimeout:  15 * time.Second,
		SyncInterval:    5 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}
	cfg := loadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	localStore, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	defer cleanup()

	backend := remote.NewClient(cfg.BackendURL, cfg.RequestTimeout)
	catalogClient := catalog.NewClient(cfg.BackendURL, cfg.RequestTimeout)

	syncOutbox := outbox.New(backend, cfg.SyncInterval)
	syncOutbox.Start(ctx)

	svc := service.NewCartService(localStore, backend, syncOutbox)

	if cfg.InitialUserID != "" {
		if _, err := svc.Load(ctx, cfg.InitialUserID); err != nil {
			log.Printf("Initial cart load failed: %v", err)
		} else {
			log.Printf("Loaded cart for user %s", cfg.InitialUserID)
		}
	}

	handler := httpapi.NewCartHandler(svc, catalogClient, syncOutbox, cfg.RequestTimeout)
	router := httpapi.NewRouter(handler, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Cart engine listening on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down cart engine...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	syncOutbox.Stop()
	log.Println("Cart engine stopped")
}

// openStore picks Redis when an address is configured, otherwise the
// embedded bolt file.
func openStore(ctx context.Context, cfg *Config) (store.Store, func(), error) {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, err
		}
		log.Printf("Using redis store at %s", cfg.RedisAddr)
		return store.NewRedisStore(client), func() { client.Close() }, nil
	}

	boltStore, err := store.OpenBolt(cfg.BoltPath)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("Using bolt store at %s", cfg.BoltPath)
	return boltStore, func() { boltStore.Close() }, nil
}
