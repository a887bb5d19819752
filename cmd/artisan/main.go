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

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"

	"artisan/internal/config"
	"artisan/internal/db"
	"artisan/internal/fal"
	"artisan/internal/llm"
	"artisan/internal/media"
	"artisan/internal/router"
	"artisan/internal/stream"
	"artisan/internal/tools"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	database, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer database.Close()

	if err := db.Migrate(database, cfg.DBDriver); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	log.Println("database migrations applied")

	objects, err := minio.New(cfg.StorageEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.StorageAccessKey, cfg.StorageSecretKey, ""),
		Secure: cfg.StorageUseSSL,
	})
	if err != nil {
		log.Fatalf("object storage: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()
	broker := stream.NewBroker(redisClient)

	provider, err := llm.New(llm.Options{
		Kind:    cfg.LLMProvider,
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMBaseURL,
	})
	if err != nil {
		log.Fatalf("llm provider: %v", err)
	}

	uploader := media.NewUploader(objects, cfg.StorageBucket, cfg.StorageBaseURL)
	generator := media.NewGenerator(fal.NewClient(cfg.FalBaseURL, cfg.FalAPIKey), uploader)
	toolReg, err := tools.NewDefaultRegistry(generator)
	if err != nil {
		log.Fatalf("tool registry: %v", err)
	}

	handler := router.New(cfg, database, provider, toolReg, broker)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // SSE streams need unlimited write timeout
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("artisan listening on :%s (driver=%s llm=%s/%s)", cfg.Port, cfg.DBDriver, cfg.LLMProvider, cfg.LLMModel)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-done
	log.Println("shutting down...")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutCancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	log.Println("stopped")
}
