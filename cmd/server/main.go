package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/csg33k/churn-advisor/internal/adapters/predictor"
	redisadapter "github.com/csg33k/churn-advisor/internal/adapters/redis"
	sqliteadapter "github.com/csg33k/churn-advisor/internal/adapters/sqlite"
	"github.com/csg33k/churn-advisor/internal/handlers"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		slog.Warn("error loading .env file", "err", err)
	}
	port := getenv("PORT", "8080")
	predictorURL := getenv("PREDICTOR_URL", "http://127.0.0.1:5000")

	var timeout time.Duration
	if v := os.Getenv("PREDICT_TIMEOUT"); v != "" {
		timeout, err = time.ParseDuration(v)
		if err != nil {
			log.Fatalf("invalid PREDICT_TIMEOUT %q: %v", v, err)
		}
	}
	discardStale := true
	if v := os.Getenv("SUBMIT_DISCARD_STALE"); v != "" {
		discardStale, err = strconv.ParseBool(v)
		if err != nil {
			log.Fatalf("invalid SUBMIT_DISCARD_STALE %q: %v", v, err)
		}
	}

	opts := []handlers.Option{handlers.WithDiscardStale(discardStale)}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		store, err := redisadapter.New(ctx, addr, os.Getenv("REDIS_PASSWORD"), db)
		cancel()
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer store.Close()
		opts = append(opts, handlers.WithSequenceStore(store))
		log.Printf("Result sequencing: redis %s", addr)
	}

	if dsn := os.Getenv("DB_PATH"); dsn != "" {
		journal, err := sqliteadapter.New(dsn)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer journal.Close()
		opts = append(opts, handlers.WithJournal(journal))
		log.Printf("Database: %s", dsn)
	}

	client := predictor.New(predictorURL, predictor.WithTimeout(timeout))
	h := handlers.New(client, opts...)

	srv := &http.Server{Addr: ":" + port, Handler: h.Routes()}
	go func() {
		log.Printf("Churn Advisor running on http://localhost:%s", port)
		log.Printf("Prediction backend: %s", predictorURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := h.Detach(ctx); err != nil {
		slog.Warn("submissions still in flight", "err", err)
	}
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown", "err", err)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
