package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xtding233/galton-board/internal/history"
	"github.com/xtding233/galton-board/internal/profile"
	"github.com/xtding233/galton-board/internal/server"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return n
}

func main() {
	opts := server.Options{
		MaxBalls: getenvInt("GALTON_MAX_BALLS"),
		MaxSlots: getenvInt("GALTON_MAX_SLOTS"),
	}
	if addr := os.Getenv("GALTON_REDIS_ADDR"); addr != "" {
		store, err := history.NewStore(&redis.Options{Addr: addr}, getenv("GALTON_NAMESPACE", "default"), 0)
		if err != nil {
			log.Fatal(err)
		}
		defer store.Close()
		if err := store.Ping(context.Background()); err != nil {
			log.Printf("[History] Redis at %s not reachable yet: %v", addr, err)
		}
		opts.History = store
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := server.ListenAndServe(ctx, server.ServeConfig{
		Addr:     getenv("GALTON_ADDR", ":8080"),
		GRPCAddr: os.Getenv("GALTON_GRPC_ADDR"),
		Loader:   profile.NewLoader(os.Getenv("GALTON_CONFIG_DIR")),
		Watch:    2 * time.Second,
		Options:  opts,
	})
	if err != nil {
		log.Fatal(err)
	}
}
