package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oakline/planshare-coord/pkg/cache"
	"github.com/oakline/planshare-coord/pkg/coord"
	"github.com/oakline/planshare-coord/pkg/localstore"
	"github.com/oakline/planshare-coord/pkg/ratelimit"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	addr := envStr("LISTEN_ADDR", ":8080")

	acc := coord.New(coord.Config{
		URL:            os.Getenv("REDIS_URL"),
		ConnectTimeout: envDuration("REDIS_CONNECT_TIMEOUT", 5*time.Second),
		MaxRetries:     envInt("REDIS_MAX_RETRIES", 5),
	})
	defer acc.Release()

	store := localstore.New(envInt("LOCAL_CACHE_CAPACITY", localstore.DefaultCapacity))
	janitor := localstore.NewJanitor(store, envDuration("LOCAL_SWEEP_PERIOD", localstore.DefaultSweepPeriod))
	janitor.Start()
	defer janitor.Stop()

	c := cache.New(acc, store)
	limiter := ratelimit.New(acc, store)
	trustProxy := envStr("TRUST_PROXY", "") != ""

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	limited := ratelimit.Middleware(limiter, ratelimit.Default, ratelimit.MiddlewareOptions{
		TrustProxy: trustProxy,
	})
	mux.Handle("/ping", limited(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Demonstrate the cache: the counter is shared across instances
		// when Redis is up, per-process otherwise.
		var served int
		err := c.GetOrSet(r.Context(), "ping:served", &served, time.Minute, func() (any, error) {
			return 0, nil
		})
		if err != nil {
			slog.Error("ping cache lookup", "err", err)
		}
		_ = c.Set(r.Context(), "ping:served", served+1, time.Minute)

		w.Write([]byte("Pong!\n"))
	})))

	srv := &http.Server{Addr: addr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("example server listening", "addr", addr, "redis", os.Getenv("REDIS_URL") != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown", "err", err)
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("ignoring malformed env var", "key", key, "value", v)
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		slog.Warn("ignoring malformed env var", "key", key, "value", v)
	}
	return def
}
