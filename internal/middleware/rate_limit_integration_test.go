//go:build integration

package middleware

import (
	"context"
	"net/http"
	"os/exec"
	"testing"
	"time"

	"github.com/anonto42/recipehub/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}

	container, err := testcontainers.GenericContainer(context.Background(), testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRateLimitWithRedis(t *testing.T) {
	rdb := redisClient(t)
	mw := RateLimit(rdb, 2, time.Minute, func(echo.Context) string { return "rl:test:fixed" }, logger.Discard())

	for i := 0; i < 2; i++ {
		rec, _ := serve(t, []echo.MiddlewareFunc{mw}, "")
		if rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: status %d", i, rec.Code)
		}
		if rec.Header().Get("X-RateLimit-Limit") != "2" {
			t.Fatal("limit header missing")
		}
	}
	rec, _ := serve(t, []echo.MiddlewareFunc{mw}, "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: status %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" || rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatal("limited response should carry retry headers")
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()
	mw := RateLimit(rdb, 1, time.Minute, KeyByUserID("social"), logger.Discard())
	for i := 0; i < 3; i++ {
		rec, _ := serve(t, []echo.MiddlewareFunc{mw}, "")
		if rec.Code != http.StatusNoContent {
			t.Fatalf("request %d should pass while redis is down, got %d", i, rec.Code)
		}
	}
}
