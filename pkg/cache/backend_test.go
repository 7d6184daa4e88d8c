package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// backendContract exercises a live backend. The Redis and MongoDB variants
// run only when PLANESEG_TEST_REDIS_URL or PLANESEG_TEST_MONGO_URI is set.
func backendContract(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()
	key := fmt.Sprintf("planeseg-test:%d", time.Now().UnixNano())
	defer c.Delete(ctx, key)

	if _, hit, err := c.Get(ctx, key); err != nil || hit {
		t.Fatalf("Get(new key) = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, key, []byte("payload"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "payload" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Set(ctx, key, []byte("replaced"), time.Minute); err != nil {
		t.Fatalf("Set (replace): %v", err)
	}
	if data, _, _ := c.Get(ctx, key); string(data) != "replaced" {
		t.Errorf("Get after replace = %q", data)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("deleted key still present")
	}
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("PLANESEG_TEST_REDIS_URL")
	if url == "" {
		t.Skip("PLANESEG_TEST_REDIS_URL not set")
	}
	c, err := NewRedisCache(context.Background(), url)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	backendContract(t, c)
}

func TestMongoCache(t *testing.T) {
	uri := os.Getenv("PLANESEG_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("PLANESEG_TEST_MONGO_URI not set")
	}
	c, err := NewMongoCache(context.Background(), uri, "planeseg_test", "cache")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	backendContract(t, c)
}

func TestBackendErrorClassification(t *testing.T) {
	if err := redisErr(redis.Nil); !errors.Is(err, redis.Nil) || IsRetryable(err) {
		t.Errorf("redisErr(Nil) = %v", err)
	}
	if err := redisErr(redis.ErrClosed); !IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("redisErr(ErrClosed) = %v", err)
	}
	plain := errors.New("WRONGTYPE")
	if err := redisErr(plain); err != plain {
		t.Errorf("redisErr(plain) = %v", err)
	}

	if err := mongoErr(mongo.ErrNoDocuments); !errors.Is(err, mongo.ErrNoDocuments) || IsRetryable(err) {
		t.Errorf("mongoErr(ErrNoDocuments) = %v", err)
	}
	if err := mongoErr(context.DeadlineExceeded); !IsRetryable(err) {
		t.Errorf("mongoErr(DeadlineExceeded) = %v, want retryable", err)
	}
	if mongoErr(nil) != nil {
		t.Error("mongoErr(nil) != nil")
	}
}

func TestRedisCacheUnreachable(t *testing.T) {
	old := RetryDelay
	RetryDelay = time.Millisecond
	defer func() { RetryDelay = old }()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewRedisCacheFromClient(client)
	defer c.Close()

	_, hit, err := c.Get(context.Background(), "k")
	if hit || !errors.Is(err, ErrNetwork) {
		t.Errorf("Get on unreachable server = hit %v, err %v; want %v", hit, err, ErrNetwork)
	}
}
