package distributed

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	gterrors "github.com/vnykmshr/gotick/pkg/common/errors"
)

// unreachableClient returns a client whose commands fail immediately; no
// Redis server is required for these tests.
func unreachableClient() redis.UniversalClient {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestNewFleetGuard_RequiresRedis(t *testing.T) {
	_, err := NewFleetGuard(Config{})
	if err == nil {
		t.Fatal("expected an error for a missing Redis client")
	}
	if !gterrors.IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
}

func TestNewFleetGuard_Defaults(t *testing.T) {
	g, err := NewFleetGuard(Config{Redis: unreachableClient()})
	if err != nil {
		t.Fatal(err)
	}

	if g.config.KeyPrefix != "gotick:guard" {
		t.Errorf("key prefix = %q", g.config.KeyPrefix)
	}
	if g.config.LeaseTTL != 30*time.Second {
		t.Errorf("lease TTL = %v", g.config.LeaseTTL)
	}
	if g.config.RedisTimeout != 500*time.Millisecond {
		t.Errorf("redis timeout = %v", g.config.RedisTimeout)
	}
	if g.InstanceID() == "" {
		t.Error("expected a generated instance ID")
	}
}

func TestNewFleetGuard_RejectsNegativeTTL(t *testing.T) {
	_, err := NewFleetGuard(Config{Redis: unreachableClient(), LeaseTTL: -time.Second})
	if err == nil {
		t.Fatal("expected an error for a negative TTL")
	}
	if !gterrors.IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
}

func TestFleetGuard_KeyNamespacing(t *testing.T) {
	g, err := NewFleetGuard(Config{Redis: unreachableClient(), KeyPrefix: "svc:lease"})
	if err != nil {
		t.Fatal(err)
	}
	if got := g.key("nightly-sync"); got != "svc:lease:nightly-sync" {
		t.Errorf("key = %q", got)
	}
}

func TestGenerateInstanceID_Unique(t *testing.T) {
	a := generateInstanceID()
	b := generateInstanceID()
	if a == "" || a == b {
		t.Errorf("expected distinct non-empty IDs, got %q and %q", a, b)
	}
}

func TestFleetGuard_AcquireErrorIsOperationError(t *testing.T) {
	g, err := NewFleetGuard(Config{
		Redis:        unreachableClient(),
		RedisTimeout: 100 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}

	ok, err := g.Acquire(context.Background(), "nightly-sync")
	if ok {
		t.Fatal("acquire against an unreachable Redis must not succeed")
	}
	if err == nil {
		t.Fatal("expected an error")
	}

	if !gterrors.IsOperationError(err) {
		t.Fatalf("expected OperationError, got %T: %v", err, err)
	}
	var opErr *gterrors.OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected OperationError, got %T: %v", err, err)
	}
	if opErr.Module != "distributed" || opErr.Operation != "Acquire" {
		t.Errorf("unexpected error identity: %+v", opErr)
	}
	if !strings.Contains(err.Error(), "job nightly-sync") {
		t.Errorf("error should carry the job context: %v", err)
	}
}

func TestFleetGuard_WrapSkipsWhenRedisUnavailable(t *testing.T) {
	g, err := NewFleetGuard(Config{
		Redis:        unreachableClient(),
		RedisTimeout: 100 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}

	ran := false
	wrapped := g.Wrap("report", func() { ran = true })
	wrapped()

	if ran {
		t.Fatal("guarded job ran without holding the lease")
	}
}
