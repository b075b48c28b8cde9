package distributed

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	gterrors "github.com/vnykmshr/gotick/pkg/common/errors"
	"github.com/vnykmshr/gotick/pkg/metrics"
)

// Lua scripts compare the stored holder before mutating, so a lease that
// expired and was re-acquired by another instance is never released or
// extended by the previous holder.
const (
	luaRelease = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`

	luaRefresh = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
end
return 0`
)

// Config holds construction parameters for a FleetGuard.
type Config struct {
	// Redis coordinates the fleet. Required.
	Redis redis.UniversalClient

	// KeyPrefix namespaces lease keys. Defaults to "gotick:guard".
	KeyPrefix string

	// InstanceID identifies this process as a lease holder. Defaults to a
	// generated hostname-pid-random identifier.
	InstanceID string

	// LeaseTTL is how long an acquired lease lives without a refresh. It
	// must comfortably exceed the guarded job's runtime. Defaults to 30s.
	LeaseTTL time.Duration

	// RedisTimeout bounds each Redis operation. Defaults to 500ms.
	RedisTimeout time.Duration

	// Logger receives guard diagnostics. Defaults to a no-op logger.
	Logger *zerolog.Logger

	// Metrics enables Prometheus instrumentation when non-nil.
	Metrics *metrics.Registry
}

// DefaultConfig returns a guard configuration with generated instance
// identity and standard timeouts. The Redis client must still be set.
func DefaultConfig() Config {
	return Config{
		KeyPrefix:    "gotick:guard",
		InstanceID:   generateInstanceID(),
		LeaseTTL:     30 * time.Second,
		RedisTimeout: 500 * time.Millisecond,
	}
}

// FleetGuard elects one instance of a fleet to run each named job. Every
// instance schedules the same jobs on its local scheduler; before running,
// each wrapped callback tries to take a short-lived Redis lease on the job
// name, and only the winner executes. Losing instances skip silently, so a
// fleet behaves like a single scheduler with failover.
type FleetGuard struct {
	config  Config
	logger  zerolog.Logger
	release *redis.Script
	refresh *redis.Script
}

// NewFleetGuard creates a guard over the given configuration.
func NewFleetGuard(cfg Config) (*FleetGuard, error) {
	if cfg.Redis == nil {
		return nil, gterrors.NewValidationError("distributed", "redis", nil, "cannot be nil").
			WithHint("provide a go-redis UniversalClient")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "gotick:guard"
	}
	if cfg.InstanceID == "" {
		cfg.InstanceID = generateInstanceID()
	}
	if cfg.LeaseTTL == 0 {
		cfg.LeaseTTL = 30 * time.Second
	}
	if cfg.LeaseTTL < 0 {
		return nil, gterrors.NewValidationError("distributed", "leaseTTL", cfg.LeaseTTL, "must be positive").
			WithHint("use a TTL longer than the guarded job's runtime")
	}
	if cfg.RedisTimeout == 0 {
		cfg.RedisTimeout = 500 * time.Millisecond
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &FleetGuard{
		config:  cfg,
		logger:  logger,
		release: redis.NewScript(luaRelease),
		refresh: redis.NewScript(luaRefresh),
	}, nil
}

// InstanceID returns the holder identity this guard acquires leases under.
func (g *FleetGuard) InstanceID() string {
	return g.config.InstanceID
}

// Acquire attempts to take the lease for a job. It returns true when this
// instance now holds the lease and false when another holder already does.
func (g *FleetGuard) Acquire(ctx context.Context, job string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, g.config.RedisTimeout)
	defer cancel()

	ok, err := g.config.Redis.SetNX(ctx, g.key(job), g.config.InstanceID, g.config.LeaseTTL).Result()
	if err != nil {
		g.errored(job)
		return false, gterrors.NewOperationError("distributed", "Acquire", err).
			WithContext("job " + job)
	}
	if ok {
		g.acquired(job)
	} else {
		g.contended(job)
	}
	return ok, nil
}

// Release gives up the lease for a job. It returns true when this instance
// held the lease; a lease that expired or moved to another holder is left
// untouched.
func (g *FleetGuard) Release(ctx context.Context, job string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, g.config.RedisTimeout)
	defer cancel()

	n, err := g.release.Run(ctx, g.config.Redis, []string{g.key(job)}, g.config.InstanceID).Int()
	if err != nil {
		g.errored(job)
		return false, gterrors.NewOperationError("distributed", "Release", err).
			WithContext("job " + job)
	}
	return n == 1, nil
}

// Refresh extends a held lease by the configured TTL. It returns false when
// the lease is no longer held by this instance.
func (g *FleetGuard) Refresh(ctx context.Context, job string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, g.config.RedisTimeout)
	defer cancel()

	n, err := g.refresh.Run(ctx, g.config.Redis,
		[]string{g.key(job)}, g.config.InstanceID, g.config.LeaseTTL.Milliseconds()).Int()
	if err != nil {
		g.errored(job)
		return false, gterrors.NewOperationError("distributed", "Refresh", err).
			WithContext("job " + job)
	}
	return n == 1, nil
}

// Holder reports which instance currently holds the lease for a job, or an
// empty string when the lease is free.
func (g *FleetGuard) Holder(ctx context.Context, job string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.config.RedisTimeout)
	defer cancel()

	holder, err := g.config.Redis.Get(ctx, g.key(job)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		g.errored(job)
		return "", gterrors.NewOperationError("distributed", "Holder", err).
			WithContext("job " + job)
	}
	return holder, nil
}

// Wrap turns fn into a fleet-guarded callback for a scheduler or planner:
// the returned function runs fn only when this instance wins the job lease.
// The lease is released after fn returns, so the next activation is an open
// election again. Redis failures count as lost elections; the job is skipped
// rather than run on every instance at once.
func (g *FleetGuard) Wrap(job string, fn func()) func() {
	return func() {
		ctx := context.Background()
		ok, err := g.Acquire(ctx, job)
		if err != nil {
			g.logger.Warn().
				Err(err).
				Str("job", job).
				Msg("lease acquisition failed, skipping run")
			return
		}
		if !ok {
			g.logger.Debug().
				Str("job", job).
				Msg("lease held elsewhere, skipping run")
			return
		}

		defer func() {
			if _, err := g.Release(ctx, job); err != nil {
				g.logger.Warn().
					Err(err).
					Str("job", job).
					Msg("lease release failed, waiting for expiry")
			}
		}()
		fn()
	}
}

func (g *FleetGuard) key(job string) string {
	return g.config.KeyPrefix + ":" + job
}

func (g *FleetGuard) acquired(job string) {
	if g.config.Metrics != nil {
		g.config.Metrics.GuardAcquired.WithLabelValues(job).Inc()
	}
}

func (g *FleetGuard) contended(job string) {
	if g.config.Metrics != nil {
		g.config.Metrics.GuardContended.WithLabelValues(job).Inc()
	}
}

func (g *FleetGuard) errored(job string) {
	if g.config.Metrics != nil {
		g.config.Metrics.GuardErrors.WithLabelValues(job).Inc()
	}
}
