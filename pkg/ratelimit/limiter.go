package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/richxcame/pos-pricing/pkg/config"
)

// fixedWindowScript counts a hit and returns {count, pttl}. The window
// starts with the first hit.
const fixedWindowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`

// Rule is the number of hits allowed per window
type Rule struct {
	Limit  int
	Window time.Duration
}

// Result describes one limiting decision
type Result struct {
	Allowed     bool
	Limit       int
	Remaining   int
	RetryAfter  time.Duration
	Window      time.Duration
	IdentityKey string
	EndpointKey string
}

// Limiter is a Redis-backed fixed-window limiter shared by all replicas
type Limiter struct {
	client redis.Scripter
	cfg    config.RateLimitConfig
	script *redis.Script
}

// NewLimiter creates a limiter
func NewLimiter(client redis.Scripter, cfg config.RateLimitConfig) *Limiter {
	if cfg.RedisPrefix == "" {
		cfg.RedisPrefix = "rl"
	}
	return &Limiter{
		client: client,
		cfg:    cfg,
		script: redis.NewScript(fixedWindowScript),
	}
}

// Enabled reports whether limiting is switched on
func (l *Limiter) Enabled() bool {
	return l.cfg.Enabled
}

// RuleFor builds the rule for a per-window limit using the configured window
func (l *Limiter) RuleFor(limit int) Rule {
	return Rule{Limit: limit, Window: l.cfg.Window()}
}

// Allow records a hit for identity on endpoint and reports whether it is
// within rule. A disabled limiter or a non-positive limit always allows.
func (l *Limiter) Allow(ctx context.Context, endpoint, identity string, rule Rule) (Result, error) {
	if rule.Window <= 0 {
		rule.Window = l.cfg.Window()
	}
	result := Result{
		Allowed:     true,
		Limit:       rule.Limit,
		Remaining:   rule.Limit,
		Window:      rule.Window,
		IdentityKey: identity,
		EndpointKey: endpoint,
	}
	if !l.cfg.Enabled || rule.Limit <= 0 {
		return result, nil
	}

	values, err := l.script.Run(ctx, l.client, []string{l.key(endpoint, identity)}, rule.Window.Milliseconds()).Slice()
	if err != nil {
		return result, fmt.Errorf("rate limit script: %w", err)
	}
	if len(values) != 2 {
		return result, fmt.Errorf("rate limit script: unexpected reply %v", values)
	}

	count := toInt(values[0])
	ttl := time.Duration(toInt(values[1])) * time.Millisecond

	result.Remaining = rule.Limit - count
	if result.Remaining < 0 {
		result.Remaining = 0
	}
	if count > rule.Limit {
		result.Allowed = false
		result.RetryAfter = ttl
		if result.RetryAfter <= 0 {
			result.RetryAfter = rule.Window
		}
	}
	return result, nil
}

func (l *Limiter) key(endpoint, identity string) string {
	return l.cfg.RedisPrefix + ":" + endpoint + ":" + identity
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}
