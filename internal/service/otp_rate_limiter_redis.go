package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// El contador y su TTL se crean en un solo paso para que dos requests
// simultáneas no dejen una clave sin expiración.
const otpCounterScript = `
local hits = redis.call("INCR", KEYS[1])
if hits == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return hits
`

const otpLimiterTimeout = 500 * time.Millisecond

type otpScriptRunner interface {
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
}

// redisOTPRateLimiter cuenta solicitudes de código por email en una ventana
// fija. Si redis no responde deja pasar: cortar el login de todo el mundo por
// una caída del limiter sería peor que unos OTP de más.
type redisOTPRateLimiter struct {
	runner otpScriptRunner
	window time.Duration
	max    int
	prefix string
}

func NewRedisOTPRateLimiter(client *redis.Client, window time.Duration, max int) OTPRateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisOTPRateLimiter{
		runner: client,
		window: window,
		max:    max,
		prefix: "mp:otp:limit:",
	}
}

func (l *redisOTPRateLimiter) Allow(key string) bool {
	if l == nil || l.runner == nil {
		return true
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		// Una clave vacía nunca identifica a nadie; no hay a quién permitirle.
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), otpLimiterTimeout)
	defer cancel()

	ttl := int(l.window.Seconds())
	if ttl <= 0 {
		ttl = 60
	}
	hits, err := l.runner.Eval(ctx, otpCounterScript, []string{l.prefix + key}, ttl).Int()
	if err != nil {
		return true
	}
	return hits <= l.max
}
