package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/api/responses"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Limiter counts hits per scope inside a fixed window.
type Limiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

const maxPeekBody = 1 << 20

// identity derives the counter subject from a request and its buffered body.
// An empty subject skips the rule.
type identity func(r *http.Request, body []byte) string

type rateRule struct {
	kind     string
	limit    int64
	identify identity
	peekBody bool
}

// RateLimitPolicy is a named set of fixed-window rules sharing one window.
type RateLimitPolicy struct {
	name   string
	window time.Duration
	rules  []rateRule
}

// NewRateLimitPolicy starts a policy. Add rules with PerIP and PerEmail.
func NewRateLimitPolicy(name string, window time.Duration) RateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "default"
	}
	return RateLimitPolicy{name: name, window: window}
}

// PerIP limits requests per client address. A non-positive limit is ignored.
func (p RateLimitPolicy) PerIP(limit int) RateLimitPolicy {
	return p.with(rateRule{kind: "ip", limit: int64(limit), identify: func(r *http.Request, _ []byte) string {
		return clientIP(r)
	}})
}

// PerEmail limits requests per normalized "email" field in the JSON body.
// The address is hashed before it becomes part of a key or a log line.
func (p RateLimitPolicy) PerEmail(limit int) RateLimitPolicy {
	return p.with(rateRule{kind: "email", limit: int64(limit), peekBody: true, identify: func(_ *http.Request, body []byte) string {
		var payload struct {
			Email string `json:"email"`
		}
		if json.Unmarshal(body, &payload) != nil {
			return ""
		}
		email := strings.ToLower(strings.TrimSpace(payload.Email))
		if email == "" {
			return ""
		}
		sum := sha256.Sum256([]byte(email))
		return hex.EncodeToString(sum[:])
	}})
}

func (p RateLimitPolicy) with(rule rateRule) RateLimitPolicy {
	if rule.limit <= 0 {
		return p
	}
	rules := make([]rateRule, len(p.rules), len(p.rules)+1)
	copy(rules, p.rules)
	p.rules = append(rules, rule)
	return p
}

func (p RateLimitPolicy) active() bool {
	return p.window > 0 && len(p.rules) > 0
}

func (p RateLimitPolicy) needsBody() bool {
	for _, rule := range p.rules {
		if rule.peekBody {
			return true
		}
	}
	return false
}

// RateLimit rejects requests with 429 once any rule of the policy is exhausted.
// A limiter failure is answered with 503 rather than letting traffic through.
func RateLimit(policy RateLimitPolicy, limiter Limiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.active() || limiter == nil {
			return next
		}
		peek := policy.needsBody()

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var body []byte
			if peek && r.Body != nil {
				buf, err := io.ReadAll(io.LimitReader(r.Body, maxPeekBody))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unable to read request body"))
					return
				}
				body = buf
				r.Body = io.NopCloser(bytes.NewReader(buf))
			}

			for _, rule := range policy.rules {
				subject := rule.identify(r, body)
				if subject == "" {
					continue
				}
				scope := policy.name + ":" + rule.kind + ":" + subject
				allowed, count, err := limiter.FixedWindowAllow(ctx, scope, rule.limit, policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiter unavailable"))
					return
				}
				if !allowed {
					if logg != nil {
						logg.Warn(logg.WithFields(ctx, map[string]any{
							"policy":   policy.name,
							"rule":     rule.kind,
							"subject":  subject,
							"attempts": count,
							"limit":    rule.limit,
						}), "rate_limit.blocked")
					}
					w.Header().Set("Retry-After", strconv.Itoa(int(policy.window.Round(time.Second).Seconds())))
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "Too many attempts, please try again later"))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the socket peer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
