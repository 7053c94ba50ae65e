package cache

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/keyboxhn/keybox/internal/handlers"
)

const IdempotencyHeader = "Idempotency-Key"

// KeyReserver claims a key for ttl. It reports false when the key is
// already held. Release frees a key so the request can be retried.
type KeyReserver interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type RedisReserver struct {
	client *redis.Client
	prefix string
}

func NewRedisReserver(client *redis.Client, prefix string) *RedisReserver {
	return &RedisReserver{client: client, prefix: prefix}
}

func (r *RedisReserver) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, r.prefix+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

func (r *RedisReserver) Release(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Idempotency rejects a mutating request whose Idempotency-Key was already
// seen within ttl. Requests without the header pass through, and so does
// everything when the reserver is unavailable. A request that ends with an
// error status releases its key.
func Idempotency(reserver KeyReserver, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if reserver == nil || key == "" || !mutating(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			reserved := r.Method + " " + r.URL.Path + " " + key
			ok, err := reserver.Reserve(r.Context(), reserved, ttl)
			if err != nil {
				log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency check failed, continuing")
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				handlers.RespondWithError(w, http.StatusConflict, "DUPLICATE_REQUEST", "A request with this Idempotency-Key was already received")
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				// A panic never reaches WriteHeader here; Recoverer answers 500.
				p := recover()
				if p != nil || ww.Status() >= http.StatusBadRequest {
					if err := reserver.Release(context.WithoutCancel(r.Context()), reserved); err != nil {
						log.Warn().Err(err).Str("idempotency_key", key).Msg("failed to release idempotency key")
					}
				}
				if p != nil {
					panic(p)
				}
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
