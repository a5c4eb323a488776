package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"tienda/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RateLimiter is a fixed-window limiter per client IP with the counters in
// Redis, so every API replica shares them. When Redis is unreachable the
// request goes through.
func RateLimiter(rdb *redis.Client, nombre string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		slot := time.Now().UnixNano() / int64(window)
		key := fmt.Sprintf("ratelimit:%s:%s:%d", nombre, c.ClientIP(), slot)

		pipe := rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, window)
		if _, err := pipe.Exec(ctx); err != nil {
			log.Warn().Err(err).Str("limiter", nombre).Msg("rate limiter: redis no disponible")
			c.Next()
			return
		}

		if incr.Val() > int64(limit) {
			resto := time.Duration(int64(window) - time.Now().UnixNano()%int64(window))
			c.Header("Retry-After", strconv.Itoa(int(resto.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter(rdb *redis.Client) gin.HandlerFunc {
	return RateLimiter(rdb, "login", 20, time.Minute)
}
