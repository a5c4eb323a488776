package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"tienda/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrorHandler answers errors pushed with c.Error when the handler did not
// write a response itself. The client only gets the request id.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		rid := c.GetString(RequestIDKey)
		log.Error().
			Str("request_id", rid).
			Str("path", c.FullPath()).
			Str("method", c.Request.Method).
			Strs("errors", c.Errors.Errors()).
			Msg("middleware: unhandled error")

		if !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.Interno("", rid))
		}
	}
}

// Recovery turns a panic into a 500 and logs the stack.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			rid := c.GetString(RequestIDKey)
			log.Error().
				Str("request_id", rid).
				Str("path", c.Request.URL.Path).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("middleware: panic recovered")
			c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.Interno("", rid))
		}()
		c.Next()
	}
}

// Logger writes one line per request. 5xx go out at error level and 4xx at
// warn so that bad uploads and rejected logins stand out.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			ev = log.Error()
		case status >= http.StatusBadRequest:
			ev = log.Warn()
		default:
			ev = log.Info()
		}
		if v, ok := c.Get(ClaimsKey); ok {
			if claims, ok := v.(*JWTClaims); ok {
				ev = ev.Str("usuario", claims.Username)
			}
		}
		ev.Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Str("ip", c.ClientIP()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
