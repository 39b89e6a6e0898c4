package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"fjacquet/fintrack/internal/ledgererror"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header and context keys.
const (
	HeaderUserID    = "X-User-ID"
	HeaderRequestID = "X-Request-ID"

	ctxUserID    = "userID"
	ctxRequestID = "requestID"
)

// RequestID tags every request with an id, reusing an incoming X-Request-ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// AccessLog logs one line per request. Server errors are logged with the
// error attached by Fail.
func AccessLog(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []logging.Field{
			logging.F(logging.FieldRequestID, c.GetString(ctxRequestID)),
			logging.F("method", c.Request.Method),
			logging.F("path", c.FullPath()),
			logging.F(logging.FieldStatus, c.Writer.Status()),
			logging.F(logging.FieldDuration, time.Since(start).Milliseconds()),
		}
		if uid, ok := c.Get(ctxUserID); ok {
			fields = append(fields, logging.F(logging.FieldUserID, uid))
		}
		if err := c.Errors.Last(); err != nil {
			log.WithError(err.Err).Error("HTTP request failed", fields...)
			return
		}
		log.Debug("HTTP request", fields...)
	}
}

// Identity resolves the acting user from the X-User-ID header set by the
// upstream authentication proxy.
func Identity(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderUserID))
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			Error(c, http.StatusUnauthorized, CodeAuth, ledgererror.KindForbidden, "authentication required")
			return
		}
		user, err := st.ResolveUser(c.Request.Context(), raw)
		if err != nil {
			if ledgererror.KindOf(err) == ledgererror.KindNotFound {
				Error(c, http.StatusUnauthorized, CodeAuth, ledgererror.KindForbidden, "authentication required")
				return
			}
			Fail(c, err)
			return
		}
		c.Set(ctxUserID, user.ID)
		c.Next()
	}
}

func currentUser(c *gin.Context) uint {
	return c.GetUint(ctxUserID)
}
