package httpx

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MikeMC777/ecommerce-api/internal/apperr"
	"github.com/MikeMC777/ecommerce-api/internal/metrics"
	"github.com/MikeMC777/ecommerce-api/internal/user"
)

const ctxUser = "user"

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("rid", rid)
		c.Writer.Header().Set("X-Request-ID", rid)
		c.Next()
	}
}

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		rid, _ := c.Get("rid")
		uid := ""
		if u := CurrentUser(c); u != nil {
			uid = u.ID
		}
		log.Printf("[http] rid=%v %s %s status=%d user=%s dur=%s",
			rid, c.Request.Method, c.Request.URL.Path, c.Writer.Status(), uid, time.Since(start))
	}
}

// Metrics records request count and latency labelled by route template.
func Metrics(m *metrics.ServerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(c.Request.Method, route).Observe(float64(time.Since(start).Milliseconds()))
	}
}

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*user.User, error)
}

// Auth requires a valid bearer access token and stores its user in the context.
func Auth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || token == "" {
			Abort(c, apperr.Unauthorized("Please authenticate"))
			return
		}
		u, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			Abort(c, err)
			return
		}
		c.Set(ctxUser, u)
		c.Next()
	}
}

// RequireRole must run after Auth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			Abort(c, apperr.Unauthorized("Please authenticate"))
			return
		}
		if u.Role != role {
			Abort(c, apperr.Forbidden("Forbidden"))
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) *user.User {
	v, ok := c.Get(ctxUser)
	if !ok {
		return nil
	}
	u, _ := v.(*user.User)
	return u
}
