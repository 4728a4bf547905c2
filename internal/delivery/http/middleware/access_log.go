package middleware

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const CtxRequestIDKey = "request_id"

type AccessLogMiddleware struct {
	logger *log.Logger
	skip   map[string]struct{}
}

// NewAccessLogMiddleware logs one line per request except for skipPaths,
// which are matched exactly.
func NewAccessLogMiddleware(logger *log.Logger, skipPaths ...string) *AccessLogMiddleware {
	if logger == nil {
		logger = log.Default()
	}
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[strings.TrimSpace(p)] = struct{}{}
	}
	return &AccessLogMiddleware{logger: logger, skip: skip}
}

func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("X-Request-ID", rid)
		c.Locals(CtxRequestIDKey, rid)

		err := c.Next()

		if _, ok := m.skip[c.Path()]; ok {
			return err
		}
		user, _ := c.Locals(CtxUserIDKey).(string)
		m.logger.Printf(
			"HTTP access | rid=%s method=%s path=%s status=%d latency=%s user=%s ip=%s ua=%q",
			rid, c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start), user, c.IP(), c.Get("User-Agent"),
		)
		return err
	}
}

func RequestID(c fiber.Ctx) string {
	s, _ := c.Locals(CtxRequestIDKey).(string)
	return s
}
