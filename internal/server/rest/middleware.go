package rest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Luisrodriguezm11/identificador-plantas/internal/common"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/logging"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/observability"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	localUserID  = "userID"
	localIsAdmin = "isAdmin"
)

// contextMiddleware copies the request id into the request context so the
// logger picks it up in every layer.
func contextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			ctx = logging.WithRequestID(ctx, rid)
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func (s *Server) structuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		fields := []any{
			"status", c.Response().StatusCode(),
			"method", c.Method(),
			"path", c.Path(),
			"ip", c.IP(),
			"latency", time.Since(start),
		}
		if err != nil {
			s.logger.Error(c.UserContext(), "request failed", append(fields, "error", err)...)
		} else {
			s.logger.Info(c.UserContext(), "request processed", fields...)
		}

		return err
	}
}

func tracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))

		ctx, span := observability.Tracer.Start(ctx, fmt.Sprintf("%s %s", c.Method(), c.Path()),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.path", c.Path()),
			),
		)
		defer span.End()

		c.Set("X-Trace-ID", span.SpanContext().TraceID().String())
		c.SetUserContext(ctx)

		err := c.Next()

		span.SetAttributes(attribute.Int("http.status_code", c.Response().StatusCode()))
		if err != nil {
			span.RecordError(err)
		}
		if uid, ok := c.Locals(localUserID).(int64); ok {
			span.SetAttributes(attribute.Int64("user.id", uid))
		}

		return err
	}
}

// bearerToken reads the token from "Authorization: Bearer <t>" or from the
// legacy x-access-token header.
func bearerToken(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return c.Get(common.AccessTokenHeaderName)
}

func (s *Server) authRequired() fiber.Handler {
	return s.authenticate(s.verifier.Authenticate, false)
}

func (s *Server) adminRequired() fiber.Handler {
	return s.authenticate(s.verifier.AuthorizeAdmin, true)
}

func (s *Server) authenticate(check func(string) (int64, error), admin bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := check(bearerToken(c))
		if err != nil {
			return respondWithError(c, err)
		}

		c.Locals(localUserID, userID)
		c.Locals(localIsAdmin, admin)
		c.SetUserContext(logging.WithUserID(c.UserContext(), userID))

		return c.Next()
	}
}

func currentUserID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(localUserID).(int64)
	return id
}

// checkRateLimit counts a hit for id on resource and reports whether it is
// still within limit for the current window.
func checkRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if rdb == nil {
		return true, nil
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)

	cnt, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		rdb.Expire(ctx, key, window)
	}
	return cnt <= int64(limit), nil
}

// rateLimit allows limit requests per window per client IP on the named
// resource. Redis failures let the request through.
func (s *Server) rateLimit(resource string, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		allowed, err := checkRateLimit(c.UserContext(), s.redis, resource, "ip:"+c.IP(), limit, window)
		if err != nil {
			s.logger.Warn(c.UserContext(), "rate limit check failed", "resource", resource, "error", err)
			return c.Next()
		}
		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
				Error: "Demasiados intentos, inténtalo más tarde",
				Code:  "RATE_LIMITED",
			})
		}
		return c.Next()
	}
}
