package httpapi

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Freeeeeet/practice_scheduler/internal/backend"
)

// RequestLogger logs one line per request.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("remote_ip", c.RealIP()),
			}
			if err != nil {
				logger.Error("request", append(fields, zap.Error(err))...)
				return err
			}
			logger.Info("request", fields...)
			return nil
		}
	}
}

func Recovery(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					var stack [4096]byte
					n := runtime.Stack(stack[:], false)

					logger.Error("panic recovered",
						zap.String("panic", fmt.Sprintf("%v", r)),
						zap.String("stack", string(stack[:n])),
					)
					err = c.JSON(http.StatusInternalServerError, backend.ErrorBody{
						Error: "internal error",
						Code:  backend.CodeInternal,
					})
				}
			}()
			return next(c)
		}
	}
}

// TokenAuth requires "Authorization: Token <token>". An empty token
// disables the check.
func TokenAuth(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token == "" {
				return next(c)
			}
			got, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Token ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				return c.JSON(http.StatusUnauthorized, backend.ErrorBody{
					Error: "Invalid token.",
					Code:  "unauthorized",
				})
			}
			return next(c)
		}
	}
}
