package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/cachekit/internal/core/domain"
	"github.com/nulzo/cachekit/pkg/api"
	"go.uber.org/zap"
)

// ErrorHandler renders the last handler error as an RFC 9457 problem.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		problem := toProblem(c.Errors.Last().Err)
		problem.Instance = c.Request.URL.Path
		if problem.Extensions == nil {
			problem.Extensions = make(map[string]any)
		}
		if id := RequestIDFrom(c); id != "" {
			problem.Extensions["request_id"] = id
		}

		if problem.Log != nil {
			logger.Error("Request failed",
				zap.Int("status", problem.Status),
				zap.String("path", c.Request.URL.Path),
				zap.Error(problem.Log),
			)
		}

		c.AbortWithStatusJSON(problem.Status, problem)
	}
}

func toProblem(err error) *api.Problem {
	var problem *api.Problem
	if errors.As(err, &problem) {
		return problem
	}

	var cacheErr *domain.Error
	if errors.As(err, &cacheErr) {
		status := cacheErr.Code
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return api.NewProblem(status, http.StatusText(status), cacheErr.Message,
			api.WithExtension("kind", string(cacheErr.Kind)),
			api.WithLog(cacheErr.Log),
		)
	}

	return api.Internal(err)
}
