package http

import (
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	sharedDomain "github.com/davicafu/scopequery/shared/domain"
	sharedQuery "github.com/davicafu/scopequery/shared/platform/query"
)

// BindFilterRequest decodifica el cuerpo JSON de una consulta. Un cuerpo vacío
// equivale a una petición sin filtros.
func BindFilterRequest(c *gin.Context) (sharedQuery.FilterRequest, error) {
	var req sharedQuery.FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return sharedQuery.FilterRequest{}, nil
		}
		if domainErr, ok := sharedDomain.AsError(err); ok {
			return req, domainErr
		}
		return req, sharedDomain.NewValidationError("MALFORMED_REQUEST", "request body is not a valid filter object")
	}
	return req, nil
}

// RequestLogger registra cada petición con su status y latencia.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if principal := PrincipalFrom(c); principal != nil {
			fields = append(fields, zap.String("principal_id", principal.ID))
		}

		if c.Writer.Status() >= 500 {
			log.Error("Petición HTTP", fields...)
			return
		}
		log.Info("Petición HTTP", fields...)
	}
}
