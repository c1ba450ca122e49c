package utils

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	sharedDomain "github.com/davicafu/scopequery/shared/domain"
)

// StatusClientClosedRequest se usa cuando el cliente cancela antes de la respuesta.
const StatusClientClosedRequest = 499

// ErrorResponse define la estructura estándar para las respuestas de error.
type ErrorResponse struct {
	Kind    string `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SendSuccess envía una respuesta exitosa tal cual, sin envolverla.
func SendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// SendError traduce un error del dominio a su status HTTP y cuerpo estándar.
// Los errores que no son del dominio se ocultan tras un 500 genérico.
func SendError(c *gin.Context, err error) {
	status, body := ErrorBody(err)
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}

// ErrorBody devuelve el status y el cuerpo para un error.
func ErrorBody(err error) (int, ErrorResponse) {
	if errors.Is(err, context.Canceled) {
		return StatusClientClosedRequest, ErrorResponse{Kind: string(sharedDomain.KindStoreFailure), Code: "CANCELED", Message: "request canceled"}
	}

	domainErr, ok := sharedDomain.AsError(err)
	if !ok {
		return http.StatusInternalServerError, ErrorResponse{Kind: string(sharedDomain.KindStoreFailure), Code: "INTERNAL", Message: "internal error"}
	}

	body := ErrorResponse{Kind: string(domainErr.Kind), Code: domainErr.Code, Message: domainErr.Message}
	switch domainErr.Kind {
	case sharedDomain.KindAuthorization:
		return http.StatusForbidden, body
	case sharedDomain.KindValidation:
		return http.StatusBadRequest, body
	case sharedDomain.KindNotFound:
		return http.StatusNotFound, body
	default:
		return http.StatusInternalServerError, body
	}
}

// --- Helpers específicos para errores de transporte ---

// SendUnauthorized responde 401 cuando no hay identidad verificable.
func SendUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": ErrorResponse{Kind: string(sharedDomain.KindAuthorization), Code: "UNAUTHENTICATED", Message: message},
	})
}

func SendBadRequest(c *gin.Context, code, message string) {
	SendError(c, sharedDomain.NewValidationError(code, message))
}
