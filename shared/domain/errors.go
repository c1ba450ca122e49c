package domain

import (
	"errors"
	"fmt"
)

// Kind es la categoría estable de un error visible para el transporte.
type Kind string

const (
	KindAuthorization Kind = "authorization"
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindStoreFailure  Kind = "store_failure"
)

// Error es el error de dominio: un Kind estable, un Code legible por máquina
// y un Message para humanos. El Message nunca incluye SQL ni la estructura del predicado.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error // error subyacente, solo para logs
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is compara por Kind y Code, de modo que errors.Is(err, ErrNotFound) funciona
// aunque el error se haya construido en otro sitio.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// ---------- Constructores ----------

func NewValidationError(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

func NewAuthorizationError(code, message string) *Error {
	return &Error{Kind: KindAuthorization, Code: code, Message: message}
}

// WrapStoreFailure envuelve un fallo del store tal cual, sin reintentos ni traducción.
func WrapStoreFailure(err error) *Error {
	return &Error{Kind: KindStoreFailure, Code: "STORE_FAILURE", Message: "store operation failed", Err: err}
}

// ErrNotFound se usa tanto si el registro no existe como si queda fuera del scope.
var ErrNotFound = &Error{Kind: KindNotFound, Code: "NOT_FOUND", Message: "record not found"}

// KindOf devuelve el Kind del error de dominio contenido en err, o "" si no hay ninguno.
func KindOf(err error) Kind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return ""
}

// AsError extrae el error de dominio, si existe.
func AsError(err error) (*Error, bool) {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}
