package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	sharedHTTP "github.com/davicafu/scopequery/internal/shared/infra/http"
	"github.com/davicafu/scopequery/internal/user/domain"
	"github.com/davicafu/scopequery/pkg/utils"
)

// UserHandler encapsula los endpoints HTTP relacionados con User
type UserHandler struct {
	service domain.UserReader
}

// NewUserHandler crea un nuevo UserHandler
func NewUserHandler(service domain.UserReader) *UserHandler {
	return &UserHandler{service: service}
}

// ---------------- Handlers ----------------

// QueryUsers endpoint POST /users/query
func (h *UserHandler) QueryUsers(c *gin.Context) {
	req, err := sharedHTTP.BindFilterRequest(c)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	page, err := h.service.QueryUsers(c.Request.Context(), sharedHTTP.PrincipalFrom(c), req)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, page)
}

// GetUser endpoint GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), sharedHTTP.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, user)
}
