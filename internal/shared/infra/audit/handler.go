package audit

import (
	"net/http"

	"github.com/gin-gonic/gin"

	sharedApp "github.com/davicafu/scopequery/internal/shared/application"
	sharedHTTP "github.com/davicafu/scopequery/internal/shared/infra/http"
	"github.com/davicafu/scopequery/pkg/utils"
)

// RegisterAuditRoutes expone POST /audit/query: cada principal consulta su propio rastro.
func RegisterAuditRoutes(r gin.IRouter, service *sharedApp.QueryService[AuditRecord], auth gin.HandlerFunc) {
	r.POST("/audit/query", auth, func(c *gin.Context) {
		req, err := sharedHTTP.BindFilterRequest(c)
		if err != nil {
			utils.SendError(c, err)
			return
		}
		page, err := service.Query(c.Request.Context(), sharedHTTP.PrincipalFrom(c), req)
		if err != nil {
			utils.SendError(c, err)
			return
		}
		utils.SendSuccess(c, http.StatusOK, page)
	})
}
