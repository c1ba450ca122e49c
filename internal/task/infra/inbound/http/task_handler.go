package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	taskDomain "github.com/davicafu/scopequery/internal/task/domain"
	sharedHTTP "github.com/davicafu/scopequery/internal/shared/infra/http"
	"github.com/davicafu/scopequery/pkg/utils"
)

// TaskHandler encapsula los endpoints HTTP de consulta de tareas.
type TaskHandler struct {
	service taskDomain.TaskReader
}

// NewTaskHandler crea un nuevo TaskHandler.
func NewTaskHandler(service taskDomain.TaskReader) *TaskHandler {
	return &TaskHandler{service: service}
}

// QueryTasks endpoint POST /tasks/query con filtros, paginación y ordenamiento en el cuerpo.
func (h *TaskHandler) QueryTasks(c *gin.Context) {
	req, err := sharedHTTP.BindFilterRequest(c)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	page, err := h.service.QueryTasks(c.Request.Context(), sharedHTTP.PrincipalFrom(c), req)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendSuccess(c, http.StatusOK, page)
}

// GetTask endpoint GET /tasks/:id
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, err := h.service.GetTask(c.Request.Context(), sharedHTTP.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendSuccess(c, http.StatusOK, task)
}
