package http

import "github.com/gin-gonic/gin"

// RegisterTaskRoutes registra las rutas HTTP para el dominio de Tareas.
// auth debe dejar el Principal en el contexto (ver sharedHTTP.RequirePrincipal).
func RegisterTaskRoutes(r gin.IRouter, handler *TaskHandler, auth gin.HandlerFunc) {
	tasks := r.Group("/tasks", auth)
	{
		tasks.POST("/query", handler.QueryTasks) // Consulta paginada
		tasks.GET("/:id", handler.GetTask)       // Obtener una tarea por su ID
	}
}
