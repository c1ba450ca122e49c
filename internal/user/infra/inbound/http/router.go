package http

import "github.com/gin-gonic/gin"

func RegisterUserRoutes(r gin.IRouter, handler *UserHandler, auth gin.HandlerFunc) {
	users := r.Group("/users", auth)
	{
		users.POST("/query", handler.QueryUsers)
		users.GET("/:id", handler.GetUser)
	}
}
