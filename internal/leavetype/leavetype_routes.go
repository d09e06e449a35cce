package leavetype

import (
	"go-hrdesk/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc, authorizer middleware.Authorizer) {
	types := r.Group("/leave-types")
	types.Use(auth)
	{
		types.GET("", middleware.RBACAuthorize(authorizer, "leave_type", "read"), handler.GetAll)
		types.GET("/:id", middleware.RBACAuthorize(authorizer, "leave_type", "read"), handler.GetByID)
		types.POST("", middleware.RBACAuthorize(authorizer, "leave_type", "manage"), handler.Create)
		types.PUT("/:id", middleware.RBACAuthorize(authorizer, "leave_type", "manage"), handler.Update)
	}
}
