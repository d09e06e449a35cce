package holiday

import (
	"go-hrdesk/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc, authorizer middleware.Authorizer) {
	holidays := r.Group("/holidays")
	holidays.Use(auth)
	{
		holidays.GET("", middleware.RBACAuthorize(authorizer, "holiday", "read"), handler.GetAll)
		holidays.POST("", middleware.RBACAuthorize(authorizer, "holiday", "manage"), handler.Create)
		holidays.DELETE("/:id", middleware.RBACAuthorize(authorizer, "holiday", "manage"), handler.Delete)
	}
}
