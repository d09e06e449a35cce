package leavebalance

import (
	"go-hrdesk/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc, authorizer middleware.Authorizer) {
	balances := r.Group("/leave-balances")
	balances.Use(auth)
	{
		balances.GET("/me", middleware.RBACAuthorize(authorizer, "leave_balance", "read_own"), handler.Me)
		balances.POST("/initialize", middleware.RBACAuthorize(authorizer, "leave_balance", "initialize"), handler.Initialize)
		balances.GET("/:employee_id", middleware.RBACAuthorize(authorizer, "leave_balance", "read"), handler.ByEmployee)
	}
}
