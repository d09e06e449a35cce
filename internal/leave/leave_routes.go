package leave

import (
	"go-hrdesk/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	auth gin.HandlerFunc,
	authorizer middleware.Authorizer,
	rdb *redis.Client,
) {
	leaves := r.Group("/leaves")
	leaves.Use(auth)
	{
		leaves.GET("", middleware.RBACAuthorize(authorizer, "leave", "read"), handler.GetAll)
		leaves.GET("/:id", middleware.RBACAuthorize(authorizer, "leave", "read"), handler.GetByID)
		leaves.POST("/preview", middleware.RBACAuthorize(authorizer, "leave", "create"), handler.Preview)
		leaves.POST("",
			middleware.RBACAuthorize(authorizer, "leave", "create"),
			middleware.RateLimitByUser(rate.Limit(1), 5),
			middleware.Idempotency(rdb),
			handler.Create,
		)
		leaves.POST("/:id/approve", middleware.RBACAuthorize(authorizer, "leave", "approve"), middleware.Idempotency(rdb), handler.Approve)
		leaves.POST("/:id/reject", middleware.RBACAuthorize(authorizer, "leave", "approve"), middleware.Idempotency(rdb), handler.Reject)
		leaves.POST("/:id/cancel", middleware.RBACAuthorize(authorizer, "leave", "cancel"), handler.Cancel)
		leaves.DELETE("/:id", middleware.RBACAuthorize(authorizer, "leave", "delete"), handler.Delete)
	}
}
