package middleware

import (
	"net/http"

	"go-hrdesk/internal/shared/apperror"
	"go-hrdesk/internal/shared/contextutil"
	"go-hrdesk/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authorizer is satisfied by rbac.Service.
type Authorizer interface {
	Authorize(role, resource, action string) (bool, error)
}

func RBACAuthorize(authorizer Authorizer, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, ok := c.Get("role")
		if !ok {
			abortWith(c, apperror.ErrUnauthorized, "missing auth context")
			return
		}

		allowed, err := authorizer.Authorize(r.(string), resource, action)
		if err != nil {
			contextutil.GetLogger(c.Request.Context(), zap.L()).Error("rbac authorize failed",
				zap.String("resource", resource),
				zap.String("action", action),
				zap.Error(err),
			)
			response.Error(c, http.StatusInternalServerError, apperror.CodeInternalError, apperror.ErrInternal.Message, nil)
			c.Abort()
			return
		}
		if !allowed {
			abortWith(c, apperror.ErrForbidden, gin.H{"required": resource + ":" + action})
			return
		}
		c.Next()
	}
}
