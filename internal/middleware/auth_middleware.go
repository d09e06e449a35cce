package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go-hrdesk/internal/role"
	"go-hrdesk/internal/shared/apperror"
	"go-hrdesk/internal/shared/contextutil"
	"go-hrdesk/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	ErrTokenNotFound = apperror.New(apperror.CodeUnauthorized, "Token not found", http.StatusUnauthorized)
	ErrInvalidToken  = apperror.New("INVALID_TOKEN", "Invalid token", http.StatusUnauthorized)
	ErrTokenExpired  = apperror.New("TOKEN_EXPIRED", "Token has expired", http.StatusUnauthorized)
)

func abortWith(c *gin.Context, err *apperror.AppError, details any) {
	response.Error(c, err.HTTPStatus, err.Code, err.Message, details)
	c.Abort()
}

// AuthMiddleware verifies an HS256 access token issued by the identity
// provider. It never issues tokens.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}
		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			abortWith(c, ErrTokenNotFound, nil)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWith(c, ErrTokenExpired, nil)
				return
			}
			abortWith(c, ErrInvalidToken, nil)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortWith(c, ErrInvalidToken, "invalid token claims")
			return
		}

		actor := contextutil.Actor{}
		for _, claim := range []struct {
			name string
			dst  *string
		}{
			{"user_id", &actor.UserID},
			{"company_id", &actor.CompanyID},
			{"employee_id", &actor.EmployeeID},
		} {
			v, ok := claims[claim.name].(string)
			if !ok || v == "" {
				abortWith(c, ErrInvalidToken, claim.name+" not found in token")
				return
			}
			*claim.dst = v
		}
		rawRole, _ := claims["role"].(string)
		actor.Role = role.NormalizeRole(rawRole)

		c.Set("user_id", actor.UserID)
		c.Set("employee_id", actor.EmployeeID)
		c.Set("company_id", actor.CompanyID)
		c.Set("role", actor.Role)

		ctx := contextutil.WithActor(c.Request.Context(), actor)
		reqLogger := contextutil.GetLogger(ctx, zap.L()).With(
			zap.String("user_id", actor.UserID),
			zap.String("company_id", actor.CompanyID),
		)
		ctx = contextutil.WithLogger(ctx, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RoleMiddleware admits callers whose normalized role is one of allowedRoles.
func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !role.IsAllowedRole(c.GetString("role"), allowedRoles) {
			abortWith(c, apperror.ErrForbidden, nil)
			return
		}
		c.Next()
	}
}
