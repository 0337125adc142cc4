package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/unidesk/attendance-panel-api/internal/middleware"
	"github.com/unidesk/attendance-panel-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func sessionFromContext(c *gin.Context) (models.SessionContext, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		return models.SessionContext{}, false
	}
	return models.SessionFromClaims(claims), true
}
