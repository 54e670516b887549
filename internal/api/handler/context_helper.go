package handler

import (
	"github.com/gin-gonic/gin"

	"barberbook/backend/pkg/jwt"
	"barberbook/backend/pkg/response"
)

// MustGetStaffID extracts staff_id from the Gin context.
// Writes a 401 and returns false when the JWT middleware did not inject it;
// callers should return immediately on ok=false.
func MustGetStaffID(c *gin.Context) (string, bool) {
	return mustGetString(c, "staff_id")
}

// MustGetTenantID extracts tenant_id from the Gin context.
func MustGetTenantID(c *gin.Context) (string, bool) {
	return mustGetString(c, "tenant_id")
}

// MustGetRole extracts role from the Gin context.
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, "role")
}

// MustGetClaims extracts the parsed token claims from the Gin context.
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get("claims")
	if !exists {
		response.Unauthorized(c, 10002, "not authenticated")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "not authenticated")
		return nil, false
	}
	return claims, true
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	return s, true
}
