package utils

import (
	"github.com/gin-gonic/gin"
)

type IdentityClaims struct {
	IdentityID uint   `json:"identity_id"`
	Address    string `json:"address"`
}

type contextKey string

const IdentityContextKey contextKey = "identity"

func GetIdentity(c *gin.Context) *IdentityClaims {
	identity, exists := c.Get(string(IdentityContextKey))
	if !exists {
		return nil
	}
	if claims, ok := identity.(*IdentityClaims); ok {
		return claims
	}
	return nil
}
