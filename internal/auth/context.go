package auth

import (
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/gin-gonic/gin"
)

const userContextKey = "auth.user"

// UserContext is the resolved identity of the caller. BusinessID is empty
// until the user has onboarded or been invited into a business.
type UserContext struct {
	UserID          string       `json:"user_id"`
	Email           string       `json:"email"`
	BusinessID      string       `json:"business_id"`
	Roles           []model.Role `json:"roles"`
	IsPlatformAdmin bool         `json:"is_platform_admin"`
}

func (u *UserContext) HasRole(roles ...model.Role) bool {
	for _, have := range u.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

func (u *UserContext) IsOwner() bool { return u.HasRole(model.RoleOwner) }

func SetUser(c *gin.Context, u *UserContext) {
	c.Set(userContextKey, u)
}

func GetUser(c *gin.Context) *UserContext {
	if v, ok := c.Get(userContextKey); ok {
		if u, ok := v.(*UserContext); ok {
			return u
		}
	}
	return nil
}

func GetUserID(c *gin.Context) string {
	if u := GetUser(c); u != nil {
		return u.UserID
	}
	return ""
}

func GetBusinessID(c *gin.Context) string {
	if u := GetUser(c); u != nil {
		return u.BusinessID
	}
	return ""
}
