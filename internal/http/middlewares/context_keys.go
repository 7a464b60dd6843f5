package middlewares

import (
	"github.com/aprendefacil/backend/internal/domain/user"
	"github.com/gin-gonic/gin"
)

const (
	CtxRequestID = "request_id"

	ctxUserKey = "auth.user"
)

// CurrentUser returns the record the protect middleware attached, so
// handlers don't need to know the magic key.
func CurrentUser(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(ctxUserKey)

	if !ok {
		return user.User{}, false
	}

	u, ok := v.(user.User)

	return u, ok
}
