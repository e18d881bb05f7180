package user

import "github.com/gin-gonic/gin"

const actorContextKey = "actor"

// SetActor stores the live user loaded by the actor middleware.
func SetActor(c *gin.Context, u *User) {
	c.Set(actorContextKey, u)
}

// ActorFromContext returns the live user for the authenticated request.
// The role on this struct is the stored role; pass it through
// EffectiveRole before deciding anything.
func ActorFromContext(c *gin.Context) (*User, bool) {
	v, exists := c.Get(actorContextKey)
	if !exists {
		return nil, false
	}

	u, ok := v.(*User)
	if !ok {
		return nil, false
	}

	return u, true
}
