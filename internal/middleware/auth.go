package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-api/internal/policy"
	"github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

const ContextAccountID = "account_id"

type Authenticator interface {
	Authenticate(ctx context.Context, token, ip string) (policy.Caller, error)
}

// Authenticate resolves the bearer token, if any, into the request's caller.
// Requests without a token continue as anonymous and are left to the access
// policy; a token that does not verify is rejected here.
func Authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := policy.Caller{IP: c.ClientIP()}

		if header := c.GetHeader("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				httputil.RespondWithError(c, errors.Unauthorized(nil))
				return
			}

			authenticated, err := auth.Authenticate(c.Request.Context(), parts[1], caller.IP)
			if err != nil {
				httputil.RespondWithError(c, err)
				return
			}
			caller = authenticated
			c.Set(ContextAccountID, caller.AccountID.String())
		}

		c.Request = c.Request.WithContext(policy.WithCaller(c.Request.Context(), caller))
		c.Next()
	}
}
