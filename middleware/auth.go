package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/miniblog/auth"
	"github.com/cppla/miniblog/metrics"
	"github.com/cppla/miniblog/utils"
)

const (
	// ContextUserIDKey is the key used to store the authenticated identity id in Gin context.
	ContextUserIDKey = "user_id"
	// ContextEmailKey stores the identity's email inside Gin context.
	ContextEmailKey = "email"
	// ContextTokenKey stores the raw bearer token so storage calls can re-present it.
	ContextTokenKey = "jwt_token"
)

// AuthRequired resolves the bearer token through verifier on every request.
// Results are never cached.
func AuthRequired(verifier auth.TokenVerifier, log *zap.Logger, m metrics.Provider) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = metrics.Noop()
	}

	return func(ctx *gin.Context) {
		token, ok := bearerToken(ctx.GetHeader("Authorization"))
		if !ok {
			m.IncrementTokenVerifications("missing")
			utils.Error(ctx, http.StatusUnauthorized, "Access token is missing")
			ctx.Abort()
			return
		}

		identity, err := verifier.Verify(ctx.Request.Context(), token)
		switch {
		case errors.Is(err, auth.ErrInvalidToken):
			m.IncrementTokenVerifications("invalid")
			utils.Error(ctx, http.StatusUnauthorized, "Invalid or expired token")
			ctx.Abort()
			return
		case err != nil:
			m.IncrementTokenVerifications("error")
			log.Error("Error in authentication middleware", zap.Error(err), zap.String("path", ctx.FullPath()))
			utils.Error(ctx, http.StatusInternalServerError, "Internal server error")
			ctx.Abort()
			return
		case identity.ID == "":
			m.IncrementTokenVerifications("invalid")
			utils.Error(ctx, http.StatusUnauthorized, "Invalid or expired token")
			ctx.Abort()
			return
		}

		m.IncrementTokenVerifications("ok")
		ctx.Set(ContextUserIDKey, identity.ID)
		ctx.Set(ContextEmailKey, identity.Email)
		ctx.Set(ContextTokenKey, token)
		ctx.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// IdentityFrom returns the identity attached by AuthRequired.
func IdentityFrom(ctx *gin.Context) (auth.Identity, bool) {
	id := ctx.GetString(ContextUserIDKey)
	if id == "" {
		return auth.Identity{}, false
	}
	return auth.Identity{ID: id, Email: ctx.GetString(ContextEmailKey)}, true
}

// TokenFrom returns the bearer token attached by AuthRequired.
func TokenFrom(ctx *gin.Context) (string, bool) {
	token := ctx.GetString(ContextTokenKey)
	return token, token != ""
}
