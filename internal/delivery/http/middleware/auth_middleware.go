package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go-profile-backend/config"
	"go-profile-backend/internal/delivery/http/response"
	"go-profile-backend/internal/domain"
	"go-profile-backend/pkg/auth"
	"go-profile-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func tokenFromRequest(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := c.Cookie("auth_token"); err == nil {
		return cookie
	}
	return ""
}

func parseToken(tokenString string, jwksProvider *auth.Provider, cfg *config.Config) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
			// HS256 - shared secret
			if cfg.SupabaseJWTSecret == "" {
				return nil, fmt.Errorf("HS256 token received but SUPABASE_JWT_SECRET is not configured")
			}
			return []byte(cfg.SupabaseJWTSecret), nil
		}
		if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
			// RS256 - JWKS
			return jwksProvider.KeyFunc(token)
		}
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	})
	if err != nil || !token.Valid {
		if err == nil {
			err = fmt.Errorf("token invalid")
		}
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims")
	}
	return claims, nil
}

// attach places the identity on both the gin context (for handlers) and the
// request context (for usecases reading domain keys).
func attach(c *gin.Context, sub, email, role, photo string) {
	c.Set(string(domain.KeyUserID), sub)
	c.Set(string(domain.KeyUserEmail), email)
	c.Set(string(domain.KeyUserRole), role)
	if photo != "" {
		c.Set(string(domain.KeyUserPhoto), photo)
	}

	ctx := context.WithValue(c.Request.Context(), domain.KeyUserID, sub)
	ctx = context.WithValue(ctx, domain.KeyUserEmail, email)
	ctx = context.WithValue(ctx, domain.KeyUserRole, role)
	if photo != "" {
		ctx = context.WithValue(ctx, domain.KeyUserPhoto, photo)
	}
	c.Request = c.Request.WithContext(ctx)
}

func claimPhoto(claims jwt.MapClaims) string {
	meta, _ := claims["user_metadata"].(map[string]interface{})
	for _, k := range []string{"avatar_url", "picture"} {
		if v, ok := meta[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// AuthMiddleware verifies the bearer token and resolves the caller's role
// from the local record. The role claim in the JWT is not trusted. A missing
// local record does not reject the session: bootstrap may still be pending,
// so the caller proceeds with the default role and heals on the next Ensure.
func AuthMiddleware(jwksProvider *auth.Provider, cfg *config.Config, authUC domain.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required", nil)
			c.Abort()
			return
		}

		claims, err := parseToken(tokenString, jwksProvider, cfg)
		if err != nil {
			logger.Log.Warn("token validation failed", "error", err.Error())
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		sub, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)
		if sub == "" {
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		role := domain.RoleCandidate
		if user, err := authUC.GetCurrentUser(c.Request.Context(), sub); err == nil && user.Role != "" {
			role = user.Role
		}

		attach(c, sub, email, role, claimPhoto(claims))
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the identity when a valid token is present
// and continues anonymously otherwise. Used on routes whose behavior differs
// for owners, like the public profile view.
func OptionalAuthMiddleware(jwksProvider *auth.Provider, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := parseToken(tokenString, jwksProvider, cfg)
		if err != nil {
			// A bad token on an optional route downgrades to anonymous
			c.Next()
			return
		}

		sub, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)
		if sub != "" {
			attach(c, sub, email, domain.RoleCandidate, claimPhoto(claims))
		}
		c.Next()
	}
}
