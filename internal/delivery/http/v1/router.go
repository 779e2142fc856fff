package v1

import (
	"net/http"
	"time"

	"go-profile-backend/config"
	"go-profile-backend/internal/delivery/http/middleware"
	"go-profile-backend/internal/delivery/http/response"
	"go-profile-backend/internal/domain"
	"go-profile-backend/pkg/auth"
	"go-profile-backend/pkg/identity"

	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	AuthUC       domain.AuthUsecase
	ProfileUC    domain.ProfileUsecase
	AvatarUC     domain.AvatarUsecase
	Provider     *identity.Client
	Google       *identity.GoogleOAuth
	JWKSProvider *auth.Provider
	Config       *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	window := time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware(middleware.DefaultRateLimitConfig(deps.Config.RateLimitGlobalThreshold, window)))

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", nil)
	})

	// Credential endpoints get the strict limiter on top of the global one
	loginLimited := v1.Group("")
	loginLimited.Use(middleware.RateLimitMiddleware(middleware.LoginRateLimitConfig(deps.Config.RateLimitLoginThreshold, window)))

	// Public profile view; optional auth so owners see through the gate
	viewable := v1.Group("")
	viewable.Use(middleware.OptionalAuthMiddleware(deps.JWKSProvider, deps.Config))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWKSProvider, deps.Config, deps.AuthUC))

	uploadLimited := protected.Group("")
	uploadLimited.Use(middleware.RateLimitMiddleware(middleware.UploadRateLimitConfig(deps.Config.RateLimitUploadThreshold, window)))

	NewAuthHandler(loginLimited, protected, deps.AuthUC, deps.Provider, deps.Google, deps.Config)
	NewProfileHandler(viewable, protected, deps.ProfileUC)
	NewAvatarHandler(uploadLimited, deps.AvatarUC)

	return r
}
