package v1

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"net/url"
	"strings"

	"go-profile-backend/config"
	"go-profile-backend/internal/delivery/http/response"
	"go-profile-backend/internal/domain"
	"go-profile-backend/pkg/apperror"
	"go-profile-backend/pkg/identity"
	"go-profile-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC   domain.AuthUsecase
	provider *identity.Client
	google   *identity.GoogleOAuth
	config   *config.Config
}

func NewAuthHandler(public *gin.RouterGroup, protected *gin.RouterGroup, authUC domain.AuthUsecase, provider *identity.Client, google *identity.GoogleOAuth, cfg *config.Config) {
	handler := &AuthHandler{
		authUC:   authUC,
		provider: provider,
		google:   google,
		config:   cfg,
	}

	publicAuth := public.Group("/auth")
	{
		publicAuth.POST("/login", handler.Login)
		publicAuth.POST("/register", handler.Register)
		publicAuth.GET("/google/login", handler.GoogleLogin)
		publicAuth.GET("/google/callback", handler.GoogleCallback)
	}

	protectedAuth := protected.Group("/auth")
	{
		protectedAuth.POST("/logout", handler.Logout)
		protectedAuth.GET("/me", handler.Me)
		protectedAuth.PUT("/me", handler.UpdateMe)
	}
}

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type sessionPayload struct {
	Token        string          `json:"token"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	ExpiresIn    int             `json:"expires_in,omitempty"`
	User         identityPayload `json:"user"`
	RedirectTo   string          `json:"redirect_to"`
	Warning      string          `json:"warning,omitempty"`
}

type identityPayload struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	DisplayName *string `json:"display_name,omitempty"`
	PhotoURL    *string `json:"photo_url,omitempty"`
}

func toIdentityPayload(id identity.Identity) identityPayload {
	return identityPayload{ID: id.ID, Email: id.Email, DisplayName: id.DisplayName, PhotoURL: id.PhotoURL}
}

func toDomainIdentity(id identity.Identity) domain.Identity {
	return domain.Identity{ID: id.ID, Email: id.Email, DisplayName: id.DisplayName, PhotoURL: id.PhotoURL}
}

// ensureSession runs bootstrap after a successful provider sign-in. A
// bootstrap-incomplete condition does not fail the sign-in; it is surfaced as
// a warning and healed on the next call.
func (h *AuthHandler) ensureSession(c *gin.Context, sess *identity.Session) (warning string, err error) {
	if err := h.authUC.Ensure(c.Request.Context(), toDomainIdentity(sess.Identity)); err != nil {
		if apperror.IsKind(err, apperror.KindBootstrapIncomplete) {
			return err.Error(), nil
		}
		return "", err
	}
	return "", nil
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	var displayName *string
	if name := strings.TrimSpace(req.DisplayName); name != "" {
		displayName = &name
	}

	sess, err := h.provider.SignUp(c.Request.Context(), req.Email, req.Password, displayName)
	if err != nil {
		c.Error(err)
		return
	}

	if sess.AccessToken == "" {
		// Email confirmation pending: no session yet, bootstrap runs on the
		// first real sign-in.
		response.Success(c, http.StatusCreated, "Registration successful. Please check your email to confirm.", nil)
		return
	}

	warning, err := h.ensureSession(c, sess)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Registration successful", sessionPayload{
		Token:        sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresIn:    sess.ExpiresIn,
		User:         toIdentityPayload(sess.Identity),
		RedirectTo:   "/profile",
		Warning:      warning,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Malformed credentials get the same uniform message as wrong ones
		c.Error(apperror.InvalidCredentials("Invalid email or password"))
		return
	}

	sess, err := h.provider.SignInWithPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	warning, err := h.ensureSession(c, sess)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Login successful", sessionPayload{
		Token:        sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresIn:    sess.ExpiresIn,
		User:         toIdentityPayload(sess.Identity),
		RedirectTo:   "/",
		Warning:      warning,
	})
}

const oauthStateCookie = "oauth_state"

func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if !h.google.Configured() {
		c.Error(apperror.ProviderError("Google sign-in is not configured", nil))
		return
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	state := hex.EncodeToString(buf)

	// Short-lived, HttpOnly; verified against the state echoed by Google
	c.SetCookie(oauthStateCookie, state, 300, "/", "", true, true)
	c.Redirect(http.StatusTemporaryRedirect, h.google.AuthCodeURL(state))
}

func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	cookieState, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != cookieState {
		c.Error(apperror.BadRequest("OAuth state mismatch"))
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", true, true)

	code := c.Query("code")
	if code == "" {
		c.Error(apperror.BadRequest("Missing authorization code"))
		return
	}

	idToken, err := h.google.ExchangeIDToken(c.Request.Context(), code)
	if err != nil {
		c.Error(apperror.ProviderError("Google sign-in failed", err))
		return
	}

	sess, err := h.provider.SignInWithIDToken(c.Request.Context(), "google", idToken)
	if err != nil {
		c.Error(err)
		return
	}

	warning, err := h.ensureSession(c, sess)
	if err != nil {
		c.Error(err)
		return
	}
	if warning != "" {
		logger.Log.Warn("federated sign-in completed with incomplete bootstrap", "user_id", sess.Identity.ID)
	}

	// Hand the session back to the frontend callback page
	redirect := h.config.FrontendURL + "/auth/callback?" + url.Values{
		"token": {sess.AccessToken},
	}.Encode()
	c.Redirect(http.StatusTemporaryRedirect, redirect)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	// Revocation at the provider is best effort; the local session is gone
	// either way once the client drops the token.
	if token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "); token != "" {
		if err := h.provider.SignOut(c.Request.Context(), token); err != nil {
			logger.Log.Warn("provider logout failed", "error", err.Error())
		}
	}
	response.Success(c, http.StatusOK, "Logged out", nil)
}

type UpdateMeRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
}

// UpdateMe renames the account. The identity provider is updated first; the
// local record follows only once the provider accepted the change.
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Display name is required"))
		return
	}

	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		c.Error(apperror.BadRequest("Display name is required"))
		return
	}

	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if err := h.provider.UpdateDisplayName(c.Request.Context(), token, name); err != nil {
		c.Error(err)
		return
	}

	userID := c.GetString(string(domain.KeyUserID))
	if err := h.authUC.UpdateDisplayName(c.Request.Context(), userID, name); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Display name updated", gin.H{"display_name": name})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	user, err := h.authUC.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	// The stored photo_url wins; the token's metadata avatar is the fallback
	// for sessions whose bootstrap has not landed yet.
	photo := user.PhotoURL
	if photo == nil {
		if tokenPhoto := c.GetString(string(domain.KeyUserPhoto)); tokenPhoto != "" {
			photo = &tokenPhoto
		}
	}

	response.Success(c, http.StatusOK, "OK", gin.H{
		"id":           user.ID,
		"email":        user.Email,
		"display_name": user.DisplayName,
		"photo_url":    photo,
		"role":         user.Role,
		"created_at":   user.CreatedAt,
	})
}
