package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go-profile-backend/pkg/apperror"
)

// Identity mirrors the provider's view of the authenticated principal.
type Identity struct {
	ID          string
	Email       string
	DisplayName *string
	PhotoURL    *string
}

// Session is the result of a successful sign-in or sign-up.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	Identity     Identity
}

// Client talks to the Supabase GoTrue auth API over plain HTTP. Errors from
// the password grant are collapsed into a single uniform credential failure
// so callers cannot enumerate accounts.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(supabaseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(supabaseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type gotrueUser struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
}

type gotrueSession struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int        `json:"expires_in"`
	User         gotrueUser `json:"user"`
	// Sign-up without auto-confirm returns the bare user instead
	ID           string                 `json:"id"`
	EmailTop     string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
}

func (s *gotrueSession) identity() Identity {
	u := s.User
	if u.ID == "" {
		u = gotrueUser{ID: s.ID, Email: s.EmailTop, UserMetadata: s.UserMetadata}
	}
	id := Identity{ID: u.ID, Email: u.Email}
	if name := metaString(u.UserMetadata, "full_name", "name"); name != "" {
		id.DisplayName = &name
	}
	if photo := metaString(u.UserMetadata, "avatar_url", "picture"); photo != "" {
		id.PhotoURL = &photo
	}
	return id
}

func metaString(meta map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := meta[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// SignUp registers an email/password account. The display name, when given,
// is stored in the provider's user metadata in the same request.
func (c *Client) SignUp(ctx context.Context, email, password string, displayName *string) (*Session, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
	}
	if displayName != nil && strings.TrimSpace(*displayName) != "" {
		body["data"] = map[string]interface{}{"full_name": strings.TrimSpace(*displayName)}
	}

	var sess gotrueSession
	status, providerMsg, err := c.post(ctx, "/auth/v1/signup", "", body, &sess)
	if err != nil {
		return nil, apperror.ProviderError("Registration service unavailable", err)
	}
	if status >= 400 {
		if strings.Contains(strings.ToLower(providerMsg), "already registered") || status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(providerMsg), "exists") {
			return nil, apperror.AlreadyExists("An account with this email already exists")
		}
		if status >= 500 {
			return nil, apperror.ProviderError(providerMsg, nil)
		}
		// malformed email or password rejected by provider policy
		return nil, apperror.InvalidCredentials(providerMsg)
	}
	return sessionFrom(&sess), nil
}

// SignInWithPassword performs the password grant. Every 4xx collapses into
// the same InvalidCredentials; wrong password and no-such-account are
// intentionally indistinguishable.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
	}

	var sess gotrueSession
	status, _, err := c.post(ctx, "/auth/v1/token?grant_type=password", "", body, &sess)
	if err != nil {
		return nil, apperror.ProviderError("Login service unavailable", err)
	}
	if status >= 500 {
		return nil, apperror.ProviderError("Login service unavailable", nil)
	}
	if status >= 400 {
		return nil, apperror.InvalidCredentials("Invalid email or password")
	}
	return sessionFrom(&sess), nil
}

// SignInWithIDToken exchanges a federated provider's ID token for a session.
// Provider errors pass through verbatim.
func (c *Client) SignInWithIDToken(ctx context.Context, provider, idToken string) (*Session, error) {
	body := map[string]interface{}{
		"provider": provider,
		"id_token": idToken,
	}

	var sess gotrueSession
	status, providerMsg, err := c.post(ctx, "/auth/v1/token?grant_type=id_token", "", body, &sess)
	if err != nil {
		return nil, apperror.ProviderError("Sign-in service unavailable", err)
	}
	if status >= 400 {
		if providerMsg == "" {
			providerMsg = fmt.Sprintf("Federated sign-in failed (status %d)", status)
		}
		return nil, apperror.ProviderError(providerMsg, nil)
	}
	return sessionFrom(&sess), nil
}

// UpdateDisplayName writes the display name into the provider's user
// metadata for the session holder.
func (c *Client) UpdateDisplayName(ctx context.Context, accessToken, name string) error {
	body := map[string]interface{}{
		"data": map[string]interface{}{"full_name": name},
	}
	status, providerMsg, err := c.put(ctx, "/auth/v1/user", accessToken, body)
	if err != nil {
		return apperror.ProviderError("Profile update service unavailable", err)
	}
	if status >= 400 {
		return apperror.ProviderError(providerMsg, nil)
	}
	return nil
}

// SignOut revokes the session at the provider. Best effort: local sign-out
// always succeeds, so callers may ignore the returned error.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	status, providerMsg, err := c.post(ctx, "/auth/v1/logout", accessToken, map[string]interface{}{}, nil)
	if err != nil {
		return err
	}
	if status >= 400 {
		return fmt.Errorf("logout rejected: %s", providerMsg)
	}
	return nil
}

func sessionFrom(s *gotrueSession) *Session {
	return &Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresIn:    s.ExpiresIn,
		Identity:     s.identity(),
	}
}

func (c *Client) post(ctx context.Context, path, bearer string, body interface{}, out *gotrueSession) (int, string, error) {
	return c.do(ctx, http.MethodPost, path, bearer, body, out)
}

func (c *Client) put(ctx context.Context, path, bearer string, body interface{}) (int, string, error) {
	return c.do(ctx, http.MethodPut, path, bearer, body, nil)
}

func (c *Client) do(ctx context.Context, method, path, bearer string, body interface{}, out *gotrueSession) (int, string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, "", err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewBuffer(payload))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return resp.StatusCode, errorMessage(errResp), nil
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, "", fmt.Errorf("failed to parse provider response: %w", err)
		}
	}
	return resp.StatusCode, "", nil
}

// errorMessage digs the human-readable message out of GoTrue's error body,
// which varies across endpoints.
func errorMessage(errResp map[string]interface{}) string {
	for _, key := range []string{"msg", "message", "error_description", "error"} {
		if m, ok := errResp[key].(string); ok && m != "" {
			return m
		}
	}
	return "Authentication provider error"
}
