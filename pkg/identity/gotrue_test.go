package identity_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-profile-backend/pkg/apperror"
	"go-profile-backend/pkg/identity"

	"github.com/stretchr/testify/assert"
)

func gotrueStub(t *testing.T, handler http.HandlerFunc) (*identity.Client, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	return identity.NewClient(srv.URL, "test-anon-key"), srv.Close
}

func sessionBody(w http.ResponseWriter, userID, email string, meta map[string]interface{}) {
	json.NewEncoder(w).Encode(map[string]interface{}{
		"access_token":  "at-123",
		"refresh_token": "rt-456",
		"expires_in":    3600,
		"user": map[string]interface{}{
			"id":            userID,
			"email":         email,
			"user_metadata": meta,
		},
	})
}

func TestSignInWithPassword(t *testing.T) {
	t.Run("Should return the session with identity metadata", func(t *testing.T) {
		client, done := gotrueStub(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/token", r.URL.Path)
			assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
			assert.Equal(t, "test-anon-key", r.Header.Get("apikey"))
			sessionBody(w, "u1", "u1@example.com", map[string]interface{}{
				"full_name":  "Ada",
				"avatar_url": "https://img.example.com/a.png",
			})
		})
		defer done()

		sess, err := client.SignInWithPassword(context.Background(), "u1@example.com", "secret")
		assert.NoError(t, err)
		assert.Equal(t, "at-123", sess.AccessToken)
		assert.Equal(t, "u1", sess.Identity.ID)
		assert.Equal(t, "Ada", *sess.Identity.DisplayName)
		assert.Equal(t, "https://img.example.com/a.png", *sess.Identity.PhotoURL)
	})

	t.Run("Should collapse every 4xx into the same credential failure", func(t *testing.T) {
		for _, status := range []int{400, 401, 422} {
			client, done := gotrueStub(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				json.NewEncoder(w).Encode(map[string]string{"error_description": "user not found"})
			})

			_, err := client.SignInWithPassword(context.Background(), "nobody@example.com", "x")
			assert.True(t, apperror.IsKind(err, apperror.KindInvalidCredentials))
			// The provider's account-enumeration detail never surfaces
			assert.Equal(t, "Invalid email or password", err.Error())
			done()
		}
	})

	t.Run("Should report provider outages distinctly", func(t *testing.T) {
		client, done := gotrueStub(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		defer done()

		_, err := client.SignInWithPassword(context.Background(), "u1@example.com", "secret")
		assert.True(t, apperror.IsKind(err, apperror.KindProviderError))
	})
}

func TestSignUp(t *testing.T) {
	t.Run("Should map an existing account to a conflict", func(t *testing.T) {
		client, done := gotrueStub(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"msg": "User already registered"})
		})
		defer done()

		_, err := client.SignUp(context.Background(), "u1@example.com", "secret", nil)
		assert.True(t, apperror.IsKind(err, apperror.KindAlreadyExists))
	})

	t.Run("Should send the display name in user metadata", func(t *testing.T) {
		client, done := gotrueStub(t, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]interface{}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			data, _ := body["data"].(map[string]interface{})
			assert.Equal(t, "Ada", data["full_name"])
			sessionBody(w, "u1", "u1@example.com", nil)
		})
		defer done()

		name := "  Ada  "
		sess, err := client.SignUp(context.Background(), "u1@example.com", "secret", &name)
		assert.NoError(t, err)
		assert.Equal(t, "u1", sess.Identity.ID)
	})

	t.Run("Should handle a confirmation-pending signup without a session", func(t *testing.T) {
		client, done := gotrueStub(t, func(w http.ResponseWriter, r *http.Request) {
			// No auto-confirm: GoTrue returns the bare user object
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":    "u1",
				"email": "u1@example.com",
			})
		})
		defer done()

		sess, err := client.SignUp(context.Background(), "u1@example.com", "secret", nil)
		assert.NoError(t, err)
		assert.Empty(t, sess.AccessToken)
		assert.Equal(t, "u1", sess.Identity.ID)
	})
}

func TestSignInWithIDToken(t *testing.T) {
	t.Run("Should pass the provider error through verbatim", func(t *testing.T) {
		client, done := gotrueStub(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"msg": "Bad ID token audience"})
		})
		defer done()

		_, err := client.SignInWithIDToken(context.Background(), "google", "tok")
		assert.True(t, apperror.IsKind(err, apperror.KindProviderError))
		assert.Contains(t, err.Error(), "Bad ID token audience")
	})
}
