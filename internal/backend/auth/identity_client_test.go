package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestIdentityClient(t *testing.T, handler http.HandlerFunc) *IdentityClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewIdentityClient("test-key", WithEndpoint(server.URL), WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return client
}

func TestSignInWithPasswordReturnsSession(t *testing.T) {
	client := newTestIdentityClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts:signInWithPassword" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Fatalf("expected api key on query string")
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("unexpected decode error: %v", err)
		}
		if body["email"] != "asha@example.com" {
			t.Fatalf("unexpected email %v", body["email"])
		}
		if body["returnSecureToken"] != true {
			t.Fatalf("expected returnSecureToken")
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"localId":      "uid-1",
			"email":        "asha@example.com",
			"displayName":  "Asha",
			"idToken":      "token-abc",
			"refreshToken": "refresh-abc",
			"expiresIn":    "3600",
		})
	})

	session, err := client.SignInWithPassword(context.Background(), "asha@example.com", "hunter22")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.User.ID != "uid-1" || session.IDToken != "token-abc" {
		t.Fatalf("unexpected session %+v", session)
	}
	if session.ExpiresAt.IsZero() {
		t.Fatalf("expected expiry to be set")
	}
}

func TestSignInMapsInvalidCredentials(t *testing.T) {
	client := newTestIdentityClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "INVALID_LOGIN_CREDENTIALS"},
		})
	})

	_, err := client.SignInWithPassword(context.Background(), "asha@example.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignUpAppliesDisplayName(t *testing.T) {
	var calls []string
	client := newTestIdentityClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)

		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		switch r.URL.Path {
		case "/accounts:signUp":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"localId":      "uid-2",
				"email":        "new@example.com",
				"idToken":      "token-1",
				"refreshToken": "refresh-1",
				"expiresIn":    "3600",
			})
		case "/accounts:update":
			if body["displayName"] != "New User" {
				t.Fatalf("expected display name on update, got %v", body["displayName"])
			}
			if body["idToken"] != "token-1" {
				t.Fatalf("expected sign-up token on update, got %v", body["idToken"])
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"localId":     "uid-2",
				"email":       "new@example.com",
				"displayName": "New User",
				"idToken":     "token-2",
				"expiresIn":   "3600",
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	session, err := client.SignUp(context.Background(), "new@example.com", "hunter22", "New User")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("expected sign-up then update, got %v", calls)
	}
	if session.User.DisplayName != "New User" {
		t.Fatalf("unexpected session %+v", session)
	}
	if session.RefreshToken != "refresh-1" {
		t.Fatalf("expected refresh token carried over, got %q", session.RefreshToken)
	}
}

func TestSignUpMapsEmailExists(t *testing.T) {
	client := newTestIdentityClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "EMAIL_EXISTS"},
		})
	})

	_, err := client.SignUp(context.Background(), "dup@example.com", "hunter22", "")
	if !errors.Is(err, ErrEmailAlreadyInUse) {
		t.Fatalf("expected ErrEmailAlreadyInUse, got %v", err)
	}
}

func TestSendPasswordResetIncludesContinueURL(t *testing.T) {
	client := newTestIdentityClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["requestType"] != "PASSWORD_RESET" {
			t.Fatalf("unexpected request type %v", body["requestType"])
		}
		if body["continueUrl"] != "https://shop.example/reset-password" {
			t.Fatalf("unexpected continue url %v", body["continueUrl"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"email": "asha@example.com"})
	})

	err := client.SendPasswordReset(context.Background(), "asha@example.com", "https://shop.example/reset-password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdatePasswordMapsWeakPassword(t *testing.T) {
	client := newTestIdentityClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "WEAK_PASSWORD : Password should be at least 6 characters"},
		})
	})

	_, err := client.UpdatePassword(context.Background(), "token-abc", "123")
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestServerErrorsMapToUnavailable(t *testing.T) {
	client := newTestIdentityClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.SignInWithPassword(context.Background(), "asha@example.com", "hunter22")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
