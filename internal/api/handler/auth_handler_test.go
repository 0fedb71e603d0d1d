package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/obralink/marketplace/internal/api/middleware"
	"github.com/obralink/marketplace/internal/core/domain"
	"github.com/obralink/marketplace/internal/core/ports"
)

func TestAuthHandler_SignUp_Success(t *testing.T) {
	stub := &stubAuthService{
		signUpFn: func(ctx context.Context, in ports.SignUpInput) (*domain.Profile, error) {
			if in.Email != "ana@example.com" || in.Role != "engineer" || in.ConfirmPassword != "secret1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Profile{ID: "u1", Email: in.Email, Role: in.Role, PasswordHash: "hash"}, nil
		},
	}
	h := NewAuthHandler(stub, nil)

	body := strings.NewReader(`{"email":"ana@example.com","password":"secret1","confirm_password":"secret1","role":"engineer","full_name":"Ana"}`)
	c, rec := newContext(t, http.MethodPost, "/v1/auth/signup", body, nil)

	if err := h.SignUp(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if user["role"] != "engineer" || user["email"] != "ana@example.com" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatalf("password hash must not be serialised")
	}
}

func TestAuthHandler_SignUp_InvalidEmail(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, nil)
	body := strings.NewReader(`{"email":"nope","password":"secret1","confirm_password":"secret1","role":"client"}`)
	c, _ := newContext(t, http.MethodPost, "/v1/auth/signup", body, nil)

	assertHTTPError(t, h.SignUp(c), http.StatusUnprocessableEntity)
}

func TestAuthHandler_SignUp_ServiceErrorPassesThrough(t *testing.T) {
	stub := &stubAuthService{
		signUpFn: func(context.Context, ports.SignUpInput) (*domain.Profile, error) {
			return nil, domain.ErrUserExists
		},
	}
	h := NewAuthHandler(stub, nil)
	body := strings.NewReader(`{"email":"ana@example.com","password":"secret1","confirm_password":"secret1","role":"client"}`)
	c, _ := newContext(t, http.MethodPost, "/v1/auth/signup", body, nil)

	if err := h.SignUp(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_SignIn_ReturnsToken(t *testing.T) {
	stub := &stubAuthService{
		signInFn: func(_ context.Context, email, password string) (string, *domain.Profile, error) {
			return "jwt-token", &domain.Profile{ID: "u1", Email: email, Role: domain.RoleClient}, nil
		},
	}
	h := NewAuthHandler(stub, nil)
	c, rec := newContext(t, http.MethodPost, "/v1/auth/signin", strings.NewReader(`{"email":"ana@example.com","password":"secret1"}`), nil)

	if err := h.SignIn(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "jwt-token" {
		t.Fatalf("expected token in response, got %q", resp.Token)
	}
}

func TestAuthHandler_SignIn_InvalidPayload(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, nil)
	c, _ := newContext(t, http.MethodPost, "/v1/auth/signin", strings.NewReader(`{not json`), nil)

	assertHTTPError(t, h.SignIn(c), http.StatusBadRequest)
}

func TestAuthHandler_SignOut_ForwardsClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	var got ports.TokenClaims
	stub := &stubAuthService{
		signOutFn: func(_ context.Context, claims ports.TokenClaims) error {
			got = claims
			return nil
		},
	}
	h := NewAuthHandler(stub, nil)
	c, rec := newContext(t, http.MethodPost, "/v1/auth/signout", nil, client)
	c.Set(middleware.CtxTokenID, "jti-9")
	c.Set(middleware.CtxExpiresAt, exp)

	if err := h.SignOut(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got.TokenID != "jti-9" || got.UserID != client.ID || !got.ExpiresAt.Equal(exp) {
		t.Fatalf("unexpected claims: %+v", got)
	}
}

func TestAuthHandler_Me_RequiresClaims(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, &stubProfileService{})
	c, _ := newContext(t, http.MethodGet, "/v1/me", nil, nil)

	assertHTTPError(t, h.Me(c), http.StatusUnauthorized)
}

func TestAuthHandler_Me(t *testing.T) {
	profiles := &stubProfileService{
		getFn: func(_ context.Context, id string) (*domain.Profile, error) {
			return &domain.Profile{ID: id, Role: domain.RoleClient}, nil
		},
	}
	h := NewAuthHandler(&stubAuthService{}, profiles)
	c, rec := newContext(t, http.MethodGet, "/v1/me", nil, client)

	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"id":"client-1"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
