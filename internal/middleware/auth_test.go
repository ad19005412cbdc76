package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/roomloop/roomloop/internal/handlers"
	"github.com/roomloop/roomloop/internal/models"
)

type stubSessionValidator struct {
	user *models.User
	err  error
}

func (s *stubSessionValidator) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func TestAuthenticateAddsUserToContext(t *testing.T) {
	user := &models.User{ID: uuid.New(), DisplayName: "Jordan"}
	m := NewAuthMiddleware(&stubSessionValidator{user: user})

	var gotUser *models.User
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = handlers.GetUserFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/friends", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "valid-token"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotUser == nil || gotUser.ID != user.ID {
		t.Fatalf("expected user %s in context, got %+v", user.ID, gotUser)
	}
}

func TestAuthenticateContinuesWithoutCookie(t *testing.T) {
	m := NewAuthMiddleware(&stubSessionValidator{})

	var called bool
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if handlers.GetUserFromContext(r.Context()) != nil {
			t.Error("expected no user in context")
		}
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/friends", nil))

	if !called {
		t.Fatal("expected the next handler to run")
	}
}

func TestAuthenticateContinuesOnInvalidSession(t *testing.T) {
	m := NewAuthMiddleware(&stubSessionValidator{err: errors.New("expired session")})

	var called bool
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/friends", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "bad-token"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Fatal("an invalid session should not block the request")
	}
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	m := NewAuthMiddleware(&stubSessionValidator{})

	handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("the protected handler should not run")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/friends", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}

func TestRequireAuthPassesAuthenticated(t *testing.T) {
	m := NewAuthMiddleware(&stubSessionValidator{})
	user := &models.User{ID: uuid.New()}

	var called bool
	handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/friends", nil)
	req = req.WithContext(handlers.SetUserInContext(req.Context(), user))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Fatal("expected the protected handler to run")
	}
}
