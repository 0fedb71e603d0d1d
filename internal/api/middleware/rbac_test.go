package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRBAC(t *testing.T) {
	cases := []struct {
		name    string
		allowed []string
		role    any
		code    int
	}{
		{"client on client route", []string{"client"}, "client", http.StatusOK},
		{"engineer on client route", []string{"client"}, "engineer", http.StatusForbidden},
		{"either role", []string{"client", "engineer"}, "engineer", http.StatusOK},
		{"missing role", []string{"engineer"}, nil, http.StatusForbidden},
		{"unknown role", []string{"engineer"}, "admin", http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/v1/projects", nil), rec)
			if tc.role != nil {
				c.Set(CtxRole, tc.role)
			}

			called := false
			h := RBAC(tc.allowed...)(func(c echo.Context) error {
				called = true
				return c.NoContent(http.StatusOK)
			})
			if err := h(c); err != nil {
				e.HTTPErrorHandler(err, c)
			}

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			if called != (tc.code == http.StatusOK) {
				t.Fatalf("next called = %v for status %d", called, tc.code)
			}
		})
	}
}

func TestRBAC_MessageNamesAllowedRoles(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set(CtxRole, "engineer")

	if err := RBAC("client")(func(echo.Context) error { return nil })(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if !strings.Contains(rec.Body.String(), "reserved for clients") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
