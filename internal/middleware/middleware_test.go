package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketplace_auth/internal/model"
	"marketplace_auth/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(jwtUtil *utils.JWTUtil, roles ...model.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	handlers := []gin.HandlerFunc{JWTAuthMiddleware(jwtUtil)}
	if len(roles) > 0 {
		handlers = append(handlers, RoleMiddleware(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, claims.Phone)
	})
	r.GET("/protected", handlers...)
	return r
}

func token(t *testing.T, jwtUtil *utils.JWTUtil, role model.Role) string {
	t.Helper()
	tok, err := jwtUtil.GenerateToken(&model.User{ID: "u-1", PhoneNumber: "5550001111", Role: role})
	require.NoError(t, err)
	return tok
}

func TestJWTAuthMiddleware(t *testing.T) {
	jwtUtil := utils.NewJWTUtil("secret", time.Hour)
	router := newRouter(jwtUtil)
	valid := token(t, jwtUtil, model.RoleConsumer)
	expired := token(t, utils.NewJWTUtil("secret", -time.Hour), model.RoleConsumer)
	foreign := token(t, utils.NewJWTUtil("other", time.Hour), model.RoleConsumer)

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+valid) }, http.StatusOK},
		{"lowercase scheme", func(r *http.Request) { r.Header.Set("Authorization", "bearer "+valid) }, http.StatusOK},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookieName, Value: valid}) }, http.StatusOK},
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized},
		{"bad scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic "+valid) }, http.StatusUnauthorized},
		{"expired", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+expired) }, http.StatusUnauthorized},
		{"wrong secret", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+foreign) }, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "5550001111", w.Body.String())
			}
		})
	}
}

func TestJWTAuthMiddleware_UniformFailureBody(t *testing.T) {
	jwtUtil := utils.NewJWTUtil("secret", time.Hour)
	router := newRouter(jwtUtil)

	bodies := make([]string, 0, 2)
	for _, tok := range []string{
		token(t, utils.NewJWTUtil("secret", -time.Hour), model.RoleConsumer),
		"not.a.token",
	} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		bodies = append(bodies, w.Body.String())
	}
	assert.Equal(t, bodies[0], bodies[1])
}

func TestAdminMiddleware(t *testing.T) {
	jwtUtil := utils.NewJWTUtil("secret", time.Hour)
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/admin", JWTAuthMiddleware(jwtUtil), AdminMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for role, want := range map[model.Role]int{
		model.RoleAdmin:    http.StatusNoContent,
		model.RoleConsumer: http.StatusForbidden,
		model.RoleWorker:   http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token(t, jwtUtil, role))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, "role %s", role)
	}
}

func TestRoleMiddleware_WithoutJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/x", RoleMiddleware(model.RoleWorker), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	router.POST("/api/login", func(c *gin.Context) { c.Status(http.StatusUnauthorized) })

	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewBufferString(`{"password":"hunter22"}`))
	router.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "path=/api/login")
	assert.Contains(t, out, "status=401")
	assert.NotContains(t, out, "hunter22")
}
