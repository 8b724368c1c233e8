package client

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketplace_auth/internal/handler"
	"marketplace_auth/internal/middleware"
	"marketplace_auth/internal/model"
	"marketplace_auth/internal/repository"
	"marketplace_auth/internal/service"
	"marketplace_auth/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, secret string) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo := repository.NewMemoryUserRepository()
	jwtUtil := utils.NewJWTUtil(secret, time.Hour)

	r := gin.New()
	api := r.Group("/api")
	handler.NewAuthHandler(service.NewAuthService(repo, jwtUtil, log), log).RegisterAuthRoutes(api)
	handler.NewUserHandler(repo, log).RegisterUserRoutes(api, middleware.JWTAuthMiddleware(jwtUtil), middleware.AdminMiddleware())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_SignupLoginMe(t *testing.T) {
	srv := newServer(t, "client-secret")
	c := New(srv.URL+"/api/", srv.Client())
	ctx := context.Background()

	user, err := c.Signup(ctx, model.SignupRequest{
		PhoneNumber:    "9990001111",
		Password:       "password123",
		Name:           "Dana",
		Role:           model.RoleWorker,
		DrivingLicense: "DL-77",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleWorker, user.Role)
	assert.Equal(t, "DL-77", user.DrivingLicense)

	login, err := c.Login(ctx, model.LoginRequest{PhoneNumber: "9990001111", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, login.User.ID)
	assert.NotEmpty(t, login.Token)

	me, err := c.Me(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, me.UserID)
	assert.Equal(t, "9990001111", me.Phone)
	assert.Greater(t, me.Exp, time.Now().Unix())
}

func TestClient_APIErrors(t *testing.T) {
	srv := newServer(t, "client-secret")
	c := New(srv.URL+"/api", nil)
	ctx := context.Background()

	_, err := c.Login(ctx, model.LoginRequest{PhoneNumber: "0000000000", Password: "whatever1"})
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Contains(t, err.Error(), "Invalid phone number or password")

	_, err = c.Me(ctx, "")
	assert.True(t, IsStatus(err, http.StatusUnauthorized))

	_, err = c.Signup(ctx, model.SignupRequest{PhoneNumber: "1"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestClient_NonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).Me(context.Background(), "t")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}
