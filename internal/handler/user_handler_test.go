package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace_auth/internal/model"
	"marketplace_auth/internal/repository"
	"marketplace_auth/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, repo repository.UserRepository, phone string, role model.Role) *model.User {
	t.Helper()
	hash, err := utils.HashPassword("correct-horse")
	require.NoError(t, err)
	u := &model.User{PhoneNumber: phone, PasswordHash: hash, Name: "N", Role: role}
	if role == model.RoleWorker {
		u.Worker = &model.WorkerProfile{DrivingLicense: "DL-1"}
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestMe(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	env := newTestEnv(t, repo, "secret")
	u := seedUser(t, repo, "6660001111", model.RoleConsumer)
	token, err := env.jwtUtil.GenerateToken(u)
	require.NoError(t, err)

	w := env.do(t, http.MethodGet, "/api/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, u.ID, out["userId"])
	assert.Equal(t, "6660001111", out["phone"])
	assert.Equal(t, "consumer", out["role"])

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/me", nil, "").Code)
}

func TestGetUser_AdminOnly(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	env := newTestEnv(t, repo, "secret")
	admin := seedUser(t, repo, "6660002222", model.RoleAdmin)
	worker := seedUser(t, repo, "6660003333", model.RoleWorker)

	adminToken, _ := env.jwtUtil.GenerateToken(admin)
	workerToken, _ := env.jwtUtil.GenerateToken(worker)

	w := env.do(t, http.MethodGet, "/api/users/"+worker.ID, nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	user := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "DL-1", user["driving_license"])
	assert.NotContains(t, w.Body.String(), worker.PasswordHash)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/users/"+admin.ID, nil, workerToken).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/users/missing", nil, adminToken).Code)
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, tt := range []struct {
		pinger stubPinger
		status int
	}{
		{stubPinger{}, http.StatusOK},
		{stubPinger{err: errors.New("down")}, http.StatusServiceUnavailable},
	} {
		router := gin.New()
		router.GET("/health", Health(tt.pinger))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, tt.status, w.Code)
	}
}
