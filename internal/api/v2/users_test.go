package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noisewatch/noisewatch-go/internal/datastore"
	"github.com/noisewatch/noisewatch-go/internal/security"
)

func TestUsersRequireSession(t *testing.T) {
	t.Parallel()
	env := setupTestEnvironment(t)

	rec := env.request(t, http.MethodGet, "/api/v2/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListUsersHidesPasswords(t *testing.T) {
	t.Parallel()
	env := setupTestEnvironment(t)
	seedTestUser(t, env, "operator", "secret123", datastore.RoleUser)
	cookies := login(t, env, "operator", "secret123")

	rec := env.request(t, http.MethodGet, "/api/v2/users", "", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "$2a$")
}

func TestCreateUser(t *testing.T) {
	t.Parallel()
	env := setupTestEnvironment(t)
	seedTestUser(t, env, "operator", "secret123", datastore.RoleAdmin)
	cookies := login(t, env, "operator", "secret123")

	body := `{"username":"newbie","password":"changeme","name":"New User"}`
	rec := env.request(t, http.MethodPost, "/api/v2/users", body, cookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err := env.ds.GetUserByUsername("newbie")
	require.NoError(t, err)
	assert.Equal(t, datastore.RoleUser, stored.Role)
	assert.True(t, security.CheckPassword(stored.Password, "changeme"))
}

func TestCreateUserRejectsShortPassword(t *testing.T) {
	t.Parallel()
	env := setupTestEnvironment(t)
	seedTestUser(t, env, "operator", "secret123", datastore.RoleAdmin)
	cookies := login(t, env, "operator", "secret123")

	body := `{"username":"newbie","password":"abc","name":"New User"}`
	rec := env.request(t, http.MethodPost, "/api/v2/users", body, cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateUser(t *testing.T) {
	t.Parallel()
	env := setupTestEnvironment(t)
	seedTestUser(t, env, "operator", "secret123", datastore.RoleAdmin)
	target := seedTestUser(t, env, "worker", "secret123", datastore.RoleUser)
	cookies := login(t, env, "operator", "secret123")

	body := `{"name":"Renamed","role":"admin"}`
	rec := env.request(t, http.MethodPut, fmt.Sprintf("/api/v2/users/%d", target.ID), body, cookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err := env.ds.GetUser(target.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Name)
	assert.Equal(t, datastore.RoleAdmin, stored.Role)
}

func TestAdminAccountIsProtected(t *testing.T) {
	t.Parallel()
	env := setupTestEnvironment(t)
	admin := seedTestUser(t, env, "admin", "secret123", datastore.RoleAdmin)
	seedTestUser(t, env, "operator", "secret123", datastore.RoleAdmin)
	cookies := login(t, env, "operator", "secret123")

	rec := env.request(t, http.MethodPut, fmt.Sprintf("/api/v2/users/%d", admin.ID),
		`{"name":"Hacked"}`, cookies)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.request(t, http.MethodDelete, fmt.Sprintf("/api/v2/users/%d", admin.ID), "", cookies)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	stored, err := env.ds.GetUser(admin.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "Hacked", stored.Name)
}

func TestDeleteUser(t *testing.T) {
	t.Parallel()
	env := setupTestEnvironment(t)
	seedTestUser(t, env, "operator", "secret123", datastore.RoleAdmin)
	target := seedTestUser(t, env, "worker", "secret123", datastore.RoleUser)
	cookies := login(t, env, "operator", "secret123")

	rec := env.request(t, http.MethodDelete, fmt.Sprintf("/api/v2/users/%d", target.ID), "", cookies)
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := env.ds.GetUser(target.ID)
	assert.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	t.Parallel()
	env := setupTestEnvironment(t)
	user := seedTestUser(t, env, "operator", "secret123", datastore.RoleUser)
	cookies := login(t, env, "operator", "secret123")

	body := `{"current_password":"secret123","new_password":"evenmoresecret"}`
	rec := env.request(t, http.MethodPost, "/api/v2/users/change-password", body, cookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err := env.ds.GetUser(user.ID)
	require.NoError(t, err)
	assert.True(t, security.CheckPassword(stored.Password, "evenmoresecret"))
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	t.Parallel()
	env := setupTestEnvironment(t)
	user := seedTestUser(t, env, "operator", "secret123", datastore.RoleUser)
	cookies := login(t, env, "operator", "secret123")

	body := `{"current_password":"wrong-one","new_password":"evenmoresecret"}`
	rec := env.request(t, http.MethodPost, "/api/v2/users/change-password", body, cookies)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	stored, err := env.ds.GetUser(user.ID)
	require.NoError(t, err)
	assert.True(t, security.CheckPassword(stored.Password, "secret123"))
}
