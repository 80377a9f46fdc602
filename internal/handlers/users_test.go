package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cruxmailweb/access-management-tool/internal/auth"
	"github.com/cruxmailweb/access-management-tool/internal/models"
)

func TestListUsers_AdminOnly(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "admin", models.RoleAdmin)
	viewer := env.seedUser(t, "viewer", models.RoleReadOnly)

	w := env.request(t, http.MethodGet, "/users", nil, env.sessionCookie(t, viewer))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(t, http.MethodGet, "/users", nil, env.sessionCookie(t, admin))
	require.Equal(t, http.StatusOK, w.Code)

	var users []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	assert.Len(t, users, 2)
	for _, u := range users {
		assert.NotContains(t, u, "hashed_password", "password hashes must never leave the API")
	}
}

func TestCreateUser(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "admin", models.RoleAdmin)

	w := env.request(t, http.MethodPost, "/users", models.CreateUserRequest{
		Username: "carol",
		Email:    "carol@example.com",
		Password: "long-enough-pass",
		Role:     models.RoleAdmin,
	}, env.sessionCookie(t, admin))
	require.Equal(t, http.StatusCreated, w.Code)

	var user models.User
	require.NoError(t, env.db.Where("username = ?", "carol").First(&user).Error)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.True(t, auth.VerifyPassword("long-enough-pass", user.HashedPassword))
}

func TestCreateUser_DefaultsToReadonly(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "admin", models.RoleAdmin)

	w := env.request(t, http.MethodPost, "/users", models.CreateUserRequest{
		Username: "carol",
		Email:    "carol@example.com",
		Password: "long-enough-pass",
	}, env.sessionCookie(t, admin))
	require.Equal(t, http.StatusCreated, w.Code)

	var user models.User
	require.NoError(t, env.db.Where("username = ?", "carol").First(&user).Error)
	assert.Equal(t, models.RoleReadOnly, user.Role)
}

func TestCreateUser_DuplicateRejected(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "admin", models.RoleAdmin)
	env.seedUser(t, "carol", models.RoleReadOnly)

	w := env.request(t, http.MethodPost, "/users", models.CreateUserRequest{
		Username: "carol",
		Email:    "other@example.com",
		Password: "long-enough-pass",
	}, env.sessionCookie(t, admin))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateUser_ShortPasswordRejected(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "admin", models.RoleAdmin)

	w := env.request(t, http.MethodPost, "/users", models.CreateUserRequest{
		Username: "carol",
		Email:    "carol@example.com",
		Password: "short",
	}, env.sessionCookie(t, admin))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateUser_SelfUpdate(t *testing.T) {
	env := newTestEnv(t)
	viewer := env.seedUser(t, "viewer", models.RoleReadOnly)

	w := env.request(t, http.MethodPut, fmt.Sprintf("/users/%d", viewer.ID), models.UpdateUserRequest{
		Email: "new@example.com",
	}, env.sessionCookie(t, viewer))
	require.Equal(t, http.StatusOK, w.Code)

	var user models.User
	require.NoError(t, env.db.First(&user, viewer.ID).Error)
	assert.Equal(t, "new@example.com", user.Email)
}

func TestUpdateUser_ReadonlyCannotEscalateRole(t *testing.T) {
	env := newTestEnv(t)
	viewer := env.seedUser(t, "viewer", models.RoleReadOnly)

	w := env.request(t, http.MethodPut, fmt.Sprintf("/users/%d", viewer.ID), models.UpdateUserRequest{
		Role: models.RoleAdmin,
	}, env.sessionCookie(t, viewer))
	assert.Equal(t, http.StatusForbidden, w.Code)

	var user models.User
	require.NoError(t, env.db.First(&user, viewer.ID).Error)
	assert.Equal(t, models.RoleReadOnly, user.Role)
}

func TestUpdateUser_ReadonlyCannotUpdateOthers(t *testing.T) {
	env := newTestEnv(t)
	viewer := env.seedUser(t, "viewer", models.RoleReadOnly)
	other := env.seedUser(t, "other", models.RoleReadOnly)

	w := env.request(t, http.MethodPut, fmt.Sprintf("/users/%d", other.ID), models.UpdateUserRequest{
		Email: "hijacked@example.com",
	}, env.sessionCookie(t, viewer))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateUser_AdminChangesRole(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "admin", models.RoleAdmin)
	viewer := env.seedUser(t, "viewer", models.RoleReadOnly)

	w := env.request(t, http.MethodPut, fmt.Sprintf("/users/%d", viewer.ID), models.UpdateUserRequest{
		Role: models.RoleAdmin,
	}, env.sessionCookie(t, admin))
	require.Equal(t, http.StatusOK, w.Code)

	var user models.User
	require.NoError(t, env.db.First(&user, viewer.ID).Error)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "admin", models.RoleAdmin)
	bob := env.seedUser(t, "bob", models.RoleReadOnly)
	app := env.seedApplication(t, "Payroll")
	env.seedMembership(t, app.ID, bob.ID, false)

	w := env.request(t, http.MethodDelete, fmt.Sprintf("/users/%d", bob.ID), nil, env.sessionCookie(t, admin))
	require.Equal(t, http.StatusOK, w.Code)

	var users int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(1), users)

	var memberships int64
	require.NoError(t, env.db.Model(&models.ApplicationUser{}).Count(&memberships).Error)
	assert.Zero(t, memberships, "memberships must be removed with the user")
}

func TestDeleteUser_CannotDeleteSelf(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "admin", models.RoleAdmin)

	w := env.request(t, http.MethodDelete, fmt.Sprintf("/users/%d", admin.ID), nil, env.sessionCookie(t, admin))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteUser_NotFound(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "admin", models.RoleAdmin)

	w := env.request(t, http.MethodDelete, "/users/999", nil, env.sessionCookie(t, admin))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
