package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cruxmailweb/access-management-tool/internal/auth"
	"github.com/cruxmailweb/access-management-tool/internal/config"
	"github.com/cruxmailweb/access-management-tool/internal/handlers"
	"github.com/cruxmailweb/access-management-tool/internal/models"
	"github.com/cruxmailweb/access-management-tool/internal/services"
	"github.com/cruxmailweb/access-management-tool/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testNow = time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type fakeDispatcher struct {
	calls      int
	recipients []string
	err        error
}

func (d *fakeDispatcher) Send(recipients []string, subject, html, text string) (services.DispatchResult, error) {
	d.calls++
	d.recipients = recipients
	if d.err != nil {
		return services.DispatchResult{Provider: "fake"}, d.err
	}
	return services.DispatchResult{Delivered: true, Provider: "fake"}, nil
}

type testEnv struct {
	router     *gin.Engine
	db         *gorm.DB
	dispatcher *fakeDispatcher
	tokens     *auth.TokenManager
}

// newTestEnv wires a router with the production route layout against an
// in-memory database.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	log := testutil.QuietLogger()
	tokens := auth.NewTokenManager(&config.Config{
		JWTSecret:       "test-secret",
		SessionDuration: time.Hour,
	})
	dispatcher := &fakeDispatcher{}
	reminders := services.NewReminderService(db, dispatcher, fixedClock{now: testNow}, log)
	h := handlers.New(db, log, tokens, reminders)

	router := gin.New()
	router.GET("/health", h.Health)
	router.POST("/auth/login", h.Login)

	protected := router.Group("")
	protected.Use(auth.RequireAuth(tokens))
	{
		protected.POST("/auth/logout", h.Logout)
		protected.GET("/auth/session", h.Session)
		protected.GET("/applications", h.ListApplications)
		protected.GET("/applications/:id", h.GetApplication)
		protected.GET("/reminders", h.GetReminder)
		protected.PUT("/users/:id", h.UpdateUser)
	}

	admin := router.Group("")
	admin.Use(auth.RequireAuth(tokens), auth.RequireAdmin())
	{
		admin.POST("/applications", h.CreateApplication)
		admin.PUT("/applications/:id", h.UpdateApplication)
		admin.DELETE("/applications/:id", h.DeleteApplication)
		admin.POST("/applications/:id/users", h.AddMember)
		admin.PUT("/applications/:id/users/:userId", h.UpdateMember)
		admin.DELETE("/applications/:id/users/:userId", h.RemoveMember)
		admin.POST("/applications/:id/users/import", h.ImportMembers)
		admin.GET("/users", h.ListUsers)
		admin.POST("/users", h.CreateUser)
		admin.DELETE("/users/:id", h.DeleteUser)
		admin.POST("/reminders", h.UpsertReminder)
		admin.PUT("/reminders", h.SendReminder)
	}

	return &testEnv{router: router, db: db, dispatcher: dispatcher, tokens: tokens}
}

// seedUser inserts a user directly. The hash is not a valid bcrypt digest;
// use seedLoginUser for tests that go through the login flow.
func (e *testEnv) seedUser(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()
	user := models.User{
		Username:       username,
		Email:          username + "@example.com",
		HashedPassword: "not-a-real-hash",
		Role:           role,
	}
	require.NoError(t, e.db.Create(&user).Error)
	return &user
}

func (e *testEnv) seedLoginUser(t *testing.T, username, password string, role models.Role) *models.User {
	t.Helper()
	hashed, err := auth.HashPassword(password)
	require.NoError(t, err)
	user := models.User{
		Username:       username,
		Email:          username + "@example.com",
		HashedPassword: hashed,
		Role:           role,
	}
	require.NoError(t, e.db.Create(&user).Error)
	return &user
}

func (e *testEnv) seedApplication(t *testing.T, name string) *models.Application {
	t.Helper()
	app := models.Application{Name: name}
	require.NoError(t, e.db.Create(&app).Error)
	return &app
}

func (e *testEnv) seedMembership(t *testing.T, appID, userID uint, isAdmin bool) {
	t.Helper()
	m := models.ApplicationUser{ApplicationID: appID, UserID: userID, IsAdmin: isAdmin}
	require.NoError(t, e.db.Create(&m).Error)
}

func (e *testEnv) sessionCookie(t *testing.T, user *models.User) *http.Cookie {
	t.Helper()
	token, err := e.tokens.CreateToken(user)
	require.NoError(t, err)
	return &http.Cookie{Name: auth.SessionCookieName, Value: token}
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
