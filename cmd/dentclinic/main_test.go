package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/dentclinic/internal/config"
	"github.com/terraincognita07/dentclinic/internal/db"
	"github.com/terraincognita07/dentclinic/internal/models"
)

func testConfig(t *testing.T, devMode bool) config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Config{
		DevMode:          devMode,
		Port:             "8080",
		SecretKey:        "0123456789abcdef0123456789abcdef",
		DatabaseURL:      filepath.Join(dir, "remote.db"),
		LocalDBPath:      filepath.Join(dir, "local.db"),
		Timezone:         "America/Sao_Paulo",
		ReminderSchedule: "0 18 * * *",
		LogLevel:         "error",
		DefaultLanguage:  "pt",
		SessionTTL:       time.Hour,
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func startTestServer(t *testing.T, cfg config.Config) *server {
	t.Helper()

	srv, err := newServer(cfg, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.backend.close() })
	return srv
}

func login(t *testing.T, srv *server, email string, password string) *http.Response {
	t.Helper()

	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)
	request := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	request.Header.Set("Content-Type", "application/json")

	response, err := srv.app.Test(request, -1)
	require.NoError(t, err)
	t.Cleanup(func() { response.Body.Close() })
	return response
}

func TestDevModeServerSignsInDevUsersAndSeedsNotifications(t *testing.T) {
	srv := startTestServer(t, testConfig(t, true))

	response := login(t, srv, "admin@dentclinic.com", "admin123")
	require.Equal(t, http.StatusOK, response.StatusCode)

	var session *http.Cookie
	for _, cookie := range response.Cookies() {
		if cookie.Name == "dentclinic_session" {
			session = cookie
		}
	}
	require.NotNil(t, session)

	request := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	request.AddCookie(session)
	notifications, err := srv.app.Test(request, -1)
	require.NoError(t, err)
	defer notifications.Body.Close()
	require.Equal(t, http.StatusOK, notifications.StatusCode)

	var payload struct {
		Notifications []models.Notification `json:"notifications"`
		UnreadCount   int                   `json:"unread_count"`
	}
	require.NoError(t, json.NewDecoder(notifications.Body).Decode(&payload))
	assert.Len(t, payload.Notifications, 4)
	assert.Equal(t, 2, payload.UnreadCount)
}

func TestDevModeDataSurvivesRestart(t *testing.T) {
	cfg := testConfig(t, true)

	first, err := newServer(cfg, quietLogger())
	require.NoError(t, err)
	require.NoError(t, first.backend.close())

	// A second start must not seed the demo notifications again.
	second := startTestServer(t, cfg)
	response := login(t, second, "user@dentclinic.com", "user123")
	require.Equal(t, http.StatusOK, response.StatusCode)

	var count int64
	require.NoError(t, second.backend.database.Table("kv_entries").Count(&count).Error)
	assert.Equal(t, int64(2), count, "notifications plus the signed-in dev identity")
}

func TestRemoteServerUsesProvisionedIdentity(t *testing.T) {
	cfg := testConfig(t, false)
	srv := startTestServer(t, cfg)

	response := login(t, srv, "admin@dentclinic.com", "admin123")
	require.Equal(t, http.StatusUnauthorized, response.StatusCode, "dev users must not exist remotely")

	out := &bytes.Buffer{}
	repos := db.NewRepositories(srv.backend.database)
	flags := operatorFlags{email: "gerente@dentclinic.com", role: "admin"}
	require.NoError(t, execOperatorCommand(context.Background(), "create-user", repos, flags, "Clinica2026", out))
	assert.Contains(t, out.String(), "gerente@dentclinic.com")

	response = login(t, srv, "gerente@dentclinic.com", "Clinica2026")
	require.Equal(t, http.StatusOK, response.StatusCode)

	var view struct {
		User models.Identity `json:"user"`
	}
	require.NoError(t, json.NewDecoder(response.Body).Decode(&view))
	assert.Equal(t, "admin", view.User.Role)
}

func TestRunHelpAndUnknownCommand(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, run([]string{"help"}, out))
	assert.Contains(t, out.String(), "create-user")

	err := run([]string{"migrate"}, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "migrate"`)
}

func TestParseOperatorFlags(t *testing.T) {
	parsed, err := parseOperatorFlags("create-user", []string{"-email", "a@dentclinic.com", "-role", "admin", "-prompt-password"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, operatorFlags{email: "a@dentclinic.com", role: "admin", promptPassword: true}, parsed)

	_, err = parseOperatorFlags("create-user", nil, io.Discard)
	assert.EqualError(t, err, "-email is required")

	_, err = parseOperatorFlags("set-role", []string{"-email", "a@dentclinic.com"}, io.Discard)
	assert.EqualError(t, err, "-role is required")

	_, err = parseOperatorFlags("create-user", []string{"-email", "a@dentclinic.com", "extra"}, io.Discard)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unexpected arguments"))
}
