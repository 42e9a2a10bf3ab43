package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	dto "github.com/prometheus/client_model/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/dentclinic/internal/i18n"
	"github.com/terraincognita07/dentclinic/internal/metrics"
	"github.com/terraincognita07/dentclinic/internal/services"
	"github.com/terraincognita07/dentclinic/internal/session"
	"github.com/terraincognita07/dentclinic/internal/store"
)

var fixedNow = time.Date(2026, time.March, 9, 15, 4, 5, 0, time.UTC)

type testApp struct {
	app     *fiber.App
	handler *Handler
	kv      *store.MemoryKV
	metrics *metrics.Collector
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	kv := store.NewMemoryKV()
	return newTestAppWith(t, kv, store.NewLocal(kv, quietLogger()))
}

func newTestAppWith(t *testing.T, kv *store.MemoryKV, persistence store.Persistence) *testApp {
	t.Helper()

	logger := quietLogger()
	i18nManager, err := i18n.NewEmbeddedManager(i18n.LangPT)
	require.NoError(t, err)

	collector := metrics.NewCollector()
	handler, err := NewHandler(Dependencies{
		Authenticator: session.NewLocalAuthenticator(kv, logger),
		Tokens:        session.NewTokens([]byte("test-secret-key-with-at-least-32-bytes!"), time.Hour),
		Patients:      services.NewPatientService(persistence),
		Appointments:  services.NewAppointmentService(persistence),
		Financial:     services.NewFinancialService(persistence),
		Notifications: services.NewNotificationService(persistence, time.UTC, logger),
		I18n:          i18nManager,
		Metrics:       collector,
		Location:      time.UTC,
		Logger:        logger,
	})
	require.NoError(t, err)
	handler.now = func() time.Time { return fixedNow }

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(collector.Middleware())
	RegisterRoutes(app, handler)
	return &testApp{app: app, handler: handler, kv: kv, metrics: collector}
}

type requestOption func(*http.Request)

func withCookie(cookie *http.Cookie) requestOption {
	return func(request *http.Request) {
		if cookie != nil {
			request.AddCookie(cookie)
		}
	}
}

func withLanguage(language string) requestOption {
	return func(request *http.Request) {
		request.Header.Set("Accept-Language", language)
	}
}

func (test *testApp) do(t *testing.T, method string, path string, body any, options ...requestOption) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	for _, option := range options {
		option(request)
	}

	response, err := test.app.Test(request, -1)
	require.NoError(t, err)
	t.Cleanup(func() { response.Body.Close() })
	return response
}

// login signs in a dev user and returns the session cookie.
func (test *testApp) login(t *testing.T, email string, password string) *http.Cookie {
	t.Helper()

	response := test.do(t, http.MethodPost, "/api/auth/login", credentialsInput{Email: email, Password: password})
	require.Equal(t, http.StatusOK, response.StatusCode)

	cookie := responseCookie(response.Cookies(), authCookieName)
	require.NotNil(t, cookie, "expected session cookie")
	return cookie
}

func (test *testApp) loginAdmin(t *testing.T) *http.Cookie {
	return test.login(t, "admin@dentclinic.com", "admin123")
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func decodeBody[T any](t *testing.T, response *http.Response) T {
	t.Helper()

	var payload T
	raw, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &payload), "body: %s", raw)
	return payload
}

// counterValue sums a counter family, restricted to series carrying label when it is set.
func counterValue(t *testing.T, collector *metrics.Collector, name string, label string) float64 {
	t.Helper()

	families, err := collector.Registry().Gather()
	require.NoError(t, err)

	total := 0.0
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if label != "" && !hasLabelValue(metric.GetLabel(), label) {
				continue
			}
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}

func hasLabelValue(labels []*dto.LabelPair, value string) bool {
	for _, pair := range labels {
		if pair.GetValue() == value {
			return true
		}
	}
	return false
}

func readAPIError(t *testing.T, response *http.Response) string {
	t.Helper()
	return decodeBody[map[string]string](t, response)["error"]
}

// unreachableStore fails every call the way an unreachable remote store does.
type unreachableStore struct{}

func (unreachableStore) fail(op string, collection store.Collection) error {
	return &store.BackendError{Op: op, Collection: collection, Err: errors.New("connection refused")}
}

func (s unreachableStore) List(_ context.Context, collection store.Collection, _ store.Query, _ any) error {
	return s.fail("list", collection)
}

func (s unreachableStore) Insert(_ context.Context, collection store.Collection, _ any) error {
	return s.fail("insert", collection)
}

func (s unreachableStore) Update(_ context.Context, collection store.Collection, _ string, _ map[string]any) error {
	return s.fail("update", collection)
}

func (s unreachableStore) Remove(_ context.Context, collection store.Collection, _ string) error {
	return s.fail("remove", collection)
}
