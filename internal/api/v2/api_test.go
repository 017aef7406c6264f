package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noisewatch/noisewatch-go/internal/conf"
	"github.com/noisewatch/noisewatch-go/internal/datastore"
	"github.com/noisewatch/noisewatch-go/internal/ingest"
	"github.com/noisewatch/noisewatch-go/internal/security"
)

// testEnv wires a controller against an in-memory database so handler
// tests exercise the full routing, session and query stack.
type testEnv struct {
	echo       *echo.Echo
	ds         *datastore.DataStore
	controller *Controller
	settings   *conf.Settings
}

func setupTestEnvironment(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&datastore.User{}, &datastore.MonitoringPoint{},
		&datastore.NoiseReading{}, &datastore.Alert{}))
	ds := &datastore.DataStore{DB: db}

	settings := &conf.Settings{}
	settings.Security.SessionSecret = "test-secret"
	settings.Security.SessionMaxAge = 86400
	settings.Dashboard.DefaultLimit = 10
	settings.Dashboard.MaxLimit = 1000
	settings.Dashboard.RealtimeWindowMin = 60
	settings.Dashboard.StatsCacheTTL = 30

	e := echo.New()
	sessions := security.NewSessionManager(settings)
	ingestService := ingest.NewService(ds, nil)
	controller := New(e, ds, settings, ingestService, sessions, nil)

	return &testEnv{echo: e, ds: ds, controller: controller, settings: settings}
}

// request performs a routed request and returns the recorder.
func (env *testEnv) request(t *testing.T, method, target, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals a JSON response body.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// seedTestUser creates an account with the given credentials.
func seedTestUser(t *testing.T, env *testEnv, username, password, role string) datastore.User {
	t.Helper()

	hash, err := security.HashPassword(password)
	require.NoError(t, err)
	user := datastore.User{
		Username: username,
		Password: hash,
		Name:     username + " account",
		Role:     role,
	}
	require.NoError(t, env.ds.SaveUser(&user))
	return user
}

// login authenticates and returns the session cookies.
func login(t *testing.T, env *testEnv, username, password string) []*http.Cookie {
	t.Helper()

	rec := env.request(t, http.MethodPost, "/api/v2/auth/login",
		`{"username":"`+username+`","password":"`+password+`"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return rec.Result().Cookies()
}

// seedTestPoint creates a monitoring point directly in the store.
func seedTestPoint(t *testing.T, env *testEnv, name string, day, night float64) datastore.MonitoringPoint {
	t.Helper()

	point := datastore.MonitoringPoint{
		Name:           name,
		Location:       name + " district",
		Latitude:       30.66,
		Longitude:      104.06,
		Status:         datastore.PointStatusActive,
		ThresholdDay:   day,
		ThresholdNight: night,
	}
	require.NoError(t, env.ds.SavePoint(&point))
	return point
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()
	env := setupTestEnvironment(t)

	rec := env.request(t, http.MethodGet, "/api/v2/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, "healthy", body["status"])
	require.Equal(t, "connected", body["database_status"])
}

func TestUnknownRouteReturns404(t *testing.T) {
	t.Parallel()
	env := setupTestEnvironment(t)

	rec := env.request(t, http.MethodGet, "/api/v2/nope", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
