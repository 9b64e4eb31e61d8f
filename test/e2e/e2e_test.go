// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mergington-activities/internal/api"
	"mergington-activities/internal/catalog"
	"mergington-activities/internal/common/config"
	"mergington-activities/internal/common/database"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/registry"
	"mergington-activities/web"
)

var (
	server *httptest.Server
	reg    *registry.Registry
	zapLog *zap.Logger
)

var seededActivities = []string{
	"Basketball",
	"Tennis Club",
	"Art Studio",
	"Drama Club",
	"Debate Team",
	"Robotics Club",
	"Chess Club",
	"Programming Class",
	"Gym Class",
}

func TestMain(m *testing.M) {
	zapLog = zap.NewNop()
	log := logger.NewZapAdapter(zapLog)

	doc, err := catalog.EmbeddedSource{}.Load(context.Background())
	if err != nil {
		panic(fmt.Sprintf("Failed to load embedded catalog: %v", err))
	}

	reg, err = registry.New(doc.Entries(), registry.Options{}, log)
	if err != nil {
		panic(fmt.Sprintf("Failed to seed registry: %v", err))
	}

	static, err := web.StaticFS()
	if err != nil {
		panic(fmt.Sprintf("Failed to open static assets: %v", err))
	}

	server = httptest.NewServer(api.NewServer(&api.Config{MetricsEnabled: true}, api.Dependencies{
		Registry: reg,
		Static:   static,
		Logger:   log,
	}))

	code := m.Run()

	server.Close()
	os.Exit(code)
}

// ==========================
// Helpers
// ==========================

var client = &http.Client{
	CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
}

func call(t *testing.T, method, activity, action, email string) (int, map[string]interface{}) {
	t.Helper()
	target := fmt.Sprintf("%s/activities/%s/%s?email=%s", server.URL, url.PathEscape(activity), action, url.QueryEscape(email))
	req, err := http.NewRequest(method, target, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func signup(t *testing.T, activity, email string) (int, map[string]interface{}) {
	return call(t, http.MethodPost, activity, "signup", email)
}

func unregister(t *testing.T, activity, email string) (int, map[string]interface{}) {
	return call(t, http.MethodDelete, activity, "unregister", email)
}

type activityView struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

func listActivities(t *testing.T) map[string]activityView {
	t.Helper()
	resp, err := client.Get(server.URL + "/activities")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]activityView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func resetRegistry(t *testing.T) {
	t.Helper()
	reg.Reset()
}

// ==========================
// GET /activities
// ==========================

func TestGetActivities_ContainsSeededCatalog(t *testing.T) {
	resetRegistry(t)
	activities := listActivities(t)

	for _, name := range seededActivities {
		assert.Contains(t, activities, name)
	}
	for name, a := range activities {
		assert.NotEmpty(t, a.Description, name)
		assert.NotEmpty(t, a.Schedule, name)
		assert.Positive(t, a.MaxParticipants, name)
		assert.NotNil(t, a.Participants, name)
	}
}

func TestGetActivities_SeedRosters(t *testing.T) {
	resetRegistry(t)
	activities := listActivities(t)

	assert.Equal(t, []string{"michael@mergington.edu", "daniel@mergington.edu"}, activities["Chess Club"].Participants)
	assert.Equal(t, 12, activities["Chess Club"].MaxParticipants)
	assert.Empty(t, activities["Basketball"].Participants)
}

// ==========================
// POST /activities/{name}/signup
// ==========================

func TestSignup_AddsParticipant(t *testing.T) {
	resetRegistry(t)
	email := "test@mergington.edu"

	status, body := signup(t, "Basketball", email)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Signed up test@mergington.edu for Basketball", body["message"])

	assert.Contains(t, listActivities(t)["Basketball"].Participants, email)
}

func TestSignup_NonexistentActivity(t *testing.T) {
	resetRegistry(t)

	status, body := signup(t, "NonexistentActivity", "test@mergington.edu")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Activity not found", body["detail"])
}

func TestSignup_Duplicate(t *testing.T) {
	resetRegistry(t)
	email := "test@mergington.edu"

	status, _ := signup(t, "Basketball", email)
	require.Equal(t, http.StatusOK, status)

	status, body := signup(t, "Basketball", email)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Student is already signed up for this activity", body["detail"])

	count := 0
	for _, p := range listActivities(t)["Basketball"].Participants {
		if p == email {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestSignup_SeededParticipant(t *testing.T) {
	resetRegistry(t)

	status, body := signup(t, "Chess Club", "michael@mergington.edu")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["detail"], "already signed up")
}

// ==========================
// DELETE /activities/{name}/unregister
// ==========================

func TestUnregister_RemovesParticipant(t *testing.T) {
	resetRegistry(t)
	email := "test@mergington.edu"

	status, _ := signup(t, "Basketball", email)
	require.Equal(t, http.StatusOK, status)

	status, body := unregister(t, "Basketball", email)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Unregistered test@mergington.edu from Basketball", body["message"])

	assert.NotContains(t, listActivities(t)["Basketball"].Participants, email)
}

func TestUnregister_SeededParticipant(t *testing.T) {
	resetRegistry(t)

	status, _ := unregister(t, "Chess Club", "michael@mergington.edu")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"daniel@mergington.edu"}, listActivities(t)["Chess Club"].Participants)
}

func TestUnregister_NonexistentActivity(t *testing.T) {
	resetRegistry(t)

	status, body := unregister(t, "NonexistentActivity", "test@mergington.edu")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Activity not found", body["detail"])
}

func TestUnregister_NotSignedUp(t *testing.T) {
	resetRegistry(t)

	status, body := unregister(t, "Basketball", "nosignup@mergington.edu")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Student is not signed up for this activity", body["detail"])
}

// ==========================
// Root and static assets
// ==========================

func TestRoot_RedirectsToStatic(t *testing.T) {
	resp, err := client.Get(server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/static/index.html", resp.Header.Get("Location"))
}

func TestStaticIndex(t *testing.T) {
	resp, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Mergington High School")
}

// ==========================
// Redis seed source
// ==========================

func TestRedisSeededServer(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	rdb, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer rdb.Close()

	doc, err := catalog.Default()
	require.NoError(t, err)
	require.NoError(t, doc.Add(catalog.Activity{
		Name:            "Science Olympiad",
		Description:     "Compete in regional science events",
		Schedule:        "Mondays, 3:30 PM - 5:00 PM",
		MaxParticipants: 18,
	}))
	require.NoError(t, catalog.NewRedisSource(rdb, "activities:catalog").Put(ctx, doc))

	source, err := catalog.NewSource(config.SeedConfig{Source: config.SeedSourceRedis, RedisKey: "activities:catalog"}, rdb)
	require.NoError(t, err)
	loaded, err := source.Load(ctx)
	require.NoError(t, err)

	redisReg, err := registry.New(loaded.Entries(), registry.Options{}, logger.NewTestLogger(t))
	require.NoError(t, err)

	srv := httptest.NewServer(api.NewServer(&api.Config{}, api.Dependencies{Registry: redisReg, Logger: logger.NewTestLogger(t)}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/activities/Science%20Olympiad/signup?email=curie%40mergington.edu", nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	snapshot := redisReg.List()
	assert.Equal(t, len(seededActivities)+1, snapshot.Len())
	a, ok := snapshot.Get("Science Olympiad")
	require.True(t, ok)
	assert.Equal(t, []string{"curie@mergington.edu"}, a.Participants)
}
