package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sanverite/wildlife-sightings/internal/loader"
	"github.com/sanverite/wildlife-sightings/internal/sighting"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var longNotes = strings.Repeat("n", 140)

var sampleDoc = `{
  "sightings": [
    {"species": "Bald Eagle", "habitat": "Forest", "date": "2024-03-01", "location": "Lake Shore", "verified": true, "notes": "Nesting pair near the boat launch"},
    {"species": "Moose", "habitat": "wetland", "date": "2024-05-10", "location": "North Marsh", "verified": false},
    {"species": "Red Fox", "habitat": "forest", "date": "2024-05-10", "location": "Trail 4", "verified": true, "notes": "` + longNotes + `"},
    {"species": "Moose", "habitat": "FOREST", "date": "2023-12-24", "location": "Ridge", "verified": true},
    {"species": "Black Bear", "habitat": "mountain", "date": "2024-06-02T08:30:00Z", "location": "Pass", "verified": false, "notes": "Short"}
  ]
}`

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func writeData(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sightings.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestServer(t *testing.T, source Source, opts ServerOptions) http.Handler {
	t.Helper()
	prev := TimeNow
	TimeNow = func() time.Time { return fixedNow }
	t.Cleanup(func() { TimeNow = prev })
	return NewServer(source, opts).Handler()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func sampleServer(t *testing.T) http.Handler {
	return newTestServer(t, loader.New(writeData(t, sampleDoc), nil), ServerOptions{})
}

func TestAllSightings(t *testing.T) {
	rec := get(t, sampleServer(t), RouteSightings)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	got := decode[[]map[string]any](t, rec)
	assert.Len(t, got, 5)
	assert.Equal(t, "2024-06-02T08:30:00Z", got[4]["date"])
	_, hasNotes := got[1]["notes"]
	assert.False(t, hasNotes)
}

func TestAllSightingsEmpty(t *testing.T) {
	h := newTestServer(t, loader.New(writeData(t, `{"sightings": []}`), nil), ServerOptions{})
	rec := get(t, h, RouteSightings)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestVerifiedIsSubsetOfAll(t *testing.T) {
	h := sampleServer(t)
	all := decode[[]sighting.Record](t, get(t, h, RouteSightings))
	verified := decode[[]sighting.Record](t, get(t, h, RouteVerified))

	var want []sighting.Record
	for _, r := range all {
		if r.Verified {
			want = append(want, r)
		}
	}
	if diff := cmp.Diff(want, verified); diff != "" {
		t.Errorf("verified mismatch (-want +got):\n%s", diff)
	}
}

func TestSpeciesList(t *testing.T) {
	rec := get(t, sampleServer(t), RouteSpeciesList)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["Bald Eagle","Moose","Red Fox","Black Bear"]`, rec.Body.String())
}

func TestForestHabitat(t *testing.T) {
	rec := get(t, sampleServer(t), RouteForest)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[sighting.HabitatView](t, rec)
	assert.Equal(t, "forest", got.Habitat)
	assert.Equal(t, 3, got.Count)
	assert.Len(t, got.Sightings, got.Count)
}

func TestEagleSearch(t *testing.T) {
	rec := get(t, sampleServer(t), RouteEagle)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[sighting.Record](t, rec)
	assert.Equal(t, "Bald Eagle", got.Species)

	h := newTestServer(t, loader.New(writeData(t, `{"sightings": [{"species": "Moose", "habitat": "forest", "date": "2024-01-01"}]}`), nil), ServerOptions{})
	rec = get(t, h, RouteEagle)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message": "No eagle sighting found"}`, rec.Body.String())
}

func TestMooseIndex(t *testing.T) {
	rec := get(t, sampleServer(t), RouteMoose)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[IndexResponse](t, rec)
	assert.Equal(t, 1, got.Index)
	assert.True(t, got.Found)
	require.NotNil(t, got.Sighting)
	assert.Equal(t, "North Marsh", got.Sighting.Location)

	h := newTestServer(t, loader.New(writeData(t, `{"sightings": [{"species": "moose", "habitat": "forest", "date": "2024-01-01"}]}`), nil), ServerOptions{})
	rec = get(t, h, RouteMoose)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"index": -1, "sighting": null, "found": false}`, rec.Body.String())
}

func TestRecent(t *testing.T) {
	rec := get(t, sampleServer(t), RouteRecent)
	require.Equal(t, http.StatusOK, rec.Code)

	want := `[
	  {"species": "Black Bear", "date": "2024-06-02T08:30:00Z", "location": "Pass", "verified": false, "notes": "Short..."},
	  {"species": "Moose", "date": "2024-05-10", "location": "North Marsh", "verified": false, "notes": ""},
	  {"species": "Red Fox", "date": "2024-05-10", "location": "Trail 4", "verified": true, "notes": "` + longNotes[:100] + `..."}
	]`
	assert.JSONEq(t, want, rec.Body.String())
}

func TestDataRouteFailures(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		message string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "none.json") }, "not found"},
		{"malformed json", func(t *testing.T) string { return writeData(t, `{"sightings": [`) }, "invalid JSON"},
		{"wrong shape", func(t *testing.T) string { return writeData(t, `{"birds": []}`) }, "sightings array not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, loader.New(tt.path(t), nil), ServerOptions{})
			for _, rt := range dataRoutes {
				rec := get(t, h, rt.path)
				require.Equal(t, http.StatusInternalServerError, rec.Code, rt.path)

				got := decode[APIError](t, rec)
				assert.Contains(t, got.Error, tt.message)
				assert.Equal(t, rt.path, got.Route)
				assert.Equal(t, "2026-03-04T05:06:07Z", got.Timestamp)
			}
		})
	}
}

func TestRouteErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := newTestServer(t, loader.New(filepath.Join(t.TempDir(), "none.json"), nil), ServerOptions{Logger: zap.New(core)})

	get(t, h, RouteVerified)
	entries := logs.FilterMessage("route failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, RouteVerified, entries[0].ContextMap()["route"])
	assert.Equal(t, string(loader.KindNotFound), entries[0].ContextMap()["kind"])
}

func TestNotFound(t *testing.T) {
	h := sampleServer(t)
	wantRoutes := []string{
		"GET /",
		"GET /api/sightings",
		"GET /api/sightings/verified",
		"GET /api/sightings/species-list",
		"GET /api/sightings/habitat/forest",
		"GET /api/sightings/search/eagle",
		"GET /api/sightings/find-index/moose",
		"GET /api/sightings/recent",
	}

	rec := get(t, h, "/api/sightings/habitat/desert?x=1")
	require.Equal(t, http.StatusNotFound, rec.Code)
	got := decode[NotFoundError](t, rec)
	assert.Equal(t, "Route not found", got.Error)
	assert.Equal(t, "The route /api/sightings/habitat/desert?x=1 does not exist on this server", got.Message)
	if diff := cmp.Diff(wantRoutes, got.AvailableRoutes); diff != "" {
		t.Errorf("availableRoutes mismatch (-want +got):\n%s", diff)
	}

	post := httptest.NewRecorder()
	h.ServeHTTP(post, httptest.NewRequest(http.MethodPost, RouteSightings, nil))
	assert.Equal(t, http.StatusNotFound, post.Code)

	// Static files are not served unless a directory is configured.
	assert.Equal(t, http.StatusNotFound, get(t, h, "/static/app.css").Code)
}

func TestAllSightingsKeepsRecordsAsStored(t *testing.T) {
	doc := `{"sightings": [
		{"species": "Moose", "habitat": "forest", "date": "2025-09-14", "location": "Ridge", "verified": true},
		{"species": "Heron", "habitat": "wetland", "date": "2025-09-14T10:00", "location": "Pond", "verified": false},
		{"species": "Lynx", "habitat": "forest", "date": "2025-09-14T10:00:00+0200", "location": "Pass", "verified": true},
		{"id": 7, "species": "Otter", "habitat": "river", "date": "late summer", "location": "Ford", "verified": true, "notes": ""}
	]}`
	h := newTestServer(t, loader.New(writeData(t, doc), nil), ServerOptions{})

	rec := get(t, h, RouteSightings)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[[]map[string]any](t, rec)
	require.Len(t, got, 4)
	assert.Equal(t, "2025-09-14T10:00", got[1]["date"])
	assert.Equal(t, map[string]any{
		"id": float64(7), "species": "Otter", "habitat": "river", "date": "late summer",
		"location": "Ford", "verified": true, "notes": "",
	}, got[3])

	rec = get(t, h, RouteRecent)
	require.Equal(t, http.StatusOK, rec.Code)
	recent := decode[[]map[string]any](t, rec)
	require.Len(t, recent, 3)
	// 10:00 UTC is newer than 10:00+02:00; the plain date is oldest.
	assert.Equal(t, "Heron", recent[0]["species"])
	assert.Equal(t, "Lynx", recent[1]["species"])
	assert.Equal(t, "Moose", recent[2]["species"])
}

func TestRecordDecodeFailureMessage(t *testing.T) {
	h := newTestServer(t, loader.New(writeData(t, `{"sightings": [{"species": "Lynx", "verified": "no"}]}`), nil), ServerOptions{})

	rec := get(t, h, RouteSightings)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	got := decode[APIError](t, rec)
	assert.Contains(t, got.Error, "invalid sighting record 0")
	assert.NotContains(t, got.Error, "array not found")
}

func TestPathVariants(t *testing.T) {
	h := sampleServer(t)

	for _, rt := range dataRoutes {
		plain := get(t, h, rt.path)
		slash := get(t, h, rt.path+"/")
		require.Equal(t, http.StatusOK, slash.Code, rt.path+"/")
		assert.JSONEq(t, plain.Body.String(), slash.Body.String())
	}

	for _, target := range []string{"/api//sightings", "/api/sightings/../sightings", "/api/./sightings"} {
		rec := get(t, h, target)
		require.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.Equal(t, "Route not found", decode[NotFoundError](t, rec).Error)
	}
}

func TestLandingPageAndHealth(t *testing.T) {
	h := sampleServer(t)

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Wildlife Sightings API")

	rec = get(t, h, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok", "timestamp": "2026-03-04T05:06:07Z"}`, rec.Body.String())
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.css"), []byte("body{}"), 0o644))
	h := newTestServer(t, loader.New(writeData(t, sampleDoc), nil), ServerOptions{StaticDir: dir})

	rec := get(t, h, "/static/app.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{}", rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/css"))

	rec = get(t, h, "/static/missing.css")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", decode[NotFoundError](t, rec).Error)
}

func TestRequestID(t *testing.T) {
	h := sampleServer(t)

	rec := get(t, h, "/healthz")
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

type panicSource struct{}

func (panicSource) Load(context.Context) ([]sighting.Record, error) {
	panic("data source exploded")
}

func TestPanicRecovery(t *testing.T) {
	tests := []struct {
		name        string
		development bool
		message     string
	}{
		{"production hides detail", false, "Something went wrong!"},
		{"development shows detail", true, "data source exploded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, panicSource{}, ServerOptions{Development: tt.development})
			rec := get(t, h, RouteSightings)
			require.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, InternalError{Error: "Internal Server Error", Message: tt.message}, decode[InternalError](t, rec))
		})
	}
}

func TestNewServerNilSource(t *testing.T) {
	assert.Panics(t, func() { NewServer(nil, ServerOptions{}) })
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(loader.New(writeData(t, sampleDoc), nil), ServerOptions{ShutdownTimeout: time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	transport := &http.Transport{DisableKeepAlives: true}
	defer transport.CloseIdleConnections()
	client := &http.Client{Transport: transport, Timeout: 5 * time.Second}

	resp, err := client.Get("http://" + ln.Addr().String() + RouteSpeciesList)
	require.NoError(t, err)
	var species []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&species))
	resp.Body.Close()
	assert.Equal(t, []string{"Bald Eagle", "Moose", "Red Fox", "Black Bear"}, species)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRunReportsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv := NewServer(loader.New(writeData(t, sampleDoc), nil), ServerOptions{Addr: ln.Addr().String()})
	err = srv.Run(context.Background())
	require.Error(t, err)
	var opErr *net.OpError
	assert.True(t, errors.As(err, &opErr))
}
