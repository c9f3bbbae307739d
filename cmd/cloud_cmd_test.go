package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rogersnm/calsync/internal/codec"
	"github.com/rogersnm/calsync/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeTablePath = "/appTEST/Calendar Events"

// fakeTable is a minimal in-memory table API for cmd-level tests.
type fakeTable struct {
	mu      sync.Mutex
	records []codec.RemoteRecord
	seq     int
	down    bool
	patches int
}

func (f *fakeTable) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if f.down {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]any{"error": "SERVICE_UNAVAILABLE"})
		return
	}
	if r.Header.Get("Authorization") != "Bearer patTEST" {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"type": "AUTHENTICATION_REQUIRED", "message": "Authentication required"},
		})
		return
	}

	rid := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, fakeTablePath), "/")
	switch {
	case r.Method == http.MethodGet && rid == "":
		f.handleList(w, r)
	case r.Method == http.MethodPost && rid == "":
		f.handleCreate(w, r)
	case r.Method == http.MethodPatch && rid != "":
		f.handleUpdate(w, r, rid)
	case r.Method == http.MethodDelete && rid != "":
		f.handleDelete(w, rid)
	default:
		f.notFound(w)
	}
}

func (f *fakeTable) handleList(w http.ResponseWriter, r *http.Request) {
	formula := r.URL.Query().Get("filterByFormula")
	if formula == "" {
		json.NewEncoder(w).Encode(map[string]any{"records": f.records})
		return
	}
	want := strings.TrimSuffix(strings.TrimPrefix(formula, "{ID}='"), "'")
	want = strings.ReplaceAll(want, `\'`, `'`)
	out := []codec.RemoteRecord{}
	for _, rec := range f.records {
		if rec.Fields.ID == want {
			out = append(out, rec)
			break
		}
	}
	json.NewEncoder(w).Encode(map[string]any{"records": out})
}

func (f *fakeTable) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Records []struct {
			Fields codec.RemoteFields `json:"fields"`
		} `json:"records"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Records) > 10 {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{"error": "INVALID_REQUEST_BODY"})
		return
	}
	out := []codec.RemoteRecord{}
	for _, rec := range body.Records {
		f.seq++
		stored := codec.RemoteRecord{ID: fmt.Sprintf("rec%04d", f.seq), CreatedTime: "2026-01-01T00:00:00.000Z", Fields: rec.Fields}
		f.records = append(f.records, stored)
		out = append(out, stored)
	}
	json.NewEncoder(w).Encode(map[string]any{"records": out})
}

func (f *fakeTable) handleUpdate(w http.ResponseWriter, r *http.Request, rid string) {
	for i, rec := range f.records {
		if rec.ID == rid {
			f.patches++
			// PATCH leaves fields missing from the body untouched.
			body := struct {
				Fields *codec.RemoteFields `json:"fields"`
			}{Fields: &f.records[i].Fields}
			json.NewDecoder(r.Body).Decode(&body)
			json.NewEncoder(w).Encode(f.records[i])
			return
		}
	}
	f.notFound(w)
}

func (f *fakeTable) handleDelete(w http.ResponseWriter, rid string) {
	for i, rec := range f.records {
		if rec.ID == rid {
			f.records = append(f.records[:i], f.records[i+1:]...)
			json.NewEncoder(w).Encode(map[string]any{"id": rid, "deleted": true})
			return
		}
	}
	f.notFound(w)
}

func (f *fakeTable) notFound(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]any{"error": "NOT_FOUND"})
}

func (f *fakeTable) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func (f *fakeTable) titles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, rec := range f.records {
		out = append(out, rec.Fields.Title)
	}
	return out
}

func (f *fakeTable) descriptions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, rec := range f.records {
		out = append(out, rec.Fields.Description)
	}
	return out
}

func (f *fakeTable) put(e model.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	rec := codec.ToRemote(e)
	rec.ID = fmt.Sprintf("rec%04d", f.seq)
	f.records = append(f.records, rec)
}

// setupCloud points the CLI at a fake table through the environment.
func setupCloud(t *testing.T) (string, *fakeTable) {
	t.Helper()
	dir := setupEnv(t)
	api := &fakeTable{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	t.Setenv("CALSYNC_REMOTE_BASE_ID", "appTEST")
	t.Setenv("CALSYNC_REMOTE_API_KEY", "patTEST")
	t.Setenv("CALSYNC_REMOTE_API_URL", srv.URL)
	return dir, api
}

func TestCloud_CreateReachesRemoteAndCache(t *testing.T) {
	dir, api := setupCloud(t)

	_, err := run(t, "event", "create", "Spring sale", "--start", "2026-03-15T09:00:00Z", "--type", "promotion")
	require.NoError(t, err)
	assert.Equal(t, []string{"Spring sale"}, api.titles())

	cached := testCache(dir).Load(context.Background())
	require.Len(t, cached, 1)
	assert.Equal(t, "rec0001", cached[0].RemoteID)
}

func TestCloud_ListWritesThroughToCache(t *testing.T) {
	dir, api := setupCloud(t)
	api.put(sampleEvent("a", "From the table", model.TypeOrder, t0))
	seed(t, dir, sampleEvent("stale", "Stale local", model.TypeOrder, t0))

	out, err := run(t, "event", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "From the table")
	assert.NotContains(t, out, "Stale local")

	cached := testCache(dir).Load(context.Background())
	require.Len(t, cached, 1)
	assert.Equal(t, "a", cached[0].ID)
	assert.Equal(t, "rec0001", cached[0].RemoteID)
}

func TestCloud_OfflineCreateThenSync(t *testing.T) {
	dir, api := setupCloud(t)
	api.put(sampleEvent("a", "Already there", model.TypeOrder, t0))
	seed(t, dir, sampleEvent("a", "Already there", model.TypeOrder, t0))

	api.setDown(true)
	_, errOut, err := runWithInput(t, "", "event", "create", "Made offline", "--start", "2026-04-01")
	require.NoError(t, err)
	assert.Contains(t, errOut, "create.fallback")

	out, err := run(t, "event", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Made offline")

	_, err = run(t, "sync")
	assert.ErrorContains(t, err, "sync failed")

	api.setDown(false)
	out, err = run(t, "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "Synced 2 event(s)")
	assert.ElementsMatch(t, []string{"Already there", "Made offline"}, api.titles())

	// Both cached events now carry their remote record ids.
	assert.Zero(t, countUnsynced(testCache(dir).Load(context.Background())))

	out, err = run(t, "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "Synced 0 event(s); 2 already on the remote")
	assert.Len(t, api.titles(), 2)
}

func TestCloud_UpdateAndDelete(t *testing.T) {
	dir, api := setupCloud(t)
	api.put(sampleEvent("a", "Launch", model.TypeMarketing, t0))
	api.put(sampleEvent("b", "Reorder", model.TypeOrder, t0))

	_, err := run(t, "event", "update", "a", "--status", "active")
	require.NoError(t, err)
	assert.Equal(t, 1, api.patches)

	_, err = run(t, "event", "delete", "b", "--force")
	require.NoError(t, err)
	assert.Equal(t, []string{"Launch"}, api.titles())

	cached := testCache(dir).Load(context.Background())
	require.Len(t, cached, 1)
	assert.Equal(t, model.StatusActive, cached[0].Status)
}

func TestCloud_UpdateClearsDescription(t *testing.T) {
	dir, api := setupCloud(t)
	e := sampleEvent("a", "Launch", model.TypeMarketing, t0)
	e.Description = "Bring the banners"
	api.put(e)

	_, err := run(t, "event", "update", "a", "--description", "")
	require.NoError(t, err)
	assert.Equal(t, []string{""}, api.descriptions())

	cached := testCache(dir).Load(context.Background())
	require.Len(t, cached, 1)
	assert.Empty(t, cached[0].Description)
}

func TestCloud_ImportSkipsIDsAlreadyOnRemote(t *testing.T) {
	_, api := setupCloud(t)
	api.put(sampleEvent("a", "Launch", model.TypeMarketing, t0))

	file := filepath.Join(t.TempDir(), "launch.md")
	content := "---\nid: a\ntitle: Launch again\nstart: 2026-05-01T10:00:00Z\nend: 2026-05-01T12:00:00Z\ntype: marketing\nstatus: active\n---\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))

	out, err := run(t, "event", "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Skipped event a: already exists")
	assert.Equal(t, []string{"Launch"}, api.titles())
}

func TestCloud_RemoteOnlySurfacesOutage(t *testing.T) {
	dir, api := setupCloud(t)
	t.Setenv("CALSYNC_MODE", "remote-only")
	seed(t, dir, sampleEvent("a", "Cached", model.TypeOrder, t0))

	api.setDown(true)
	_, err := run(t, "event", "list")
	assert.Error(t, err)

	api.setDown(false)
	_, err = run(t, "event", "create", "Direct", "--start", "2026-04-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"Direct"}, api.titles())

	// The cache is left alone in remote-only mode.
	cached := testCache(dir).Load(context.Background())
	require.Len(t, cached, 1)
	assert.Equal(t, "Cached", cached[0].Title)
}

func TestCloud_BadCredentialsAreNotMaskedByCache(t *testing.T) {
	dir, _ := setupCloud(t)
	t.Setenv("CALSYNC_REMOTE_API_KEY", "patWRONG")
	seed(t, dir, sampleEvent("a", "Cached", model.TypeOrder, t0))

	_, err := run(t, "event", "list")
	assert.ErrorContains(t, err, "Authentication required")
}

func TestCloud_ConfigStatus(t *testing.T) {
	_, api := setupCloud(t)
	_ = api

	out, err := run(t, "config", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Mode: hybrid")
	assert.Contains(t, out, "/appTEST/Calendar Events")
}
