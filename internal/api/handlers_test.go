package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"duck/internal/change"
	"duck/internal/errors"
	"duck/internal/history"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	hist *history.History
	err  error
}

func (s staticSource) Load() (*history.History, error) {
	return s.hist, s.err
}

func testHistory(t *testing.T) *history.History {
	h := history.New()
	require.NoError(t, h.Append("c1", history.NewEntry("first", nil, []string{"a.txt"}, map[string]*change.Record{
		"a.txt": change.Build(nil, []string{"one"}),
	})))
	require.NoError(t, h.Append("c2", history.NewEntry("second", []string{"a.txt"}, []string{"a.txt", "dir/b.txt"}, map[string]*change.Record{
		"a.txt":     change.Build([]string{"one"}, []string{"uno"}),
		"dir/b.txt": change.Build(nil, []string{"b"}),
	})))
	return h
}

func newTestServer(t *testing.T, source Source) *httptest.Server {
	mux := http.NewServeMux()
	NewHistoryHandler(source, nil).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestHistoryHandler_Head(t *testing.T) {
	srv := newTestServer(t, staticSource{hist: testHistory(t)})

	var body map[string]any
	status := getJSON(t, srv.URL+"/api/head", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "c2", body["head"])
	assert.Equal(t, float64(2), body["commits"])
	assert.Equal(t, "second", body["message"])
}

func TestHistoryHandler_HeadEmpty(t *testing.T) {
	srv := newTestServer(t, staticSource{hist: history.New()})

	var body map[string]any
	status := getJSON(t, srv.URL+"/api/head", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "", body["head"])
	assert.NotContains(t, body, "message")
}

func TestHistoryHandler_Log(t *testing.T) {
	srv := newTestServer(t, staticSource{hist: testHistory(t)})

	var log []CommitSummary
	status := getJSON(t, srv.URL+"/api/log", &log)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []CommitSummary{
		{ID: "c1", Message: "first", Files: 1, Changed: 1},
		{ID: "c2", Message: "second", Files: 2, Changed: 2},
	}, log)
}

func TestHistoryHandler_Commit(t *testing.T) {
	srv := newTestServer(t, staticSource{hist: testHistory(t)})

	tests := []struct {
		name       string
		ref        string
		wantStatus int
		wantMsg    string
	}{
		{"by id", "c1", http.StatusOK, "first"},
		{"head", "HEAD", http.StatusOK, "second"},
		{"unknown", "nope", http.StatusNotFound, ""},
		{"ambiguous prefix", "c", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]any
			status := getJSON(t, fmt.Sprintf("%s/api/commits/%s", srv.URL, tt.ref), &body)
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, body["message"])
				assert.Contains(t, body, "old_files")
				assert.Contains(t, body, "new_files")
				assert.Contains(t, body, "changes")
			} else {
				assert.NotEmpty(t, body["type"])
			}
		})
	}
}

func TestHistoryHandler_Change(t *testing.T) {
	srv := newTestServer(t, staticSource{hist: testHistory(t)})

	var rec change.Record
	status := getJSON(t, srv.URL+"/api/commits/c2/changes/dir/b.txt", &rec)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[int]string{0: "b"}, rec.Add)

	var errBody errors.Error
	status = getJSON(t, srv.URL+"/api/commits/c1/changes/dir/b.txt", &errBody)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, errors.ErrorTypeNotFound, errBody.Type)
}

func TestHistoryHandler_SourceError(t *testing.T) {
	srv := newTestServer(t, staticSource{err: fmt.Errorf("disk on fire")})

	var errBody errors.Error
	status := getJSON(t, srv.URL+"/api/head", &errBody)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, errors.ErrorTypeInternal, errBody.Type)
	assert.NotContains(t, errBody.Message, "disk on fire")
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duck.log.json")
	require.NoError(t, history.Save(path, testHistory(t)))

	srv := newTestServer(t, FileSource{Path: path})

	var body map[string]any
	status := getJSON(t, srv.URL+"/api/head", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "c2", body["head"])
}

func TestHistoryHandler_EmptyHistory(t *testing.T) {
	srv := newTestServer(t, staticSource{hist: history.New()})

	var log []CommitSummary
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/log", &log))
	assert.Empty(t, log)

	var errBody errors.Error
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/commits/HEAD", &errBody))
}
