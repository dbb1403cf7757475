package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowpen/pkg/cache"
	"github.com/matzehuels/flowpen/pkg/errors"
	"github.com/matzehuels/flowpen/pkg/graph"
	"github.com/matzehuels/flowpen/pkg/library"
	"github.com/matzehuels/flowpen/pkg/persist"
	"github.com/matzehuels/flowpen/pkg/storage"
)

const addSlider = `{"type": "addElement", "payload": {"type": "number-slider", "position": [0, 0], "template": {"guid": "slider", "name": "Number Slider"}}}`

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	cfg.Logger = log.New(io.Discard)
	ts := httptest.NewServer(New(cfg).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path, body string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func manifestBody(t *testing.T, id string) string {
	t.Helper()
	m := graph.New(id)
	m.Name = "test graph"
	data, err := graph.MarshalManifest(m)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func openGraph(t *testing.T, ts *httptest.Server, id string) {
	t.Helper()
	if code, body := do(t, ts, http.MethodPut, "/graphs/"+id, manifestBody(t, id)); code != http.StatusOK {
		t.Fatalf("PUT /graphs/%s = %d %s", id, code, body)
	}
}

func TestRestoreAndManifest(t *testing.T) {
	ts := newTestServer(t, Config{})
	openGraph(t, ts, "g1")

	code, body := do(t, ts, http.MethodGet, "/graphs/g1", "")
	if code != http.StatusOK {
		t.Fatalf("GET = %d %s", code, body)
	}
	m, err := graph.UnmarshalManifest(body)
	if err != nil {
		t.Fatal(err)
	}
	if m.ID != "g1" || m.Name != "test graph" {
		t.Errorf("manifest = %s/%s", m.ID, m.Name)
	}
}

func TestRestoreRejectsMismatchedID(t *testing.T) {
	ts := newTestServer(t, Config{})
	code, body := do(t, ts, http.MethodPut, "/graphs/g1", manifestBody(t, "other"))
	if code != http.StatusBadRequest {
		t.Fatalf("PUT = %d, want 400", code)
	}
	if got := decode[ErrorResponse](t, body); got.Code != errors.ErrCodeInvalidManifest {
		t.Errorf("code = %q", got.Code)
	}
}

func TestUnknownGraph(t *testing.T) {
	ts := newTestServer(t, Config{})
	for _, path := range []string{"/graphs/nope", "/graphs/nope/selection", "/graphs/nope/history"} {
		if code, _ := do(t, ts, http.MethodGet, path, ""); code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", path, code)
		}
	}
	if code, _ := do(t, ts, http.MethodDelete, "/graphs/nope", ""); code != http.StatusNotFound {
		t.Errorf("DELETE = %d, want 404", code)
	}
}

func TestActionsAndHistory(t *testing.T) {
	ts := newTestServer(t, Config{})
	openGraph(t, ts, "g1")

	code, body := do(t, ts, http.MethodPost, "/graphs/g1/actions", addSlider)
	if code != http.StatusOK {
		t.Fatalf("POST action = %d %s", code, body)
	}
	state := decode[StateResponse](t, body)
	if state.Elements != 1 || state.Latest == "" || !state.History.CanUndo {
		t.Fatalf("state = %+v", state)
	}

	selectBody := `{"type": "updateSelection", "payload": {"type": "id", "mode": "default", "ids": ["` + state.Latest + `"]}}`
	if code, body := do(t, ts, http.MethodPost, "/graphs/g1/actions", selectBody); code != http.StatusOK {
		t.Fatalf("select = %d %s", code, body)
	}
	_, body = do(t, ts, http.MethodGet, "/graphs/g1/selection", "")
	sel := decode[SelectionResponse](t, body)
	if len(sel.Selection) != 1 || sel.Selection[0] != state.Latest {
		t.Errorf("selection = %+v", sel)
	}

	_, body = do(t, ts, http.MethodPost, "/graphs/g1/undo", "")
	undone := decode[StateResponse](t, body)
	if !undone.Applied || !undone.History.CanRedo {
		t.Errorf("undo = %+v", undone)
	}

	_, body = do(t, ts, http.MethodPost, "/graphs/g1/redo", "")
	if redone := decode[StateResponse](t, body); !redone.Applied {
		t.Errorf("redo = %+v", redone)
	}
}

func TestActionErrors(t *testing.T) {
	ts := newTestServer(t, Config{})
	openGraph(t, ts, "g1")

	tests := []struct {
		name   string
		body   string
		status int
		code   errors.Code
	}{
		{"malformed", `{"type":`, http.StatusBadRequest, errors.ErrCodeInvalidAction},
		{"unknown kind", `{"type": "explode"}`, http.StatusBadRequest, errors.ErrCodeInvalidAction},
		{"missing element", `{"type": "updateElement", "payload": {"id": "ghost", "type": "panel", "data": {}}}`, http.StatusNotFound, errors.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, ts, http.MethodPost, "/graphs/g1/actions", tt.body)
			if code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", code, tt.status, body)
			}
			if got := decode[ErrorResponse](t, body); got.Code != tt.code {
				t.Errorf("code = %q, want %q", got.Code, tt.code)
			}
		})
	}

	_, body := do(t, ts, http.MethodGet, "/graphs/g1/history", "")
	if hist := decode[map[string]any](t, body); hist["canUndo"] != false {
		t.Errorf("failed actions must not record history: %s", body)
	}
}

func TestUndoWithNothingToUndo(t *testing.T) {
	ts := newTestServer(t, Config{})
	openGraph(t, ts, "g1")

	_, body := do(t, ts, http.MethodPost, "/graphs/g1/undo", "")
	if state := decode[StateResponse](t, body); state.Applied {
		t.Errorf("undo on fresh graph reported applied")
	}
}

func TestAutosaveRecovery(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	first := newTestServer(t, Config{Cache: fc, Autosave: true})
	openGraph(t, first, "g1")
	if code, body := do(t, first, http.MethodPost, "/graphs/g1/actions", addSlider); code != http.StatusOK {
		t.Fatalf("POST action = %d %s", code, body)
	}

	second := newTestServer(t, Config{Cache: fc, Autosave: true})
	code, body := do(t, second, http.MethodGet, "/graphs/g1", "")
	if code != http.StatusOK {
		t.Fatalf("GET after restart = %d %s", code, body)
	}
	m, err := graph.UnmarshalManifest(body)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Graph.Elements) != 1 {
		t.Errorf("recovered %d elements, want 1", len(m.Graph.Elements))
	}

	if code, _ := do(t, second, http.MethodDelete, "/graphs/g1", ""); code != http.StatusNoContent {
		t.Fatalf("DELETE = %d", code)
	}
	third := newTestServer(t, Config{Cache: fc})
	if code, _ := do(t, third, http.MethodGet, "/graphs/g1", ""); code != http.StatusNotFound {
		t.Errorf("deleted graph recovered with status %d", code)
	}
}

// countingCache records Set calls on top of another cache.
type countingCache struct {
	cache.Cache
	mu   sync.Mutex
	sets int
}

func (c *countingCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	c.sets++
	c.mu.Unlock()
	return c.Cache.Set(ctx, key, data, ttl)
}

func (c *countingCache) Sets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets
}

func TestRecoveryDoesNotRewriteAutosave(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	first := newTestServer(t, Config{Cache: fc, Autosave: true})
	openGraph(t, first, "g1")

	cc := &countingCache{Cache: fc}
	second := newTestServer(t, Config{Cache: cc, Autosave: true})
	if code, body := do(t, second, http.MethodGet, "/graphs/g1", ""); code != http.StatusOK {
		t.Fatalf("GET after restart = %d %s", code, body)
	}
	if n := cc.Sets(); n != 0 {
		t.Errorf("recovery wrote %d autosaves, want 0", n)
	}

	if code, body := do(t, second, http.MethodPost, "/graphs/g1/actions", addSlider); code != http.StatusOK {
		t.Fatalf("POST action = %d %s", code, body)
	}
	if n := cc.Sets(); n != 1 {
		t.Errorf("autosaves after action = %d, want 1", n)
	}
}

func TestSave(t *testing.T) {
	bucket, err := storage.NewFileBucket(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := persist.NewRunner(bucket, storage.NewMemoryRevisions(), log.New(io.Discard))
	ts := newTestServer(t, Config{Runner: runner})
	openGraph(t, ts, "g1")

	for want := 1; want <= 2; want++ {
		code, body := do(t, ts, http.MethodPost, "/graphs/g1/save", "")
		if code != http.StatusOK {
			t.Fatalf("save = %d %s", code, body)
		}
		res := decode[SaveResponse](t, body)
		if res.Revision != want || len(res.Files) != 3 {
			t.Errorf("save %d = %+v", want, res)
		}
	}

	// a fresh server finds the saved revision
	other := newTestServer(t, Config{Runner: runner})
	if code, body := do(t, other, http.MethodGet, "/graphs/g1", ""); code != http.StatusOK {
		t.Errorf("GET from saved revision = %d %s", code, body)
	}
}

func TestSaveWithoutRunner(t *testing.T) {
	ts := newTestServer(t, Config{})
	openGraph(t, ts, "g1")
	if code, _ := do(t, ts, http.MethodPost, "/graphs/g1/save", ""); code != http.StatusNotImplemented {
		t.Errorf("save = %d, want 501", code)
	}
}

func TestLibrary(t *testing.T) {
	lib := library.New([]library.Component{
		{GUID: "b", Name: "Multiplication"},
		{GUID: "a", Name: "Addition"},
	})
	ts := newTestServer(t, Config{Library: lib})

	code, body := do(t, ts, http.MethodGet, "/library", "")
	if code != http.StatusOK {
		t.Fatalf("GET /library = %d", code)
	}
	got := decode[[]library.Component](t, body)
	if len(got) != 2 {
		t.Fatalf("library = %s", body)
	}

	empty := newTestServer(t, Config{})
	_, body = do(t, empty, http.MethodGet, "/library", "")
	if !bytes.Equal(bytes.TrimSpace(body), []byte("[]")) {
		t.Errorf("empty library = %s", body)
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeNotFound, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeTypeMismatch, "x"), http.StatusUnprocessableEntity},
		{errors.New(errors.ErrCodeInvalidAction, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeNetwork, "x"), http.StatusBadGateway},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusOf(tt.err); got != tt.want {
			t.Errorf("statusOf(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
