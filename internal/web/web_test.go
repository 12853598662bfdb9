package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/exportify/internal/models"
	"github.com/desertthunder/exportify/internal/server"
	"github.com/desertthunder/exportify/internal/services"
	"github.com/desertthunder/exportify/internal/shared"
	"github.com/desertthunder/exportify/internal/tasks"
	tu "github.com/desertthunder/exportify/internal/testing"
)

type fixture struct {
	router   *server.BasicRouter
	handler  *Handler
	session  *tu.MockSession
	connects *atomic.Int32
	dir      string
}

func newFixture(t *testing.T, engine tasks.ExportEngine, connectErr error) *fixture {
	t.Helper()

	dir := t.TempDir()
	sess := tu.NewMockSession().
		AddGeneratedPlaylist("first", "First", 2).
		AddGeneratedPlaylist("second", "Second", 1)

	var connects atomic.Int32
	connect := func(ctx context.Context) (services.Session, error) {
		connects.Add(1)
		if connectErr != nil {
			return nil, connectErr
		}
		return sess, nil
	}

	if engine == nil {
		engine = tasks.NewPlaylistEngine(nil)
	}
	h, err := NewHandler(engine, connect, Options{OutputDir: dir, DefaultFormat: models.FormatMarkdown}, nil)
	if err != nil {
		t.Fatalf("failed to create handler: %v", err)
	}

	router := server.NewBasicRouter()
	router.Mount(h)
	return &fixture{router: router, handler: h, session: sess, connects: &connects, dir: dir}
}

func (f *fixture) postForm(t *testing.T, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/export", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) postJSON(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/export", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestIndex(t *testing.T) {
	f := newFixture(t, nil, nil)

	t.Run("Renders Form", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		for _, want := range []string{`name="playlist_url"`, `value="markdown" selected`, `value="json"`, f.dir} {
			if !strings.Contains(body, want) {
				t.Errorf("index missing %q", want)
			}
		}
	})

	t.Run("Unknown Path", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("Health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status": "ok"`) {
			t.Errorf("unexpected health response %d %s", rec.Code, rec.Body.String())
		}
	})
}

func TestExportForm(t *testing.T) {
	t.Run("Exports Every Line", func(t *testing.T) {
		f := newFixture(t, nil, nil)

		rec := f.postForm(t, url.Values{
			"playlist_url": {"https://open.spotify.com/playlist/first?si=x\nhttps://open.spotify.com/playlist/\nsecond"},
			"format":       {"txt"},
		})

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		body := rec.Body.String()
		if !strings.Contains(body, "SUCCESS: Playlist 'First' exported.") {
			t.Errorf("missing success line for First:\n%s", body)
		}
		if !strings.Contains(body, "FAILED: <code>https://open.spotify.com/playlist/</code> invalid playlist identifier</li>") {
			t.Errorf("failure line should name the input once:\n%s", body)
		}
		if !strings.Contains(body, "2 succeeded, 1 failed") {
			t.Errorf("missing summary:\n%s", body)
		}
		tu.AssertFileExists(t, filepath.Join(f.dir, "First.txt"))
		tu.AssertFileExists(t, filepath.Join(f.dir, "Second.txt"))
	})

	t.Run("Unsupported Format", func(t *testing.T) {
		f := newFixture(t, nil, nil)

		rec := f.postForm(t, url.Values{"playlist_url": {"first"}, "format": {"pdf"}})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if f.connects.Load() != 0 || f.session.Calls() != 0 {
			t.Errorf("expected no remote activity, got %d connects and %d calls", f.connects.Load(), f.session.Calls())
		}
		if !strings.Contains(rec.Body.String(), "unsupported export format") {
			t.Errorf("expected error message in page")
		}
	})

	t.Run("Empty Input", func(t *testing.T) {
		f := newFixture(t, nil, nil)

		rec := f.postForm(t, url.Values{"playlist_url": {"  \n "}, "format": {"csv"}})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("Auth Failure", func(t *testing.T) {
		f := newFixture(t, nil, shared.ErrAuthFailed)

		rec := f.postForm(t, url.Values{"playlist_url": {"first"}, "format": {"csv"}})
		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", rec.Code)
		}
	})

	t.Run("Session Is Reused", func(t *testing.T) {
		f := newFixture(t, nil, nil)

		f.postForm(t, url.Values{"playlist_url": {"first"}, "format": {"csv"}})
		f.postForm(t, url.Values{"playlist_url": {"second"}, "format": {"csv"}})
		if f.connects.Load() != 1 {
			t.Errorf("expected 1 connect, got %d", f.connects.Load())
		}
	})

	t.Run("Wrong Method", func(t *testing.T) {
		f := newFixture(t, nil, nil)

		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}

func TestExportAPI(t *testing.T) {
	t.Run("Returns Manifest", func(t *testing.T) {
		f := newFixture(t, nil, nil)

		rec := f.postJSON(t, `{"playlists": ["first", "", "missing"], "format": "JSON"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp exportResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if resp.Format != "json" || resp.Succeeded != 1 || resp.Failed != 1 {
			t.Errorf("unexpected response %+v", resp)
		}
		if len(resp.Exports) != 2 || resp.Exports[0].Path != filepath.Join(f.dir, "First.json") {
			t.Errorf("unexpected exports %+v", resp.Exports)
		}
		if !strings.Contains(resp.Exports[1].Error, "playlist not found") {
			t.Errorf("expected not found error, got %q", resp.Exports[1].Error)
		}
	})

	t.Run("Default Format", func(t *testing.T) {
		f := newFixture(t, nil, nil)

		rec := f.postJSON(t, `{"playlists": ["first"]}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		tu.AssertFileExists(t, filepath.Join(f.dir, "First.md"))
	})

	t.Run("Bad Body", func(t *testing.T) {
		f := newFixture(t, nil, nil)

		rec := f.postJSON(t, `{"playlists": `)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("Unsupported Format", func(t *testing.T) {
		f := newFixture(t, nil, nil)

		rec := f.postJSON(t, `{"playlists": ["first"], "format": "xml"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if f.session.Calls() != 0 {
			t.Errorf("expected no remote calls, got %d", f.session.Calls())
		}
	})

	t.Run("Concurrent Export Is Rejected", func(t *testing.T) {
		engine := &blockingEngine{started: make(chan struct{}), release: make(chan struct{})}
		f := newFixture(t, engine, nil)

		done := make(chan *httptest.ResponseRecorder, 1)
		go func() { done <- f.postJSON(t, `{"playlists": ["first"], "format": "csv"}`) }()

		select {
		case <-engine.started:
		case <-time.After(5 * time.Second):
			t.Fatal("first export did not start")
		}

		rec := f.postJSON(t, `{"playlists": ["second"], "format": "csv"}`)
		if rec.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d", rec.Code)
		}

		close(engine.release)
		if first := <-done; first.Code != http.StatusOK {
			t.Errorf("expected first export to succeed, got %d", first.Code)
		}
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{shared.ErrUnsupportedFormat, http.StatusBadRequest},
		{shared.ErrMissingArgument, http.StatusBadRequest},
		{shared.ErrBusy, http.StatusConflict},
		{shared.ErrAuthFailed, http.StatusBadGateway},
		{errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

// blockingEngine holds ExportMany open until release is closed.
type blockingEngine struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingEngine) ExportOne(ctx context.Context, sess services.Session, id string, opts tasks.ExportOpts) (*models.ExportResult, error) {
	return nil, errors.New("not used")
}

func (b *blockingEngine) ExportMany(ctx context.Context, progress chan<- tasks.ProgressUpdate, sess services.Session, inputs []string, opts tasks.ExportOpts) (*models.BatchReport, error) {
	close(b.started)
	<-b.release
	return &models.BatchReport{RunID: "run", Format: opts.Format}, nil
}
