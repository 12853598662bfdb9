package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type staticHandler struct{}

func (staticHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/a", Handler: text("a")},
		{Method: http.MethodPost, Path: "/a", Handler: text("posted a")},
		{Method: http.MethodGet, Path: "/b", Handler: text("b")},
	}
}

func text(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	})
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestBasicRouter(t *testing.T) {
	t.Run("Dispatches By Method", func(t *testing.T) {
		r := NewBasicRouter()
		r.Mount(staticHandler{})

		if rec := do(t, r, http.MethodGet, "/a"); rec.Body.String() != "a" {
			t.Errorf("GET /a = %q", rec.Body.String())
		}
		if rec := do(t, r, http.MethodPost, "/a"); rec.Body.String() != "posted a" {
			t.Errorf("POST /a = %q", rec.Body.String())
		}
		if rec := do(t, r, http.MethodGet, "/b"); rec.Body.String() != "b" {
			t.Errorf("GET /b = %q", rec.Body.String())
		}
	})

	t.Run("Method Not Allowed", func(t *testing.T) {
		r := NewBasicRouter()
		r.Mount(staticHandler{})

		rec := do(t, r, http.MethodDelete, "/a")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
		if allow := rec.Header().Get("Allow"); allow != "GET, POST" {
			t.Errorf("expected Allow 'GET, POST', got %q", allow)
		}
	})

	t.Run("Head Falls Back To Get", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handle("get", "/b", text("b"))

		if rec := do(t, r, http.MethodHead, "/b"); rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("Unknown Path", func(t *testing.T) {
		r := NewBasicRouter()
		r.Mount(staticHandler{})

		if rec := do(t, r, http.MethodGet, "/missing"); rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mw("first"), mw("second"))
		r.Handle(http.MethodGet, "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		do(t, r, http.MethodGet, "/")
		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected order %v", order)
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("Logging", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(&buf)

		h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
		do(t, h, http.MethodGet, "/brew")

		out := buf.String()
		if !strings.Contains(out, "path=/brew") || !strings.Contains(out, "status=418") {
			t.Errorf("unexpected log line: %s", out)
		}
	})

	t.Run("Recover", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(&buf)

		h := Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))
		rec := do(t, h, http.MethodGet, "/")

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if !strings.Contains(buf.String(), "boom") {
			t.Errorf("expected panic to be logged, got %s", buf.String())
		}
	})
}

func TestServeListener(t *testing.T) {
	ln, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	r := NewBasicRouter()
	r.Handle(http.MethodGet, "/healthz", text("ok"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ServeListener(ctx, ln, r, log.New(io.Discard)) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("expected ok, got %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestListenError(t *testing.T) {
	if _, err := Listen("256.0.0.1:-1"); err == nil {
		t.Error("expected error for invalid address")
	}
}
