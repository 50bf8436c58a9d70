package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pyqvault/pyqvault/pkg/module"
)

func TestRouterDispatchesToModule(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /papers", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("papers"))
	})

	router := module.NewRouter()
	router.Mount(module.New("/api", mux))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/papers", nil))

	if recorder.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", recorder.Code)
	}
	if recorder.Body.String() != "papers" {
		t.Errorf("body = %q, want papers", recorder.Body.String())
	}
}

func TestRouterStripsPrefix(t *testing.T) {
	var seenPath string
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		seenPath = r.URL.Path
	})

	router := module.NewRouter()
	router.Mount(module.New("/api", mux))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/jobs/123", nil))
	if seenPath != "/jobs/123" {
		t.Errorf("inner path = %q, want /jobs/123", seenPath)
	}

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api", nil))
	if seenPath != "/" {
		t.Errorf("inner path = %q, want /", seenPath)
	}
}

func TestRouterFallsBackToNative(t *testing.T) {
	router := module.NewRouter()
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if recorder.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if recorder.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", recorder.Code)
	}
}

func TestModuleMiddlewareApplies(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	m := module.New("/api", mux)
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Test", "applied")
			next.ServeHTTP(w, r)
		})
	})

	router := module.NewRouter()
	router.Mount(m)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/ping", nil))

	if recorder.Header().Get("X-Test") != "applied" {
		t.Error("middleware header missing")
	}
}

func TestNewPanicsOnBadPrefix(t *testing.T) {
	for _, prefix := range []string{"", "api", "/api/v1"} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("New(%q) did not panic", prefix)
				}
			}()
			module.New(prefix, http.NewServeMux())
		}()
	}
}
