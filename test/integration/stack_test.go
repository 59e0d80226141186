package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/urlstate"
	"github.com/vango-dev/urlstate/pkg/middleware"
	"github.com/vango-dev/urlstate/pkg/snapshot"
	"github.com/vango-dev/urlstate/pkg/store"
	statesync "github.com/vango-dev/urlstate/pkg/sync"
	"github.com/vango-dev/urlstate/pkg/value"
)

// The full stack: a chi router carrying the state, metrics, and tracing
// middleware, a store behind a WebSocket hub, and a snapshot shortener for
// oversized links.
func newStack(t *testing.T) (*urlstate.Engine, *store.Store, *httptest.Server) {
	t.Helper()
	engine, err := urlstate.New()
	if err != nil {
		t.Fatalf("urlstate.New: %v", err)
	}
	st := store.New(engine)
	hub := statesync.NewHub(engine, st)
	shortener := snapshot.NewShortener(snapshot.NewMemoryStore(time.Hour), 64)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.Prometheus(middleware.WithRegistry(prometheus.NewRegistry())))
	r.Use(middleware.OpenTelemetry())
	r.Use(middleware.State(engine))

	r.Get("/search", func(w http.ResponseWriter, req *http.Request) {
		state := middleware.FromContext(req.Context())
		out, err := value.ToJSON(state)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(out)
	})

	r.Get("/share", func(w http.ResponseWriter, req *http.Request) {
		state := middleware.FromContext(req.Context())
		text, err := engine.Stringify(state)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		short, err := shortener.Shorten(req.Context(), text)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		io.WriteString(w, short)
	})

	r.Get("/restore/{token}", func(w http.ResponseWriter, req *http.Request) {
		text, err := shortener.Expand(req.Context(), chi.URLParam(req, "token"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if err := st.Restore(text); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Handle("/ws", hub.Handler())

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		hub.Close()
		st.Close()
	})
	return engine, st, srv
}

func TestStateFlowsThroughRouter(t *testing.T) {
	_, _, srv := newStack(t)

	resp, err := http.Get(srv.URL + "/search?q=running+shoes&page=2&tags=go&tags=web")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var got map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["q"] != "running shoes" {
		t.Errorf("q: got %v", got["q"])
	}
	if got["page"] != float64(2) {
		t.Errorf("page: got %v", got["page"])
	}
	tags, _ := got["tags"].([]any)
	if len(tags) != 2 || tags[0] != "go" {
		t.Errorf("tags: got %v", got["tags"])
	}
}

func TestShareAndRestore(t *testing.T) {
	_, st, srv := newStack(t)

	// Long state trips the shortener threshold.
	query := "q=a+very+long+search+phrase+about+running+shoes&page=42&sort=price&dir=asc&brand=acme"
	resp, err := http.Get(srv.URL + "/share?" + query)
	if err != nil {
		t.Fatalf("GET /share: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	token := string(body)
	if !snapshot.IsRef(token) {
		t.Fatalf("expected a reference token, got %q", token)
	}

	resp, err = http.Get(srv.URL + "/restore/" + token)
	if err != nil {
		t.Fatalf("GET /restore: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("restore status: got %d", resp.StatusCode)
	}

	page, _ := st.Get().Object().Get("page")
	if page.Number() != 42 {
		t.Errorf("page: got %v, want 42", page.Number())
	}
	q, _ := st.Get().Object().Get("q")
	if q.Str() != "a very long search phrase about running shoes" {
		t.Errorf("q: got %q", q.Str())
	}
}

func TestRestoreBroadcastsOverWebSocket(t *testing.T) {
	_, st, srv := newStack(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Initial state message.
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("read initial: %v", err)
	}

	o := value.NewObject()
	o.Set("page", value.Number(7))
	st.Set(value.ObjectValue(o))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	var msg statesync.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != "state" || msg.Text != "page:7" {
		t.Errorf("broadcast: got %+v", msg)
	}
}

func TestNamespacedLayoutOnRouter(t *testing.T) {
	engine, err := urlstate.New()
	if err != nil {
		t.Fatalf("urlstate.New: %v", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.State(engine, middleware.WithLayout(middleware.LayoutNamespaced)))
	var got value.Value
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		got = middleware.FromContext(req.Context())
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/?state=count%3A5%2Cnested.hello%3DWorld", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	count, _ := got.Object().Get("count")
	if count.Number() != 5 {
		t.Errorf("count: got %v", count)
	}
	nested, _ := got.Object().Get("nested")
	hello, _ := nested.Object().Get("hello")
	if hello.Str() != "World" {
		t.Errorf("hello: got %v", hello)
	}
}
