package live

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/zvue/pkg/compile"
	"github.com/vango-dev/zvue/pkg/instrument"
	"github.com/vango-dev/zvue/pkg/reactive"
)

type testEnv struct {
	vm     *reactive.VM
	server *Server
	http   *httptest.Server
}

func newTestEnv(t *testing.T, src string, data map[string]any, opts ...reactive.Option) *testEnv {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := instrument.NewMetrics(instrument.WithRegistry(reg))

	vm := reactive.New(data, append(opts, reactive.WithHooks(m))...)
	view, err := compile.New(strings.NewReader(src), vm)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	srv := New(view, WithMetrics(m), WithGatherer(reg), WithTitle("test page"))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{vm: vm, server: srv, http: ts}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(method, e.http.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(data)
}

func (e *testEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	hello := readMessage(t, conn)
	if hello.Type != MessageHello || hello.Client == "" {
		t.Fatalf("expected hello with client id, got %+v", hello)
	}
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read message: %v", err)
	}
	return msg
}

func TestPage(t *testing.T) {
	env := newTestEnv(t, `<p>{{msg}}</p>`, map[string]any{"msg": "hi"})

	status, body := env.do(t, http.MethodGet, "/", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	for _, want := range []string{"<title>test page</title>", "<p><!--z:1-->hi<!--/z--></p>", "<script>"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q:\n%s", want, body)
		}
	}
}

func TestPutBroadcastsPatch(t *testing.T) {
	env := newTestEnv(t, `<p>{{msg}}</p>`, map[string]any{"msg": "hi"})
	conn := env.dial(t)

	status, _ := env.do(t, http.MethodPut, "/data/msg", `"bye"`)
	if status != http.StatusNoContent {
		t.Fatalf("PUT status = %d, want 204", status)
	}

	msg := readMessage(t, conn)
	if msg.Type != MessagePatch || msg.Patch == nil {
		t.Fatalf("expected patch message, got %+v", msg)
	}
	want := compile.Patch{ID: 1, Kind: "text", Key: "msg", Value: "bye"}
	if *msg.Patch != want {
		t.Errorf("patch = %+v, want %+v", *msg.Patch, want)
	}

	_, body := env.do(t, http.MethodGet, "/", "")
	if !strings.Contains(body, "<!--z:1-->bye<!--/z-->") {
		t.Errorf("page not updated:\n%s", body)
	}
}

func TestDataAPI(t *testing.T) {
	env := newTestEnv(t, `<p>{{count}}</p>`, map[string]any{"count": 1, "user": map[string]any{"name": "a"}})

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"snapshot", http.MethodGet, "/data", "", http.StatusOK, `{"count":1,"user":{"name":"a"}}`},
		{"one value", http.MethodGet, "/data/count", "", http.StatusOK, `1`},
		{"nested value", http.MethodGet, "/data/user", "", http.StatusOK, `{"name":"a"}`},
		{"missing value", http.MethodGet, "/data/nope", "", http.StatusNotFound, ""},
		{"bad json", http.MethodPut, "/data/count", `{`, http.StatusBadRequest, ""},
		{"write", http.MethodPut, "/data/count", `2`, http.StatusNoContent, ""},
		{"read back", http.MethodGet, "/data/count", "", http.StatusOK, `2`},
		{"plain key in lenient mode", http.MethodPut, "/data/extra", `true`, http.StatusNoContent, ""},
		{"healthz", http.MethodGet, "/healthz", "", http.StatusOK, "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, tt.method, tt.path, tt.body)
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", status, tt.wantStatus, body)
			}
			if tt.wantBody != "" && body != tt.wantBody {
				t.Errorf("body = %s, want %s", body, tt.wantBody)
			}
		})
	}
}

func TestStrictPutUnknownKey(t *testing.T) {
	env := newTestEnv(t, `<p>{{msg}}</p>`, map[string]any{"msg": "hi"}, reactive.WithStrict(true))

	status, body := env.do(t, http.MethodPut, "/data/nope", `1`)
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404 (body %s)", status, body)
	}
}

func TestPutIsolatedFailure(t *testing.T) {
	env := newTestEnv(t, `<p>{{msg}}</p>`, map[string]any{"msg": "hi"}, reactive.WithIsolation(true))
	if _, err := env.vm.Watch("msg", func(reactive.Target, any) { panic("boom") }); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	status, _ := env.do(t, http.MethodPut, "/data/msg", `"bye"`)
	if status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", status)
	}
	if got := env.vm.Get("msg"); got != "bye" {
		t.Errorf("write should still apply, got %v", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, `<p>{{msg}}</p>`, map[string]any{"msg": "hi"})
	env.dial(t)

	env.do(t, http.MethodPut, "/data/msg", `"bye"`)

	status, body := env.do(t, http.MethodGet, "/metrics", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	for _, want := range []string{
		"zvue_patches_sent_total 1",
		"zvue_live_clients 1",
		`zvue_writes_total{key="msg",result="changed"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestHubDropsClosedClients(t *testing.T) {
	env := newTestEnv(t, `<p>{{msg}}</p>`, map[string]any{"msg": "hi"})
	conn := env.dial(t)

	if n := env.server.Hub().ClientCount(); n != 1 {
		t.Fatalf("ClientCount = %d, want 1", n)
	}
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for env.server.Hub().ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client was not removed after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestServerSet(t *testing.T) {
	env := newTestEnv(t, `<span z-text="n"></span>`, map[string]any{"n": 1})
	conn := env.dial(t)

	if err := env.server.Set("n", 2); err != nil {
		t.Fatalf("Set: %v", err)
	}
	msg := readMessage(t, conn)
	if msg.Patch == nil || msg.Patch.Value != "2" || msg.Patch.Kind != "text" {
		t.Errorf("patch = %+v", msg.Patch)
	}
}

func TestApply(t *testing.T) {
	env := newTestEnv(t, `<p>{{a}}</p><p>{{b}}</p>`, map[string]any{"a": 1, "b": "x", "user": map[string]any{"name": "n"}})
	conn := env.dial(t)

	written, err := env.server.Apply(map[string]any{
		"a":    1,
		"b":    "y",
		"user": map[string]any{"name": "n"},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(written) != 1 || written[0] != "b" {
		t.Errorf("written = %v, want [b]", written)
	}

	msg := readMessage(t, conn)
	if msg.Patch == nil || msg.Patch.Key != "b" || msg.Patch.Value != "y" {
		t.Errorf("patch = %+v", msg.Patch)
	}
}

func TestApplyStrictUnknownKey(t *testing.T) {
	env := newTestEnv(t, `<p>{{a}}</p>`, map[string]any{"a": 1}, reactive.WithStrict(true))

	written, err := env.server.Apply(map[string]any{"a": 2, "zz": 1})
	if !errors.Is(err, reactive.ErrUnknownProperty) {
		t.Fatalf("err = %v, want ErrUnknownProperty", err)
	}
	if len(written) != 1 || written[0] != "a" {
		t.Errorf("written = %v, want [a]", written)
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	vm := reactive.New(map[string]any{"msg": "hi"})
	view, err := compile.New(strings.NewReader(`<p>{{msg}}</p>`), vm)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	srv := New(view, WithGatherer(prometheus.NewRegistry()), WithShutdownTimeout(time.Second))
	if srv.shutdownTimeout != time.Second {
		t.Errorf("shutdownTimeout = %v, want 1s", srv.shutdownTimeout)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run() = %v, want nil", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

type failingWriter struct {
	*httptest.ResponseRecorder
}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestWriteFailureIsLogged(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	vm := reactive.New(map[string]any{"msg": "hi"})
	view, err := compile.New(strings.NewReader(`<p>{{msg}}</p>`), vm)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	srv := New(view, WithLogger(logger), WithGatherer(prometheus.NewRegistry()))

	w := failingWriter{httptest.NewRecorder()}
	srv.writeJSON(w, http.StatusOK, map[string]any{"msg": "hi"})

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(logs.String(), "connection reset") {
		t.Errorf("write failure not logged:\n%s", logs.String())
	}
}
