package devserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Pilves/dot/pkg/dom"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHealthz(t *testing.T) {
	doc := dom.NewDocument()
	s := New(doc, WithLogger(testLogger()))
	defer s.Close()

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestTreeSnapshot(t *testing.T) {
	doc := dom.NewDocument()
	el := dom.NewElement("row")
	el.AppendChild(dom.NewText("hello"))
	doc.Root().AppendChild(el)

	s := New(doc, WithLogger(testLogger()))
	defer s.Close()

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/tree")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var snap dom.NodeSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.Tag != "#root" || len(snap.Children) != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Children[0].Tag != "row" {
		t.Errorf("expected row element, got %+v", snap.Children[0])
	}
}

func TestMetricsHandlerMounted(t *testing.T) {
	doc := dom.NewDocument()
	s := New(doc,
		WithLogger(testLogger()),
		WithMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("metrics"))
		})),
	)
	defer s.Close()

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "metrics" {
		t.Errorf("expected mounted handler response, got %q", body)
	}
}

func TestWebsocketSnapshotThenPatches(t *testing.T) {
	doc := dom.NewDocument()
	doc.Root().AppendChild(dom.NewText("initial"))

	s := New(doc, WithLogger(testLogger()))
	defer s.Close()

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	// The first frame is the full snapshot.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var snap dom.NodeSnapshot
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.Tag != "#root" || len(snap.Children) != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	// The snapshot is written before the client registers for broadcasts;
	// wait for registration so the next mutation is not lost.
	deadline := time.Now().Add(2 * time.Second)
	for s.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(time.Millisecond)
	}

	// Mutations after connect stream as patches.
	txt := dom.NewText("streamed")
	doc.Root().AppendChild(txt)

	var p dom.Patch
	if err := conn.ReadJSON(&p); err != nil {
		t.Fatal(err)
	}
	if p.Op != dom.PatchInsertNode || p.NodeID != txt.ID() || p.Text != "streamed" {
		t.Errorf("unexpected patch: %+v", p)
	}
}

func TestCloseDetachesObserver(t *testing.T) {
	doc := dom.NewDocument()
	s := New(doc, WithLogger(testLogger()))

	s.Close()

	// Mutating after Close must not panic or reach the server.
	doc.Root().AppendChild(dom.NewText("after close"))
}
