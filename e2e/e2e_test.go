package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"gocv.io/x/gocv"

	"github.com/cagatay-softgineer/MediaPipe/internal/detector"
	"github.com/cagatay-softgineer/MediaPipe/internal/feature"
	"github.com/cagatay-softgineer/MediaPipe/internal/hub"
	"github.com/cagatay-softgineer/MediaPipe/internal/pipeline"
	"github.com/cagatay-softgineer/MediaPipe/internal/publisher"
	"github.com/cagatay-softgineer/MediaPipe/internal/server"
	"github.com/cagatay-softgineer/MediaPipe/internal/store"
	"github.com/cagatay-softgineer/MediaPipe/internal/vision"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestE2E_TrackToViewer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	st, err := store.New(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()

	h := hub.New(hub.DefaultConfig())
	defer h.Close()

	arc, err := st.NewArchive()
	if err != nil {
		t.Fatalf("NewArchive() error = %v", err)
	}
	h.Connect(arc)

	ts := httptest.NewServer(server.New(server.Config{Hub: h, Store: st}))
	defer ts.Close()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")

	viewer, _, err := websocket.DefaultDialer.Dial(wsURL+"/viewer", nil)
	if err != nil {
		t.Fatalf("dial viewer: %v", err)
	}
	defer viewer.Close()

	pub, err := publisher.New(publisher.DefaultConfig(wsURL))
	if err != nil {
		t.Fatalf("publisher.New() error = %v", err)
	}
	defer pub.Close()

	waitFor(t, "publisher connection", pub.Connected)
	waitFor(t, "three subscribers", func() bool { return h.Len() == 3 })

	frames := make([]*gocv.Mat, 3)
	for i := range frames {
		m := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
		defer m.Close()
		frames[i] = &m
	}
	src := vision.NewMockSource(frames, false)
	src.Open()

	det := detector.NewMockDetector()
	det.SetResult(detector.FullResult())

	p := pipeline.New(pipeline.Config{
		Source:         src,
		Detector:       det,
		Solver:         vision.PnPSolver{},
		Overlay:        &vision.Overlay{Caption: "e2e", Metrics: true},
		Sink:           pub,
		PublishEnabled: true,
	})
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if s := p.Stats(); s.Published != 3 {
		t.Fatalf("published %d records, want 3", s.Published)
	}

	t.Run("viewer receives every record", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			viewer.SetReadDeadline(time.Now().Add(3 * time.Second))
			mt, msg, err := viewer.ReadMessage()
			if err != nil {
				t.Fatalf("read %d: %v", i, err)
			}
			if mt != websocket.TextMessage {
				t.Fatalf("message %d: type %d, want text", i, mt)
			}

			var rec feature.Record
			if err := json.Unmarshal(msg, &rec); err != nil {
				t.Fatalf("message %d: %v", i, err)
			}
			var keys map[string]json.RawMessage
			json.Unmarshal(msg, &keys)
			if len(keys) != len(feature.Keys()) {
				t.Errorf("message %d: %d keys, want %d", i, len(keys), len(feature.Keys()))
			}
			if rec.Left.Empty() && rec.Right.Empty() {
				t.Errorf("message %d: expected at least one hand", i)
			}
		}
	})

	t.Run("archive records the session", func(t *testing.T) {
		waitFor(t, "archived messages", func() bool {
			msgs, err := st.Messages().ListBySession(arc.SessionID(), 0, 10)
			return err == nil && len(msgs) == 3
		})

		resp, err := http.Get(ts.URL + "/api/sessions/" + arc.SessionID() + "/messages")
		if err != nil {
			t.Fatalf("GET messages: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
	})
}
