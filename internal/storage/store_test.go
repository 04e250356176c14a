package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/cellviz/internal/hook"
	"github.com/san-kum/cellviz/internal/host"
	"github.com/san-kum/cellviz/internal/timeutil"
)

func newStore(t *testing.T) (*Store, *timeutil.MockClock) {
	t.Helper()
	clock := timeutil.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	st := New(t.TempDir()).WithClock(clock)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	return st, clock
}

func TestSessionRecordLoad(t *testing.T) {
	st, clock := newStore(t)

	sess, err := st.Start("demo", "term", 60)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	for _, fps := range []float64{58, 60, 62} {
		clock.Advance(time.Second)
		if err := sess.Record(fps); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}
	if err := sess.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	meta, err := st.Load(sess.ID())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Source != "demo" || meta.Renderer != "term" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Samples != 3 {
		t.Errorf("expected 3 samples, got %d", meta.Samples)
	}
	if meta.MeanFPS != 60 || meta.MinFPS != 58 || meta.MaxFPS != 62 {
		t.Errorf("unexpected summary mean=%f min=%f max=%f", meta.MeanFPS, meta.MinFPS, meta.MaxFPS)
	}
	if got := meta.Ended.Sub(meta.Started); got != 3*time.Second {
		t.Errorf("expected 3s session, got %s", got)
	}

	times, fps, err := st.LoadSamples(sess.ID())
	if err != nil {
		t.Fatalf("load samples failed: %v", err)
	}
	if len(times) != 3 || len(fps) != 3 {
		t.Fatalf("expected 3 samples, got %d/%d", len(times), len(fps))
	}
	if times[0] != 1 || times[2] != 3 {
		t.Errorf("unexpected times %v", times)
	}
	if fps[1] != 60 {
		t.Errorf("expected 60, got %f", fps[1])
	}
}

func TestSessionClosed(t *testing.T) {
	st, _ := newStore(t)
	sess, err := st.Start("demo", "gui", 60)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	sess.Close()

	if err := sess.Record(60); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed, got %v", err)
	}
	if err := sess.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}

	meta, err := st.Load(sess.ID())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Samples != 0 || meta.MinFPS != 0 {
		t.Errorf("empty session should have zero summary, got %+v", meta)
	}
}

func TestStoreList(t *testing.T) {
	st, clock := newStore(t)

	var ids []string
	for i := 0; i < 3; i++ {
		sess, err := st.Start("ws://localhost:4000", "term", 60)
		if err != nil {
			t.Fatalf("start failed: %v", err)
		}
		sess.Close()
		ids = append(ids, sess.ID())
		clock.Advance(time.Minute)
	}
	// stray entries are skipped
	os.MkdirAll(filepath.Join(st.baseDir, "junk"), 0755)
	os.WriteFile(filepath.Join(st.baseDir, "notes.txt"), []byte("x"), 0644)

	sessions, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
	for i, s := range sessions {
		if s.ID != ids[i] {
			t.Errorf("session %d: expected %s, got %s", i, ids[i], s.ID)
		}
	}
}

func TestStoreList_Missing(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "nope"))
	sessions, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("expected no sessions, got %d", len(sessions))
	}
}

func TestTapRecordsFPS(t *testing.T) {
	st, _ := newStore(t)
	sess, err := st.Start("demo", "term", 60)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	var pushed []string
	tap := NewTap(host.NewLocal(func(p host.Pushed) { pushed = append(pushed, p.Event) }), sess)

	tap.PushEvent(hook.EventUpdateFps, hook.FPS{FPS: 59.9})
	tap.PushEvent("other", 1)
	sess.Close()

	if len(pushed) != 2 {
		t.Errorf("tap should forward every event, got %v", pushed)
	}
	_, fps, err := st.LoadSamples(sess.ID())
	if err != nil {
		t.Fatalf("load samples failed: %v", err)
	}
	if len(fps) != 1 || fps[0] != 59.9 {
		t.Errorf("expected one 59.9 sample, got %v", fps)
	}
}
