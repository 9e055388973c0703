package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatal("database file should not exist before creating store")
	}

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("database file should exist after creating store")
	}
	if s.Path() != dbPath {
		t.Errorf("Path() = %s, want %s", s.Path(), dbPath)
	}
}

func TestNewStore_RunsMigrations(t *testing.T) {
	s := newTestStore(t)

	for _, table := range []string{"sessions", "messages"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q should exist after migrations: %v", table, err)
		}
	}
}

func TestNewStore_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	sess, err := s.Sessions().Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	s.Close()

	s, err = New(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s.Close()

	if _, err := s.Sessions().GetByID(sess.ID); err != nil {
		t.Errorf("session lost after reopen: %v", err)
	}
}

func TestStore_Close(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	if err := s.DB().Ping(); err == nil {
		t.Error("expected error when pinging closed database")
	}
}

func TestSessionRepository(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	first, err := repo.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := repo.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetByID(first.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if got.ID != first.ID || got.EndedAt != nil || got.Messages != 0 {
			t.Errorf("unexpected session: %+v", got)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		if _, err := repo.GetByID("nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := repo.End("nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound from End, got %v", err)
		}
	})

	t.Run("end sets ended_at", func(t *testing.T) {
		if err := repo.End(first.ID); err != nil {
			t.Fatalf("End failed: %v", err)
		}
		got, _ := repo.GetByID(first.ID)
		if got.EndedAt == nil {
			t.Fatal("expected ended_at to be set")
		}
		if got.EndedAt.Before(got.StartedAt) {
			t.Errorf("ended_at %v before started_at %v", got.EndedAt, got.StartedAt)
		}
		if err := repo.End(first.ID); err != nil {
			t.Errorf("second End failed: %v", err)
		}
	})

	t.Run("list", func(t *testing.T) {
		sessions, err := repo.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(sessions) != 2 {
			t.Fatalf("expected 2 sessions, got %d", len(sessions))
		}
		ids := map[string]bool{sessions[0].ID: true, sessions[1].ID: true}
		if !ids[first.ID] || !ids[second.ID] {
			t.Errorf("unexpected sessions: %v", ids)
		}
	})

	t.Run("delete cascades to messages", func(t *testing.T) {
		if _, err := s.Messages().Append(second.ID, []byte("x")); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		if err := repo.Delete(second.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		msgs, err := s.Messages().ListBySession(second.ID, 0, 0)
		if err != nil {
			t.Fatalf("ListBySession failed: %v", err)
		}
		if len(msgs) != 0 {
			t.Errorf("expected messages to be deleted, got %d", len(msgs))
		}
		if err := repo.Delete(second.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestMessageRepository(t *testing.T) {
	s := newTestStore(t)
	sess, err := s.Sessions().Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	repo := s.Messages()

	payloads := []string{`{"frame":1}`, `{"frame":2}`, `{"frame":3}`}
	for _, p := range payloads {
		if _, err := repo.Append(sess.ID, []byte(p)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	t.Run("all in order", func(t *testing.T) {
		msgs, err := repo.ListBySession(sess.ID, 0, 0)
		if err != nil {
			t.Fatalf("ListBySession failed: %v", err)
		}
		if len(msgs) != 3 {
			t.Fatalf("expected 3 messages, got %d", len(msgs))
		}
		for i, m := range msgs {
			if string(m.Payload) != payloads[i] {
				t.Errorf("message %d = %s, want %s", i, m.Payload, payloads[i])
			}
		}
	})

	t.Run("limit and cursor", func(t *testing.T) {
		msgs, err := repo.ListBySession(sess.ID, 0, 2)
		if err != nil {
			t.Fatalf("ListBySession failed: %v", err)
		}
		if len(msgs) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(msgs))
		}
		rest, err := repo.ListBySession(sess.ID, msgs[1].ID, 10)
		if err != nil {
			t.Fatalf("ListBySession failed: %v", err)
		}
		if len(rest) != 1 || string(rest[0].Payload) != payloads[2] {
			t.Errorf("unexpected rest: %v", rest)
		}
	})

	t.Run("count on session", func(t *testing.T) {
		got, err := s.Sessions().GetByID(sess.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if got.Messages != 3 {
			t.Errorf("expected 3 messages, got %d", got.Messages)
		}
	})

	t.Run("unknown session is rejected", func(t *testing.T) {
		if _, err := repo.Append("nope", []byte("x")); err == nil {
			t.Error("expected foreign key error")
		}
	})
}

func TestArchive(t *testing.T) {
	s := newTestStore(t)

	a, err := s.NewArchive()
	if err != nil {
		t.Fatalf("NewArchive failed: %v", err)
	}

	if err := a.SetWriteDeadline(time.Time{}); err != nil {
		t.Errorf("SetWriteDeadline failed: %v", err)
	}
	for _, p := range []string{"a", "b"} {
		if err := a.WriteMessage(1, []byte(p)); err != nil {
			t.Fatalf("WriteMessage failed: %v", err)
		}
	}

	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if err := a.WriteMessage(1, []byte("c")); !errors.Is(err, ErrArchiveClosed) {
		t.Errorf("expected ErrArchiveClosed, got %v", err)
	}

	sess, err := s.Sessions().GetByID(a.SessionID())
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if sess.Messages != 2 || sess.EndedAt == nil {
		t.Errorf("unexpected session: %+v", sess)
	}
}

func TestArchive_SessionDeletedWhileRecording(t *testing.T) {
	s := newTestStore(t)

	a, err := s.NewArchive()
	if err != nil {
		t.Fatalf("NewArchive failed: %v", err)
	}
	first := a.SessionID()

	if err := a.WriteMessage(1, []byte(`{"frame":1}`)); err != nil {
		t.Fatalf("WriteMessage failed: %v", err)
	}
	if err := s.Sessions().Delete(first); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	t.Run("next write starts a new session", func(t *testing.T) {
		if err := a.WriteMessage(1, []byte(`{"frame":2}`)); err != nil {
			t.Fatalf("WriteMessage after delete failed: %v", err)
		}
		if a.SessionID() == first {
			t.Fatal("expected a new session id")
		}

		msgs, err := s.Messages().ListBySession(a.SessionID(), 0, 10)
		if err != nil {
			t.Fatalf("ListBySession failed: %v", err)
		}
		if len(msgs) != 1 || string(msgs[0].Payload) != `{"frame":2}` {
			t.Errorf("unexpected messages: %+v", msgs)
		}
	})

	t.Run("close ends the new session", func(t *testing.T) {
		if err := a.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		sess, err := s.Sessions().GetByID(a.SessionID())
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if sess.EndedAt == nil {
			t.Error("expected session to be ended")
		}
	})
}

func TestArchive_CloseAfterSessionDeleted(t *testing.T) {
	s := newTestStore(t)

	a, err := s.NewArchive()
	if err != nil {
		t.Fatalf("NewArchive failed: %v", err)
	}
	if err := s.Sessions().Delete(a.SessionID()); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
