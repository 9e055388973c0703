package store

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrArchiveClosed is returned by writes after Close.
var ErrArchiveClosed = errors.New("archive closed")

// Archive records every message written to it under one session. It has the
// write side of a hub connection, so the hub treats it as a subscriber. If its
// session is deleted while recording, the next write starts a new one.
type Archive struct {
	store   *Store
	session *Session

	mu     sync.Mutex
	closed bool
}

// NewArchive starts a session and returns an archive writing into it.
func (s *Store) NewArchive() (*Archive, error) {
	sess, err := s.Sessions().Create()
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &Archive{store: s, session: sess}, nil
}

// SessionID returns the id of the session being recorded.
func (a *Archive) SessionID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.ID
}

// WriteMessage appends data to the session. The message type is ignored.
func (a *Archive) WriteMessage(_ int, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrArchiveClosed
	}
	_, err := a.store.Messages().Append(a.session.ID, data)
	if err == nil {
		return nil
	}
	if _, lookupErr := a.store.Sessions().GetByID(a.session.ID); !errors.Is(lookupErr, ErrNotFound) {
		return fmt.Errorf("append message: %w", err)
	}

	sess, err := a.store.Sessions().Create()
	if err != nil {
		return fmt.Errorf("restart session: %w", err)
	}
	a.session = sess
	if _, err := a.store.Messages().Append(a.session.ID, data); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// SetWriteDeadline is a no-op; database writes are bounded by SQLite itself.
func (a *Archive) SetWriteDeadline(time.Time) error {
	return nil
}

// Close ends the session. Further writes fail.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	if err := a.store.Sessions().End(a.session.ID); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}
