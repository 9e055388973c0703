package store

import (
	"database/sql"
	"time"
)

// Message is one archived relay payload.
type Message struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	ReceivedAt time.Time `json:"received_at"`
	Payload    []byte    `json:"-"`
}

// MessageRepository provides access to archived messages.
type MessageRepository struct {
	db *sql.DB
}

// Messages returns the message repository for this store.
func (s *Store) Messages() *MessageRepository {
	return &MessageRepository{db: s.db}
}

// Append stores payload under sessionID.
func (r *MessageRepository) Append(sessionID string, payload []byte) (*Message, error) {
	m := &Message{SessionID: sessionID, ReceivedAt: time.Now().UTC(), Payload: payload}
	result, err := r.db.Exec(
		`INSERT INTO messages (session_id, received_at, payload) VALUES (?, ?, ?)`,
		m.SessionID, m.ReceivedAt, m.Payload,
	)
	if err != nil {
		return nil, err
	}
	if m.ID, err = result.LastInsertId(); err != nil {
		return nil, err
	}
	return m, nil
}

// ListBySession returns up to limit messages of a session, oldest first,
// starting after message id afterID. A limit <= 0 returns all.
func (r *MessageRepository) ListBySession(sessionID string, afterID int64, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(
		`SELECT id, session_id, received_at, payload
		 FROM messages
		 WHERE session_id = ? AND id > ?
		 ORDER BY id
		 LIMIT ?`,
		sessionID, afterID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.ReceivedAt, &m.Payload); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}
