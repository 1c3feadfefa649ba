package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwhyun/finbot/internal/db"
)

// Message is one persisted chat turn half.
type Message struct {
	ID          string
	SessionID   string
	Username    string
	Role        string
	Message     string
	ProductType string
	CreatedAt   time.Time
}

// MessageStore persists the conversation transcript.
type MessageStore struct {
	db *db.DB
}

// NewMessageStore creates a message store.
func NewMessageStore(d *db.DB) *MessageStore {
	return &MessageStore{db: d}
}

// Save appends one message to the transcript.
func (s *MessageStore) Save(ctx context.Context, m Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, session_id, username, role, message, product_type)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.SessionID, m.Username, m.Role, m.Message, m.ProductType)
	if err != nil {
		return fmt.Errorf("saving chat message: %w", err)
	}
	return nil
}

// History returns a session's messages in chronological order.
func (s *MessageStore) History(ctx context.Context, sessionID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, username, role, message, product_type, created_at
		 FROM chat_messages WHERE session_id = ? ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading chat history: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Username, &m.Role,
			&m.Message, &m.ProductType, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning chat message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
