package domain

import (
	"encoding/json"
	"fmt"
)

// StreamMessage - сообщение из Redis Stream; Data содержит JSON из поля "data"
type StreamMessage struct {
	ID   string
	Data string
}

// Decode разбирает JSON-содержимое сообщения в v
func (m StreamMessage) Decode(v interface{}) error {
	if m.Data == "" {
		return fmt.Errorf("message %s: empty payload", m.ID)
	}
	if err := json.Unmarshal([]byte(m.Data), v); err != nil {
		return fmt.Errorf("message %s: invalid JSON: %w", m.ID, err)
	}
	return nil
}
