package events

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// GroupChangedMessage announces that a group's snapshot changed.
// It carries only the group id; consumers reload the snapshot themselves.
type GroupChangedMessage struct {
	ID        string    `json:"id"`
	GroupID   int64     `json:"groupId"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// NewGroupChangedMessage creates a message with a fresh id
func NewGroupChangedMessage(groupID int64, reason string) *GroupChangedMessage {
	return &GroupChangedMessage{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *GroupChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// GroupChangedMessageFromJSON creates a message from JSON bytes
func GroupChangedMessageFromJSON(data []byte) (*GroupChangedMessage, error) {
	var msg GroupChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.GroupID <= 0 {
		return nil, errors.New("message has no group id")
	}
	return &msg, nil
}
