package amqp

import (
	"encoding/json"
	"time"
)

// VoiceCommandMessage carries one raw speech transcript from a capture
// client to the worker that parses it into an expense.
type VoiceCommandMessage struct {
	Transcript string    `json:"transcript"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewVoiceCommandMessage creates a message for a freshly captured transcript
func NewVoiceCommandMessage(transcript string) *VoiceCommandMessage {
	return &VoiceCommandMessage{
		Transcript: transcript,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *VoiceCommandMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func VoiceCommandMessageFromJSON(data []byte) (*VoiceCommandMessage, error) {
	var msg VoiceCommandMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
