package amqp

import (
	"testing"
	"time"
)

func TestVoiceCommandMessageJSON(t *testing.T) {
	msg := NewVoiceCommandMessage("spent 20 on groceries")
	if msg.Timestamp.IsZero() {
		t.Fatalf("timestamp not set")
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	back, err := VoiceCommandMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if back.Transcript != "spent 20 on groceries" {
		t.Errorf("transcript = %q", back.Transcript)
	}
	if !back.Timestamp.Truncate(time.Millisecond).Equal(msg.Timestamp.Truncate(time.Millisecond)) {
		t.Errorf("timestamp drifted: %v vs %v", back.Timestamp, msg.Timestamp)
	}
}

func TestVoiceCommandMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := VoiceCommandMessageFromJSON([]byte("{not json")); err == nil {
		t.Errorf("garbage accepted")
	}
}
