package hub

import (
	"time"

	"github.com/soar/MotionControllerView/internal/motion"
)

// WSMessage represents a WebSocket message sent from server to client.
type WSMessage struct {
	Type       string              `json:"type"`                 // "full", "pose", "event", "controller_selected"
	Seq        int64               `json:"seq"`                  // Sequence number for ordering
	Timestamp  int64               `json:"timestamp"`            // Unix timestamp in milliseconds
	Controller string              `json:"controller,omitempty"` // Controller key the message is about
	Event      *motion.ButtonEvent `json:"event,omitempty"`      // Semantic button event for type "event"
	Models     []motion.Snapshot   `json:"models,omitempty"`     // Poses for "full" and "pose"
}

// NewFullMessage creates a "full" message with the pose of every controller.
func NewFullMessage(seq int64, models []motion.Snapshot) *WSMessage {
	return &WSMessage{
		Type:      "full",
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Models:    models,
	}
}

// NewPoseMessage creates a "pose" message for one controller.
func NewPoseMessage(seq int64, model motion.Snapshot) *WSMessage {
	return &WSMessage{
		Type:       "pose",
		Seq:        seq,
		Timestamp:  time.Now().UnixMilli(),
		Controller: model.Key,
		Models:     []motion.Snapshot{model},
	}
}

// NewEventMessage creates an "event" message for a semantic button change.
func NewEventMessage(seq int64, controller string, ev motion.ButtonEvent) *WSMessage {
	return &WSMessage{
		Type:       "event",
		Seq:        seq,
		Timestamp:  time.Now().UnixMilli(),
		Controller: controller,
		Event:      &ev,
	}
}

// NewControllerSelectedMessage confirms a client's controller filter.
func NewControllerSelectedMessage(controller string) *WSMessage {
	return &WSMessage{
		Type:       "controller_selected",
		Timestamp:  time.Now().UnixMilli(),
		Controller: controller,
	}
}

// ClientMessage represents a message sent from the client to the server.
type ClientMessage struct {
	Type       string `json:"type"`
	Controller string `json:"controller,omitempty"`
}
