package ws

import "encoding/json"

// Message is the envelope for every frame pushed to subscribers.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message types pushed on the scoreboard feed.
const (
	TypeScoreboardUpdate = "scoreboard_update"
)
