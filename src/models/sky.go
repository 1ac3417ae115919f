package models

// MSkySnapshot is one tick of the live sky feed.
type MSkySnapshot struct {
	Type           string  `json:"type"`
	Timestamp      int64   `json:"timestamp"`
	Chart          *MChart `json:"chart"`
	ComputeSeconds float64 `json:"compute_seconds"`
}

// MClientCommand is a websocket message sent by feed subscribers.
type MClientCommand struct {
	Command string `json:"command"`
	Limit   int    `json:"limit"`
}

type MSkyHistory struct {
	Type      string         `json:"type"`
	Snapshots []MSkySnapshot `json:"snapshots"`
}
