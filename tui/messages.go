package tui

import (
	"time"

	"clipbot/curation"
	"clipbot/pipeline"
)

// StatusUpdateMsg carries a polled pipeline status.
type StatusUpdateMsg struct {
	Status *pipeline.Status
	Err    error
}

// CurationUpdateMsg carries a polled curation summary (nil when none).
type CurationUpdateMsg struct {
	Summary *curation.Summary
	Err     error
}

// TickMsg triggers polling.
type TickMsg struct {
	Time time.Time
}

// ActionMsg reports the result of a key-triggered API call.
type ActionMsg struct {
	Text string
	Err  error
}
