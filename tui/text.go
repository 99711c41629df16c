package tui

// UI Text Constants
const (
	TextFooterIdle     = "Press 'r' to start a run | 's' for a short | 'q' to detach"
	TextFooterRunning  = "Press 'q' to detach (the run continues)"
	TextFooterCurating = "Press 'a' to approve all | 'c' to cancel | 'q' to detach"
)
