// Package curation runs the human review of a video's segments over a chat bot.
//
// The review state lives in a shared Session record. The pipeline writes it and
// waits; the chat handler (possibly another process) mutates it. Status starts
// at "aguardando" and moves once to "aprovado", "cancelado" or "timeout".
package curation

import (
	"errors"
	"sort"
	"time"

	"clipbot/types"
)

type Status string

const (
	StatusAwaiting  Status = "aguardando"
	StatusApproved  Status = "aprovado"
	StatusCancelled Status = "cancelado"
	StatusTimeout   Status = "timeout"
)

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s != StatusAwaiting
}

var (
	ErrNoSession  = errors.New("no curation session")
	ErrClosed     = errors.New("curation session already finished")
	ErrOutOfRange = errors.New("segment number out of range")
	ErrCancelled  = errors.New("curation cancelled")
	ErrTimeout    = errors.New("curation timed out")
)

// Session is the shared curation record.
type Session struct {
	ID                  string          `json:"id"`
	Timestamp           time.Time       `json:"timestamp"`
	UpdatedAt           time.Time       `json:"updated_at"`
	Status              Status          `json:"status"`
	VideoTitle          string          `json:"video_title,omitempty"`
	CurrentSegmentIndex int             `json:"current_segment_index"`
	Segments            []types.Segment `json:"segmentos"`
	Approvals           []int           `json:"aprovacoes"`
	Rejections          []int           `json:"reprovacoes"`
	Attempts            map[int]int     `json:"tentativas,omitempty"`
}

func NewSession(id, title string, segments []types.Segment, now time.Time) *Session {
	s := &Session{
		ID:         id,
		Timestamp:  now,
		UpdatedAt:  now,
		Status:     StatusAwaiting,
		VideoTitle: title,
		Segments:   append([]types.Segment(nil), segments...),
		Approvals:  []int{},
		Rejections: []int{},
	}
	s.advance()
	return s
}

func (s *Session) check(i int) error {
	if s.Status.Terminal() {
		return ErrClosed
	}
	if i < 0 || i >= len(s.Segments) {
		return ErrOutOfRange
	}
	return nil
}

// Approve marks segment i (0-based) approved.
func (s *Session) Approve(i int) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.Rejections = remove(s.Rejections, i)
	s.Approvals = insert(s.Approvals, i)
	s.advance()
	return nil
}

// Reject marks segment i rejected and swaps in the given replacement media.
func (s *Session) Reject(i int, replacement types.Media) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.Approvals = remove(s.Approvals, i)
	s.Rejections = insert(s.Rejections, i)
	if replacement.URL != "" {
		s.Segments[i].Media = replacement
		s.Segments[i].Modified = true
	}
	s.advance()
	return nil
}

// Replace sets user-chosen media on segment i and counts it as approved.
func (s *Session) Replace(i int, media types.Media) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.Segments[i].Media = media
	s.Segments[i].Modified = true
	s.Rejections = remove(s.Rejections, i)
	s.Approvals = insert(s.Approvals, i)
	s.advance()
	return nil
}

// Retry swaps in a newly searched candidate; the segment needs a decision again.
func (s *Session) Retry(i int, media types.Media) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.Segments[i].Media = media
	s.Segments[i].Modified = true
	s.Approvals = remove(s.Approvals, i)
	s.Rejections = remove(s.Rejections, i)
	s.advance()
	return nil
}

// NextAttempt returns and records the next search attempt for segment i.
func (s *Session) NextAttempt(i int) int {
	if s.Attempts == nil {
		s.Attempts = make(map[int]int)
	}
	s.Attempts[i]++
	return s.Attempts[i]
}

func (s *Session) ApproveAll() error {
	if s.Status.Terminal() {
		return ErrClosed
	}
	s.Approvals = s.Approvals[:0]
	for i := range s.Segments {
		if !contains(s.Rejections, i) {
			s.Approvals = append(s.Approvals, i)
		}
	}
	s.Status = StatusApproved
	s.CurrentSegmentIndex = len(s.Segments)
	return nil
}

func (s *Session) Cancel() error {
	if s.Status.Terminal() {
		return ErrClosed
	}
	s.Status = StatusCancelled
	return nil
}

// Expire moves an awaiting session to timeout.
func (s *Session) Expire() error {
	if s.Status.Terminal() {
		return ErrClosed
	}
	s.Status = StatusTimeout
	return nil
}

func (s *Session) decided(i int) bool {
	return contains(s.Approvals, i) || contains(s.Rejections, i)
}

// advance moves CurrentSegmentIndex to the first undecided segment and
// approves the session once every segment is approved. Rejected segments
// wait for a replacement, a new search or /aprovar_todos.
func (s *Session) advance() {
	s.CurrentSegmentIndex = len(s.Segments)
	for i := range s.Segments {
		if !s.decided(i) {
			s.CurrentSegmentIndex = i
			break
		}
	}
	if len(s.Segments) > 0 && len(s.Approvals) == len(s.Segments) {
		s.Status = StatusApproved
	}
}

// Summary is a compact view for status endpoints.
type Summary struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	Title     string    `json:"title,omitempty"`
	Total     int       `json:"total"`
	Approved  int       `json:"approved"`
	Rejected  int       `json:"rejected"`
	Current   int       `json:"current_segment"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Session) Summary() Summary {
	return Summary{
		ID:        s.ID,
		Status:    s.Status,
		Title:     s.VideoTitle,
		Total:     len(s.Segments),
		Approved:  len(s.Approvals),
		Rejected:  len(s.Rejections),
		Current:   s.CurrentSegmentIndex,
		StartedAt: s.Timestamp,
		UpdatedAt: s.UpdatedAt,
	}
}

func contains(set []int, v int) bool {
	i := sort.SearchInts(set, v)
	return i < len(set) && set[i] == v
}

func insert(set []int, v int) []int {
	i := sort.SearchInts(set, v)
	if i < len(set) && set[i] == v {
		return set
	}
	set = append(set, 0)
	copy(set[i+1:], set[i:])
	set[i] = v
	return set
}

func remove(set []int, v int) []int {
	i := sort.SearchInts(set, v)
	if i < len(set) && set[i] == v {
		return append(set[:i], set[i+1:]...)
	}
	return set
}
