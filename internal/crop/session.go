package crop

import (
	"errors"
	"sync"

	"github.com/kozaktomas/event-report/internal/report"
)

// Errors returned by the editor.
var (
	ErrSessionOpen = errors.New("another crop session is already open")
	ErrNoSession   = errors.New("no crop session is open")
)

// Session is one open crop edit of an attachment.
type Session struct {
	Slot   report.Slot
	Index  int
	Source *report.Attachment

	editor *Editor
}

// Editor allows at most one crop session at a time.
type Editor struct {
	mu      sync.Mutex
	current *Session
}

// NewEditor creates an editor with no open session.
func NewEditor() *Editor {
	return &Editor{}
}

// Open starts a session for the attachment at slot/index.
func (e *Editor) Open(slot report.Slot, index int, src *report.Attachment) (*Session, error) {
	if !src.IsImage() {
		return nil, ErrNotImage
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current != nil {
		return nil, ErrSessionOpen
	}
	e.current = &Session{Slot: slot, Index: index, Source: src, editor: e}
	return e.current, nil
}

// Current returns the open session, if any.
func (e *Editor) Current() (*Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current, e.current != nil
}

func (e *Editor) close(s *Session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == s {
		e.current = nil
	}
}

// Finalize crops the source to the finalized region and closes the session.
// The session is closed even when cropping fails; the source is left as it was.
func (s *Session) Finalize(r Region) (*report.Attachment, error) {
	defer s.editor.close(s)
	return Crop(s.Source, r)
}

// Cancel closes the session without producing a file.
func (s *Session) Cancel() {
	s.editor.close(s)
}
