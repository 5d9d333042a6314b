package report

import (
	"errors"
	"sync"

	"github.com/kozaktomas/event-report/internal/ai"
)

// Errors returned by the store.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrPreviewOpen   = errors.New("the report is read-only while the preview is open")
)

const maxHistory = 50

// State is the whole application state. It is replaced as a value on every change.
type State struct {
	Data       Data    `json:"data"`
	Files      Files   `json:"-"`
	Tone       ai.Tone `json:"tone"`
	Previewing bool    `json:"previewing"`
}

// NewState returns the initial state.
func NewState() State {
	return State{Data: NewData(), Tone: ai.ToneProfessional}
}

// Intent is a single state change requested by the user.
type Intent interface {
	Apply(s State) (State, error)
}

// editable rejects changes to the report while the preview is open.
func editable(s State) error {
	if s.Previewing {
		return ErrPreviewOpen
	}
	return nil
}

// SetField updates one scalar field.
type SetField struct {
	Field Field
	Value string
}

func (i SetField) Apply(s State) (State, error) {
	if err := editable(s); err != nil {
		return s, err
	}
	d, err := s.Data.With(i.Field, i.Value)
	if err != nil {
		return s, err
	}
	s.Data = d
	return s, nil
}

// SetShowExpenditure toggles the expenditure row.
type SetShowExpenditure struct {
	Show bool
}

func (i SetShowExpenditure) Apply(s State) (State, error) {
	if err := editable(s); err != nil {
		return s, err
	}
	s.Data.ShowExpenditure = i.Show
	return s, nil
}

// AddFiles appends to a sequence slot or fills a single slot.
type AddFiles struct {
	Slot  Slot
	Files []*Attachment
}

func (i AddFiles) Apply(s State) (State, error) {
	if err := editable(s); err != nil {
		return s, err
	}
	f, err := s.Files.Add(i.Slot, i.Files...)
	if err != nil {
		return s, err
	}
	s.Files = f
	return s, nil
}

// ReplaceFile swaps one attachment, e.g. with its cropped version.
type ReplaceFile struct {
	Slot  Slot
	Index int
	File  *Attachment
}

func (i ReplaceFile) Apply(s State) (State, error) {
	if err := editable(s); err != nil {
		return s, err
	}
	f, err := s.Files.Replace(i.Slot, i.Index, i.File)
	if err != nil {
		return s, err
	}
	s.Files = f
	return s, nil
}

// RemoveFile deletes one attachment.
type RemoveFile struct {
	Slot  Slot
	Index int
}

func (i RemoveFile) Apply(s State) (State, error) {
	if err := editable(s); err != nil {
		return s, err
	}
	f, err := s.Files.Remove(i.Slot, i.Index)
	if err != nil {
		return s, err
	}
	s.Files = f
	return s, nil
}

// SetTone selects the tone for content generation.
type SetTone struct {
	Tone string
}

func (i SetTone) Apply(s State) (State, error) {
	if err := editable(s); err != nil {
		return s, err
	}
	t, err := ai.ParseTone(i.Tone)
	if err != nil {
		return s, err
	}
	s.Tone = t
	return s, nil
}

// ApplyGenerated overwrites the three narrative fields wholesale.
type ApplyGenerated struct {
	Content *ai.GeneratedContent
}

func (i ApplyGenerated) Apply(s State) (State, error) {
	if err := editable(s); err != nil {
		return s, err
	}
	if !i.Content.Complete() {
		return s, ai.ErrMalformedContent
	}
	s.Data.BriefInfo = i.Content.Brief
	s.Data.Objectives = i.Content.Objectives
	s.Data.Benefits = i.Content.Benefits
	return s, nil
}

// Batch applies several intents as one change. Either all of them apply or none.
type Batch []Intent

func (b Batch) Apply(s State) (State, error) {
	for _, intent := range b {
		next, err := intent.Apply(s)
		if err != nil {
			return s, err
		}
		s = next
	}
	return s, nil
}

// EnterPreview switches to the preview when the form is valid.
type EnterPreview struct{}

func (EnterPreview) Apply(s State) (State, error) {
	if err := Validate(s.Data, s.Files); err != nil {
		return s, err
	}
	s.Previewing = true
	return s, nil
}

// ExitPreview returns to editing.
type ExitPreview struct{}

func (ExitPreview) Apply(s State) (State, error) {
	s.Previewing = false
	return s, nil
}

// Store owns the application state. Intents are applied to a copy and the copy
// replaces the current state only when the intent succeeds.
type Store struct {
	mu        sync.RWMutex
	state     State
	history   []State
	listeners []func(Files)
}

// NewStore creates a store holding the initial state.
func NewStore() *Store {
	return &Store{state: NewState()}
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers a callback invoked with the new files after every change.
func (s *Store) Subscribe(fn func(Files)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Dispatch applies an intent. On error the state is left as it was.
func (s *Store) Dispatch(intent Intent) (State, error) {
	s.mu.Lock()
	next, err := intent.Apply(s.state)
	if err != nil {
		current := s.state
		s.mu.Unlock()
		return current, err
	}
	s.history = append(s.history, s.state)
	if len(s.history) > maxHistory {
		s.history = s.history[len(s.history)-maxHistory:]
	}
	s.state = next
	listeners := s.listeners
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next.Files)
	}
	return next, nil
}

// Undo restores the state before the last successful intent.
func (s *Store) Undo() (State, error) {
	s.mu.Lock()
	if len(s.history) == 0 {
		current := s.state
		s.mu.Unlock()
		return current, ErrNothingToUndo
	}
	prev := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	s.state = prev
	listeners := s.listeners
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(prev.Files)
	}
	return prev, nil
}
