package report

import (
	"errors"
	"fmt"
	"slices"
)

// Slot names one of the five attachment holders.
type Slot string

// Attachment slots. Banner, logo and invitation hold at most one file;
// photos and attendance are ordered sequences.
const (
	SlotHeaderBanner Slot = "headerBanner"
	SlotCollegeLogo  Slot = "collegeLogo"
	SlotInvitation   Slot = "invitation"
	SlotPhotos       Slot = "photos"
	SlotAttendance   Slot = "attendance"
)

// Slots lists every slot in form order.
var Slots = []Slot{SlotHeaderBanner, SlotCollegeLogo, SlotInvitation, SlotPhotos, SlotAttendance}

// Errors returned by slot operations.
var (
	ErrUnknownSlot      = errors.New("unknown attachment slot")
	ErrIndexOutOfRange  = errors.New("attachment index out of range")
	ErrEmptyAttachments = errors.New("no attachments given")
)

// ParseSlot validates a slot name.
func ParseSlot(s string) (Slot, error) {
	for _, slot := range Slots {
		if string(slot) == s {
			return slot, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSlot, s)
}

// IsMulti reports whether the slot holds an ordered sequence.
func (s Slot) IsMulti() bool {
	return s == SlotPhotos || s == SlotAttendance
}

// Files holds the attachment slots. All methods take and return values;
// the receiver is never modified.
type Files struct {
	HeaderBanner *Attachment
	CollegeLogo  *Attachment
	Invitation   *Attachment
	Photos       []*Attachment
	Attendance   []*Attachment
}

// List returns the attachments of a slot as a fresh slice.
func (f Files) List(slot Slot) ([]*Attachment, error) {
	switch slot {
	case SlotHeaderBanner:
		return single(f.HeaderBanner), nil
	case SlotCollegeLogo:
		return single(f.CollegeLogo), nil
	case SlotInvitation:
		return single(f.Invitation), nil
	case SlotPhotos:
		return slices.Clone(f.Photos), nil
	case SlotAttendance:
		return slices.Clone(f.Attendance), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
}

// At returns the attachment at index i of a slot.
func (f Files) At(slot Slot, i int) (*Attachment, error) {
	list, err := f.List(slot)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(list) {
		return nil, fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, slot, i)
	}
	return list[i], nil
}

// Add appends attachments to a sequence slot, or fills a single slot with the first one.
func (f Files) Add(slot Slot, atts ...*Attachment) (Files, error) {
	if len(atts) == 0 {
		return f, ErrEmptyAttachments
	}
	if !slot.IsMulti() {
		return f.set(slot, []*Attachment{atts[0]})
	}
	list, err := f.List(slot)
	if err != nil {
		return f, err
	}
	return f.set(slot, append(list, atts...))
}

// Replace swaps the attachment at index i, keeping its position.
func (f Files) Replace(slot Slot, i int, att *Attachment) (Files, error) {
	list, err := f.List(slot)
	if err != nil {
		return f, err
	}
	if i < 0 || i >= len(list) {
		return f, fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, slot, i)
	}
	list[i] = att
	return f.set(slot, list)
}

// Remove deletes exactly one attachment, preserving the order of the rest.
func (f Files) Remove(slot Slot, i int) (Files, error) {
	list, err := f.List(slot)
	if err != nil {
		return f, err
	}
	if i < 0 || i >= len(list) {
		return f, fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, slot, i)
	}
	return f.set(slot, slices.Delete(list, i, i+1))
}

// Keys returns the preview key of every attachment currently held, mapped to it.
func (f Files) Keys() map[string]*Attachment {
	keys := make(map[string]*Attachment)
	for _, slot := range Slots {
		list, _ := f.List(slot)
		for i, att := range list {
			keys[Key(slot, i)] = att
		}
	}
	return keys
}

// Key identifies an attachment position for preview bookkeeping.
func Key(slot Slot, i int) string {
	return fmt.Sprintf("%s/%d", slot, i)
}

func (f Files) set(slot Slot, list []*Attachment) (Files, error) {
	var first *Attachment
	if len(list) > 0 {
		first = list[0]
	}
	switch slot {
	case SlotHeaderBanner:
		f.HeaderBanner = first
	case SlotCollegeLogo:
		f.CollegeLogo = first
	case SlotInvitation:
		f.Invitation = first
	case SlotPhotos:
		f.Photos = list
	case SlotAttendance:
		f.Attendance = list
	default:
		return f, fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
	return f, nil
}

func single(a *Attachment) []*Attachment {
	if a == nil {
		return nil
	}
	return []*Attachment{a}
}
