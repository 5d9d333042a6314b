package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Submission is a report described in a YAML file, for use from the command line.
// File paths are relative to the directory of the YAML file.
type Submission struct {
	Data  Data            `yaml:"data"`
	Files SubmissionFiles `yaml:"files"`
	Tone  string          `yaml:"tone,omitempty"`
}

// SubmissionFiles lists attachment paths per slot.
type SubmissionFiles struct {
	HeaderBanner string   `yaml:"headerBanner,omitempty"`
	CollegeLogo  string   `yaml:"collegeLogo,omitempty"`
	Invitation   string   `yaml:"invitation,omitempty"`
	Photos       []string `yaml:"photos,omitempty"`
	Attendance   []string `yaml:"attendance,omitempty"`
}

// paths returns the paths of a slot.
func (f SubmissionFiles) paths(slot Slot) []string {
	switch slot {
	case SlotHeaderBanner:
		return nonEmpty(f.HeaderBanner)
	case SlotCollegeLogo:
		return nonEmpty(f.CollegeLogo)
	case SlotInvitation:
		return nonEmpty(f.Invitation)
	case SlotPhotos:
		return f.Photos
	case SlotAttendance:
		return f.Attendance
	}
	return nil
}

func nonEmpty(p string) []string {
	if p == "" {
		return nil
	}
	return []string{p}
}

// LoadSubmission reads a submission file. The expenditure row is shown unless
// the file sets showExpenditure to false.
func LoadSubmission(path string) (*Submission, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading submission: %w", err)
	}
	sub := &Submission{Data: NewData()}
	if err := yaml.Unmarshal(raw, sub); err != nil {
		return nil, fmt.Errorf("parsing submission %s: %w", path, err)
	}
	return sub, nil
}

// Save writes the submission back to path.
func (s *Submission) Save(path string) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding submission: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding submission: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing submission: %w", err)
	}
	return nil
}

// State loads the attachments and builds the report state. Relative paths are
// resolved against baseDir.
func (s *Submission) State(baseDir string) (State, error) {
	intents := Batch{SetTone{Tone: s.Tone}}
	for field, value := range s.fields() {
		intents = append(intents, SetField{Field: field, Value: value})
	}
	intents = append(intents, SetShowExpenditure{Show: s.Data.ShowExpenditure})

	for _, slot := range Slots {
		paths := s.Files.paths(slot)
		if len(paths) == 0 {
			continue
		}
		atts := make([]*Attachment, 0, len(paths))
		for _, p := range paths {
			att, err := loadAttachment(baseDir, p)
			if err != nil {
				return State{}, fmt.Errorf("%s: %w", slot, err)
			}
			atts = append(atts, att)
		}
		intents = append(intents, AddFiles{Slot: slot, Files: atts})
	}

	return intents.Apply(NewState())
}

func (s *Submission) fields() map[Field]string {
	out := make(map[Field]string, len(Fields))
	for _, f := range Fields {
		v, _ := s.Data.Get(f)
		out[f] = v
	}
	return out
}

func loadAttachment(baseDir, path string) (*Attachment, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading attachment: %w", err)
	}
	return NewAttachment(filepath.Base(path), "", data), nil
}
