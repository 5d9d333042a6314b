// Package report holds the form state of an event report: the scalar report data,
// the attachment slots and the intents that mutate them.
package report

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
)

// Field names a scalar field of Data. Values match the form ids of the report editor.
type Field string

// Report fields, in form order.
const (
	FieldCollegeName           Field = "collegeName"
	FieldCollegeAddress        Field = "collegeAddress"
	FieldEventTitle            Field = "eventTitle"
	FieldDate                  Field = "date"
	FieldStartTime             Field = "startTime"
	FieldEndTime               Field = "endTime"
	FieldDepartment            Field = "department"
	FieldAcademicYear          Field = "academicYear"
	FieldVenue                 Field = "venue"
	FieldParticipants          Field = "participants"
	FieldResourcePersonName    Field = "resourcePersonName"
	FieldResourcePersonDetails Field = "resourcePersonDetails"
	FieldCoordinatorName       Field = "coordinatorName"
	FieldBriefInfo             Field = "briefInfo"
	FieldObjectives            Field = "objectives"
	FieldBenefits              Field = "benefits"
	FieldExpenditure           Field = "expenditure"
)

// Fields lists every string field of Data in form order.
var Fields = []Field{
	FieldCollegeName,
	FieldCollegeAddress,
	FieldEventTitle,
	FieldDate,
	FieldStartTime,
	FieldEndTime,
	FieldDepartment,
	FieldAcademicYear,
	FieldVenue,
	FieldParticipants,
	FieldResourcePersonName,
	FieldResourcePersonDetails,
	FieldCoordinatorName,
	FieldBriefInfo,
	FieldObjectives,
	FieldBenefits,
	FieldExpenditure,
}

// IsNumeric reports whether the field holds a number entered as text.
func (f Field) IsNumeric() bool {
	return f == FieldParticipants || f == FieldExpenditure
}

// ErrUnknownField is returned when a field name does not exist in Data.
var ErrUnknownField = errors.New("unknown report field")

// Data is the scalar part of the report form.
type Data struct {
	CollegeName           string `json:"collegeName" yaml:"collegeName"`
	CollegeAddress        string `json:"collegeAddress" yaml:"collegeAddress"`
	EventTitle            string `json:"eventTitle" yaml:"eventTitle"`
	Date                  string `json:"date" yaml:"date"` // YYYY-MM-DD
	StartTime             string `json:"startTime" yaml:"startTime"`
	EndTime               string `json:"endTime" yaml:"endTime"`
	Department            string `json:"department" yaml:"department"`
	AcademicYear          string `json:"academicYear" yaml:"academicYear"`
	Venue                 string `json:"venue" yaml:"venue"`
	Participants          string `json:"participants" yaml:"participants"`
	ResourcePersonName    string `json:"resourcePersonName" yaml:"resourcePersonName"`
	ResourcePersonDetails string `json:"resourcePersonDetails" yaml:"resourcePersonDetails"`
	CoordinatorName       string `json:"coordinatorName" yaml:"coordinatorName"`
	BriefInfo             string `json:"briefInfo" yaml:"briefInfo"`
	Objectives            string `json:"objectives" yaml:"objectives"`
	Benefits              string `json:"benefits" yaml:"benefits"`
	Expenditure           string `json:"expenditure" yaml:"expenditure"`
	ShowExpenditure       bool   `json:"showExpenditure" yaml:"showExpenditure"`
}

// NewData returns the initial form state: empty fields with the expenditure row shown.
func NewData() Data {
	return Data{ShowExpenditure: true}
}

func (d *Data) ref(f Field) (*string, error) {
	switch f {
	case FieldCollegeName:
		return &d.CollegeName, nil
	case FieldCollegeAddress:
		return &d.CollegeAddress, nil
	case FieldEventTitle:
		return &d.EventTitle, nil
	case FieldDate:
		return &d.Date, nil
	case FieldStartTime:
		return &d.StartTime, nil
	case FieldEndTime:
		return &d.EndTime, nil
	case FieldDepartment:
		return &d.Department, nil
	case FieldAcademicYear:
		return &d.AcademicYear, nil
	case FieldVenue:
		return &d.Venue, nil
	case FieldParticipants:
		return &d.Participants, nil
	case FieldResourcePersonName:
		return &d.ResourcePersonName, nil
	case FieldResourcePersonDetails:
		return &d.ResourcePersonDetails, nil
	case FieldCoordinatorName:
		return &d.CoordinatorName, nil
	case FieldBriefInfo:
		return &d.BriefInfo, nil
	case FieldObjectives:
		return &d.Objectives, nil
	case FieldBenefits:
		return &d.Benefits, nil
	case FieldExpenditure:
		return &d.Expenditure, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
}

// Get returns the value of a field.
func (d Data) Get(f Field) (string, error) {
	p, err := d.ref(f)
	if err != nil {
		return "", err
	}
	return *p, nil
}

// With returns a copy of d with one field replaced.
func (d Data) With(f Field, value string) (Data, error) {
	p, err := d.ref(f)
	if err != nil {
		return d, err
	}
	*p = value
	return d, nil
}

// Attachment is an uploaded file. Attachments are never mutated; editing a file
// (e.g. cropping) produces a new Attachment, so pointer identity tells versions apart.
type Attachment struct {
	Name     string
	MIMEType string
	Data     []byte
}

// NewAttachment creates an attachment, sniffing the MIME type when none is given.
func NewAttachment(name, mimeType string, data []byte) *Attachment {
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = detectMIMEType(name, data)
	}
	return &Attachment{Name: name, MIMEType: mimeType, Data: data}
}

// IsImage reports whether the attachment can be displayed inline.
func (a *Attachment) IsImage() bool {
	return a != nil && strings.HasPrefix(a.MIMEType, "image/")
}

// detectMIMEType sniffs the content and falls back to the file extension.
func detectMIMEType(name string, data []byte) string {
	sniffed := http.DetectContentType(data)
	if sniffed != "application/octet-stream" && !strings.HasPrefix(sniffed, "text/plain") {
		return strings.TrimSpace(strings.Split(sniffed, ";")[0])
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".bmp":
		return "image/bmp"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".webp":
		return "image/webp"
	default:
		return sniffed
	}
}
