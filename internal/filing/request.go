package filing

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/MGhunch/dot-file/internal/classification"
)

// Request is an inbound filing instruction from the upstream router.
type Request struct {
	JobNumber        string      `json:"jobNumber"`
	ClientCode       string      `json:"clientCode"`
	SenderName       string      `json:"senderName"`
	SenderEmail      string      `json:"senderEmail"`
	SubjectLine      string      `json:"subjectLine"`
	EmailContent     string      `json:"emailContent"`
	AttachmentNames  Attachments `json:"attachmentNames"`
	HasAttachments   bool        `json:"hasAttachments"`
	ReceivedDateTime string      `json:"receivedDateTime"`
	ProjectRecordID  string      `json:"projectRecordId"`
	AllRecipients    []string    `json:"allRecipients"`

	Route      string `json:"route,omitempty"`
	FolderType string `json:"folderType,omitempty"`
	NewRound   bool   `json:"newRound,omitempty"`
}

// Attachments is an ordered list of filenames. It decodes from a JSON
// array, a string holding a JSON-encoded array, or a single filename.
type Attachments []string

func (a *Attachments) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*a = list
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("attachmentNames: expected array or string")
	}
	if err := json.Unmarshal([]byte(s), &list); err == nil {
		*a = list
		return nil
	}
	if s = strings.TrimSpace(s); s != "" {
		*a = Attachments{s}
		return nil
	}
	*a = nil
	return nil
}

// Validate reports request errors that stop processing before any stage runs.
func (r Request) Validate() error {
	if strings.TrimSpace(r.JobNumber) == "" {
		return fmt.Errorf("%w: missing jobNumber", ErrInvalidRequest)
	}
	return nil
}

// Received parses ReceivedDateTime, falling back to now when it is absent or malformed.
func (r Request) Received(now time.Time) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, strings.TrimSpace(r.ReceivedDateTime)); err == nil {
			return t
		}
	}
	return now
}

// Files returns the attachments to move. Names are ignored when the
// request says it has none.
func (r Request) Files() []string {
	if !r.HasAttachments {
		return nil
	}
	files := make([]string, 0, len(r.AttachmentNames))
	for _, name := range r.AttachmentNames {
		if name = strings.TrimSpace(name); name != "" {
			files = append(files, name)
		}
	}
	return files
}

// Message is the classifier's view of the request.
func (r Request) Message() classification.Message {
	return classification.Message{
		JobNumber:   r.JobNumber,
		SenderName:  r.SenderName,
		SenderEmail: r.SenderEmail,
		Subject:     r.SubjectLine,
		Body:        r.EmailContent,
		Attachments: r.AttachmentNames,
		Recipients:  r.AllRecipients,
		Route:       r.Route,
		FolderType:  r.FolderType,
	}
}

// trackingKeys lists the keys a project record may be found by: the
// router's record id first, then the job number.
func (r Request) trackingKeys() []string {
	job := strings.TrimSpace(r.JobNumber)
	if id := strings.TrimSpace(r.ProjectRecordID); id != "" && !strings.EqualFold(id, job) {
		return []string{id, job}
	}
	return []string{job}
}
