package classification

import (
	"path"
	"slices"
	"strings"
	"unicode"

	"github.com/k3a/html2text"
)

var (
	briefKeywords    = []string{"brief", "scope", "requirement", "kickoff"}
	feedbackKeywords = []string{"feedback", "amend", "comment", "change", "revision"}
	outgoingPhrases  = []string{"here's the latest", "for your review", "for review", "updated version", "attached", "latest"}
)

// Policy holds the organisation-specific inputs to signal extraction.
type Policy struct {
	InternalDomain        string
	DeliverableExtensions []string
}

// DefaultPolicy is the Hunch configuration.
func DefaultPolicy() Policy {
	return Policy{
		InternalDomain:        "hunch.co.nz",
		DeliverableExtensions: []string{".pdf", ".docx", ".pptx", ".doc", ".ppt", ".key"},
	}
}

// Internal reports whether address belongs to the internal domain.
func (p Policy) Internal(address string) bool {
	return strings.EqualFold(domainOf(address), p.InternalDomain)
}

// KeywordHits records which keyword sets matched subject or body text.
type KeywordHits struct {
	Brief    bool `json:"brief"`
	Feedback bool `json:"feedback"`
	Outgoing bool `json:"outgoing"`
}

// Signals is the evidence the rule table decides on.
type Signals struct {
	SenderInternal     bool        `json:"sender_internal"`
	RecipientExternal  bool        `json:"recipient_external"`
	Keywords           KeywordHits `json:"keywords"`
	FilenameHasJob     bool        `json:"filename_has_job"`
	Deliverable        bool        `json:"deliverable"`
	ExternalRecipients []string    `json:"external_recipients,omitempty"`
}

// OutgoingCount is the number of outgoing indicators present, 0 to 5.
func (s Signals) OutgoingCount() int {
	n := 0
	for _, b := range []bool{s.SenderInternal, s.RecipientExternal, s.FilenameHasJob, s.Deliverable, s.Keywords.Outgoing} {
		if b {
			n++
		}
	}
	return n
}

// Extract derives Signals from m. It has no side effects.
func Extract(m Message, p Policy) Signals {
	var s Signals

	s.SenderInternal = p.Internal(m.SenderEmail)
	for _, r := range m.Recipients {
		if strings.TrimSpace(r) == "" || p.Internal(r) {
			continue
		}
		s.RecipientExternal = true
		s.ExternalRecipients = append(s.ExternalRecipients, r)
	}

	text := strings.ToLower(m.Subject + "\n" + BodyText(m.Body))
	s.Keywords = KeywordHits{
		Brief:    containsAny(text, briefKeywords),
		Feedback: containsAny(text, feedbackKeywords),
		Outgoing: containsAny(text, outgoingPhrases),
	}

	job := compact(m.JobNumber)
	for _, name := range m.Attachments {
		if job != "" && strings.Contains(compact(name), job) {
			s.FilenameHasJob = true
		}
		if isDeliverable(name, p.DeliverableExtensions) {
			s.Deliverable = true
		}
	}

	return s
}

// BodyText renders an HTML body to plain text. Plain text passes through.
func BodyText(body string) string {
	if !strings.Contains(body, "<") {
		return body
	}
	return html2text.HTML2Text(body)
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// compact lowercases s and drops all whitespace so "SKY 045" and "sky045" compare equal.
func compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

func isDeliverable(name string, exts []string) bool {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(name)))
	if ext == "" {
		return false
	}
	return slices.ContainsFunc(exts, func(e string) bool {
		return strings.EqualFold(e, ext)
	})
}

func domainOf(address string) string {
	address = strings.TrimSpace(address)
	if i := strings.LastIndex(address, "<"); i >= 0 {
		address = strings.TrimSuffix(address[i+1:], ">")
	}
	if i := strings.LastIndex(address, "@"); i >= 0 {
		return strings.TrimSpace(address[i+1:])
	}
	return ""
}
