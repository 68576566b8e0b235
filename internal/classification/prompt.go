package classification

import (
	"fmt"
	"strings"
)

// BodyExcerptLimit bounds how much rendered body text reaches the model.
const BodyExcerptLimit = 2000

const instructions = `You are a filing assistant for a creative agency. Decide which job subfolder an email's attachments belong in.

Folders:
- Briefs: initial briefs, scope documents, requirements, kickoff material
- Feedback: client feedback, amends, comments, revision requests
- Round: outgoing deliverables sent from the agency to the client for review
- Other: anything else (admin, invoices, general correspondence)

Treat an email as outgoing (Round) when at least three of these hold:
- the sender is on the agency domain
- recipients include client addresses
- an attachment name contains the job number
- an attachment is a document, presentation or PDF
- the email uses delivery language such as "here's the latest", "for your review" or "updated version"`

const responseSpec = `Respond with a JSON object matching this exact structure:

{
  "folder": "Briefs" | "Feedback" | "Round" | "Other",
  "is_outgoing": true | false,
  "confidence": "high" | "medium" | "low",
  "reasoning": "<one sentence>"
}

Field constraints:
- folder: exactly one of the four folder names
- is_outgoing: true only for outgoing deliverables; when true, folder is treated as Round
- confidence: how certain the decision is
- reasoning: a short justification naming the deciding evidence

Always respond with valid JSON, no markdown fencing.`

// Prompt composes the model prompt for an inconclusive message.
func Prompt(m Message, s Signals) string {
	var b strings.Builder

	b.WriteString(instructions)
	b.WriteString("\n\n")
	b.WriteString(responseSpec)
	b.WriteString("\n\nClassify where these attachments should be filed:\n\n")

	sender := "client"
	if s.SenderInternal {
		sender = "agency"
	}
	fmt.Fprintf(&b, "Sender: %s (%s)\n", m.SenderEmail, sender)
	fmt.Fprintf(&b, "Recipients: %s\n", listOrNone(m.Recipients))
	fmt.Fprintf(&b, "External recipients: %s\n", listOrNone(s.ExternalRecipients))
	fmt.Fprintf(&b, "Subject: %s\n", m.Subject)
	fmt.Fprintf(&b, "Attachments: %s\n", listOrNone(m.Attachments))

	body := strings.TrimSpace(BodyText(m.Body))
	if body == "" {
		body = "No content"
	}
	fmt.Fprintf(&b, "\nEmail content:\n%s\n", excerpt(body, BodyExcerptLimit))

	return b.String()
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

// excerpt truncates s to at most n runes.
func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
