package filing

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/emersion/go-message/mail"
)

const emlContentType = "message/rfc822"

// EmailName synthesizes the artifact filename, e.g.
// "Email from Sarah - 18 Jan 2026.eml". The date is rendered in loc.
func EmailName(senderName string, received time.Time, loc *time.Location) string {
	return fmt.Sprintf("Email from %s - %s.eml", firstName(senderName), received.In(loc).Format("02 Jan 2006"))
}

// firstName keeps the first word of name, restricted to letters, digits and " -_".
func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "Unknown"
	}
	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return -1
	}, fields[0])
	if clean == "" {
		return "Unknown"
	}
	return clean
}

// ComposeEmail renders the request as an RFC 5322 message with the original
// HTML body.
func ComposeEmail(r Request, received time.Time) ([]byte, error) {
	var h mail.Header
	h.Set("MIME-Version", "1.0")
	h.SetDate(received)
	h.SetAddressList("From", []*mail.Address{{Name: r.SenderName, Address: r.SenderEmail}})
	if to := recipients(r.AllRecipients); len(to) > 0 {
		h.SetAddressList("To", to)
	}
	h.SetSubject(r.SubjectLine)
	h.SetContentType("text/html", map[string]string{"charset": "utf-8"})

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	if _, err := io.WriteString(w, r.EmailContent); err != nil {
		return nil, fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close message: %w", err)
	}
	return buf.Bytes(), nil
}

// recipients parses each entry as an address, keeping the raw text as the
// address when it does not parse.
func recipients(list []string) []*mail.Address {
	out := make([]*mail.Address, 0, len(list))
	for _, raw := range list {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if addr, err := mail.ParseAddress(raw); err == nil {
			out = append(out, addr)
			continue
		}
		out = append(out, &mail.Address{Address: raw})
	}
	return out
}
