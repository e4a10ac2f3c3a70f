// Package mail builds the mail-compose links offered next to report rows.
//
// Link bodies come from two editable templates, one for students in the
// wrong course and one for students in no course. Placeholders such as
// $student_id are replaced with the row's values before the body is
// percent-encoded into a mailto: URI.
package mail

import (
	"strings"
)

// MailtoParams describes one mail-compose link.
type MailtoParams struct {
	Recipients []string
	CC         []string
	BCC        []string
	Subject    string
	Body       string
}

// MailtoURI returns a mailto: URI for p. Every component is
// percent-encoded the way browsers encode a URI component, so the
// query always carries cc, bcc, subject and body, even when empty.
func MailtoURI(p MailtoParams) string {
	var b strings.Builder
	b.WriteString("mailto:")
	writeList(&b, p.Recipients)
	b.WriteString("?cc=")
	writeList(&b, p.CC)
	b.WriteString("&bcc=")
	writeList(&b, p.BCC)
	b.WriteString("&subject=")
	b.WriteString(encodeURIComponent(p.Subject))
	b.WriteString("&body=")
	b.WriteString(encodeURIComponent(p.Body))
	return b.String()
}

func writeList(b *strings.Builder, addrs []string) {
	for i, a := range addrs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(encodeURIComponent(a))
	}
}

const upperhex = "0123456789ABCDEF"

// encodeURIComponent escapes every byte of s except ASCII letters, digits
// and -_.!~*'(). Spaces become %20, never '+'.
func encodeURIComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
