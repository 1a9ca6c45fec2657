// Package compose builds email compose links for a generated cover letter.
package compose

import (
	"net/url"
	"strings"

	"github.com/amishk599/coverletter/internal/model"
)

const gmailComposeURL = "https://mail.google.com/mail/?view=cm&fs=1"

// Draft is an email ready to hand to a mail client.
type Draft struct {
	To      string
	Subject string
	Body    string
}

// DraftFor prefills a draft from a generated letter's metadata.
func DraftFor(letter model.Letter) Draft {
	return Draft{
		To:      letter.Metadata.HREmail,
		Subject: letter.Metadata.Subject(),
		Body:    letter.Body,
	}
}

// GmailURL returns the Gmail web compose link for the draft.
func (d Draft) GmailURL() string {
	return GmailURL(d.To, d.Subject, d.Body)
}

// MailtoURL returns a mailto: link for the draft.
func (d Draft) MailtoURL() string {
	return MailtoURL(d.To, d.Subject, d.Body)
}

// GmailURL builds a Gmail compose link. Empty fields are still sent so
// Gmail opens a blank input for them.
func GmailURL(to, subject, body string) string {
	var b strings.Builder
	b.WriteString(gmailComposeURL)
	b.WriteString("&to=")
	b.WriteString(EncodeURIComponent(to))
	b.WriteString("&su=")
	b.WriteString(EncodeURIComponent(subject))
	b.WriteString("&body=")
	b.WriteString(EncodeURIComponent(body))
	return b.String()
}

// MailtoURL builds an RFC 6068 mailto: link, omitting empty header fields.
func MailtoURL(to, subject, body string) string {
	var params []string
	if subject != "" {
		params = append(params, "subject="+EncodeURIComponent(subject))
	}
	if body != "" {
		params = append(params, "body="+EncodeURIComponent(body))
	}

	link := "mailto:" + url.PathEscape(to)
	if len(params) > 0 {
		link += "?" + strings.Join(params, "&")
	}
	return link
}

// browserSafe restores the characters encodeURIComponent leaves as-is.
var browserSafe = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeURIComponent escapes s the way browsers' encodeURIComponent does:
// spaces become %20 and only A-Z a-z 0-9 - _ . ! ~ * ' ( ) are left unescaped.
func EncodeURIComponent(s string) string {
	return browserSafe.Replace(url.QueryEscape(s))
}
