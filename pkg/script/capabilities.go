package script

import (
	"context"
	"net/http"
)

// EmailMessage is an email a function asks to send.
type EmailMessage struct {
	To      []string `json:"to"`
	Cc      []string `json:"cc,omitempty"`
	Bcc     []string `json:"bcc,omitempty"`
	From    string   `json:"from,omitempty"`
	Subject string   `json:"subject"`
	Content string   `json:"content"`
	IsHTML  bool     `json:"is_html"`
}

// EmailSender delivers email on behalf of functions.
type EmailSender interface {
	Send(ctx context.Context, msg *EmailMessage) error
}

// Capabilities are everything a function can reach. Functions get no other access to
// the host; in particular there's no storage access.
type Capabilities struct {
	// Organization & User are exposed read only as CurrentOrganization & CurrentUser
	Organization map[string]interface{}
	User         map[string]interface{}

	// Email is exposed as Emailer.Send({...})
	Email EmailSender

	// HTTP is used by HttpClient; http.DefaultClient if not set
	HTTP *http.Client

	// API is exposed as API_V1, if set
	API interface{}
}
