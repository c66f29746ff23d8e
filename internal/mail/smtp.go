package mail

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	gomail "github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// Notifier sends the summary email over SMTP with PLAIN auth (STARTTLS).
type Notifier struct {
	addr     string
	username string
	password string
	from     string
	to       string

	// send is swapped in tests.
	send func(addr string, a sasl.Client, from string, to []string, r io.Reader) error
}

// NewNotifier configures a notifier; nothing is dialed until Send.
func NewNotifier(addr, username, password, from, to string) (*Notifier, error) {
	if addr == "" {
		return nil, errors.New("smtp addr is required")
	}
	if from == "" || to == "" {
		return nil, errors.New("smtp from/to addresses are required")
	}
	return &Notifier{
		addr:     addr,
		username: username,
		password: password,
		from:     from,
		to:       to,
		send:     smtp.SendMail,
	}, nil
}

// Send delivers one plain-text message.
func (n *Notifier) Send(subject, body string) error {
	msg, err := buildMessage(n.from, n.to, subject, body)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	auth := sasl.NewPlainClient("", n.username, n.password)
	if err := n.send(n.addr, auth, n.from, []string{n.to}, bytes.NewReader(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", n.to, err)
	}
	return nil
}

func buildMessage(from, to, subject, body string) ([]byte, error) {
	var buf bytes.Buffer

	var h gomail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", []*gomail.Address{{Address: from}})
	h.SetAddressList("To", []*gomail.Address{{Address: to}})
	h.SetSubject(subject)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	w, err := gomail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w, body); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
