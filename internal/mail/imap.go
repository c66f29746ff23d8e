// Package mail adapts the email collaborator: list unread messages over
// IMAP, mark them read, and send the summary message over SMTP. The rest of
// the system only ever sees plain text bodies.
package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// DefaultFetchLimit caps how many unread messages one cycle pulls.
const DefaultFetchLimit = 50

// Message is the minimal representation of one inbox email.
type Message struct {
	UID     imap.UID
	From    string
	Subject string
	// Body is the decoded text content, HTML part preferred.
	Body string
}

// Client wraps an authenticated IMAP connection with INBOX selected.
type Client struct {
	c       *imapclient.Client
	done    chan struct{}
	verbose bool
}

// Dial connects over implicit TLS, logs in, and selects INBOX.
func Dial(ctx context.Context, addr, username, password string) (*Client, error) {
	if addr == "" {
		return nil, errors.New("imap address is required")
	}
	if username == "" || password == "" {
		return nil, errors.New("imap credentials are required")
	}

	c, err := imapclient.DialTLS(addr, &imapclient.Options{
		TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12},
	})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	// Drop the connection if the caller gives up while a command is
	// pending. The done channel lets the watchdog exit on a normal Close,
	// so long-lived contexts do not accumulate one goroutine per cycle.
	done := make(chan struct{})
	go closeOnCancel(ctx, done, c.Close)

	abort := func() {
		close(done)
		_ = c.Close()
	}

	if err := c.Login(username, password).Wait(); err != nil {
		abort()
		return nil, fmt.Errorf("login as %s: %w", username, err)
	}

	if _, err := c.Select("INBOX", &imap.SelectOptions{ReadOnly: false}).Wait(); err != nil {
		abort()
		return nil, fmt.Errorf("select inbox: %w", err)
	}

	return &Client{c: c, done: done}, nil
}

// closeOnCancel closes the connection when ctx is cancelled, unless done is
// closed first.
func closeOnCancel(ctx context.Context, done <-chan struct{}, closeConn func() error) {
	select {
	case <-ctx.Done():
		_ = closeConn()
	case <-done:
	}
}

// SetVerbose enables per-message logging.
func (cl *Client) SetVerbose(v bool) {
	cl.verbose = v
}

// ListUnread fetches up to max unseen messages with decoded bodies. Uses
// BODY.PEEK[] so listing does not set \Seen; MarkRead is explicit.
func (cl *Client) ListUnread(ctx context.Context, max int) ([]Message, error) {
	if max <= 0 {
		max = DefaultFetchLimit
	}

	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
	}

	searchData, err := cl.c.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("search unseen: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return []Message{}, nil
	}
	if len(uids) > max {
		uids = uids[:max]
	}

	bodyAll := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierNone,
		Peek:      true,
	}
	fetchOptions := &imap.FetchOptions{
		UID:         true,
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{bodyAll},
	}

	fetchCmd := cl.c.Fetch(imap.UIDSetNum(uids...), fetchOptions)
	defer func() { _ = fetchCmd.Close() }()

	out := make([]Message, 0, len(uids))
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}

		buf, err := msgData.Collect()
		if err != nil {
			return nil, fmt.Errorf("collect message: %w", err)
		}

		var m Message
		m.UID = buf.UID
		if buf.Envelope != nil {
			m.Subject = buf.Envelope.Subject
			if len(buf.Envelope.From) > 0 {
				m.From = buf.Envelope.From[0].Addr()
			}
		}
		if raw := buf.FindBodySection(bodyAll); raw != nil {
			m.Body = ExtractBody(raw)
		}

		if cl.verbose {
			log.Printf("[IMAP] Unread message uid=%d subject=%q", m.UID, m.Subject)
		}
		out = append(out, m)
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("finish fetch: %w", err)
	}

	return out, nil
}

// MarkRead sets the \Seen flag for one message.
func (cl *Client) MarkRead(_ context.Context, uid imap.UID) error {
	storeFlags := &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}

	cmd := cl.c.Store(imap.UIDSetNum(uid), storeFlags, nil)
	if err := cmd.Close(); err != nil {
		return fmt.Errorf("mark seen uid %d: %w", uid, err)
	}
	return nil
}

// Close logs out, drops the connection, and releases the watchdog.
func (cl *Client) Close() {
	if cl.c == nil {
		return
	}
	if cl.done != nil {
		close(cl.done)
	}
	if err := cl.c.Logout().Wait(); err != nil {
		log.Printf("[IMAP] Logout: %v", err)
	}
	_ = cl.c.Close()
}
