package mail

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	gomessage "github.com/emersion/go-message/mail"
	"go.uber.org/zap"

	"github.com/supportdesk/ticketing-service/internal/config"
)

// InboxEmail is one fetched inbox message, reduced to plain text.
type InboxEmail struct {
	Subject string `json:"subject"`
	From    string `json:"from"`
	Body    string `json:"body"`
}

// InboxReader fetches the most recent inbox messages.
type InboxReader interface {
	ReadInbox(ctx context.Context, limit int) ([]InboxEmail, error)
}

// IMAPReader reads a mailbox over IMAP with TLS. Each call dials a fresh
// connection; the reader holds no connection state between jobs.
type IMAPReader struct {
	cfg    config.IMAPConfig
	logger *zap.Logger
}

// NewIMAPReader builds a reader from mailbox configuration.
func NewIMAPReader(cfg config.IMAPConfig, logger *zap.Logger) *IMAPReader {
	return &IMAPReader{cfg: cfg, logger: logger}
}

// ReadInbox fetches up to limit of the newest INBOX messages read-only.
func (r *IMAPReader) ReadInbox(ctx context.Context, limit int) ([]InboxEmail, error) {
	if limit <= 0 {
		limit = 10
	}

	addr := net.JoinHostPort(r.cfg.Host, strconv.Itoa(r.cfg.Port))
	c, err := client.DialTLS(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("imap dial %s: %w", addr, err)
	}
	defer c.Logout() //nolint:errcheck

	if err := c.Login(r.cfg.Username, r.cfg.Password); err != nil {
		return nil, fmt.Errorf("imap login: %w", err)
	}

	mbox, err := c.Select("INBOX", true)
	if err != nil {
		return nil, fmt.Errorf("imap select inbox: %w", err)
	}
	if mbox.Messages == 0 {
		return []InboxEmail{}, nil
	}

	from := uint32(1)
	if mbox.Messages > uint32(limit) {
		from = mbox.Messages - uint32(limit) + 1
	}
	seq := new(imap.SeqSet)
	seq.AddRange(from, mbox.Messages)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, section.FetchItem()}

	messages := make(chan *imap.Message, limit)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seq, items, messages)
	}()

	emails := make([]InboxEmail, 0, limit)
	for msg := range messages {
		email := InboxEmail{}
		if msg.Envelope != nil {
			email.Subject = msg.Envelope.Subject
			if len(msg.Envelope.From) > 0 {
				email.From = msg.Envelope.From[0].Address()
			}
		}
		if body := msg.GetBody(section); body != nil {
			email.Body = extractText(body)
		}
		emails = append(emails, email)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("imap fetch: %w", err)
	}

	r.logger.Debug("inbox read", zap.Int("count", len(emails)))
	return emails, nil
}

// extractText walks the MIME structure, preferring the text/plain part and
// falling back to a stripped text/html part.
func extractText(r io.Reader) string {
	mr, err := gomessage.CreateReader(r)
	if err != nil {
		return ""
	}

	htmlBody := ""
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		header, ok := part.Header.(*gomessage.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := header.ContentType()
		data, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}
		switch contentType {
		case "text/plain":
			return CollapseWhitespace(string(data))
		case "text/html":
			if htmlBody == "" {
				htmlBody = string(data)
			}
		}
	}
	return StripHTML(htmlBody)
}
