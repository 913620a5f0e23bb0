package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/supportdesk/ticketing-service/internal/config"
	"github.com/supportdesk/ticketing-service/internal/mail"
	"github.com/supportdesk/ticketing-service/internal/queue"
)

type stubSender struct {
	sent    []mail.Email
	failErr error
}

func (s *stubSender) Send(_ context.Context, email mail.Email) error {
	if s.failErr != nil {
		return s.failErr
	}
	s.sent = append(s.sent, email)
	return nil
}

type stubInbox struct {
	emails  []mail.InboxEmail
	failErr error
	limit   int
}

func (s *stubInbox) ReadInbox(_ context.Context, limit int) ([]mail.InboxEmail, error) {
	s.limit = limit
	if s.failErr != nil {
		return nil, s.failErr
	}
	return s.emails, nil
}

func newTestWorker(sender *stubSender, inbox *stubInbox) *Worker {
	return New(
		config.RedisConfig{Addr: "localhost:6379"},
		config.QueueConfig{Name: "jobs", Concurrency: 1},
		sender,
		inbox,
		config.NotificationConfig{EmailFrom: "support@example.com"},
		zap.NewNop(),
	)
}

func mustTask(t *testing.T, taskType string, payload any) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(taskType, data)
}

func TestHandleSendEmail(t *testing.T) {
	sender := &stubSender{}
	w := newTestWorker(sender, &stubInbox{})

	task := mustTask(t, queue.TaskTypeSendEmail, queue.SendEmailPayload{
		Subject:   "Your ticket has been closed",
		Recipient: "alice@example.com",
		Body:      "body",
	})
	require.NoError(t, w.handleSendEmail(context.Background(), task))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "support@example.com", sender.sent[0].From)
	assert.Equal(t, "alice@example.com", sender.sent[0].To)
}

func TestHandleSendEmailBadPayloadSkipsRetry(t *testing.T) {
	w := newTestWorker(&stubSender{}, &stubInbox{})

	task := asynq.NewTask(queue.TaskTypeSendEmail, []byte("not json"))
	err := w.handleSendEmail(context.Background(), task)
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleSendEmailTransportFailureRetries(t *testing.T) {
	sender := &stubSender{failErr: errors.New("smtp refused")}
	w := newTestWorker(sender, &stubInbox{})

	task := mustTask(t, queue.TaskTypeSendEmail, queue.SendEmailPayload{Recipient: "alice@example.com"})
	err := w.handleSendEmail(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleReadInbox(t *testing.T) {
	inbox := &stubInbox{emails: []mail.InboxEmail{
		{Subject: "hello", From: "alice@example.com", Body: "hi"},
	}}
	w := newTestWorker(&stubSender{}, inbox)

	task := mustTask(t, queue.TaskTypeReadInbox, queue.ReadInboxPayload{Limit: 3})
	require.NoError(t, w.handleReadInbox(context.Background(), task))
	assert.Equal(t, 3, inbox.limit)
}

func TestHandleReadInboxFailure(t *testing.T) {
	inbox := &stubInbox{failErr: errors.New("imap down")}
	w := newTestWorker(&stubSender{}, inbox)

	task := mustTask(t, queue.TaskTypeReadInbox, queue.ReadInboxPayload{Limit: 1})
	assert.Error(t, w.handleReadInbox(context.Background(), task))
}
