package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villagemarket/village-market/pkg/mailer"
	mailtpl "github.com/villagemarket/village-market/pkg/mailer/templates"
)

type fakeSender struct {
	err     error
	to      string
	subject string
	calls   int
}

func (f *fakeSender) Send(_ context.Context, to, subject, _, _ string) error {
	f.calls++
	f.to, f.subject = to, subject
	return f.err
}

func newTestWorker(s mailer.Sender) *worker {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &worker{sender: s, logger: l}
}

func jobBody(t *testing.T, job mailer.EmailJob) []byte {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func TestHandle_RendersTemplate(t *testing.T) {
	s := &fakeSender{}
	w := newTestWorker(s)
	body := jobBody(t, mailer.EmailJob{
		To:       "ada@example.com",
		Template: mailtpl.ContributionReceipt,
		Data:     mailtpl.NewContributionReceiptData(nil, "Ada", "ada@example.com", "Rice", 75000, 3, "VM-1"),
	})

	assert.Equal(t, outcomeAck, w.handle(context.Background(), body))
	assert.Equal(t, "ada@example.com", s.to)
	assert.Equal(t, "Payment received for Rice", s.subject)
}

func TestHandle_RawMessage(t *testing.T) {
	s := &fakeSender{}
	w := newTestWorker(s)
	body := jobBody(t, mailer.EmailJob{To: "a@b.c", Subject: "Hi", Text: "hello"})

	assert.Equal(t, outcomeAck, w.handle(context.Background(), body))
	assert.Equal(t, "Hi", s.subject)
}

func TestHandle_DropsBadJobs(t *testing.T) {
	s := &fakeSender{}
	w := newTestWorker(s)

	assert.Equal(t, outcomeDrop, w.handle(context.Background(), []byte("{not json")))
	assert.Equal(t, outcomeDrop, w.handle(context.Background(), jobBody(t, mailer.EmailJob{To: "a@b.c"})))
	assert.Equal(t, outcomeDrop, w.handle(context.Background(), jobBody(t, mailer.EmailJob{To: "a@b.c", Template: "missing"})))
	assert.Zero(t, s.calls)
}

func TestHandle_RetriesSendFailure(t *testing.T) {
	s := &fakeSender{err: errors.New("mailgun down")}
	w := newTestWorker(s)
	body := jobBody(t, mailer.EmailJob{To: "a@b.c", Subject: "Hi", HTML: "<p>hi</p>"})

	assert.Equal(t, outcomeRetry, w.handle(context.Background(), body))
	assert.Equal(t, 1, s.calls)
}
