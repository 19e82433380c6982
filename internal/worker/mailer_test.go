package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/backend/pkg/queue"
)

type fakeSender struct {
	sent []string
	err  error
}

func (s *fakeSender) Send(to, _, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, to)
	return nil
}

type fakeLog struct {
	sent   []uuid.UUID
	failed map[uuid.UUID]string
}

func newFakeLog() *fakeLog {
	return &fakeLog{failed: make(map[uuid.UUID]string)}
}

func (l *fakeLog) MarkSent(_ context.Context, logID uuid.UUID, _ time.Time) error {
	l.sent = append(l.sent, logID)
	return nil
}

func (l *fakeLog) MarkFailed(_ context.Context, logID uuid.UUID, reason string) error {
	l.failed[logID] = reason
	return nil
}

func emailJob(t *testing.T, attempt int, payload queue.EmailPayload) *queue.Job {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &queue.Job{ID: uuid.NewString(), Type: queue.JobTypeEmail, Payload: raw, Attempt: attempt}
}

func TestProcess_SendsAndMarks(t *testing.T) {
	sender := &fakeSender{}
	log := newFakeLog()
	m := NewMailer(log, nil, sender, nil)

	logID := uuid.New()
	job := emailJob(t, 0, queue.EmailPayload{
		BroadcastID:    uuid.New(),
		EmailLogID:     logID,
		RecipientEmail: "student@example.com",
		Subject:        "Meetup this Friday",
		BodyHTML:       "<p>See you there</p>",
	})

	require.NoError(t, m.Process(context.Background(), job))
	assert.Equal(t, []string{"student@example.com"}, sender.sent)
	assert.Equal(t, []uuid.UUID{logID}, log.sent)
	assert.Empty(t, log.failed)
}

func TestProcess_SendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp refused")}
	log := newFakeLog()
	m := NewMailer(log, nil, sender, nil)

	job := emailJob(t, 0, queue.EmailPayload{EmailLogID: uuid.New(), RecipientEmail: "s@example.com"})
	err := m.Process(context.Background(), job)
	assert.Error(t, err)
	assert.Empty(t, log.sent)
}

func TestProcess_UnknownType(t *testing.T) {
	m := NewMailer(newFakeLog(), nil, &fakeSender{}, nil)
	job := &queue.Job{ID: "x", Type: "video"}
	assert.Error(t, m.Process(context.Background(), job))
}

func TestFail_MarksOnLastAttempt(t *testing.T) {
	log := newFakeLog()
	m := NewMailer(log, nil, &fakeSender{}, nil)
	logID := uuid.New()
	cause := errors.New("mailbox full")

	// Early attempts leave the log pending for a retry.
	m.fail(context.Background(), emailJob(t, 0, queue.EmailPayload{EmailLogID: logID}), cause)
	assert.Empty(t, log.failed)

	// The final attempt records the permanent failure.
	m.fail(context.Background(), emailJob(t, queue.MaxRetries-1, queue.EmailPayload{EmailLogID: logID}), cause)
	assert.Equal(t, "mailbox full", log.failed[logID])
}
