package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushub/backend/config"
	"github.com/campushub/backend/pkg/queue"
)

// Sender delivers one email.
type Sender interface {
	Send(to, subject, bodyHTML string) error
}

// DeliveryLog records the outcome of email delivery attempts.
type DeliveryLog interface {
	MarkSent(ctx context.Context, logID uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, logID uuid.UUID, reason string) error
}

// SMTPSender sends HTML email over SMTP with PLAIN auth.
type SMTPSender struct {
	cfg config.EmailConfig
}

// NewSMTPSender creates a sender from cfg.
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send delivers one HTML email to a single recipient.
func (s *SMTPSender) Send(to, subject, bodyHTML string) error {
	from := s.cfg.FromAddress
	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.cfg.FromName, from, to, subject, bodyHTML)

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	}
	return smtp.SendMail(addr, auth, from, []string{to}, []byte(msg))
}

// Mailer processes broadcast email jobs: dequeue, send, record the outcome.
type Mailer struct {
	log    DeliveryLog
	queue  *queue.Queue
	sender Sender
	logger *zap.Logger
}

// NewMailer creates a mail worker.
func NewMailer(log DeliveryLog, q *queue.Queue, sender Sender, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{log: log, queue: q, sender: sender, logger: logger}
}

// Process executes one email job.
func (m *Mailer) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := m.sender.Send(payload.RecipientEmail, payload.Subject, payload.BodyHTML); err != nil {
		return fmt.Errorf("send to %s: %w", payload.RecipientEmail, err)
	}

	if err := m.log.MarkSent(ctx, payload.EmailLogID, time.Now()); err != nil {
		m.logger.Error("mark sent failed", zap.Error(err), zap.String("email_log_id", payload.EmailLogID.String()))
		return fmt.Errorf("update log: %w", err)
	}

	m.logger.Info("email sent",
		zap.String("broadcast_id", payload.BroadcastID.String()),
		zap.String("recipient", payload.RecipientEmail))
	return nil
}

// fail records a permanent failure once the job has exhausted its retries.
func (m *Mailer) fail(ctx context.Context, job *queue.Job, cause error) {
	if job.Attempt+1 < queue.MaxRetries {
		return
	}
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return
	}
	if err := m.log.MarkFailed(ctx, payload.EmailLogID, cause.Error()); err != nil {
		m.logger.Error("mark failed failed", zap.Error(err), zap.String("email_log_id", payload.EmailLogID.String()))
	}
}

// Run starts the worker loop: dequeue, process, retry on error.
func (m *Mailer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("mail worker stopping")
			return
		default:
		}

		job, err := m.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				m.logger.Info("mail worker stopping")
				return
			}
			m.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		m.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := m.Process(ctx, job); err != nil {
			m.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			m.fail(ctx, job, err)
			if reErr := m.queue.Retry(ctx, job); reErr != nil {
				m.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
		}
	}
}
