package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"contactrelay/internal/mailer"
	"contactrelay/internal/model"
	"contactrelay/pkg/config"
	"contactrelay/pkg/logger"
	"contactrelay/pkg/metrics"
	"contactrelay/pkg/util"
)

const dedupHandler = "contact"

type Outcome string

const (
	OutcomeSent      Outcome = "sent"
	OutcomeDuplicate Outcome = "duplicate"
)

// ErrSendAborted is returned when the caller went away before the transport
// reported back.
var ErrSendAborted = errors.New("send aborted before transport completed")

// SendResult is the outcome of one transport call.
type SendResult struct {
	Err      error
	Duration time.Duration
}

// Deduper suppresses repeated identical submissions.
type Deduper interface {
	AcquireOnce(ctx context.Context, handler, fingerprint string) bool
	Release(ctx context.Context, handler, fingerprint string)
}

type Service struct {
	transport mailer.Transport
	mailCfg   config.MailConfig
	deduper   Deduper
	logger    *zap.Logger
}

// NewService wires the relay. deduper may be nil to disable duplicate
// suppression.
func NewService(transport mailer.Transport, mailCfg config.MailConfig, deduper Deduper, logger *zap.Logger) *Service {
	return &Service{
		transport: transport,
		mailCfg:   mailCfg,
		deduper:   deduper,
		logger:    logger,
	}
}

// Dispatch starts the transport call and returns a channel that receives
// exactly one result.
func (s *Service) Dispatch(ctx context.Context, msg *model.MailMessage) <-chan SendResult {
	ch := make(chan SendResult, 1)
	go func() {
		start := time.Now()
		err := s.transport.Send(ctx, msg)
		ch <- SendResult{Err: err, Duration: time.Since(start)}
	}()
	return ch
}

// Relay turns the submission into an email and waits for the transport.
// There is no timeout; only cancellation of ctx stops the wait.
func (s *Service) Relay(ctx context.Context, sub model.ContactSubmission) (Outcome, error) {
	log := logger.WithTrace(ctx, s.logger)

	fingerprint := util.Fingerprint(sub.Name, sub.Email, sub.Message)
	if s.deduper != nil && !s.deduper.AcquireOnce(ctx, dedupHandler, fingerprint) {
		metrics.IncrementContactSubmission(string(OutcomeDuplicate))
		log.Info("Duplicate submission ignored", zap.String("email", sub.Email))
		return OutcomeDuplicate, nil
	}

	msg := mailer.BuildMessage(s.mailCfg, sub)

	results := s.Dispatch(ctx, msg)
	select {
	case res := <-results:
		if res.Err != nil {
			s.release(ctx, fingerprint)
			metrics.IncrementContactSubmission("failed")
			log.Error("Failed to send email",
				zap.String("host", s.transport.Host()),
				zap.String("error_type", util.ClassifyError(res.Err)),
				zap.Duration("duration", res.Duration),
				zap.Error(res.Err),
			)
			return "", fmt.Errorf("send contact email: %w", res.Err)
		}

		metrics.IncrementContactSubmission(string(OutcomeSent))
		log.Info("Email sent",
			zap.String("host", s.transport.Host()),
			zap.String("from", msg.From),
			zap.Duration("duration", res.Duration),
		)
		return OutcomeSent, nil

	case <-ctx.Done():
		// The send may still go through; the key is kept unless it fails.
		if s.deduper != nil {
			go s.releaseIfFailed(context.WithoutCancel(ctx), results, fingerprint)
		}
		metrics.IncrementContactSubmission("failed")
		log.Warn("Request ended before the email was sent", zap.Error(ctx.Err()))
		return "", fmt.Errorf("%w: %w", ErrSendAborted, ctx.Err())
	}
}

func (s *Service) release(ctx context.Context, fingerprint string) {
	if s.deduper != nil {
		s.deduper.Release(ctx, dedupHandler, fingerprint)
	}
}

func (s *Service) releaseIfFailed(ctx context.Context, results <-chan SendResult, fingerprint string) {
	if res := <-results; res.Err != nil {
		s.release(ctx, fingerprint)
	}
}
