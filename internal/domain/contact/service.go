package contact

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/buildercircle/server/internal/api/pagination"
	"github.com/buildercircle/server/internal/domain/ids"
	"github.com/buildercircle/server/internal/sanitize"
)

const emailDispatchTimeout = 15 * time.Second

// Repository persists contact submissions.
type Repository interface {
	Create(ctx context.Context, sub *Submission) error
	GetByID(ctx context.Context, id string) (*Submission, error)
	List(ctx context.Context, params pagination.Params) ([]Submission, int64, error)
	Delete(ctx context.Context, id string) error
}

// Subscriber is the newsletter opt-in hook. Failures here never fail the
// submission itself.
type Subscriber interface {
	Subscribe(ctx context.Context, email, name string) error
}

// Mailer sends the two submission emails: a notification to the site
// admins and an acknowledgment to the sender.
type Mailer interface {
	SendContactNotification(ctx context.Context, sub *Submission) error
	SendContactAck(ctx context.Context, sub *Submission) error
}

type Service struct {
	repo       Repository
	subscriber Subscriber
	mailer     Mailer
	logger     zerolog.Logger
	validator  *validator.Validate
}

func NewService(repo Repository, subscriber Subscriber, mailer Mailer, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		subscriber: subscriber,
		mailer:     mailer,
		logger:     logger.With().Str("component", "contact").Logger(),
		validator:  validator.New(),
	}
}

// Submit validates and stores a submission. The newsletter opt-in and both
// emails are side effects: each is attempted, logged on failure, and never
// surfaces an error to the submitter once the record is stored.
func (s *Service) Submit(ctx context.Context, params SubmitParams) (*Submission, error) {
	if err := s.validator.Struct(params); err != nil {
		return nil, err
	}

	id, err := ids.New()
	if err != nil {
		return nil, fmt.Errorf("mint id: %w", err)
	}

	sub := &Submission{
		ID:        id,
		Name:      sanitize.Text(params.Name),
		Email:     strings.ToLower(strings.TrimSpace(params.Email)),
		Company:   sanitize.Text(params.Company),
		Subject:   sanitize.Text(params.Subject),
		Message:   sanitize.Text(params.Message),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}
	s.logger.Info().Str("submission_id", sub.ID).Msg("contact submission stored")

	if params.SubscribeNewsletter {
		if err := s.subscriber.Subscribe(ctx, sub.Email, sub.Name); err != nil {
			s.logger.Warn().Err(err).Str("submission_id", sub.ID).Msg("newsletter opt-in failed")
		}
	}
	s.dispatchEmails(sub)

	return sub, nil
}

// dispatchEmails sends the notification and acknowledgment off the request
// path so mail-provider latency never delays the response.
func (s *Service) dispatchEmails(sub *Submission) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emailDispatchTimeout)
		defer cancel()
		if err := s.mailer.SendContactNotification(ctx, sub); err != nil {
			s.logger.Warn().Err(err).Str("submission_id", sub.ID).Msg("admin notification send failed")
		}
		if err := s.mailer.SendContactAck(ctx, sub); err != nil {
			s.logger.Warn().Err(err).Str("submission_id", sub.ID).Msg("acknowledgment send failed")
		}
	}()
}

func (s *Service) List(ctx context.Context, params pagination.Params) ([]Submission, int64, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) Get(ctx context.Context, id string) (*Submission, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("submission_id", id).Msg("contact submission deleted")
	return nil
}
