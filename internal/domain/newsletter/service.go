package newsletter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/buildercircle/server/internal/api/pagination"
	"github.com/buildercircle/server/internal/domain/ids"
	"github.com/buildercircle/server/internal/sanitize"
)

const welcomeDispatchTimeout = 15 * time.Second

// Repository persists subscribers keyed on normalized email.
type Repository interface {
	Create(ctx context.Context, sub *Subscriber) error
	GetByEmail(ctx context.Context, email string) (*Subscriber, error)
	List(ctx context.Context, status string, params pagination.Params) ([]Subscriber, int64, error)
	// Reactivate flips an unsubscribed record back to active, resetting
	// subscribedAt and clearing unsubscribedAt.
	Reactivate(ctx context.Context, id string, subscribedAt time.Time) (*Subscriber, error)
	// Unsubscribe marks an active record unsubscribed. Returns ErrNotFound
	// for unknown emails.
	Unsubscribe(ctx context.Context, email string, at time.Time) (*Subscriber, error)
	Delete(ctx context.Context, id string) error
}

// Mailer sends the subscription lifecycle emails. welcomeBack selects the
// returning-subscriber variant.
type Mailer interface {
	SendNewsletterWelcome(ctx context.Context, email, name string, welcomeBack bool) error
}

type Service struct {
	repo      Repository
	mailer    Mailer
	logger    zerolog.Logger
	validator *validator.Validate
}

func NewService(repo Repository, mailer Mailer, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		mailer:    mailer,
		logger:    logger.With().Str("component", "newsletter").Logger(),
		validator: validator.New(),
	}
}

// Subscribe adds or reactivates a subscriber, tagging new records with the
// acquisition source. The welcome email is best-effort: a send failure is
// logged and never fails the subscription.
func (s *Service) Subscribe(ctx context.Context, email, name, source string) (*Subscriber, SubscribeResult, error) {
	email = NormalizeEmail(email)
	if err := s.validator.Var(email, "required,email"); err != nil {
		return nil, 0, ErrInvalidEmail
	}
	name = sanitize.Text(name)
	if source == "" {
		source = SourceWebsite
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.Status == StatusActive:
		return existing, AlreadySubscribed, nil

	case err == nil:
		sub, err := s.repo.Reactivate(ctx, existing.ID, time.Now().UTC())
		if err != nil {
			return nil, 0, err
		}
		s.sendWelcome(sub, true)
		s.logger.Info().Str("subscriber_id", sub.ID).Msg("subscriber reactivated")
		return sub, Resubscribed, nil

	case errors.Is(err, ErrNotFound):
		id, err := ids.New()
		if err != nil {
			return nil, 0, fmt.Errorf("mint id: %w", err)
		}
		sub := &Subscriber{
			ID:           id,
			Email:        email,
			Name:         name,
			Source:       source,
			Status:       StatusActive,
			SubscribedAt: time.Now().UTC(),
		}
		if err := s.repo.Create(ctx, sub); err != nil {
			return nil, 0, err
		}
		s.sendWelcome(sub, false)
		s.logger.Info().Str("subscriber_id", sub.ID).Msg("subscriber created")
		return sub, Subscribed, nil

	default:
		return nil, 0, err
	}
}

// sendWelcome runs off the request path so mail-provider latency never
// delays the response. The send outlives the request on a detached context.
func (s *Service) sendWelcome(sub *Subscriber, back bool) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), welcomeDispatchTimeout)
		defer cancel()
		if err := s.mailer.SendNewsletterWelcome(ctx, sub.Email, sub.Name, back); err != nil {
			s.logger.Warn().Err(err).Str("subscriber_id", sub.ID).Msg("welcome email send failed")
		}
	}()
}

// Unsubscribe is idempotent: an already-unsubscribed address succeeds
// without change, only an unknown address is ErrNotFound.
func (s *Service) Unsubscribe(ctx context.Context, email string) (*Subscriber, error) {
	email = NormalizeEmail(email)
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing.Status == StatusUnsubscribed {
		return existing, nil
	}
	sub, err := s.repo.Unsubscribe(ctx, email, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("subscriber_id", sub.ID).Msg("subscriber unsubscribed")
	return sub, nil
}

func (s *Service) List(ctx context.Context, status string, params pagination.Params) ([]Subscriber, int64, error) {
	return s.repo.List(ctx, status, params)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
